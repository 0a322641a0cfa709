package metachat

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrNotFound indicates an unknown session or prompt id.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a session id that is already in use.
	ErrAlreadyExists = errors.New("already exists")

	// ErrDuplicateID indicates a prompt registration with an id already present.
	ErrDuplicateID = errors.New("duplicate prompt id")

	// ErrValidation indicates a request or value failed validation.
	ErrValidation = errors.New("validation error")

	// ErrPersistence indicates the session store is unavailable or a record
	// is corrupt.
	ErrPersistence = errors.New("persistence error")
)
