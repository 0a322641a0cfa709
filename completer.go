package metachat

import (
	"context"
	"errors"
	"fmt"
)

// Completer sends a single completion request to a language-model backend
// and returns the generated text. Implementations do not cache and do not
// retry; retry policy belongs to the caller.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// GatewayErrorKind classifies completion backend failures into categories
// suitable for retry and UX decisions.
type GatewayErrorKind string

const (
	// GatewayTransient indicates a failure (5xx, network) where a retry
	// may succeed.
	GatewayTransient GatewayErrorKind = "transient"

	// GatewayAuthentication indicates an authentication or authorization
	// failure. Retrying without changing credentials will not succeed.
	GatewayAuthentication GatewayErrorKind = "authentication"

	// GatewayRateLimited indicates the backend is throttling requests.
	GatewayRateLimited GatewayErrorKind = "rate_limited"

	// GatewayMalformedResponse indicates the backend returned a response
	// the gateway could not interpret.
	GatewayMalformedResponse GatewayErrorKind = "malformed_response"
)

// GatewayError describes a failure returned by a completion backend.
type GatewayError struct {
	Kind     GatewayErrorKind
	Provider string // gateway identifier, e.g. "openai"
	Status   int    // HTTP status when known, otherwise 0
	Err      error  // underlying cause, may be nil
}

func (e *GatewayError) Error() string {
	msg := "gateway error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Provider, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, msg)
}

// Unwrap returns the underlying cause to preserve the error chain.
func (e *GatewayError) Unwrap() error { return e.Err }

// Retryable reports whether retrying the call without changing the request
// may succeed.
func (e *GatewayError) Retryable() bool {
	return e.Kind == GatewayTransient || e.Kind == GatewayRateLimited
}

// AsGatewayError returns the first GatewayError in err's chain, if any.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
