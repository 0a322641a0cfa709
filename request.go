package metachat

import "fmt"

// Request carries model selection and prompt context for a single completion.
// The completer uses its own default when Model is empty.
type Request struct {
	Model        string // model ID, backend-specific; empty = completer default
	SystemPrompt string
	Messages     []Message
}

// Validate checks universal constraints on Request. Completer
// implementations may apply additional backend-specific validation.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty: %w", ErrValidation)
	}
	for i, m := range r.Messages {
		if m == nil {
			return fmt.Errorf("message %d is nil: %w", i, ErrValidation)
		}
	}
	return nil
}
