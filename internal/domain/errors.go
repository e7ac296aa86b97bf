package domain

import "github.com/pkg/errors"

// Error kinds surfaced to front ends. Callers match them with errors.Is.
var (
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrUserRejected        = errors.New("request rejected by user")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrReadFailure         = errors.New("auction read failed")
	ErrNotConnected        = errors.New("wallet not connected")
	ErrInvalidAmount       = errors.New("invalid amount")
)

type kindError struct {
	kind  error
	cause error
}

// WithKind tags cause with one of the error kinds above.
// The message keeps the cause; errors.Is matches both the kind and the cause.
func WithKind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	if errors.Is(cause, kind) {
		return cause
	}
	return &kindError{kind: kind, cause: cause}
}

func (e *kindError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}
