package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTaskNotFound is returned when no task has the requested ID.
var ErrTaskNotFound = errors.New("task not found")

// Validation messages returned to API clients.
const (
	MsgTitleRequired   = "Title is required"
	MsgTitleEmpty      = "Title cannot be empty"
	MsgNoData          = "No data provided"
	MsgInvalidDueDate  = "Invalid due_date format. Use ISO format."
	MsgInvalidPayload  = "Request body must be a JSON object"
	msgPriorityPrefix  = "Priority must be one of: "
	msgSortOrderPrefix = "Sort must be one of: "
)

// ValidationError reports malformed, missing or out-of-range input.
// Message is safe to show to API clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidPriorityError returns the error listing every accepted priority.
func InvalidPriorityError() error {
	names := make([]string, len(Priorities))
	for i, p := range Priorities {
		names[i] = string(p)
	}
	return &ValidationError{Message: msgPriorityPrefix + strings.Join(names, ", ")}
}

// InternalError wraps an unexpected store or runtime failure.
// Its message is the underlying error's message.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Internal wraps err as an InternalError unless it already carries a kind.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return err
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

// Kind classifies errors so they can cross the service bus intact.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrTaskNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// FromKind rebuilds a typed error from a kind and message received over the bus.
func FromKind(kind Kind, message string) error {
	switch kind {
	case KindValidation:
		return &ValidationError{Message: message}
	case KindNotFound:
		return ErrTaskNotFound
	default:
		return &InternalError{Op: "remote", Err: errors.New(message)}
	}
}
