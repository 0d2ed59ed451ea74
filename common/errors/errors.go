package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeLoadFailure  ErrorType = "LOAD_FAILURE"
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrTypeInternal     ErrorType = "INTERNAL"
	ErrTypeUnavailable  ErrorType = "UNAVAILABLE"
)

// DomainError carries a classified failure plus the stack where it was raised.
// Public is the message the backend wants shown to people; it may be empty.
type DomainError struct {
	Type    ErrorType
	Message string
	Public  string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

// WithPublic sets the user-facing message and returns the same error.
func (e *DomainError) WithPublic(message string) *DomainError {
	e.Public = message
	return e
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func LoadFailure(message string, err error) *DomainError {
	return New(ErrTypeLoadFailure, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

// Is reports whether err is a DomainError of the given type anywhere in its chain.
func Is(err error, errType ErrorType) bool {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type == errType
	}
	return false
}

// PublicMessage returns the first non-empty public message in err's chain,
// or fallback when there is none.
func PublicMessage(err error, fallback string) string {
	for err != nil {
		var de *DomainError
		if !stderrors.As(err, &de) {
			break
		}
		if de.Public != "" {
			return de.Public
		}
		err = de.Err
	}
	return fallback
}
