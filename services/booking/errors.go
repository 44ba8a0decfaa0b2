package booking

import (
	"errors"
	"fmt"
)

// FlowError is a typed failure inside the booking flow. Code values mirror
// the error taxonomy the handlers translate into spoken fallbacks.
type FlowError struct {
	Code    string
	Message string
}

const (
	CodeServiceUnavailable = "serviceUnavailable"
	CodeNotFound           = "notFound"
	CodeUnconfigured       = "unconfigured"
	CodeInvalidTransition  = "invalidTransition"
)

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewServiceUnavailable(msg string) error {
	return &FlowError{Code: CodeServiceUnavailable, Message: msg}
}

func NewNotFound(msg string) error {
	return &FlowError{Code: CodeNotFound, Message: msg}
}

func NewUnconfigured(msg string) error {
	return &FlowError{Code: CodeUnconfigured, Message: msg}
}

func NewInvalidTransition(msg string) error {
	return &FlowError{Code: CodeInvalidTransition, Message: msg}
}

// IsNotFound reports whether err carries the notFound code.
func IsNotFound(err error) bool {
	var fe *FlowError
	return errors.As(err, &fe) && fe.Code == CodeNotFound
}
