package lifecycle

import "errors"

var (
	ErrInvalidInput      = errors.New("lifecycle: invalid input")
	ErrInvalidTransition = errors.New("lifecycle: invalid status transition")
	ErrEmployeeMismatch  = errors.New("lifecycle: employee does not match request")
	ErrAlreadyActive     = errors.New("lifecycle: employee is already active")
)
