package resignation

import "errors"

var (
	ErrResignationNotFound = errors.New("resignation: not found")
	ErrInvalidStatus       = errors.New("resignation: invalid status")
	ErrStatusConflict      = errors.New("resignation: status changed concurrently")
)
