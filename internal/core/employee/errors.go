package employee

import "errors"

var (
	ErrEmployeeNotFound          = errors.New("employee: not found")
	ErrEmployeeAlreadyExists     = errors.New("employee: already exists")
	ErrEmployeeCodeAlreadyExists = errors.New("employee: employee code already exists")
	ErrInvalidLeaveBalance       = errors.New("employee: invalid leave balance")
	ErrBalanceConflict           = errors.New("employee: leave balance changed concurrently")
	ErrArchivedEmployeeNotFound  = errors.New("employee: archived employee not found")
	ErrArchiveAlreadyExists      = errors.New("employee: archive already exists for resignation")
)
