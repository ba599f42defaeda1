package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave: request not found")
	ErrInvalidDateRange     = errors.New("leave: invalid date range")
	ErrStatusConflict       = errors.New("leave: status changed concurrently")
)
