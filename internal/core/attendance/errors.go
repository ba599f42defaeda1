package attendance

import "errors"

var (
	ErrRecordNotFound   = errors.New("attendance: record not found")
	ErrAlreadyClockedIn = errors.New("attendance: already clocked in today")
	ErrNoOpenSession    = errors.New("attendance: no open session")
)
