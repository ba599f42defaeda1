package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification: not found")
	ErrInvalidRecipient     = errors.New("notification: invalid recipient")
)
