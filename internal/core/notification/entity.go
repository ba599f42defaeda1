package notification

import "time"

// Type は通知種別です。
type Type string

const (
	TypeResignationApproved Type = "resignation_approved"
	TypeResignationRejected Type = "resignation_rejected"
	TypeEmployeeReinstated  Type = "employee_reinstated"
	TypeLeaveApproved       Type = "leave_approved"
	TypeLeaveRejected       Type = "leave_rejected"
)

// Notification は受信者 1 人宛ての通知です。他のエンティティを変更することはありません。
type Notification struct {
	ID          string
	RecipientID string
	Type        Type
	Title       string
	Message     string
	Payload     map[string]any
	Read        bool
	ReadAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
