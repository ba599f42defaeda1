package resignation

import "time"

// Status は退職申請の状態を表します。
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusArchived Status = "Archived"
)

// Resignation は退職申請エンティティです。
type Resignation struct {
	ID              string
	EmployeeID      string
	ResignationDate time.Time
	LastWorkingDate time.Time
	Reason          string
	Status          Status
	ReviewedBy      string
	ReviewedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsSettled は承認済みとして扱える状態かどうかを返します。
func (s Status) IsSettled() bool {
	return s == StatusApproved || s == StatusArchived
}

// IsValid は既知の状態かどうかを返します。
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusArchived:
		return true
	default:
		return false
	}
}
