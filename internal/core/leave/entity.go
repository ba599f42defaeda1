package leave

import "time"

// Status は休暇申請の状態を表します。
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Type は休暇種別です。
type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypeEmergency Type = "emergency"
	TypeUnpaid    Type = "unpaid"
)

// Request は休暇申請エンティティです。
type Request struct {
	ID         string
	EmployeeID string
	Type       Type
	StartDate  time.Time
	EndDate    time.Time
	// Days は保存済みの日数です。nil の場合は期間から再計算します。
	Days       *int
	Reason     string
	Status     Status
	ReviewedBy string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EffectiveDays は保存済みの日数が正の値ならそれを、そうでなければ期間から計算した日数を返します。
func (r *Request) EffectiveDays() int {
	if r.Days != nil && *r.Days > 0 {
		return *r.Days
	}
	return DayCount(r.StartDate, r.EndDate)
}
