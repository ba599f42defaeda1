package employee

import "time"

// Departure は退職アーカイブに記録する情報です。
type Departure struct {
	ResignationID   string
	ResignationDate time.Time
	LastWorkingDate time.Time
	Reason          string
	Notes           string
	ArchivedBy      string
}

// Archive は社員の全項目をコピーしたアーカイブ行を組み立てます。ID は呼び出し側で採番します。
func Archive(id string, e *Employee, d Departure, archivedAt time.Time) *ArchivedEmployee {
	return &ArchivedEmployee{
		ID:                id,
		EmployeeID:        e.ID,
		Snapshot:          *e.Clone(),
		ResignationID:     d.ResignationID,
		ResignationDate:   normalizeDate(d.ResignationDate),
		LastWorkingDate:   normalizeDate(d.LastWorkingDate),
		ResignationReason: d.Reason,
		Notes:             d.Notes,
		ArchivedBy:        d.ArchivedBy,
		ArchivedAt:        archivedAt,
	}
}

// Rehire はアーカイブから新しい在籍社員を組み立てます。
// 再雇用として扱うため、休暇残日数は 0、ログインは無効、入社日は today になります。
func Rehire(a *ArchivedEmployee, today, now time.Time) *Employee {
	e := a.Snapshot
	e.ID = a.EmployeeID
	e.LeaveBalance = 0
	e.LoginEnabled = false
	e.JoinDate = normalizeDate(today)
	e.CreatedAt = now
	e.UpdatedAt = now
	return &e
}

func normalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
