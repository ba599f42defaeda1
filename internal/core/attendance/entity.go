package attendance

import "time"

// Status は勤怠記録の状態です。
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// Record は社員 1 人 1 日分の勤怠記録です。退勤は同じ記録の更新として扱います。
type Record struct {
	ID         string
	EmployeeID string
	WorkDate   time.Time
	ClockIn    time.Time
	ClockOut   *time.Time
	Status     Status
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsOpen は退勤が未記録かどうかを返します。
func (r *Record) IsOpen() bool {
	return r != nil && r.ClockOut == nil
}

// Location は打刻時の位置情報です。
type Location struct {
	Latitude  float64
	Longitude float64
	Label     string
}

// AppendNote は既存のメモに一行追加した文字列を返します。
func AppendNote(existing, line string) string {
	if line == "" {
		return existing
	}
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
