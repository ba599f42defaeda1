package employee

import "time"

// Employee は在籍中の社員エンティティです。
type Employee struct {
	ID           string
	EmployeeCode string
	Name         string
	Email        string
	Phone        string
	Department   string
	Position     string
	BaseSalary   int64
	Allowance    int64
	LeaveBalance int
	LoginEnabled bool
	IsManager    bool
	JoinDate     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ArchivedEmployee は退職承認時点の社員スナップショットと退職情報です。
type ArchivedEmployee struct {
	ID                string
	EmployeeID        string
	Snapshot          Employee
	ResignationID     string
	ResignationDate   time.Time
	LastWorkingDate   time.Time
	ResignationReason string
	Notes             string
	ArchivedBy        string
	ArchivedAt        time.Time
}

// Clone は Employee のコピーを返します。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// Clone は ArchivedEmployee のコピーを返します。
func (a *ArchivedEmployee) Clone() *ArchivedEmployee {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
