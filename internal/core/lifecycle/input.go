package lifecycle

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/attendance"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/leave"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/resignation"
)

// ApproveResignationInput は退職承認の入力です。
type ApproveResignationInput struct {
	ResignationID string
	ActorID       string
	Notes         string
	// Employee は呼び出し元が保持する最新の社員情報です。nil の場合はストアから取得します。
	Employee *employee.Employee
}

// Validate は入力を検証します。
func (in *ApproveResignationInput) Validate() error {
	in.ResignationID = strings.TrimSpace(in.ResignationID)
	in.ActorID = strings.TrimSpace(in.ActorID)
	return validation.ValidateStruct(in,
		validation.Field(&in.ResignationID, validation.Required),
		validation.Field(&in.ActorID, validation.Required),
	)
}

// ResignationApprovalResult は退職承認の結果です。
type ResignationApprovalResult struct {
	Resignation      *resignation.Resignation
	ArchivedEmployee *employee.ArchivedEmployee
	// AlreadyApproved は既に承認済みで何も変更しなかったことを示します。
	AlreadyApproved bool
}

// RejectResignationInput は退職申請却下の入力です。
type RejectResignationInput struct {
	ResignationID string
	ActorID       string
	Reason        string
}

// Validate は入力を検証します。
func (in *RejectResignationInput) Validate() error {
	in.ResignationID = strings.TrimSpace(in.ResignationID)
	in.ActorID = strings.TrimSpace(in.ActorID)
	return validation.ValidateStruct(in,
		validation.Field(&in.ResignationID, validation.Required),
		validation.Field(&in.ActorID, validation.Required),
		validation.Field(&in.Reason, validation.Length(0, 2000)),
	)
}

// ReinstateEmployeeInput は再雇用の入力です。
type ReinstateEmployeeInput struct {
	ArchivedEmployeeID string
	ActorID            string
}

// Validate は入力を検証します。
func (in *ReinstateEmployeeInput) Validate() error {
	in.ArchivedEmployeeID = strings.TrimSpace(in.ArchivedEmployeeID)
	in.ActorID = strings.TrimSpace(in.ActorID)
	return validation.ValidateStruct(in,
		validation.Field(&in.ArchivedEmployeeID, validation.Required),
		validation.Field(&in.ActorID, validation.Required),
	)
}

// PurgeArchivedEmployeeInput はアーカイブ完全削除の入力です。
type PurgeArchivedEmployeeInput struct {
	ArchivedEmployeeID string
	ActorID            string
}

// Validate は入力を検証します。
func (in *PurgeArchivedEmployeeInput) Validate() error {
	in.ArchivedEmployeeID = strings.TrimSpace(in.ArchivedEmployeeID)
	in.ActorID = strings.TrimSpace(in.ActorID)
	return validation.ValidateStruct(in,
		validation.Field(&in.ArchivedEmployeeID, validation.Required),
		validation.Field(&in.ActorID, validation.Required),
	)
}

// ApproveLeaveInput は休暇承認の入力です。
type ApproveLeaveInput struct {
	LeaveRequestID string
	ActorID        string
}

// Validate は入力を検証します。
func (in *ApproveLeaveInput) Validate() error {
	in.LeaveRequestID = strings.TrimSpace(in.LeaveRequestID)
	in.ActorID = strings.TrimSpace(in.ActorID)
	return validation.ValidateStruct(in,
		validation.Field(&in.LeaveRequestID, validation.Required),
		validation.Field(&in.ActorID, validation.Required),
	)
}

// LeaveApprovalResult は休暇承認の結果です。
type LeaveApprovalResult struct {
	Request          *leave.Request
	DaysDeducted     int
	RemainingBalance int
	AlreadyApproved  bool
}

// RejectLeaveInput は休暇却下の入力です。
type RejectLeaveInput struct {
	LeaveRequestID string
	ActorID        string
	Reason         string
}

// Validate は入力を検証します。
func (in *RejectLeaveInput) Validate() error {
	in.LeaveRequestID = strings.TrimSpace(in.LeaveRequestID)
	in.ActorID = strings.TrimSpace(in.ActorID)
	return validation.ValidateStruct(in,
		validation.Field(&in.LeaveRequestID, validation.Required),
		validation.Field(&in.ActorID, validation.Required),
		validation.Field(&in.Reason, validation.Length(0, 2000)),
	)
}

// ClockInInput は出勤打刻の入力です。
type ClockInInput struct {
	EmployeeID string
	Location   *attendance.Location
	Notes      string
}

// Validate は入力を検証します。
func (in *ClockInInput) Validate() error {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	return validation.ValidateStruct(in,
		validation.Field(&in.EmployeeID, validation.Required),
		validation.Field(&in.Location, validation.By(validateLocation)),
	)
}

// ClockOutInput は退勤打刻の入力です。
type ClockOutInput struct {
	EmployeeID string
	Location   *attendance.Location
}

// Validate は入力を検証します。
func (in *ClockOutInput) Validate() error {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	return validation.ValidateStruct(in,
		validation.Field(&in.EmployeeID, validation.Required),
		validation.Field(&in.Location, validation.By(validateLocation)),
	)
}

func validateLocation(value any) error {
	loc, _ := value.(*attendance.Location)
	if loc == nil {
		return nil
	}
	return validation.ValidateStruct(loc,
		validation.Field(&loc.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&loc.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

type validatable interface {
	Validate() error
}

func validate(in validatable) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
