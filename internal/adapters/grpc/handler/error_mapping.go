package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/attendance"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/leave"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/lifecycle"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/resignation"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/saga"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, saga.ErrManualIntervention):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidInput),
		errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, employee.ErrInvalidLeaveBalance),
		errors.Is(err, resignation.ErrInvalidStatus),
		errors.Is(err, notification.ErrInvalidRecipient):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrArchivedEmployeeNotFound),
		errors.Is(err, resignation.ErrResignationNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound),
		errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, employee.ErrEmployeeAlreadyExists),
		errors.Is(err, employee.ErrEmployeeCodeAlreadyExists),
		errors.Is(err, employee.ErrArchiveAlreadyExists),
		errors.Is(err, attendance.ErrAlreadyClockedIn):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, resignation.ErrStatusConflict),
		errors.Is(err, leave.ErrStatusConflict),
		errors.Is(err, employee.ErrBalanceConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrEmployeeMismatch),
		errors.Is(err, lifecycle.ErrAlreadyActive),
		errors.Is(err, attendance.ErrNoOpenSession):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
