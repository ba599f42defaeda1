package handler

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/attendance"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/leave"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/lifecycle"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/resignation"
)

const dateLayout = "2006-01-02"

// NotificationInbox は受信者ごとの通知参照と既読化を提供します。
type NotificationInbox interface {
	ListByRecipient(ctx context.Context, filter notification.ListFilter) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, id string, readAt time.Time) error
}

// LifecycleGrpcHandler は LifecycleService の gRPC 実装です。
type LifecycleGrpcHandler struct {
	svc   lifecycle.UseCase
	inbox NotificationInbox
	now   func() time.Time
}

var _ LifecycleServiceServer = (*LifecycleGrpcHandler)(nil)

// NewLifecycleGrpcHandler は LifecycleGrpcHandler を生成します。
func NewLifecycleGrpcHandler(svc lifecycle.UseCase, inbox NotificationInbox) *LifecycleGrpcHandler {
	return &LifecycleGrpcHandler{
		svc:   svc,
		inbox: inbox,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ApproveResignation は退職申請を承認します。
func (h *LifecycleGrpcHandler) ApproveResignation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	result, err := h.svc.ApproveResignation(ctx, lifecycle.ApproveResignationInput{
		ResignationID: f.str("resignation_id"),
		ActorID:       f.str("actor_id"),
		Notes:         f.str("notes"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	message := "resignation approved and employee archived"
	if result.AlreadyApproved {
		message = "resignation was already approved"
	}
	return respond(message, map[string]any{
		"already_approved":  result.AlreadyApproved,
		"resignation":       resignationValue(result.Resignation),
		"archived_employee": archiveValue(result.ArchivedEmployee),
	})
}

// RejectResignation は退職申請を却下します。
func (h *LifecycleGrpcHandler) RejectResignation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	rejected, err := h.svc.RejectResignation(ctx, lifecycle.RejectResignationInput{
		ResignationID: f.str("resignation_id"),
		ActorID:       f.str("actor_id"),
		Reason:        f.str("reason"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond("resignation rejected", map[string]any{"resignation": resignationValue(rejected)})
}

// ReinstateEmployee はアーカイブ済み社員を再雇用します。
func (h *LifecycleGrpcHandler) ReinstateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	reinstated, err := h.svc.ReinstateEmployee(ctx, lifecycle.ReinstateEmployeeInput{
		ArchivedEmployeeID: f.str("archived_employee_id"),
		ActorID:            f.str("actor_id"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond("employee reinstated", map[string]any{"employee": employeeValue(reinstated)})
}

// PurgeArchivedEmployee はアーカイブを完全に削除します。
func (h *LifecycleGrpcHandler) PurgeArchivedEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	if err := h.svc.PurgeArchivedEmployee(ctx, lifecycle.PurgeArchivedEmployeeInput{
		ArchivedEmployeeID: f.str("archived_employee_id"),
		ActorID:            f.str("actor_id"),
	}); err != nil {
		return nil, toStatusError(err)
	}
	return respond("archived employee purged", nil)
}

// ApproveLeave は休暇申請を承認します。
func (h *LifecycleGrpcHandler) ApproveLeave(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	result, err := h.svc.ApproveLeave(ctx, lifecycle.ApproveLeaveInput{
		LeaveRequestID: f.str("leave_request_id"),
		ActorID:        f.str("actor_id"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	message := fmt.Sprintf("leave approved, %d day(s) deducted", result.DaysDeducted)
	if result.AlreadyApproved {
		message = "leave request was already approved"
	}
	return respond(message, map[string]any{
		"already_approved":  result.AlreadyApproved,
		"days_deducted":     result.DaysDeducted,
		"remaining_balance": result.RemainingBalance,
		"leave_request":     leaveValue(result.Request),
	})
}

// RejectLeave は休暇申請を却下します。
func (h *LifecycleGrpcHandler) RejectLeave(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	rejected, err := h.svc.RejectLeave(ctx, lifecycle.RejectLeaveInput{
		LeaveRequestID: f.str("leave_request_id"),
		ActorID:        f.str("actor_id"),
		Reason:         f.str("reason"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond("leave request rejected", map[string]any{"leave_request": leaveValue(rejected)})
}

// ClockIn は出勤を打刻します。
func (h *LifecycleGrpcHandler) ClockIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	loc, err := f.location()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	rec, err := h.svc.ClockIn(ctx, lifecycle.ClockInInput{
		EmployeeID: f.str("employee_id"),
		Location:   loc,
		Notes:      f.str("notes"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond("clocked in", map[string]any{"attendance": attendanceValue(rec)})
}

// ClockOut は退勤を打刻します。
func (h *LifecycleGrpcHandler) ClockOut(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	loc, err := f.location()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	rec, err := h.svc.ClockOut(ctx, lifecycle.ClockOutInput{
		EmployeeID: f.str("employee_id"),
		Location:   loc,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond("clocked out", map[string]any{"attendance": attendanceValue(rec)})
}

// ListNotifications は受信者宛ての通知を返します。
func (h *LifecycleGrpcHandler) ListNotifications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	recipient := f.str("recipient_id")
	if recipient == "" {
		return nil, status.Error(codes.InvalidArgument, "recipient_id is required")
	}
	limit, err := f.integer("limit")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	list, err := h.inbox.ListByRecipient(ctx, notification.ListFilter{
		RecipientID: recipient,
		UnreadOnly:  f.boolean("unread_only"),
		Limit:       limit,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(list))
	for _, n := range list {
		items = append(items, notificationValue(n))
	}
	return respond(fmt.Sprintf("%d notification(s)", len(items)), map[string]any{"notifications": items})
}

// MarkNotificationRead は通知を既読にします。
func (h *LifecycleGrpcHandler) MarkNotificationRead(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := fieldsOf(req).str("notification_id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "notification_id is required")
	}
	if err := h.inbox.MarkRead(ctx, id, h.now()); err != nil {
		return nil, toStatusError(err)
	}
	return respond("notification marked as read", nil)
}

type fields map[string]*structpb.Value

func fieldsOf(req *structpb.Struct) fields {
	if req == nil {
		return fields{}
	}
	return req.GetFields()
}

func (f fields) str(key string) string {
	return strings.TrimSpace(f[key].GetStringValue())
}

func (f fields) boolean(key string) bool {
	return f[key].GetBoolValue()
}

// integer は整数値のフィールドを読みます。未指定は 0 です。
func (f fields) integer(key string) (int, error) {
	v := f[key].GetNumberValue()
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be an integer, got %v", key, v)
	}
	return int(v), nil
}

func (f fields) finite(key string) (float64, error) {
	v := f[key].GetNumberValue()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number, got %v", key, v)
	}
	return v, nil
}

func (f fields) location() (*attendance.Location, error) {
	v, ok := f["location"]
	if !ok || v.GetStructValue() == nil {
		return nil, nil
	}
	loc := fields(v.GetStructValue().GetFields())
	lat, err := loc.finite("latitude")
	if err != nil {
		return nil, err
	}
	lon, err := loc.finite("longitude")
	if err != nil {
		return nil, err
	}
	return &attendance.Location{Latitude: lat, Longitude: lon, Label: loc.str("label")}, nil
}

func respond(message string, body map[string]any) (*structpb.Struct, error) {
	out := map[string]any{"success": true, "message": message}
	for k, v := range body {
		out[k] = v
	}
	res, err := structpb.NewStruct(out)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return res, nil
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timestamp(*t)
}

func date(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func employeeValue(e *employee.Employee) any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"id":            e.ID,
		"employee_code": e.EmployeeCode,
		"name":          e.Name,
		"email":         e.Email,
		"department":    e.Department,
		"position":      e.Position,
		"leave_balance": e.LeaveBalance,
		"login_enabled": e.LoginEnabled,
		"is_manager":    e.IsManager,
		"join_date":     date(e.JoinDate),
	}
}

func archiveValue(a *employee.ArchivedEmployee) any {
	if a == nil {
		return nil
	}
	return map[string]any{
		"id":                 a.ID,
		"employee_id":        a.EmployeeID,
		"resignation_id":     a.ResignationID,
		"resignation_date":   date(a.ResignationDate),
		"last_working_date":  date(a.LastWorkingDate),
		"resignation_reason": a.ResignationReason,
		"notes":              a.Notes,
		"archived_by":        a.ArchivedBy,
		"archived_at":        timestamp(a.ArchivedAt),
		"snapshot":           employeeValue(&a.Snapshot),
	}
}

func resignationValue(r *resignation.Resignation) any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"id":                r.ID,
		"employee_id":       r.EmployeeID,
		"resignation_date":  date(r.ResignationDate),
		"last_working_date": date(r.LastWorkingDate),
		"reason":            r.Reason,
		"status":            string(r.Status),
		"reviewed_by":       r.ReviewedBy,
		"reviewed_at":       optionalTimestamp(r.ReviewedAt),
	}
}

func leaveValue(r *leave.Request) any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"id":          r.ID,
		"employee_id": r.EmployeeID,
		"type":        string(r.Type),
		"start_date":  date(r.StartDate),
		"end_date":    date(r.EndDate),
		"days":        r.EffectiveDays(),
		"status":      string(r.Status),
		"reviewed_by": r.ReviewedBy,
		"reviewed_at": optionalTimestamp(r.ReviewedAt),
	}
}

func attendanceValue(r *attendance.Record) any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"id":          r.ID,
		"employee_id": r.EmployeeID,
		"work_date":   date(r.WorkDate),
		"clock_in":    timestamp(r.ClockIn),
		"clock_out":   optionalTimestamp(r.ClockOut),
		"status":      string(r.Status),
		"notes":       r.Notes,
	}
}

func notificationValue(n *notification.Notification) any {
	payload := make(map[string]any, len(n.Payload))
	for k, v := range n.Payload {
		payload[k] = v
	}
	return map[string]any{
		"id":         n.ID,
		"type":       string(n.Type),
		"title":      n.Title,
		"message":    n.Message,
		"payload":    payload,
		"read":       n.Read,
		"created_at": timestamp(n.CreatedAt),
	}
}
