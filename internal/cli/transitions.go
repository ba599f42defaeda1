package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/adapters/grpc/handler"
)

func transitionCommands(opts *RootOptions) []*cobra.Command {
	resignationCmd := &cobra.Command{Use: "resignation", Short: "Decide pending resignations"}
	resignationCmd.AddCommand(
		actorCommand(opts, "approve <resignation-id>", "Approve a pending resignation and archive the employee",
			handler.MethodApproveResignation, "resignation_id", "notes"),
		actorCommand(opts, "reject <resignation-id>", "Reject a pending resignation",
			handler.MethodRejectResignation, "resignation_id", "reason"),
	)

	employeeCmd := &cobra.Command{Use: "employee", Short: "Manage archived employees"}
	employeeCmd.AddCommand(
		actorCommand(opts, "reinstate <archived-employee-id>", "Rehire an archived employee",
			handler.MethodReinstateEmployee, "archived_employee_id", ""),
		actorCommand(opts, "purge-archive <archived-employee-id>", "Permanently delete an archived employee",
			handler.MethodPurgeArchivedEmployee, "archived_employee_id", ""),
	)

	leaveCmd := &cobra.Command{Use: "leave", Short: "Decide pending leave requests"}
	leaveCmd.AddCommand(
		actorCommand(opts, "approve <leave-request-id>", "Approve a pending leave request",
			handler.MethodApproveLeave, "leave_request_id", ""),
		actorCommand(opts, "reject <leave-request-id>", "Reject a pending leave request",
			handler.MethodRejectLeave, "leave_request_id", "reason"),
	)

	attendanceCmd := &cobra.Command{Use: "attendance", Short: "Record attendance sessions"}
	attendanceCmd.AddCommand(
		clockCommand(opts, "clock-in <employee-id>", "Open today's attendance session", handler.MethodClockIn, true),
		clockCommand(opts, "clock-out <employee-id>", "Close today's attendance session", handler.MethodClockOut, false),
	)

	return []*cobra.Command{resignationCmd, employeeCmd, leaveCmd, attendanceCmd}
}

// actorCommand は承認者を必要とする遷移コマンドを生成します。
// textField が空でなければ同名のフラグを受け付けます。
func actorCommand(opts *RootOptions, use, short, method, idField, textField string) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Actor == "" {
				return fmt.Errorf("--actor is required")
			}
			req := map[string]any{idField: args[0], "actor_id": opts.Actor}
			if textField != "" && text != "" {
				req[textField] = text
			}
			return opts.invoke(cmd, method, req)
		},
	}
	if textField != "" {
		cmd.Flags().StringVar(&text, textField, "", textField+" to record with the decision")
	}
	return cmd
}

func clockCommand(opts *RootOptions, use, short, method string, withNotes bool) *cobra.Command {
	var (
		lat, lon float64
		label    string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"employee_id": args[0]}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				req["location"] = map[string]any{"latitude": lat, "longitude": lon, "label": label}
			}
			if notes != "" {
				req["notes"] = notes
			}
			return opts.invoke(cmd, method, req)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the clock location")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude of the clock location")
	cmd.Flags().StringVar(&label, "label", "", "label for the clock location")
	if withNotes {
		cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	}
	return cmd
}

// NewNotificationsCommand は通知の参照と既読化のコマンドを生成します。
func NewNotificationsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List or acknowledge notifications",
	}

	var (
		unread bool
		limit  int
	)
	list := &cobra.Command{
		Use:   "list <recipient-id>",
		Short: "List notifications for a recipient, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.invoke(cmd, handler.MethodListNotifications, map[string]any{
				"recipient_id": args[0],
				"unread_only":  unread,
				"limit":        limit,
			})
		},
	}
	list.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of notifications")

	read := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.invoke(cmd, handler.MethodMarkNotificationRead, map[string]any{"notification_id": args[0]})
		},
	}

	cmd.AddCommand(list, read)
	return cmd
}
