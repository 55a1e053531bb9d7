package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dta-platform/adminctl/internal/model"
	"github.com/dta-platform/adminctl/internal/validate"
)

// registerTools registers every admin tool on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Read tools -----

	srv.AddTool(
		mcp.NewTool("admin_dashboard_stats",
			mcp.WithDescription(
				"Get the platform's aggregate dashboard counters: total users, "+
					"total earnings, task completions, and pending withdrawals.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleDashboardStats,
	)

	srv.AddTool(
		mcp.NewTool("admin_list_users",
			mcp.WithDescription(
				"List all platform members with their level, status, invite count, "+
					"and completed-task count.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		listHandler(s, s.client.ListUsers),
	)

	srv.AddTool(
		mcp.NewTool("admin_get_user",
			mcp.WithDescription("Get one member record by its identifier."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The user's record identifier"),
			),
		),
		s.handleGetUser,
	)

	srv.AddTool(
		mcp.NewTool("admin_pending_confirmations",
			mcp.WithDescription("List members still awaiting email confirmation."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		listHandler(s, s.client.PendingConfirmations),
	)

	srv.AddTool(
		mcp.NewTool("admin_list_tasks",
			mcp.WithDescription("List all tasks with completion counts and status."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		listHandler(s, s.client.ListTasks),
	)

	srv.AddTool(
		mcp.NewTool("admin_list_withdrawals",
			mcp.WithDescription("List all member withdrawal requests with amount, date, and status."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		listHandler(s, s.client.ListWithdrawals),
	)

	srv.AddTool(
		mcp.NewTool("admin_list_referrals",
			mcp.WithDescription(
				"List referral activity per member, including the suspicious flag "+
					"from the platform's fraud checks.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		listHandler(s, s.client.ListReferrals),
	)

	srv.AddTool(
		mcp.NewTool("admin_list_upgrades",
			mcp.WithDescription("List level-upgrade payments awaiting review, with amount and status."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		listHandler(s, s.client.ListUpgrades),
	)

	srv.AddTool(
		mcp.NewTool("admin_list_admins",
			mcp.WithDescription("List console administrator accounts."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		listHandler(s, s.client.ListAdmins),
	)

	srv.AddTool(
		mcp.NewTool("admin_list_emails",
			mcp.WithDescription("List the outbound email audit trail (type, recipient, timestamp)."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		listHandler(s, s.client.ListEmailLogs),
	)

	srv.AddTool(
		mcp.NewTool("admin_upgrade_fee",
			mcp.WithDescription(
				"Compute the signup or upgrade fee for a membership level. "+
					"Level 1 costs 15000; the fee doubles per level above that.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("level",
				mcp.Required(),
				mcp.Description("Membership level, 1-based"),
			),
		),
		s.handleUpgradeFee,
	)

	// ----- Mutation tools -----

	srv.AddTool(
		mcp.NewTool("admin_create_user",
			mcp.WithDescription(
				"Register a platform member. The signup fee is derived from the "+
					"level automatically, so only the level is needed.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
			mcp.WithString("username", mcp.Required(), mcp.Description("Unique username")),
			mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
			mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number")),
			mcp.WithString("password", mcp.Required(), mcp.Description("Initial password")),
			mcp.WithNumber("level", mcp.Required(), mcp.Description("Membership level, 1-based")),
			mcp.WithString("referral_code", mcp.Description("Optional referrer code")),
		),
		s.handleCreateUser,
	)

	srv.AddTool(
		mcp.NewTool("admin_update_user_status",
			mcp.WithDescription("Set a member's status to active, pending, suspended, or verified."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The user's record identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("New status")),
		),
		s.handleUpdateUserStatus,
	)

	srv.AddTool(
		mcp.NewTool("admin_delete_user",
			mcp.WithDescription("Permanently delete a member account. This cannot be undone."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The user's record identifier")),
		),
		idHandler(s, s.client.DeleteUser, "User deleted"),
	)

	srv.AddTool(
		mcp.NewTool("admin_reset_password",
			mcp.WithDescription("Send a password reset email to a member."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The user's record identifier")),
		),
		idHandler(s, s.client.ResetPassword, "Password reset email sent"),
	)

	srv.AddTool(
		mcp.NewTool("admin_confirm_email",
			mcp.WithDescription("Confirm a pending member's email on their behalf."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The user's record identifier")),
		),
		idHandler(s, s.client.ConfirmEmail, "Email confirmed"),
	)

	srv.AddTool(
		mcp.NewTool("admin_resend_confirmation",
			mcp.WithDescription("Resend the confirmation email to a pending member."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The user's record identifier")),
		),
		idHandler(s, s.client.ResendConfirmation, "Confirmation email sent"),
	)

	srv.AddTool(
		mcp.NewTool("admin_create_task",
			mcp.WithDescription("Create a platform task. New tasks start active."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title, at least three characters")),
			mcp.WithString("link", mcp.Required(), mcp.Description("Task URL; the scheme is optional")),
		),
		s.handleCreateTask,
	)

	srv.AddTool(
		mcp.NewTool("admin_archive_task",
			mcp.WithDescription("Archive a task so members no longer see it."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The task's record identifier")),
		),
		idHandler(s, s.client.ArchiveTask, "Task archived"),
	)

	srv.AddTool(
		mcp.NewTool("admin_unarchive_task",
			mcp.WithDescription("Reactivate an archived task."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The task's record identifier")),
		),
		idHandler(s, s.client.UnarchiveTask, "Task unarchived"),
	)

	srv.AddTool(
		mcp.NewTool("admin_delete_task",
			mcp.WithDescription("Permanently delete a task. This cannot be undone."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The task's record identifier")),
		),
		idHandler(s, s.client.DeleteTask, "Task deleted"),
	)

	srv.AddTool(
		mcp.NewTool("admin_approve_withdrawal",
			mcp.WithDescription("Approve a pending withdrawal request."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The withdrawal's record identifier")),
		),
		idHandler(s, s.client.ApproveWithdrawal, "Withdrawal approved"),
	)

	srv.AddTool(
		mcp.NewTool("admin_decline_withdrawal",
			mcp.WithDescription("Decline a pending withdrawal request."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The withdrawal's record identifier")),
		),
		idHandler(s, s.client.DeclineWithdrawal, "Withdrawal declined"),
	)

	srv.AddTool(
		mcp.NewTool("admin_mark_withdrawal_paid",
			mcp.WithDescription("Mark an approved withdrawal as paid out."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The withdrawal's record identifier")),
		),
		idHandler(s, s.client.MarkWithdrawalPaid, "Withdrawal marked as paid"),
	)

	srv.AddTool(
		mcp.NewTool("admin_approve_upgrade",
			mcp.WithDescription("Approve a pending level-upgrade payment, raising the member's level."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The upgrade's record identifier")),
		),
		idHandler(s, s.client.ApproveUpgrade, "Upgrade approved"),
	)

	srv.AddTool(
		mcp.NewTool("admin_reject_upgrade",
			mcp.WithDescription("Reject a pending level-upgrade payment."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id", mcp.Required(), mcp.Description("The upgrade's record identifier")),
		),
		idHandler(s, s.client.RejectUpgrade, "Upgrade rejected"),
	)

	srv.AddTool(
		mcp.NewTool("admin_invite_admin",
			mcp.WithDescription("Send an administrator invitation email."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("email", mcp.Required(), mcp.Description("Invitee email address")),
		),
		s.handleInviteAdmin,
	)

	srv.AddTool(
		mcp.NewTool("admin_send_broadcast",
			mcp.WithDescription("Broadcast a notification message to all connected members."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("message", mcp.Required(), mcp.Description("Notification text")),
		),
		s.handleSendBroadcast,
	)
}

// =========================================================================
// Tool handlers
// =========================================================================

// listHandler adapts a client list call into an MCP tool handler.
func listHandler[T any](s *MCPServer, list func(context.Context) ([]T, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := list(ctx)
		if err != nil {
			return toolError("Request failed: %v", err)
		}
		return successJSON(records)
	}
}

// idHandler adapts a client mutation keyed by record ID into a tool handler.
func idHandler(s *MCPServer, call func(context.Context, string) error, done string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireString(request, "id")
		if err != nil {
			return toolError("%v", err)
		}
		if err := call(ctx, id); err != nil {
			return toolError("Request failed: %v", err)
		}
		return successJSON(map[string]string{"result": done, "id": id})
	}
}

func (s *MCPServer) handleDashboardStats(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	stats, err := s.client.DashboardStats(ctx)
	if err != nil {
		return toolError("Request failed: %v", err)
	}
	return successJSON(stats)
}

func (s *MCPServer) handleGetUser(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	id, err := requireString(request, "id")
	if err != nil {
		return toolError("%v", err)
	}
	user, err := s.client.GetUser(ctx, id)
	if err != nil {
		return toolError("Request failed: %v", err)
	}
	return successJSON(user)
}

func (s *MCPServer) handleUpgradeFee(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	level, err := requireInt(request, "level")
	if err != nil {
		return toolError("%v", err)
	}
	return successJSON(map[string]interface{}{
		"level":  level,
		"amount": model.UpgradeAmount(level),
	})
}

func (s *MCPServer) handleCreateUser(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	nu := model.NewUser{
		Name:         optionalString(request, "name"),
		Username:     optionalString(request, "username"),
		Email:        optionalString(request, "email"),
		Phone:        optionalString(request, "phone"),
		Password:     optionalString(request, "password"),
		ReferralCode: optionalString(request, "referral_code"),
	}
	level, err := requireInt(request, "level")
	if err != nil {
		return toolError("%v", err)
	}
	nu.Level = level
	nu.Amount = model.UpgradeAmount(level)

	if err := validate.NewUser(nu); err != nil {
		return toolError("%v", err)
	}
	if err := s.client.CreateUser(ctx, nu); err != nil {
		return toolError("Request failed: %v", err)
	}
	return successJSON(map[string]interface{}{
		"result": "User registered",
		"email":  nu.Email,
		"level":  nu.Level,
		"amount": nu.Amount,
	})
}

func (s *MCPServer) handleUpdateUserStatus(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	id, err := requireString(request, "id")
	if err != nil {
		return toolError("%v", err)
	}
	status, err := requireString(request, "status")
	if err != nil {
		return toolError("%v", err)
	}
	if err := validate.UserStatus(status); err != nil {
		return toolError("%v. Valid statuses: %v", err, model.UserStatuses)
	}
	if err := s.client.UpdateUserStatus(ctx, id, status); err != nil {
		return toolError("Request failed: %v", err)
	}
	return successJSON(map[string]string{"result": "Status updated", "id": id, "status": status})
}

func (s *MCPServer) handleCreateTask(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	nt := model.NewTask{
		Title: optionalString(request, "title"),
		Link:  optionalString(request, "link"),
	}
	if err := validate.NewTask(nt); err != nil {
		return toolError("%v", err)
	}
	if err := s.client.CreateTask(ctx, nt); err != nil {
		return toolError("Request failed: %v", err)
	}
	return successJSON(map[string]string{"result": "Task created", "title": nt.Title})
}

func (s *MCPServer) handleInviteAdmin(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	email, err := requireString(request, "email")
	if err != nil {
		return toolError("%v", err)
	}
	if err := validate.Invite(email); err != nil {
		return toolError("%v", err)
	}
	if err := s.client.InviteAdmin(ctx, email); err != nil {
		return toolError("Request failed: %v", err)
	}
	return successJSON(map[string]string{"result": "Invitation sent", "email": email})
}

func (s *MCPServer) handleSendBroadcast(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	message, err := requireString(request, "message")
	if err != nil {
		return toolError("%v", err)
	}
	if err := s.client.SendBroadcast(ctx, message); err != nil {
		return toolError("Request failed: %v", err)
	}
	return successJSON(map[string]string{"result": "Notification sent"})
}
