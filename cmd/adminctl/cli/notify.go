package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dta-platform/adminctl/internal/action"
	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/validate"
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Broadcast notifications to connected consoles",
	}

	cmd.AddCommand(newNotifySendCmd())

	return cmd
}

func newNotifySendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "send <message>",
		Short:   "Broadcast a notification to every connected console",
		Example: `  adminctl notify send "Payouts run at 18:00 today"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				return dispatch(ctx, "notify", action.Action{
					Name: "notify.send",
					Validate: func() error {
						if strings.TrimSpace(message) == "" {
							return &validate.ValidationError{Message: "Notification message must not be empty"}
						}
						return nil
					},
					Call: func(ctx context.Context) error {
						return client.SendBroadcast(ctx, message)
					},
					Success: "Notification sent",
				})
			})
		},
	}

	return cmd
}
