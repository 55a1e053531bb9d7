package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dta-platform/adminctl/internal/action"
	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/validate"
	"github.com/dta-platform/adminctl/internal/view"
)

func newAdminsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage admin accounts",
	}

	cmd.AddCommand(newAdminsListCmd())
	cmd.AddCommand(newAdminsInviteCmd())

	return cmd
}

func newAdminsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				admins, err := client.ListAdmins(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(admins)
				}
				return view.AdminsTable(admins).Render(os.Stdout)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newAdminsInviteCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite a new admin by email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				return dispatch(ctx, "admins", action.Action{
					Name:     "admins.invite",
					Validate: func() error { return validate.Invite(email) },
					Call: func(ctx context.Context) error {
						return client.InviteAdmin(ctx, email)
					},
					Success:             "Invitation sent",
					PreferServerMessage: true,
				})
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Invitee email address (required)")
	cmd.MarkFlagRequired("email")

	return cmd
}
