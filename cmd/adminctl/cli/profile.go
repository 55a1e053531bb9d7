package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dta-platform/adminctl/internal/action"
	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/model"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/validate"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "The logged-in admin's own account",
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileUpdateCmd())

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the logged-in admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				admin, err := client.Profile(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(admin)
				}
				fmt.Printf("Email:   %s\n", admin.Email)
				if admin.Contact != "" {
					fmt.Printf("Contact: %s\n", admin.Contact)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newProfileUpdateCmd() *cobra.Command {
	var (
		upd            model.ProfileUpdate
		changePassword bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update email, contact, or password",
		Example: `  adminctl profile update --email ops@example.com
  adminctl profile update --contact "+2348000000000" --change-password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				// Unchanged fields keep their current values.
				current, err := client.Profile(ctx)
				if err != nil {
					return err
				}
				if upd.Email == "" {
					upd.Email = current.Email
				}
				if upd.Contact == "" {
					upd.Contact = current.Contact
				}
				if changePassword {
					fmt.Print("New password: ")
					pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
					if err != nil {
						return fmt.Errorf("failed to read password: %w", err)
					}
					fmt.Println()
					upd.Password = string(pwBytes)
				}

				return dispatch(ctx, "profile", action.Action{
					Name:     "profile.update",
					Validate: func() error { return validate.Profile(upd) },
					Call: func(ctx context.Context) error {
						return client.UpdateProfile(ctx, upd)
					},
					Success:             "Profile updated",
					PreferServerMessage: true,
				})
			})
		},
	}

	cmd.Flags().StringVar(&upd.Email, "email", "", "New login email")
	cmd.Flags().StringVar(&upd.Contact, "contact", "", "New contact number")
	cmd.Flags().BoolVar(&changePassword, "change-password", false, "Prompt for a new password")

	return cmd
}
