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
	"github.com/dta-platform/adminctl/internal/resource"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/validate"
	"github.com/dta-platform/adminctl/internal/view"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage platform users",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersShowCmd())
	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersStatusCmd())
	cmd.AddCommand(newUsersDeleteCmd())
	cmd.AddCommand(newUsersResetPasswordCmd())
	cmd.AddCommand(newUsersConfirmEmailCmd())
	cmd.AddCommand(newUsersResendConfirmationCmd())
	cmd.AddCommand(newUsersPendingCmd())

	return cmd
}

// ---------- users list ----------

func newUsersListCmd() *cobra.Command {
	var (
		search     string
		status     string
		level      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Example: `  adminctl users list
  adminctl users list --search ada --status active
  adminctl users list --level 2 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				store := resource.NewStore(client.ListUsers)
				users, err := store.Load(ctx)
				if err != nil {
					return err
				}

				criteria := view.Criteria{
					Text:  map[string]string{},
					Exact: map[string]string{},
				}
				if search != "" {
					criteria.Text["name"] = search
				}
				if status != "" {
					criteria.Exact["status"] = status
				}
				if level != "" {
					criteria.Exact["level"] = level
				}
				users = view.Filter(users, criteria, view.UserFields)

				if jsonOutput {
					return printJSON(users)
				}
				return view.UsersTable(users).Render(os.Stdout)
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Substring match on name")
	cmd.Flags().StringVar(&status, "status", "", "Filter by exact status")
	cmd.Flags().StringVar(&level, "level", "", "Filter by exact level")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- users show ----------

func newUsersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				user, err := client.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(user)
			})
		},
	}
}

// ---------- users create ----------

func newUsersCreateCmd() *cobra.Command {
	var nu model.NewUser

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new user",
		Long: `Register a user on the platform. The signup fee is derived from the
level: level 1 costs 15000, and the fee doubles per level above that.`,
		Example: `  adminctl users create --name "Ada Obi" --username ada --email ada@example.com --level 1
  adminctl users create --name "Ada Obi" --username ada --email ada@example.com --level 2 --referral-code BAYO1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersCreate(nu)
		},
	}

	cmd.Flags().StringVar(&nu.Name, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&nu.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&nu.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&nu.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&nu.Password, "password", "", "Initial password (prompted if omitted)")
	cmd.Flags().StringVar(&nu.ReferralCode, "referral-code", "", "Referrer's code")
	cmd.Flags().IntVar(&nu.Level, "level", 1, "Membership level")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runUsersCreate(nu model.NewUser) error {
	return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
		if nu.Password == "" {
			fmt.Print("Password: ")
			pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Println()
			nu.Password = string(pwBytes)
		}
		nu.Amount = model.UpgradeAmount(nu.Level)

		return dispatch(ctx, "users", action.Action{
			Name:     "users.create",
			Validate: func() error { return validate.NewUser(nu) },
			Call: func(ctx context.Context) error {
				return client.CreateUser(ctx, nu)
			},
			Refresh:             refreshUsers(client),
			Success:             "User registered successfully",
			PreferServerMessage: true,
		})
	})
}

// ---------- users status ----------

func newUsersStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <id> <active|suspended|pending>",
		Short: "Change a user's account status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				id, status := args[0], args[1]
				return dispatch(ctx, "users", action.Action{
					Name:     "users.status",
					Validate: func() error { return validate.UserStatus(status) },
					Call: func(ctx context.Context) error {
						return client.UpdateUserStatus(ctx, id, status)
					},
					Refresh: refreshUsers(client),
					Success: fmt.Sprintf("User status set to %s", status),
				})
			})
		},
	}
	return cmd
}

// ---------- users delete ----------

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				id := args[0]
				return dispatch(ctx, "users", action.Action{
					Name:    "users.delete",
					Confirm: fmt.Sprintf("Delete user %s? This cannot be undone.", id),
					Call: func(ctx context.Context) error {
						return client.DeleteUser(ctx, id)
					},
					Refresh: refreshUsers(client),
					Success: "User deleted",
				})
			})
		},
	}
}

// ---------- users reset-password ----------

func newUsersResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <id>",
		Short: "Send a password reset email to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				return dispatch(ctx, "users", action.Action{
					Name: "users.reset-password",
					Call: func(ctx context.Context) error {
						return client.ResetPassword(ctx, args[0])
					},
					Success: "Password reset email sent",
				})
			})
		},
	}
}

// ---------- users confirm-email ----------

func newUsersConfirmEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm-email <id>",
		Short: "Confirm a user's email on their behalf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				return dispatch(ctx, "users", action.Action{
					Name: "users.confirm-email",
					Call: func(ctx context.Context) error {
						return client.ConfirmEmail(ctx, args[0])
					},
					Refresh: refreshUsers(client),
					Success: "Email confirmed",
				})
			})
		},
	}
}

// ---------- users resend-confirmation ----------

func newUsersResendConfirmationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend-confirmation <id>",
		Short: "Resend the confirmation email to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				return dispatch(ctx, "users", action.Action{
					Name: "users.resend-confirmation",
					Call: func(ctx context.Context) error {
						return client.ResendConfirmation(ctx, args[0])
					},
					Success: "Confirmation email sent",
				})
			})
		},
	}
}

// ---------- users pending ----------

func newUsersPendingCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List users with unconfirmed email addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				users, err := client.PendingConfirmations(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(users)
				}
				return view.PendingConfirmationsTable(users).Render(os.Stdout)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// refreshUsers re-fetches the user list after a successful mutation and
// prints the updated table.
func refreshUsers(client *api.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		users, err := client.ListUsers(ctx)
		if err != nil {
			return err
		}
		return view.UsersTable(users).Render(os.Stdout)
	}
}
