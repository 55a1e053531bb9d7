package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dta-platform/adminctl/internal/action"
	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/resource"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/view"
)

func newUpgradesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrades",
		Short: "Review level upgrade requests",
	}

	cmd.AddCommand(newUpgradesListCmd())
	cmd.AddCommand(newUpgradesApproveCmd())
	cmd.AddCommand(newUpgradesRejectCmd())

	return cmd
}

func newUpgradesListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List upgrade requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				store := resource.NewStore(client.ListUpgrades)
				ups, err := store.Load(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(ups)
				}
				return view.UpgradesTable(ups, currencyGlyph()).Render(os.Stdout)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newUpgradesApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve an upgrade and bump the user's level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgradeTransition("upgrades.approve", args[0], "Upgrade approved",
				func(client *api.Client) func(context.Context, string) error {
					return client.ApproveUpgrade
				})
		},
	}
}

func newUpgradesRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject an upgrade request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgradeTransition("upgrades.reject", args[0], "Upgrade rejected",
				func(client *api.Client) func(context.Context, string) error {
					return client.RejectUpgrade
				})
		},
	}
}

func runUpgradeTransition(name, id, success string, pick func(*api.Client) func(context.Context, string) error) error {
	return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
		call := pick(client)
		return dispatch(ctx, "upgrades", action.Action{
			Name: name,
			Call: func(ctx context.Context) error {
				return call(ctx, id)
			},
			Refresh: func(ctx context.Context) error {
				ups, err := client.ListUpgrades(ctx)
				if err != nil {
					return err
				}
				return view.UpgradesTable(ups, currencyGlyph()).Render(os.Stdout)
			},
			Success:             success,
			PreferServerMessage: true,
		})
	})
}
