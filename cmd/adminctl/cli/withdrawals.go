package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dta-platform/adminctl/internal/action"
	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/resource"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/view"
)

func newWithdrawalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdrawals",
		Short: "Review and settle withdrawal requests",
	}

	cmd.AddCommand(newWithdrawalsListCmd())
	cmd.AddCommand(newWithdrawalsApproveCmd())
	cmd.AddCommand(newWithdrawalsDeclineCmd())
	cmd.AddCommand(newWithdrawalsPaidCmd())
	cmd.AddCommand(newWithdrawalsExportCmd())

	return cmd
}

// ---------- withdrawals list ----------

func newWithdrawalsListCmd() *cobra.Command {
	var (
		status     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List withdrawal requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				store := resource.NewStore(client.ListWithdrawals)
				ws, err := store.Load(ctx)
				if err != nil {
					return err
				}

				if status != "" {
					criteria := view.Criteria{Exact: map[string]string{"status": status}}
					ws = view.Filter(ws, criteria, view.WithdrawalFields)
				}

				if jsonOutput {
					return printJSON(ws)
				}
				return view.WithdrawalsTable(ws, currencyGlyph()).Render(os.Stdout)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by exact status (pending, approved, declined, paid)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- withdrawals approve / decline / paid ----------

func newWithdrawalsApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithdrawalTransition("withdrawals.approve", args[0], "Withdrawal approved",
				func(client *api.Client) func(context.Context, string) error {
					return client.ApproveWithdrawal
				})
		},
	}
}

func newWithdrawalsDeclineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decline <id>",
		Short: "Decline a pending withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithdrawalTransition("withdrawals.decline", args[0], "Withdrawal declined",
				func(client *api.Client) func(context.Context, string) error {
					return client.DeclineWithdrawal
				})
		},
	}
}

func newWithdrawalsPaidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paid <id>",
		Short: "Mark an approved withdrawal as paid out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithdrawalTransition("withdrawals.paid", args[0], "Withdrawal marked as paid",
				func(client *api.Client) func(context.Context, string) error {
					return client.MarkWithdrawalPaid
				})
		},
	}
}

// runWithdrawalTransition shares the dispatch wiring between the three
// status verbs; only the endpoint and the success text differ.
func runWithdrawalTransition(name, id, success string, pick func(*api.Client) func(context.Context, string) error) error {
	return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
		call := pick(client)
		return dispatch(ctx, "withdrawals", action.Action{
			Name: name,
			Call: func(ctx context.Context) error {
				return call(ctx, id)
			},
			Refresh: func(ctx context.Context) error {
				ws, err := client.ListWithdrawals(ctx)
				if err != nil {
					return err
				}
				return view.WithdrawalsTable(ws, currencyGlyph()).Render(os.Stdout)
			},
			Success:             success,
			PreferServerMessage: true,
		})
	})
}

// ---------- withdrawals export ----------

func newWithdrawalsExportCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export withdrawals as CSV",
		Example: `  adminctl withdrawals export               # CSV to stdout
  adminctl withdrawals export -o payouts.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				ws, err := client.ListWithdrawals(ctx)
				if err != nil {
					return err
				}

				var out io.Writer = os.Stdout
				if outputFile != "" {
					f, err := os.Create(outputFile)
					if err != nil {
						return err
					}
					defer f.Close()
					out = f
				}
				if err := view.WithdrawalsCSV(out, ws); err != nil {
					return err
				}
				if outputFile != "" {
					fmt.Printf("Wrote %d withdrawals to %s\n", len(ws), outputFile)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write CSV to file instead of stdout")

	return cmd
}
