package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/resource"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/view"
)

func newEmailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Outbound email log",
	}

	cmd.AddCommand(newEmailsListCmd())

	return cmd
}

func newEmailsListCmd() *cobra.Command {
	var (
		kind       string
		recipient  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sent emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				store := resource.NewStore(client.ListEmailLogs)
				logs, err := store.Load(ctx)
				if err != nil {
					return err
				}

				criteria := view.Criteria{
					Text:  map[string]string{},
					Exact: map[string]string{},
				}
				if kind != "" {
					criteria.Exact["type"] = kind
				}
				if recipient != "" {
					criteria.Text["recipient"] = recipient
				}
				logs = view.Filter(logs, criteria, view.EmailFields)

				if jsonOutput {
					return printJSON(logs)
				}
				return view.EmailLogsTable(logs).Render(os.Stdout)
			})
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Filter by exact email type")
	cmd.Flags().StringVar(&recipient, "recipient", "", "Substring match on recipient")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
