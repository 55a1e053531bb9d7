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

func newReferralsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "referrals",
		Short: "Referral earnings per user",
	}

	cmd.AddCommand(newReferralsListCmd())

	return cmd
}

func newReferralsListCmd() *cobra.Command {
	var (
		search     string
		suspicious bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List referral summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				store := resource.NewStore(client.ListReferrals)
				rs, err := store.Load(ctx)
				if err != nil {
					return err
				}

				if search != "" {
					criteria := view.Criteria{Text: map[string]string{"user": search}}
					rs = view.Filter(rs, criteria, view.ReferralFields)
				}
				if suspicious {
					kept := rs[:0:0]
					for _, r := range rs {
						if r.IsSuspicious {
							kept = append(kept, r)
						}
					}
					rs = kept
				}

				if jsonOutput {
					return printJSON(rs)
				}
				return view.ReferralsTable(rs, currencyGlyph()).Render(os.Stdout)
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Substring match on user")
	cmd.Flags().BoolVar(&suspicious, "suspicious", false, "Only show flagged referrers")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
