package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/live"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/view"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Platform dashboard counters",
	}

	cmd.AddCommand(newDashboardShowCmd())
	cmd.AddCommand(newDashboardWatchCmd())

	return cmd
}

// ---------- dashboard show ----------

func newDashboardShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current dashboard counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				stats, err := client.DashboardStats(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(stats)
				}
				view.RenderStats(os.Stdout, stats, currencyGlyph())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- dashboard watch ----------

func newDashboardWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live dashboard updates over WebSocket",
		Long: `Print the current counters, then keep following the backend's push
channel: dashboard updates overwrite the counters, broadcast notifications
are printed as they arrive. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboardWatch()
		},
	}
}

func runDashboardWatch() error {
	return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		stats, err := client.DashboardStats(ctx)
		if err != nil {
			return err
		}
		view.RenderStats(os.Stdout, stats, currencyGlyph())
		fmt.Println()

		channel, err := live.Dial(ctx, profile.BaseURL, profile.BearerToken, profile.FieldMap)
		if err != nil {
			return fmt.Errorf("connect push channel: %w", err)
		}
		defer channel.Close()

		fmt.Println("Watching for updates (Ctrl-C to stop)...")
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-channel.Events():
				if !ok {
					if err := channel.Err(); err != nil {
						return fmt.Errorf("push channel closed: %w", err)
					}
					return nil
				}
				switch ev.Name {
				case live.EventDashboardUpdate:
					fmt.Println()
					view.RenderStats(os.Stdout, ev.Stats, currencyGlyph())
				case live.EventNotification:
					fmt.Printf("• %s\n", ev.Notice.Message)
				}
			}
		}
	})
}
