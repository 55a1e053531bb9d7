package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dta-platform/adminctl/internal/action"
	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/model"
	"github.com/dta-platform/adminctl/internal/resource"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/validate"
	"github.com/dta-platform/adminctl/internal/view"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage platform tasks",
	}

	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksCreateCmd())
	cmd.AddCommand(newTasksArchiveCmd())
	cmd.AddCommand(newTasksUnarchiveCmd())
	cmd.AddCommand(newTasksDeleteCmd())

	return cmd
}

// ---------- tasks list ----------

func newTasksListCmd() *cobra.Command {
	var (
		search     string
		status     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				store := resource.NewStore(client.ListTasks)
				tasks, err := store.Load(ctx)
				if err != nil {
					return err
				}

				criteria := view.Criteria{
					Text:  map[string]string{},
					Exact: map[string]string{},
				}
				if search != "" {
					criteria.Text["title"] = search
				}
				if status != "" {
					criteria.Exact["status"] = status
				}
				tasks = view.Filter(tasks, criteria, view.TaskFields)

				if jsonOutput {
					return printJSON(tasks)
				}
				return view.TasksTable(tasks).Render(os.Stdout)
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Substring match on title")
	cmd.Flags().StringVar(&status, "status", "", "Filter by exact status")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- tasks create ----------

func newTasksCreateCmd() *cobra.Command {
	var nt model.NewTask

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		Example: `  adminctl tasks create --title "Follow us on X" --link https://x.com/platform
  adminctl tasks create --title "Join Telegram" --link https://t.me/platform --status archived`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				return dispatch(ctx, "tasks", action.Action{
					Name:     "tasks.create",
					Validate: func() error { return validate.NewTask(nt) },
					Call: func(ctx context.Context) error {
						return client.CreateTask(ctx, nt)
					},
					Refresh: refreshTasks(client),
					Success: "Task created",
				})
			})
		},
	}

	cmd.Flags().StringVar(&nt.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&nt.Link, "link", "", "Task target URL (required)")
	cmd.Flags().StringVar(&nt.Status, "status", "active", "Initial status (active or archived)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("link")

	return cmd
}

// ---------- tasks archive / unarchive / delete ----------

func newTasksArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a task so users no longer see it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				return dispatch(ctx, "tasks", action.Action{
					Name: "tasks.archive",
					Call: func(ctx context.Context) error {
						return client.ArchiveTask(ctx, args[0])
					},
					Refresh: refreshTasks(client),
					Success: "Task archived",
				})
			})
		},
	}
}

func newTasksUnarchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <id>",
		Short: "Restore an archived task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				return dispatch(ctx, "tasks", action.Action{
					Name: "tasks.unarchive",
					Call: func(ctx context.Context) error {
						return client.UnarchiveTask(ctx, args[0])
					},
					Refresh: refreshTasks(client),
					Success: "Task restored",
				})
			})
		},
	}
}

func newTasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
				id := args[0]
				return dispatch(ctx, "tasks", action.Action{
					Name:    "tasks.delete",
					Confirm: fmt.Sprintf("Delete task %s? This cannot be undone.", id),
					Call: func(ctx context.Context) error {
						return client.DeleteTask(ctx, id)
					},
					Refresh: refreshTasks(client),
					Success: "Task deleted",
				})
			})
		},
	}
}

func refreshTasks(client *api.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		tasks, err := client.ListTasks(ctx)
		if err != nil {
			return err
		}
		return view.TasksTable(tasks).Render(os.Stdout)
	}
}
