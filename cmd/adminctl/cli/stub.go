package cli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dta-platform/adminctl/internal/server"
	"github.com/dta-platform/adminctl/internal/service"
	"github.com/dta-platform/adminctl/internal/telemetry"
)

func newStubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Embedded stub backend for development",
	}

	cmd.AddCommand(newStubServeCmd())

	return cmd
}

func newStubServeCmd() *cobra.Command {
	var (
		host          string
		port          int
		adminEmail    string
		adminPassword string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the stub backend with seeded data",
		Long: `Start an in-memory stand-in for the platform backend: seeded users,
tasks, withdrawals, and upgrade requests, real JWT login, and a WebSocket
push channel. State resets on restart. Intended for development and demos,
never production.`,
		Example: `  adminctl stub serve
  adminctl stub serve --port 9090 --admin-email ops@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStubServe(host, port, adminEmail, adminPassword)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "HTTP listen host")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "Seeded admin login email")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "admin123", "Seeded admin login password")

	return cmd
}

func runStubServe(host string, port int, adminEmail, adminPassword string) error {
	logger := newLogger()

	jwtSecret := viper.GetString("jwt_secret")
	if jwtSecret == "" {
		jwtSecret = "adminctl-dev-secret-change-me"
	}

	authSvc := service.NewAuthService([]service.Credential{
		{
			AdminID:      "adm-1",
			Email:        adminEmail,
			PasswordHash: service.HashPassword(adminPassword),
		},
	}, jwtSecret, 24*time.Hour)

	cfg := server.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.ShutdownTimeout = 10 * time.Second

	data := server.SeedDataset()
	srv := server.New(cfg, data, authSvc, logger)

	var settings telemetry.SettingsStore
	if store, err := openSessionStore(); err == nil {
		defer store.Close()
		settings = store
	}
	tracker := telemetry.New(context.Background(), settings, func() telemetry.Properties {
		stats := data.Stats()
		return telemetry.Properties{
			Version:            versionString(),
			GoVersion:          runtime.Version(),
			OS:                 runtime.GOOS,
			Arch:               runtime.GOARCH,
			Users:              stats.TotalUsers,
			Tasks:              stats.TotalTasks,
			PendingWithdrawals: stats.PendingWithdrawals,
		}
	})
	if tracker != nil {
		telemetry.PrintNotice()
		tracker.Start()
		defer tracker.Shutdown()
	}

	fmt.Printf("→ adminctl stub backend %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ Login:      POST http://%s:%d/api/admin/login (%s)\n", host, port, adminEmail)
	fmt.Printf("→ Push feed:  ws://%s:%d/ws\n", host, port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}
