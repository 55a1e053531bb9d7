package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/model"
	"github.com/dta-platform/adminctl/internal/session"
	"github.com/dta-platform/adminctl/internal/validate"
)

// ---------- login ----------

func newLoginCmd() *cobra.Command {
	var (
		url         string
		email       string
		password    string
		profileName string
		attempts    int
		delay       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the platform admin API",
		Long: `Authenticate with admin credentials and persist the session token.
The token is stored on a named profile under the data dir; every later
command uses the current profile's token until logout.`,
		Example: `  adminctl login --url https://api.example.com --email admin@example.com
  adminctl login --email admin@example.com   # reuse the saved profile's URL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(url, email, password, profileName, attempts, delay)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Backend base URL (saved on the profile)")
	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.Flags().StringVar(&profileName, "profile", "default", "Session profile name")
	cmd.Flags().IntVar(&attempts, "retry-attempts", 0, "Request retry attempts (default 3)")
	cmd.Flags().DurationVar(&delay, "retry-delay", 0, "Pause between retry attempts (default 1s)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runLogin(url, email, password, profileName string, attempts int, delay time.Duration) error {
	ctx := context.Background()

	store, err := openSessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	profile, err := store.GetProfile(ctx, profileName)
	created := false
	if errors.Is(err, session.ErrNotFound) {
		profile = &session.Profile{
			Name:     profileName,
			FieldMap: model.DefaultFieldMap(),
		}
		created = true
	} else if err != nil {
		return err
	}

	if url != "" {
		profile.BaseURL = url
	}
	if profile.BaseURL == "" {
		return fmt.Errorf("no backend URL saved for profile %q; pass --url", profileName)
	}
	if attempts > 0 {
		profile.RetryAttempts = attempts
	}
	if delay > 0 {
		profile.RetryDelay = delay
	}

	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)
	}

	if err := validate.Login(email, password); err != nil {
		return err
	}

	// Login is the one unauthenticated call; no token source yet.
	client := api.New(clientConfig(profile), nil)
	result, err := client.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.Message != "" {
			return errors.New(httpErr.Message)
		}
		return err
	}

	profile.BearerToken = result.Token
	if created {
		if err := store.CreateProfile(ctx, profile); err != nil {
			return err
		}
	} else {
		if err := store.UpdateProfile(ctx, profile); err != nil {
			return err
		}
	}
	if err := store.SetCurrent(ctx, profileName); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (profile %q, %s)\n", email, profileName, profile.BaseURL)
	return nil
}

// ---------- logout ----------

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Destroy the current session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
}

func runLogout() error {
	ctx := context.Background()

	store, err := openSessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	profile, err := store.CurrentProfile(ctx)
	if errors.Is(err, session.ErrNotFound) {
		fmt.Println("Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := store.ClearToken(ctx, profile.Name); err != nil {
		return err
	}
	fmt.Printf("Logged out (profile %q).\n", profile.Name)
	return nil
}

// ---------- status ----------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check backend reachability and token validity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	err := withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
		admin, err := client.Profile(ctx)
		if err != nil {
			var httpErr *api.HTTPError
			if errors.As(err, &httpErr) && httpErr.Status == 401 {
				fmt.Printf("Profile %q (%s): token rejected, log in again.\n", profile.Name, profile.BaseURL)
				return nil
			}
			var netErr *api.NetworkError
			if errors.As(err, &netErr) {
				fmt.Printf("Profile %q (%s): backend unreachable.\n", profile.Name, profile.BaseURL)
				return nil
			}
			return err
		}
		fmt.Printf("Profile %q (%s): logged in as %s.\n", profile.Name, profile.BaseURL, admin.Email)
		return nil
	})
	if errors.Is(err, errNotLoggedIn) {
		fmt.Println("Not logged in.")
		return nil
	}
	return err
}
