package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/dta-platform/adminctl/internal/action"
	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/notify"
	"github.com/dta-platform/adminctl/internal/session"
)

// Persistent flag values set on the root command.
var (
	dataDir string
	verbose bool
)

// resolveDataDir returns the data directory from --data-dir flag,
// ADMINCTL_DATA_DIR env var, or ~/.adminctl as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("ADMINCTL_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.adminctl"
}

// openSessionStore opens the SQLite session store under the data dir.
func openSessionStore() (*session.Store, error) {
	return session.NewStore(resolveDataDir())
}

// newLogger builds the command logger; --verbose lowers the level to debug.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// errNotLoggedIn is what every authenticated command reports when no
// session token is available.
var errNotLoggedIn = errors.New("not logged in; run 'adminctl login' first")

// clientConfig maps a saved profile onto the API client knobs.
func clientConfig(p *session.Profile) api.Config {
	cfg := api.DefaultConfig(p.BaseURL)
	if p.RetryAttempts > 0 {
		cfg.RetryAttempts = p.RetryAttempts
	}
	if p.RetryDelay > 0 {
		cfg.RetryDelay = p.RetryDelay
	}
	if p.FieldMap != nil {
		cfg.FieldMap = p.FieldMap
	}
	return cfg
}

// withClient opens the session store, loads the current profile, and hands
// an authenticated client to fn. The profile itself is the token source, so
// fn sees whatever token login last persisted.
func withClient(fn func(ctx context.Context, client *api.Client, profile *session.Profile) error) error {
	ctx := context.Background()

	store, err := openSessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	profile, err := store.CurrentProfile(ctx)
	if errors.Is(err, session.ErrNotFound) {
		return errNotLoggedIn
	}
	if err != nil {
		return err
	}
	if profile.BearerToken == "" {
		return errNotLoggedIn
	}

	client := api.New(clientConfig(profile), profile)
	return fn(ctx, client, profile)
}

// terminalConfirmer prompts on stdout and reads a y/N answer from stdin.
func terminalConfirmer() action.Confirmer {
	return action.ConfirmerFunc(func(ctx context.Context, prompt string) (bool, error) {
		fmt.Printf("%s [y/N]: ", prompt)
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}

// dispatch runs one mutation under the console's uniform policy. A declined
// confirmation is not an error from the operator's point of view.
func dispatch(ctx context.Context, slot string, a action.Action) error {
	surface := notify.New(os.Stdout)
	surface.Register(slot)
	a.Slot = slot

	d := action.NewDispatcher(surface, terminalConfirmer())
	err := d.Run(ctx, a)
	if errors.Is(err, action.ErrDeclined) {
		fmt.Println("Aborted.")
		return nil
	}
	return err
}

// currencyGlyph returns the glyph used for money columns. Overridable via
// the currency_glyph config key or ADMINCTL_CURRENCY_GLYPH.
func currencyGlyph() string {
	if g := viper.GetString("currency_glyph"); g != "" {
		return g
	}
	return "₦"
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
