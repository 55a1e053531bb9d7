// Package session persists console state between invocations: named backend
// profiles (base URL, bearer token, retry policy, dashboard schema) and
// loose key/value settings. Backed by SQLite under the data dir so that a
// token written by `adminctl login` is visible to every later command.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dta-platform/adminctl/internal/model"
)

// Profile is one saved backend target. At most one profile is current at a
// time; the current profile supplies the base URL and bearer token for every
// authenticated command.
type Profile struct {
	ID            int64
	Name          string
	BaseURL       string
	BearerToken   string
	RetryAttempts int
	RetryDelay    time.Duration
	FieldMap      model.FieldMap
	IsCurrent     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Token implements api.TokenSource.
func (p *Profile) Token() string { return p.BearerToken }

// Store manages profiles and settings backed by SQLite.
type Store struct {
	db *sqlx.DB
}

// NewStore opens the session store. Pass empty string for in-memory.
func NewStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "adminctl.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate session database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// profileRow maps 1:1 to the profiles table. Profile's FieldMap and
// RetryDelay don't scan directly, so rows are converted explicitly.
type profileRow struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	BaseURL       string    `db:"base_url"`
	BearerToken   string    `db:"bearer_token"`
	RetryAttempts int       `db:"retry_attempts"`
	RetryDelayMs  int64     `db:"retry_delay_ms"`
	FieldMapJSON  string    `db:"field_map_json"`
	IsCurrent     bool      `db:"is_current"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func profileRowFromModel(p *Profile) (profileRow, error) {
	fm := p.FieldMap
	if fm == nil {
		fm = model.DefaultFieldMap()
	}
	fmJSON, err := json.Marshal(fm)
	if err != nil {
		return profileRow{}, fmt.Errorf("marshal field map: %w", err)
	}
	return profileRow{
		ID:            p.ID,
		Name:          p.Name,
		BaseURL:       p.BaseURL,
		BearerToken:   p.BearerToken,
		RetryAttempts: p.RetryAttempts,
		RetryDelayMs:  p.RetryDelay.Milliseconds(),
		FieldMapJSON:  string(fmJSON),
		IsCurrent:     p.IsCurrent,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func (r profileRow) toModel() (Profile, error) {
	var fm model.FieldMap
	if r.FieldMapJSON != "" {
		if err := json.Unmarshal([]byte(r.FieldMapJSON), &fm); err != nil {
			return Profile{}, fmt.Errorf("unmarshal field map: %w", err)
		}
	}
	if fm == nil {
		fm = model.DefaultFieldMap()
	}
	return Profile{
		ID:            r.ID,
		Name:          r.Name,
		BaseURL:       r.BaseURL,
		BearerToken:   r.BearerToken,
		RetryAttempts: r.RetryAttempts,
		RetryDelay:    time.Duration(r.RetryDelayMs) * time.Millisecond,
		FieldMap:      fm,
		IsCurrent:     r.IsCurrent,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

// CreateProfile inserts a new profile. The ID, CreatedAt, and UpdatedAt
// fields on p are populated after a successful insert.
func (s *Store) CreateProfile(ctx context.Context, p *Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.RetryAttempts < 1 {
		p.RetryAttempts = 3
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = time.Second
	}

	row, err := profileRowFromModel(p)
	if err != nil {
		return err
	}

	const q = `INSERT INTO profiles
		(name, base_url, bearer_token, retry_attempts, retry_delay_ms, field_map_json, is_current, created_at, updated_at)
		VALUES
		(:name, :base_url, :bearer_token, :retry_attempts, :retry_delay_ms, :field_map_json, :is_current, :created_at, :updated_at)`

	result, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get profile id: %w", err)
	}
	p.ID = id
	return nil
}

// GetProfile returns a profile by its unique name.
func (s *Store) GetProfile(ctx context.Context, name string) (*Profile, error) {
	var row profileRow
	if err := s.db.GetContext(ctx, &row, "SELECT * FROM profiles WHERE name = ?", name); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CurrentProfile returns the profile marked current, or ErrNotFound when no
// profile has been selected yet.
func (s *Store) CurrentProfile(ctx context.Context) (*Profile, error) {
	var row profileRow
	if err := s.db.GetContext(ctx, &row, "SELECT * FROM profiles WHERE is_current = 1"); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get current profile: %w", err)
	}
	p, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns all saved profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	var rows []profileRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM profiles ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := make([]Profile, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// SetCurrent marks the named profile current and clears the flag everywhere
// else, within one transaction.
func (s *Store) SetCurrent(ctx context.Context, name string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "UPDATE profiles SET is_current = 0 WHERE is_current = 1"); err != nil {
		return fmt.Errorf("clear current profile: %w", err)
	}
	result, err := tx.ExecContext(ctx,
		"UPDATE profiles SET is_current = 1, updated_at = ? WHERE name = ?", time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("set current profile: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set current profile rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// SetToken stores the bearer token obtained by login on the named profile.
func (s *Store) SetToken(ctx context.Context, name, token string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET bearer_token = ?, updated_at = ? WHERE name = ?",
		token, time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set token rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearToken destroys the session credential (logout).
func (s *Store) ClearToken(ctx context.Context, name string) error {
	return s.SetToken(ctx, name, "")
}

// UpdateProfile updates an existing profile's connection settings. The
// UpdatedAt field is refreshed automatically.
func (s *Store) UpdateProfile(ctx context.Context, p *Profile) error {
	p.UpdatedAt = time.Now().UTC()
	row, err := profileRowFromModel(p)
	if err != nil {
		return err
	}

	const q = `UPDATE profiles SET
		name = :name, base_url = :base_url, bearer_token = :bearer_token,
		retry_attempts = :retry_attempts, retry_delay_ms = :retry_delay_ms,
		field_map_json = :field_map_json, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProfile removes a profile by name.
func (s *Store) DeleteProfile(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSetting returns a loose key/value setting, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	if err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting upserts a loose key/value setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
