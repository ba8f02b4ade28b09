// Package sqlite provides a SQLite-backed draft storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/platform/storage/sqlitemigrate"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/storage"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists configuration drafts in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite draft store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveDraft inserts or updates one draft record.
func (s *Store) SaveDraft(ctx context.Context, draft storage.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(draft.ID)
	if id == "" {
		return fmt.Errorf("draft id is required")
	}
	if len(draft.Config) == 0 {
		return fmt.Errorf("draft config is required")
	}
	createdAt := draft.CreatedAt.UTC()
	updatedAt := draft.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if createdAt.IsZero() {
		createdAt = updatedAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO drafts (id, session_id, name, config, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   session_id = excluded.session_id,
		   name = excluded.name,
		   config = excluded.config,
		   updated_at = excluded.updated_at`,
		id,
		strings.TrimSpace(draft.SessionID),
		strings.TrimSpace(draft.Name),
		string(draft.Config),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// GetDraft returns one draft by ID.
func (s *Store) GetDraft(ctx context.Context, id string) (storage.Draft, error) {
	if err := ctx.Err(); err != nil {
		return storage.Draft{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Draft{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Draft{}, fmt.Errorf("draft id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, session_id, name, config, created_at, updated_at
		   FROM drafts
		  WHERE id = ?`,
		id,
	)

	var draft storage.Draft
	var config string
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&draft.ID,
		&draft.SessionID,
		&draft.Name,
		&config,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Draft{}, storage.ErrNotFound
		}
		return storage.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	draft.Config = []byte(config)
	draft.CreatedAt = fromMillis(createdAt)
	draft.UpdatedAt = fromMillis(updatedAt)
	return draft, nil
}

// ListDrafts returns the most recently updated drafts, newest first.
func (s *Store) ListDrafts(ctx context.Context, limit int) ([]storage.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, session_id, name, config, created_at, updated_at
		   FROM drafts
		  ORDER BY updated_at DESC, id ASC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	drafts := make([]storage.Draft, 0, limit)
	for rows.Next() {
		var draft storage.Draft
		var config string
		var createdAt int64
		var updatedAt int64
		if err := rows.Scan(
			&draft.ID,
			&draft.SessionID,
			&draft.Name,
			&config,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("list drafts: %w", err)
		}
		draft.Config = []byte(config)
		draft.CreatedAt = fromMillis(createdAt)
		draft.UpdatedAt = fromMillis(updatedAt)
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// DeleteDraft removes one draft by ID. Deleting a missing draft is not an
// error.
func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("draft id is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

var _ storage.DraftStore = (*Store)(nil)
