// Package storage defines persistence contracts for configuration drafts.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested draft record is missing.
var ErrNotFound = errors.New("record not found")

// Draft stores one autosaved workflow configuration.
type Draft struct {
	ID        string
	SessionID string
	Name      string
	Config    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DraftStore persists workflow configuration drafts.
type DraftStore interface {
	SaveDraft(ctx context.Context, draft Draft) error
	GetDraft(ctx context.Context, id string) (Draft, error)
	ListDrafts(ctx context.Context, limit int) ([]Draft, error)
	DeleteDraft(ctx context.Context, id string) error
	Close() error
}
