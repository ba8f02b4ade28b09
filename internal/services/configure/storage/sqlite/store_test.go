package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSaveGetDraftRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	input := storage.Draft{
		ID:        "draft-1",
		SessionID: "sess-1",
		Name:      "My Workflow Name",
		Config:    []byte(`{"dynamo":{"id":"my-workflow"}}`),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.SaveDraft(context.Background(), input); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	got, err := store.GetDraft(context.Background(), "draft-1")
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if got.SessionID != input.SessionID {
		t.Fatalf("session_id = %q, want %q", got.SessionID, input.SessionID)
	}
	if got.Name != input.Name {
		t.Fatalf("name = %q, want %q", got.Name, input.Name)
	}
	if string(got.Config) != string(input.Config) {
		t.Fatalf("config = %s, want %s", got.Config, input.Config)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, now)
	}
}

func TestSaveDraftUpserts(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	first := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	draft := storage.Draft{
		ID:        "draft-1",
		SessionID: "sess-1",
		Name:      "first",
		Config:    []byte(`{}`),
		CreatedAt: first,
		UpdatedAt: first,
	}
	if err := store.SaveDraft(context.Background(), draft); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	draft.Name = "second"
	draft.Config = []byte(`{"dynamo":{}}`)
	draft.UpdatedAt = first.Add(time.Minute)
	if err := store.SaveDraft(context.Background(), draft); err != nil {
		t.Fatalf("save draft again: %v", err)
	}

	got, err := store.GetDraft(context.Background(), "draft-1")
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if got.Name != "second" {
		t.Fatalf("name = %q, want %q", got.Name, "second")
	}
	if !got.CreatedAt.Equal(first) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, first)
	}
	if !got.UpdatedAt.Equal(first.Add(time.Minute)) {
		t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, first.Add(time.Minute))
	}
}

func TestGetDraftNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetDraft(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListDraftsNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	base := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	for ix, id := range []string{"draft-a", "draft-b", "draft-c"} {
		draft := storage.Draft{
			ID:        id,
			SessionID: "sess-1",
			Name:      id,
			Config:    []byte(`{}`),
			UpdatedAt: base.Add(time.Duration(ix) * time.Minute),
		}
		if err := store.SaveDraft(context.Background(), draft); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	drafts, err := store.ListDrafts(context.Background(), 2)
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}
	if drafts[0].ID != "draft-c" || drafts[1].ID != "draft-b" {
		t.Fatalf("order = %q, %q; want draft-c, draft-b", drafts[0].ID, drafts[1].ID)
	}
}

func TestDeleteDraft(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	draft := storage.Draft{ID: "draft-1", Config: []byte(`{}`)}
	if err := store.SaveDraft(context.Background(), draft); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if err := store.DeleteDraft(context.Background(), "draft-1"); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := store.GetDraft(context.Background(), "draft-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.DeleteDraft(context.Background(), "draft-1"); err != nil {
		t.Fatalf("delete missing draft: %v", err)
	}
}
