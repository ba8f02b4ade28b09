package configure

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/storage"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/session"
)

// autosave persists the session's current configuration as a draft. A failed
// save is logged but never fails the request that triggered it.
func (h *handler) autosave(r *http.Request, sess *session.Session) {
	if h.drafts == nil {
		return
	}

	h.mu.Lock()
	draftID, ok := h.draftIDs[sess.ID()]
	if !ok {
		draftID = uuid.NewString()
		h.draftIDs[sess.ID()] = draftID
	}
	h.mu.Unlock()

	cfg := sess.Config()
	raw, err := cfg.MarshalSnapshot()
	if err != nil {
		log.Printf("autosave draft %s: %v", draftID, err)
		return
	}
	name := cfg.Dynamo.Name
	if name == "" {
		name = cfg.Dynamo.ID
	}
	draft := storage.Draft{
		ID:        draftID,
		SessionID: sess.ID(),
		Name:      name,
		Config:    raw,
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.drafts.SaveDraft(r.Context(), draft); err != nil {
		log.Printf("autosave draft %s: %v", draftID, err)
	}
}

// dropDraftID forgets the draft mapping for a session that no longer
// exists. The stored draft row is kept so abandoned work stays recoverable.
func (h *handler) dropDraftID(sessionID string) {
	h.mu.Lock()
	delete(h.draftIDs, sessionID)
	h.mu.Unlock()
}

// discardDraft removes a session's draft mapping and deletes its stored row.
func (h *handler) discardDraft(ctx context.Context, sessionID string) {
	h.mu.Lock()
	draftID, ok := h.draftIDs[sessionID]
	delete(h.draftIDs, sessionID)
	h.mu.Unlock()
	if !ok || h.drafts == nil {
		return
	}
	if err := h.drafts.DeleteDraft(ctx, draftID); err != nil {
		log.Printf("discard draft %s: %v", draftID, err)
	}
}
