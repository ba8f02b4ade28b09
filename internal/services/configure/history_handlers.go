package configure

import "net/http"

// redirectBack sends the browser back to the page the action was taken on.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get("Referer")
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleUndo reverts the most recent change to the configuration.
func (h *handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	sess := h.session(w, r)
	sess.Undo()
	h.autosave(r, sess)
	redirectBack(w, r)
}

// handleRedo reapplies the most recently undone change.
func (h *handler) handleRedo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	sess := h.session(w, r)
	sess.Redo()
	h.autosave(r, sess)
	redirectBack(w, r)
}

// handleRefresh clears the session's catalog cache so the next render
// reloads process and reference listings.
func (h *handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	sess := h.session(w, r)
	sess.Refresh()
	redirectBack(w, r)
}

// handleLogout discards the session and starts a fresh configuration.
func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		h.sessions.Delete(cookie.Value)
		h.discardDraft(r.Context(), cookie.Value)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
