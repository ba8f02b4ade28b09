package configure

import (
	"net/http"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/session"
)

const sessionCookieName = "cw_session"

// setSessionCookie writes the session cookie to the response.
func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// session resolves the editing session for the request, creating one (and
// issuing its cookie) when the request has none or it expired.
func (h *handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sess := h.sessions.Get(cookie.Value); sess != nil {
			return sess
		}
		// The cookie named an expired or unknown session; its draft
		// mapping is stale now.
		h.dropDraftID(cookie.Value)
	}
	sess := h.sessions.Create()
	setSessionCookie(w, sess.ID())
	return sess
}
