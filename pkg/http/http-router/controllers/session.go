package controllers

import (
	"net/http"

	"github.com/lintang-b-s/drive-search/pkg/kvdb"
)

const SessionCookieName = "drive_search_session"

// sessionHelper maps the session cookie of a request to its server side session.
type sessionHelper struct {
	auth         AuthService
	secureCookie bool
}

// session returns the session of r. A fresh session is started, and its cookie set on w, when the
// request carries no known session id.
func (h *sessionHelper) session(w http.ResponseWriter, r *http.Request) (*kvdb.Session, error) {
	id := ""
	if c, err := r.Cookie(SessionCookieName); err == nil {
		id = c.Value
	}

	sess, err := h.auth.Session(id)
	if err != nil {
		return nil, err
	}
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, nil
}
