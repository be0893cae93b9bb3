package middleware

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/logging"
	"github.com/JonMunkholm/usercount/internal/session"
)

type sessionKey struct{}

type sessionState struct {
	sess    *session.Session
	expired bool
}

// SessionCookie is the cookie configuration of the Session middleware.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Session attaches the browser's session to the request, starting a new one
// when the cookie is missing or names a session that has expired.
func Session(store *session.Store, cookie SessionCookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cookie.Name); err == nil {
				id = c.Value
			}

			sess, created := store.GetOrCreate(id)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     cookie.Name,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cookie.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				if id != "" {
					logging.FromContext(r.Context()).Info("session expired, started new one",
						"old_session_id", id, "session_id", sess.ID)
				}
			}

			ctx := r.Context()
			setLogSessionID(ctx, sess.ID)
			ctx = core.ContextWithSessionID(ctx, sess.ID)
			ctx = context.WithValue(ctx, sessionKey{}, &sessionState{sess: sess, expired: created && id != ""})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by Session.
func SessionFrom(ctx context.Context) (*session.Session, error) {
	st, ok := ctx.Value(sessionKey{}).(*sessionState)
	if !ok || st.sess == nil {
		return nil, session.ErrSessionNotFound
	}
	return st.sess, nil
}

// SessionExpired reports whether the request's cookie named a session that
// no longer exists, so its files are gone.
func SessionExpired(ctx context.Context) bool {
	st, ok := ctx.Value(sessionKey{}).(*sessionState)
	return ok && st.expired
}
