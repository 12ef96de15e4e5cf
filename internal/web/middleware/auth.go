package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/garazh/internal/auth"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "garazh_session"

// Verifier validates a session token.
type Verifier interface {
	Verify(token string) (auth.Session, error)
}

// ErrorWriter renders an error response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireSession returns middleware that only lets requests with a valid
// session through. The token is read from the session cookie, then from a
// bearer Authorization header. The session is stored in the request context.
func RequireSession(v Verifier, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				onError(w, r, auth.ErrSessionRequired)
				return
			}

			s, err := v.Verify(token)
			if err != nil {
				slog.Warn("auth: session rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
		})
	}
}

// SessionToken returns the token presented with r, or "".
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
