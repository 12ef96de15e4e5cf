package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/garazh/internal/logging"
	appmw "github.com/JonMunkholm/garazh/internal/web/middleware"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionResponse reports the login state. Token is only set on login,
// for clients that send a bearer header instead of the cookie.
type sessionResponse struct {
	LoggedIn  bool       `json:"loggedIn"`
	Username  string     `json:"username,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Token     string     `json:"token,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, maxBodySize, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	session, token, err := s.gate.Login(req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     appmw.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	logging.FromContext(r.Context()).Info("user logged in", "username", session.Username)

	writeJSON(w, http.StatusOK, sessionResponse{
		LoggedIn:  true,
		Username:  session.Username,
		ExpiresAt: &session.ExpiresAt,
		Token:     token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     appmw.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, sessionResponse{LoggedIn: false})
}

// handleSession reports whether the request carries a valid session.
// It never fails: an absent or invalid session is reported as logged out.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := appmw.SessionToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, sessionResponse{LoggedIn: false})
		return
	}
	session, err := s.gate.Verify(token)
	if err != nil {
		writeJSON(w, http.StatusOK, sessionResponse{LoggedIn: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		LoggedIn:  true,
		Username:  session.Username,
		ExpiresAt: &session.ExpiresAt,
	})
}
