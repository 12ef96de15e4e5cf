package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/garazh/internal/auth"
)

type stubVerifier struct {
	token string
	err   error
}

func (v stubVerifier) Verify(token string) (auth.Session, error) {
	if v.err != nil {
		return auth.Session{}, v.err
	}
	if token != v.token {
		return auth.Session{}, auth.ErrSessionRequired
	}
	return auth.Session{Username: "admin"}, nil
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name     string
		verifier stubVerifier
		prepare  func(*http.Request)
		want     int
	}{
		{"no token", stubVerifier{token: "good"}, func(*http.Request) {}, http.StatusUnauthorized},
		{"cookie", stubVerifier{token: "good"}, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
		}, http.StatusOK},
		{"bearer", stubVerifier{token: "good"}, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good")
		}, http.StatusOK},
		{"wrong token", stubVerifier{token: "good"}, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer bad")
		}, http.StatusUnauthorized},
		{"expired", stubVerifier{err: auth.ErrSessionExpired}, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
		}, http.StatusUnauthorized},
	}

	onError := func(w http.ResponseWriter, r *http.Request, err error) {
		assert.True(t, errors.Is(err, auth.ErrSessionRequired) || errors.Is(err, auth.ErrSessionExpired),
			"onError got %v", err)
		w.WriteHeader(http.StatusUnauthorized)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user string
			h := RequireSession(tt.verifier, onError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				s, _ := auth.SessionFrom(r.Context())
				user = s.Username
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "admin", user)
			}
		})
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted keeps remote", nil, "203.0.113.9:5555",
			map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.9:5555"},
		{"trusted real ip", []string{"10.0.0.0/8"}, "10.1.2.3:80",
			map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"trusted forwarded for", []string{"10.0.0.1"}, "10.0.0.1:80",
			map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.1"}, "5.6.7.8"},
		{"trusted invalid header", []string{"10.0.0.0/8"}, "10.1.2.3:80",
			map[string]string{"X-Real-IP": "nonsense"}, "10.1.2.3:80"},
		{"bad cidr skipped", []string{"not-a-cidr"}, "10.1.2.3:80",
			map[string]string{"X-Real-IP": "1.2.3.4"}, "10.1.2.3:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"192.0.2.1", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		assert.Equal(t, tt.want, ClientIP(req), "ClientIP(%q)", tt.remote)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/orders/9", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=404", "bytes=7", "path=/api/orders/9", "ip=192.0.2.1"} {
		assert.Contains(t, out, want)
	}
}
