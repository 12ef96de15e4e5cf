package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newGate(t *testing.T, c *clock) *Gate {
	t.Helper()
	g, err := NewGate(Config{
		Username: "admin",
		Password: "admin123",
		Secret:   "test-secret",
		TTL:      12 * time.Hour,
		Now:      c.now,
	})
	require.NoError(t, err)
	return g
}

func TestNewGate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"password", Config{Username: "admin", Password: "x"}, false},
		{"no username", Config{Password: "x"}, true},
		{"no password", Config{Username: "admin"}, true},
		{"bad hash", Config{Username: "admin", PasswordHash: "not-bcrypt"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGate(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewGate_Defaults(t *testing.T) {
	g, err := NewGate(Config{Username: "admin", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, DefaultTTL, g.TTL())
	assert.Len(t, g.secret, 32)
}

func TestLogin(t *testing.T) {
	g := newGate(t, &clock{t: t0})

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  error
	}{
		{"valid", "admin", "admin123", nil},
		{"wrong password", "admin", "nope", ErrInvalidCredentials},
		{"wrong user", "root", "admin123", ErrInvalidCredentials},
		{"empty", "", "", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, token, err := g.Login(tt.user, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.True(t, s.ExpiresAt.Equal(t0.Add(12*time.Hour)), "ExpiresAt = %v", s.ExpiresAt)
		})
	}
}

func TestLogin_WithPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	g, err := NewGate(Config{Username: "garage", PasswordHash: string(hash), Secret: "k"})
	require.NoError(t, err)

	_, _, err = g.Login("garage", "s3cret")
	assert.NoError(t, err)
}

func TestVerify(t *testing.T) {
	c := &clock{t: t0}
	g := newGate(t, c)
	_, token, err := g.Login("admin", "admin123")
	require.NoError(t, err)

	s, err := g.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", s.Username)

	_, err = g.Verify("Bearer " + token)
	assert.NoError(t, err)

	c.t = t0.Add(13 * time.Hour)
	_, err = g.Verify(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestVerify_Rejects(t *testing.T) {
	c := &clock{t: t0}
	g := newGate(t, c)
	_, token, err := g.Login("admin", "admin123")
	require.NoError(t, err)

	other, err := NewGate(Config{Username: "admin", Password: "admin123", Secret: "other", Now: c.now})
	require.NoError(t, err)

	tests := []struct {
		name  string
		gate  *Gate
		token string
	}{
		{"empty", g, ""},
		{"garbage", g, "not.a.token"},
		{"tampered", g, token + "x"},
		{"other secret", other, token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gate.Verify(tt.token)
			assert.ErrorIs(t, err, ErrSessionRequired)
		})
	}
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), Session{Username: "admin"})
	s, ok := SessionFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "admin", s.Username)
}
