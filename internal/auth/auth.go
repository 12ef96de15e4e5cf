// Package auth implements the single shared login of the garage: one
// username and password, and signed session tokens.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRequired    = errors.New("session required")
	ErrSessionExpired     = errors.New("session expired")
)

const (
	issuer     = "garazh"
	DefaultTTL = 12 * time.Hour
)

// Config configures a Gate. PasswordHash, a bcrypt hash, takes precedence
// over Password. Without a Secret a random one is generated, so sessions do
// not survive a restart.
type Config struct {
	Username     string
	Password     string
	PasswordHash string
	Secret       string
	TTL          time.Duration
	Now          func() time.Time
}

// Session describes a logged in user.
type Session struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Gate checks credentials and issues and verifies session tokens.
type Gate struct {
	username string
	hash     []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewGate builds a gate from cfg.
func NewGate(cfg Config) (*Gate, error) {
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, errors.New("auth: username is required")
	}

	var hash []byte
	switch {
	case cfg.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("auth: invalid password hash: %w", err)
		}
		hash = []byte(cfg.PasswordHash)
	case cfg.Password != "":
		h, err := HashPassword(cfg.Password)
		if err != nil {
			return nil, err
		}
		hash = []byte(h)
	default:
		return nil, errors.New("auth: password or password hash is required")
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("auth: generate secret: %w", err)
		}
	}

	g := &Gate{
		username: cfg.Username,
		hash:     hash,
		secret:   secret,
		ttl:      cfg.TTL,
		now:      cfg.Now,
	}
	if g.ttl <= 0 {
		g.ttl = DefaultTTL
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g, nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// TTL returns how long an issued session stays valid.
func (g *Gate) TTL() time.Duration { return g.ttl }

// Login checks the credentials and returns a session with its signed token.
func (g *Gate) Login(username, password string) (Session, string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	// The hash is compared even for a wrong username so both cases take as long.
	passErr := bcrypt.CompareHashAndPassword(g.hash, []byte(password))
	if !userOK || passErr != nil {
		return Session{}, "", ErrInvalidCredentials
	}

	now := g.now().UTC().Truncate(time.Second)
	s := Session{Username: g.username, IssuedAt: now, ExpiresAt: now.Add(g.ttl)}
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   s.Username,
		IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign session: %w", err)
	}
	return s, token, nil
}

// Verify validates a token, with or without a "Bearer " prefix.
func (g *Gate) Verify(token string) (Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Session{}, ErrSessionRequired
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, ErrSessionRequired
	}
	if claims.Subject != g.username {
		return Session{}, ErrSessionRequired
	}

	s := Session{Username: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	return s, nil
}
