// Package session holds the authenticated session as an explicit value that
// is passed to everything making API calls. Nothing reads tokens from
// ambient storage; the lifecycle is Init on login and Clear on logout or on
// the first 401.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Session struct {
	mu sync.Mutex

	token      string
	username   string
	obtainedAt time.Time

	// expiresAt is best-effort, sniffed from the token's exp claim without
	// verification (the client has no signing key). Zero when unknown.
	expiresAt time.Time
}

func New() *Session { return &Session{} }

// Init installs a fresh token after a successful login.
func (s *Session) Init(token, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.username = username
	s.obtainedAt = time.Now()
	s.expiresAt = sniffExpiry(token)
}

// Clear drops all credentials. Safe to call repeatedly.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.username = ""
	s.obtainedAt = time.Time{}
	s.expiresAt = time.Time{}
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Authenticated reports whether a token is present. It does not imply the
// backend will still accept it; a 401 remains the authoritative signal.
func (s *Session) Authenticated() bool {
	return strings.TrimSpace(s.Token()) != ""
}

// ExpiresAt returns the sniffed token expiry and whether one is known.
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt, !s.expiresAt.IsZero()
}

// Expired reports whether the token is known to be past its exp claim.
// Unknown expiry counts as not expired.
func (s *Session) Expired() bool {
	exp, ok := s.ExpiresAt()
	return ok && time.Now().After(exp)
}

// sniffExpiry decodes the exp claim without signature verification.
// Opaque (non-JWT) tokens yield a zero time.
func sniffExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
