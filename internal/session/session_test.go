package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestLifecycle(t *testing.T) {
	s := New()
	if s.Authenticated() {
		t.Fatal("fresh session must not be authenticated")
	}

	s.Init("tok-1", "admin")
	if !s.Authenticated() || s.Token() != "tok-1" || s.Username() != "admin" {
		t.Fatalf("after init: token=%q username=%q", s.Token(), s.Username())
	}

	s.Clear()
	if s.Authenticated() || s.Token() != "" || s.Username() != "" {
		t.Fatal("clear must drop all credentials")
	}
	s.Clear() // repeat is fine
}

func TestExpirySniffedFromJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s := New()
	s.Init(signedToken(t, exp), "admin")

	got, ok := s.ExpiresAt()
	if !ok {
		t.Fatal("expected a sniffed expiry")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
	if s.Expired() {
		t.Fatal("token an hour from expiry must not count as expired")
	}
}

func TestExpiredToken(t *testing.T) {
	s := New()
	s.Init(signedToken(t, time.Now().Add(-time.Minute)), "admin")
	if !s.Expired() {
		t.Fatal("past exp claim must count as expired")
	}
}

func TestOpaqueTokenHasNoExpiry(t *testing.T) {
	s := New()
	s.Init("not-a-jwt", "admin")
	if _, ok := s.ExpiresAt(); ok {
		t.Fatal("opaque token must yield no expiry")
	}
	// Unknown expiry counts as not expired.
	if s.Expired() {
		t.Fatal("unknown expiry must not count as expired")
	}
}
