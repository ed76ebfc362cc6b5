package store

import (
	"testing"
	"time"
)

func TestJWTSessionStoreRoundTrip(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Minute)
	token, err := s.NewSession("acct-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	id, ok, err := s.GetAccountIDByToken(token)
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if !ok || id != "acct-1" {
		t.Fatalf("unexpected resolution: ok=%v id=%q", ok, id)
	}
}

func TestJWTSessionStoreRejectsWrongSecret(t *testing.T) {
	s := NewJWTSessionStore("secret-a", time.Minute)
	token, err := s.NewSession("acct-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	other := NewJWTSessionStore("secret-b", time.Minute)
	if _, ok, err := other.GetAccountIDByToken(token); ok || err == nil {
		t.Fatalf("expected validation failure with wrong secret")
	}
}

func TestJWTSessionStoreRejectsExpired(t *testing.T) {
	s := NewJWTSessionStore("test-secret", -time.Minute)
	token, err := s.NewSession("acct-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, err := s.GetAccountIDByToken(token); ok || err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestJWTSessionStoreRejectsGarbage(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Minute)
	if _, ok, err := s.GetAccountIDByToken("not.a.jwt"); ok || err == nil {
		t.Fatalf("expected malformed token to be rejected")
	}
}
