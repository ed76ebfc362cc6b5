package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", time.Minute)

	token, err := s.NewSession("acct-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	id, ok, err := s.GetAccountIDByToken(token)
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if !ok || id != "acct-1" {
		t.Fatalf("unexpected resolution: ok=%v id=%q", ok, id)
	}

	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, err := s.GetAccountIDByToken(token); err != nil || ok {
		t.Fatalf("expected token gone, ok=%v err=%v", ok, err)
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", time.Minute)

	token, err := s.NewSession("acct-2")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	redis.FastForward(2 * time.Minute)
	if _, ok, err := s.GetAccountIDByToken(token); err != nil || ok {
		t.Fatalf("expected expired token to resolve to nothing, ok=%v err=%v", ok, err)
	}
}

func TestRedisSessionStoreDeleteUnknownToken(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", time.Minute)
	if err := s.DeleteSession("missing"); err != nil {
		t.Fatalf("deleting unknown token should not fail: %v", err)
	}
}
