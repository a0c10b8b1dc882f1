package auth

import (
	"context"
	"testing"
)

func TestSessionKey_PrefersProfile(t *testing.T) {
	ctx := WithGuest(context.Background(), "g1")
	if key, ok := SessionKey(ctx); !ok || key != "guest:g1" {
		t.Fatalf("expected guest session, got %q %v", key, ok)
	}
	ctx = WithProfile(ctx, "p1")
	if key, ok := SessionKey(ctx); !ok || key != "profile:p1" {
		t.Fatalf("expected profile session, got %q %v", key, ok)
	}
}

func TestIdentity_GuestIsNotAUser(t *testing.T) {
	ctx := WithGuest(context.Background(), "g1")
	if _, ok := (Identity{}).CurrentUser(ctx); ok {
		t.Fatalf("guest must not resolve to a buyer")
	}
	if _, ok := SessionKey(context.Background()); ok {
		t.Fatalf("empty context has no session")
	}
	id, ok := (Identity{}).CurrentUser(WithProfile(context.Background(), "p1"))
	if !ok || id != "p1" {
		t.Fatalf("expected p1, got %q %v", id, ok)
	}
}
