// Package auth carries the caller attributed to a request through its context.
package auth

import "context"

type ctxKey int

const (
	profileKey ctxKey = iota
	guestKey
)

// WithProfile marks ctx as belonging to a signed-in buyer.
func WithProfile(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, profileKey, profileID)
}

// WithGuest marks ctx as belonging to an anonymous shopper.
func WithGuest(ctx context.Context, guestID string) context.Context {
	return context.WithValue(ctx, guestKey, guestID)
}

func ProfileID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(profileKey).(string)
	return id, ok && id != ""
}

func GuestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(guestKey).(string)
	return id, ok && id != ""
}

// SessionKey names the cart session of the caller. A signed-in buyer wins
// over a guest token sent on the same request.
func SessionKey(ctx context.Context) (string, bool) {
	if id, ok := ProfileID(ctx); ok {
		return ProfileSession(id), true
	}
	if id, ok := GuestID(ctx); ok {
		return GuestSession(id), true
	}
	return "", false
}

func ProfileSession(profileID string) string { return "profile:" + profileID }
func GuestSession(guestID string) string     { return "guest:" + guestID }

// Identity resolves the buyer of an order. Guests have none.
type Identity struct{}

func (Identity) CurrentUser(ctx context.Context) (string, bool) {
	return ProfileID(ctx)
}
