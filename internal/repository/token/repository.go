package token

import (
	"context"
	"time"
)

type Token struct {
	Token     string
	ProfileID string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes tokens past their expiry and reports how many went.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
