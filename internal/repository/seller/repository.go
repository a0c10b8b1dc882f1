package seller

import (
	"context"

	"socialshop/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	GetByKey(ctx context.Context, key string) (*domain.Seller, error)
	Ensure(ctx context.Context, key, displayName, avatarURL string) (*domain.Seller, error)
	// IncrementTotalSales adds delta in one statement so concurrent buyers
	// cannot lose updates.
	IncrementTotalSales(ctx context.Context, id string, delta int64) error
}
