package item

import (
	"context"

	"socialshop/internal/domain"
)

type Repository interface {
	List(ctx context.Context, category string) ([]domain.ShopItem, error)
	GetByID(ctx context.Context, id string) (*domain.ShopItem, error)
	Upsert(ctx context.Context, item domain.ShopItem) (*domain.ShopItem, error)
	// DecrementStock subtracts quantity in a single conditional update and
	// returns domain.ErrInsufficientStock when fewer units are left.
	DecrementStock(ctx context.Context, itemID string, quantity int) error
	Categories(ctx context.Context) ([]domain.Category, error)
}
