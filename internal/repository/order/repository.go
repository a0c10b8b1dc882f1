package order

import (
	"context"

	"socialshop/internal/domain"
)

type Repository interface {
	GenerateOrderNumber(ctx context.Context) (string, error)
	// Insert writes the header keyed by its submission id. Inserting the same
	// submission again returns the row written the first time.
	Insert(ctx context.Context, header domain.OrderHeader) (*domain.OrderHeader, error)
	InsertLines(ctx context.Context, orderID string, lines []domain.OrderLine) error
	GetByID(ctx context.Context, buyerID, id string) (*domain.OrderHeader, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.OrderHeader, error)
}
