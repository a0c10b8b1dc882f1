package profile

import (
	"context"

	"socialshop/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}
