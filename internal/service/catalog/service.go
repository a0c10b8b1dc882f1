package catalog

import (
	"context"
	"strings"

	"socialshop/internal/domain"

	"go.uber.org/zap"
)

type itemRepo interface {
	List(ctx context.Context, category string) ([]domain.ShopItem, error)
	GetByID(ctx context.Context, id string) (*domain.ShopItem, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type sellerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
}

// Cache is the read-through cache in front of single item and seller reads.
type Cache interface {
	Item(id string) (domain.ShopItem, bool)
	StoreItem(item domain.ShopItem)
	Seller(id string) (domain.Seller, bool)
	StoreSeller(seller domain.Seller)
}

type Service struct {
	items   itemRepo
	sellers sellerRepo
	cache   Cache
	logger  *zap.Logger
}

func New(items itemRepo, sellers sellerRepo, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{items: items, sellers: sellers, cache: cache, logger: logger}
}

func (s *Service) List(ctx context.Context, category string) ([]domain.ShopItem, error) {
	return s.items.List(ctx, strings.TrimSpace(category))
}

// Get returns the item, served from cache while it has not been invalidated
// by an order touching its stock.
func (s *Service) Get(ctx context.Context, id string) (*domain.ShopItem, error) {
	if s.cache != nil {
		if it, ok := s.cache.Item(id); ok {
			return &it, nil
		}
	}
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.StoreItem(*it)
	}
	return it, nil
}

func (s *Service) Seller(ctx context.Context, id string) (*domain.Seller, error) {
	if s.cache != nil {
		if sel, ok := s.cache.Seller(id); ok {
			return &sel, nil
		}
	}
	sel, err := s.sellers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.StoreSeller(*sel)
	}
	return sel, nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.items.Categories(ctx)
}
