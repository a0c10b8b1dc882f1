package seed

import (
	"context"
	"fmt"

	"socialshop/internal/domain"
)

type SellerWriter interface {
	Ensure(ctx context.Context, key, displayName, avatarURL string) (*domain.Seller, error)
}

type ItemWriter interface {
	Upsert(ctx context.Context, item domain.ShopItem) (*domain.ShopItem, error)
}

type sellerSeed struct {
	Key         string
	DisplayName string
	AvatarURL   string
}

type itemSeed struct {
	Key                string
	SellerKey          string
	Title              string
	Description        string
	PriceCents         int64
	OriginalPriceCents int64
	Stock              int
	Category           string
	Image              string
}

var sellers = []sellerSeed{
	{Key: "demo-studio", DisplayName: "Demo Studio", AvatarURL: "https://example.com/avatars/studio.png"},
	{Key: "demo-thrift", DisplayName: "Demo Thrift"},
}

var items = []itemSeed{
	{
		Key:                "demo-mug",
		SellerKey:          "demo-studio",
		Title:              "Hand-thrown Mug",
		Description:        "Stoneware mug, glazed in speckled white",
		PriceCents:         2500,
		OriginalPriceCents: 3200,
		Stock:              12,
		Category:           "home",
		Image:              "https://example.com/items/mug.jpg",
	},
	{
		Key:         "demo-print",
		SellerKey:   "demo-studio",
		Title:       "Risograph Print",
		Description: "A3 two-colour print",
		PriceCents:  1800,
		Stock:       30,
		Category:    "art",
		Image:       "https://example.com/items/print.jpg",
	},
	{
		Key:                "demo-jacket",
		SellerKey:          "demo-thrift",
		Title:              "Vintage Denim Jacket",
		PriceCents:         6400,
		OriginalPriceCents: 9000,
		Stock:              1,
		Category:           "apparel",
		Image:              "https://example.com/items/jacket.jpg",
	},
	{
		Key:        "demo-scarf",
		SellerKey:  "demo-thrift",
		Title:      "Wool Scarf",
		PriceCents: 1500,
		Stock:      0,
		Category:   "apparel",
	},
}

// Apply inserts demo sellers and items for manual testing. It is idempotent:
// sellers are ensured by key and items are upserted by key.
func Apply(ctx context.Context, sellerRepo SellerWriter, itemRepo ItemWriter) (int, error) {
	sellerIDs := make(map[string]string, len(sellers))
	for _, s := range sellers {
		created, err := sellerRepo.Ensure(ctx, s.Key, s.DisplayName, s.AvatarURL)
		if err != nil {
			return 0, fmt.Errorf("ensure seller %s: %w", s.Key, err)
		}
		sellerIDs[s.Key] = created.ID
	}

	count := 0
	for _, it := range items {
		sellerID, ok := sellerIDs[it.SellerKey]
		if !ok {
			return count, fmt.Errorf("item %s: unknown seller %s", it.Key, it.SellerKey)
		}
		if _, err := itemRepo.Upsert(ctx, it.toDomain(sellerID)); err != nil {
			return count, fmt.Errorf("upsert item %s: %w", it.Key, err)
		}
		count++
	}
	return count, nil
}

func (s itemSeed) toDomain(sellerID string) domain.ShopItem {
	item := domain.ShopItem{
		Key:         s.Key,
		Title:       s.Title,
		Description: s.Description,
		PriceCents:  s.PriceCents,
		Stock:       s.Stock,
		Category:    s.Category,
		Seller:      domain.SellerRef{ID: sellerID},
	}
	if s.OriginalPriceCents > 0 {
		orig := s.OriginalPriceCents
		item.OriginalPriceCents = &orig
	}
	if s.Image != "" {
		item.Images = []string{s.Image}
	}
	return item
}
