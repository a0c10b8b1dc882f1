package item

import (
	"context"
	"errors"
	"fmt"

	"socialshop/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const selectItem = `
SELECT i.id::text, i.key, i.title, COALESCE(i.description, ''), i.price_cents, i.original_price_cents,
       i.images, i.stock, i.category, i.created_at,
       s.id::text, s.display_name, s.avatar_url
FROM shop_items i
JOIN sellers s ON s.id = i.seller_id
`

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.ShopItem, error) {
	q := selectItem + `
WHERE ($1 = '' OR i.category = $1)
ORDER BY i.created_at DESC
`
	rows, err := r.pool.Query(ctx, q, category)
	if err != nil {
		r.logger.Error("item repo: list", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.ShopItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("item repo: list rows", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("item repo: list", zap.String("category", category), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.ShopItem, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, selectItem+`WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("item repo: get not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("item repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return it, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, item domain.ShopItem) (*domain.ShopItem, error) {
	const q = `
INSERT INTO shop_items (id, key, seller_id, title, description, price_cents, original_price_cents, images, stock, category)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10)
ON CONFLICT (key) DO UPDATE SET
    seller_id = EXCLUDED.seller_id,
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    original_price_cents = EXCLUDED.original_price_cents,
    images = EXCLUDED.images,
    stock = EXCLUDED.stock,
    category = EXCLUDED.category
RETURNING id::text, created_at
`
	images := item.Images
	if images == nil {
		images = []string{}
	}
	res := item
	err := r.pool.QueryRow(ctx, q,
		item.ID,
		item.Key,
		item.Seller.ID,
		item.Title,
		item.Description,
		item.PriceCents,
		item.OriginalPriceCents,
		images,
		item.Stock,
		item.Category,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("item repo: upsert", zap.String("key", item.Key), zap.Error(err))
		return nil, err
	}
	if item.ID != "" && res.ID != item.ID {
		return nil, fmt.Errorf("item repo: id mismatch for key=%s existing_id=%s import_id=%s", item.Key, res.ID, item.ID)
	}
	r.logger.Debug("item repo: upserted", zap.String("key", res.Key), zap.String("id", res.ID))
	return &res, nil
}

func (r *postgresRepo) DecrementStock(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE shop_items
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
`, itemID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shop_items WHERE id = $1)`, itemID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *postgresRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `
SELECT category, COUNT(*)
FROM shop_items
WHERE category <> ''
GROUP BY category
ORDER BY category ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Name, &c.ItemCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (*domain.ShopItem, error) {
	var it domain.ShopItem
	if err := row.Scan(
		&it.ID,
		&it.Key,
		&it.Title,
		&it.Description,
		&it.PriceCents,
		&it.OriginalPriceCents,
		&it.Images,
		&it.Stock,
		&it.Category,
		&it.CreatedAt,
		&it.Seller.ID,
		&it.Seller.DisplayName,
		&it.Seller.AvatarURL,
	); err != nil {
		return nil, err
	}
	return &it, nil
}
