package seller

import (
	"context"
	"errors"

	"socialshop/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	return r.fetch(ctx, `
SELECT id::text, display_name, avatar_url, total_sales, created_at
FROM sellers
WHERE id = $1
`, id)
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Seller, error) {
	return r.fetch(ctx, `
SELECT id::text, display_name, avatar_url, total_sales, created_at
FROM sellers
WHERE key = $1
`, key)
}

func (r *postgresRepo) Ensure(ctx context.Context, key, displayName, avatarURL string) (*domain.Seller, error) {
	return r.fetch(ctx, `
INSERT INTO sellers (key, display_name, avatar_url)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET display_name = EXCLUDED.display_name, avatar_url = EXCLUDED.avatar_url
RETURNING id::text, display_name, avatar_url, total_sales, created_at
`, key, displayName, avatarURL)
}

func (r *postgresRepo) IncrementTotalSales(ctx context.Context, id string, delta int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE sellers SET total_sales = total_sales + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...interface{}) (*domain.Seller, error) {
	var s domain.Seller
	err := r.pool.QueryRow(ctx, q, args...).Scan(&s.ID, &s.DisplayName, &s.AvatarURL, &s.TotalSales, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
