package profile

import (
	"context"
	"errors"
	"strings"

	"socialshop/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const profileColumns = `id::text, email, password_hash, username, display_name, avatar_url, created_at`

func (r *postgresRepo) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	q := `
INSERT INTO profiles (email, password_hash, username, display_name, avatar_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + profileColumns
	return r.scanProfile(r.pool.QueryRow(ctx, q,
		strings.ToLower(p.Email),
		p.PasswordHash,
		p.Username,
		p.DisplayName,
		p.AvatarURL,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1) LIMIT 1`, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1 LIMIT 1`, id))
}

func (r *postgresRepo) scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.Username, &p.DisplayName, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("profile repo: scan", zap.Error(err))
		return nil, err
	}
	return &p, nil
}
