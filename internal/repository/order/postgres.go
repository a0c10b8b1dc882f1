package order

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

const headerColumns = `id::text, submission_id, order_number, buyer_id::text, status, subtotal_cents, shipping_cents,
       tax_cents, total_cents, shipping_address, payment_type, estimated_delivery, created_at`

func (r *postgresRepo) GenerateOrderNumber(ctx context.Context) (string, error) {
	var number string
	err := r.pool.QueryRow(ctx, `SELECT 'SS-' || lpad(nextval('order_number_seq')::text, 8, '0')`).Scan(&number)
	return number, err
}

func (r *postgresRepo) Insert(ctx context.Context, h domain.OrderHeader) (*domain.OrderHeader, error) {
	q := `
INSERT INTO orders (submission_id, order_number, buyer_id, status, subtotal_cents, shipping_cents, tax_cents,
                    total_cents, shipping_address, payment_type, estimated_delivery)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (submission_id) DO UPDATE SET submission_id = EXCLUDED.submission_id
RETURNING ` + headerColumns
	status := h.Status
	if status == "" {
		status = domain.OrderPending
	}
	return scanHeader(r.pool.QueryRow(ctx, q,
		h.SubmissionID,
		h.OrderNumber,
		h.BuyerID,
		string(status),
		h.SubtotalCents,
		h.ShippingCents,
		h.TaxCents,
		h.TotalCents,
		h.ShippingAddress,
		string(h.PaymentType),
		h.EstimatedDelivery,
	))
}

func (r *postgresRepo) InsertLines(ctx context.Context, orderID string, lines []domain.OrderLine) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
INSERT INTO order_items (order_id, item_id, seller_id, title, quantity, price_cents)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6)
ON CONFLICT (order_id, item_id) DO NOTHING
`, orderID, l.ItemID, l.SellerID, l.Title, l.Quantity, l.PriceCents)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) GetByID(ctx context.Context, buyerID, id string) (*domain.OrderHeader, error) {
	h, err := scanHeader(r.pool.QueryRow(ctx, `SELECT `+headerColumns+` FROM orders WHERE buyer_id = $1 AND id = $2`, buyerID, id))
	if err != nil {
		return nil, err
	}
	lines, err := r.fetchLines(ctx, []string{h.ID})
	if err != nil {
		return nil, err
	}
	h.Lines = lines[h.ID]
	return h, nil
}

func (r *postgresRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.OrderHeader, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+headerColumns+` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderHeader
	var ids []string
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	lines, err := r.fetchLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = lines[out[i].ID]
	}
	return out, nil
}

func (r *postgresRepo) fetchLines(ctx context.Context, orderIDs []string) (map[string][]domain.OrderLine, error) {
	rows, err := r.pool.Query(ctx, `
SELECT order_id::text, item_id::text, COALESCE(seller_id::text, ''), title, quantity, price_cents
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY created_at ASC
`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.OrderLine, len(orderIDs))
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ItemID, &l.SellerID, &l.Title, &l.Quantity, &l.PriceCents); err != nil {
			return nil, err
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}

func scanHeader(row pgx.Row) (*domain.OrderHeader, error) {
	var h domain.OrderHeader
	var status, paymentType string
	err := row.Scan(
		&h.ID,
		&h.SubmissionID,
		&h.OrderNumber,
		&h.BuyerID,
		&status,
		&h.SubtotalCents,
		&h.ShippingCents,
		&h.TaxCents,
		&h.TotalCents,
		&h.ShippingAddress,
		&paymentType,
		&h.EstimatedDelivery,
		&h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	h.Status = domain.OrderStatus(status)
	h.PaymentType = domain.PaymentType(paymentType)
	return &h, nil
}
