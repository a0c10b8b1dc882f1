package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialshop/internal/cart"
	"socialshop/internal/domain"

	"go.uber.org/zap"
)

var (
	// ErrNotAuthenticated is returned when no buyer is attached to the request.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyCart is returned when there is nothing to order.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOrderHeaderWriteFailed wraps a failed order header insert.
	ErrOrderHeaderWriteFailed = errors.New("order header write failed")
	// ErrOrderLinesWriteFailed wraps a failed order line insert.
	ErrOrderLinesWriteFailed = errors.New("order lines write failed")
	// ErrMissingSubmissionID is returned for a request without an idempotency key.
	ErrMissingSubmissionID = errors.New("submission id required")
)

// Identity resolves the buyer attributed to ctx.
type Identity interface {
	CurrentUser(ctx context.Context) (string, bool)
}

type orderRepo interface {
	GenerateOrderNumber(ctx context.Context) (string, error)
	Insert(ctx context.Context, header domain.OrderHeader) (*domain.OrderHeader, error)
	InsertLines(ctx context.Context, orderID string, lines []domain.OrderLine) error
	GetByID(ctx context.Context, buyerID, id string) (*domain.OrderHeader, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.OrderHeader, error)
}

type stockRepo interface {
	DecrementStock(ctx context.Context, itemID string, quantity int) error
}

type salesRepo interface {
	IncrementTotalSales(ctx context.Context, sellerID string, delta int64) error
}

// Cache is the read cache the service refreshes after an order is placed.
type Cache interface {
	Orders(buyerID string) ([]domain.OrderHeader, bool)
	OrdersGeneration(buyerID string) uint64
	// StoreOrders skips the write when InvalidateOrders ran after gen was read.
	StoreOrders(buyerID string, gen uint64, orders []domain.OrderHeader) bool
	InvalidateOrders(buyerID string)
	InvalidateItem(itemID string)
	InvalidateSeller(sellerID string)
}

// Request is a finalized checkout ready to be written.
type Request struct {
	// SubmissionID is the idempotency key of one checkout session. Retrying a
	// failed submission with the same key reuses the order header.
	SubmissionID string
	Cart         *cart.Store
	Shipping     domain.ShippingAddress
	Payment      domain.PaymentMethod
}

// Service places orders. Each remote step is an independent write; there is
// no compensation when a later step fails.
type Service struct {
	orders   orderRepo
	stock    stockRepo
	sales    salesRepo
	identity Identity
	cache    Cache
	logger   *zap.Logger
}

func New(orders orderRepo, stock stockRepo, sales salesRepo, identity Identity, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:   orders,
		stock:    stock,
		sales:    sales,
		identity: identity,
		cache:    cache,
		logger:   logger,
	}
}

// Submit writes the order and, on success, clears the cart, closes the
// checkout panel and sets the confirmation record. On failure the cart is
// left exactly as it was.
func (s *Service) Submit(ctx context.Context, req Request) (*domain.Order, error) {
	buyerID, ok := s.identity.CurrentUser(ctx)
	if !ok || strings.TrimSpace(buyerID) == "" {
		return nil, ErrNotAuthenticated
	}
	if req.Cart == nil || req.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(req.SubmissionID) == "" {
		return nil, ErrMissingSubmissionID
	}

	snapshot := req.Cart.CreateOrder(req.Shipping, req.Payment)
	log := s.logger.With(zap.String("buyer_id", buyerID), zap.String("submission_id", req.SubmissionID))

	number, err := s.orders.GenerateOrderNumber(ctx)
	if err != nil {
		log.Error("generate order number", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrOrderHeaderWriteFailed, err)
	}

	header, err := s.orders.Insert(ctx, domain.OrderHeader{
		SubmissionID:      req.SubmissionID,
		OrderNumber:       number,
		BuyerID:           buyerID,
		Status:            domain.OrderPending,
		SubtotalCents:     snapshot.SubtotalCents,
		ShippingCents:     snapshot.ShippingCents,
		TaxCents:          snapshot.TaxCents,
		TotalCents:        snapshot.TotalCents,
		ShippingAddress:   snapshot.ShippingAddress,
		PaymentType:       snapshot.PaymentMethod.Type,
		EstimatedDelivery: snapshot.EstimatedDelivery,
	})
	if err != nil {
		log.Error("insert order header", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrOrderHeaderWriteFailed, err)
	}

	lines := make([]domain.OrderLine, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		lines = append(lines, domain.OrderLine{
			OrderID:    header.ID,
			ItemID:     item.ItemID,
			SellerID:   item.Seller.ID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		})
	}
	if err := s.orders.InsertLines(ctx, header.ID, lines); err != nil {
		log.Error("insert order lines", zap.String("order_id", header.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrOrderLinesWriteFailed, err)
	}

	for _, item := range snapshot.Items {
		if err := s.stock.DecrementStock(ctx, item.ItemID, item.Quantity); err != nil {
			log.Warn("decrement stock", zap.String("item_id", item.ItemID), zap.Int("quantity", item.Quantity), zap.Error(err))
		}
		if item.Seller.ID == "" {
			continue
		}
		if err := s.sales.IncrementTotalSales(ctx, item.Seller.ID, int64(item.Quantity)); err != nil {
			log.Warn("increment seller sales", zap.String("seller_id", item.Seller.ID), zap.Error(err))
		}
	}

	if s.cache != nil {
		s.cache.InvalidateOrders(buyerID)
		for _, item := range snapshot.Items {
			s.cache.InvalidateItem(item.ItemID)
			if item.Seller.ID != "" {
				s.cache.InvalidateSeller(item.Seller.ID)
			}
		}
	}

	snapshot.ID = header.ID
	snapshot.OrderNumber = header.OrderNumber
	snapshot.BuyerID = buyerID

	req.Cart.ClearCart()
	req.Cart.CloseCheckout()
	req.Cart.SetCurrentOrder(&snapshot)

	log.Info("order placed",
		zap.String("order_id", header.ID),
		zap.String("order_number", header.OrderNumber),
		zap.Int64("total_cents", snapshot.TotalCents),
		zap.Int("lines", len(lines)),
	)
	return &snapshot, nil
}

// ListOrders returns the buyer's order history, newest first.
func (s *Service) ListOrders(ctx context.Context, buyerID string) ([]domain.OrderHeader, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, ErrNotAuthenticated
	}
	var gen uint64
	if s.cache != nil {
		if cached, ok := s.cache.Orders(buyerID); ok {
			return cached, nil
		}
		gen = s.cache.OrdersGeneration(buyerID)
	}
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && !s.cache.StoreOrders(buyerID, gen, orders) {
		s.logger.Debug("order list changed during read, not cached", zap.String("buyer_id", buyerID))
	}
	return orders, nil
}

// GetOrder returns one of the buyer's orders with its lines.
func (s *Service) GetOrder(ctx context.Context, buyerID, id string) (*domain.OrderHeader, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, ErrNotAuthenticated
	}
	return s.orders.GetByID(ctx, buyerID, id)
}
