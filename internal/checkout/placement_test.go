package checkout

import (
	"context"
	"errors"
	"testing"

	"socialshop/internal/cart"
	"socialshop/internal/domain"
	"socialshop/internal/pricing"
	"socialshop/internal/service/order"
)

type memoryOrders struct {
	failHeader bool
	failLines  bool
	headers    map[string]domain.OrderHeader
	lines      []domain.OrderLine
}

func (m *memoryOrders) GenerateOrderNumber(context.Context) (string, error) {
	return "SS-00000001", nil
}

func (m *memoryOrders) Insert(_ context.Context, h domain.OrderHeader) (*domain.OrderHeader, error) {
	if m.failHeader {
		return nil, errors.New("insert orders: connection reset")
	}
	if m.headers == nil {
		m.headers = map[string]domain.OrderHeader{}
	}
	if existing, ok := m.headers[h.SubmissionID]; ok {
		return &existing, nil
	}
	h.ID = "order-" + h.SubmissionID
	m.headers[h.SubmissionID] = h
	return &h, nil
}

func (m *memoryOrders) InsertLines(_ context.Context, _ string, lines []domain.OrderLine) error {
	if m.failLines {
		return errors.New("insert order_items: deadlock detected")
	}
	m.lines = append(m.lines, lines...)
	return nil
}

func (m *memoryOrders) GetByID(context.Context, string, string) (*domain.OrderHeader, error) {
	return nil, domain.ErrNotFound
}

func (m *memoryOrders) ListByBuyer(context.Context, string) ([]domain.OrderHeader, error) {
	return nil, nil
}

type memoryStock struct{ stock map[string]int }

func (m *memoryStock) DecrementStock(_ context.Context, itemID string, q int) error {
	if m.stock[itemID] < q {
		return domain.ErrInsufficientStock
	}
	m.stock[itemID] -= q
	return nil
}

type memorySales struct{ total map[string]int64 }

func (m *memorySales) IncrementTotalSales(_ context.Context, sellerID string, delta int64) error {
	m.total[sellerID] += delta
	return nil
}

type buyer string

func (b buyer) CurrentUser(context.Context) (string, bool) { return string(b), b != "" }

func placementFixture(failHeader bool) (*Flow, *cart.Store, *memoryOrders, *memoryStock) {
	orders := &memoryOrders{failHeader: failHeader}
	stock := &memoryStock{stock: map[string]int{"item-1": 10}}
	svc := order.New(orders, stock, &memorySales{total: map[string]int64{}}, buyer("buyer-1"), nil, nil)

	store := cart.NewStore(pricing.Default())
	store.AddToCart(domain.ShopItem{
		ID: "item-1", Title: "Mug", PriceCents: 6000, Stock: 10,
		Seller: domain.SellerRef{ID: "seller-1", DisplayName: "Maya"},
	}, 1)
	flow := New(store, svc, "US", nil)
	flow.Open()
	return flow, store, orders, stock
}

func TestPlacement_EndToEnd(t *testing.T) {
	f, store, orders, stock := placementFixture(false)
	toReview(t, f)

	if _, err := f.PlaceOrder(context.Background()); err != nil {
		t.Fatalf("place order: %v", err)
	}

	st := store.State()
	if len(st.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", st.Items)
	}
	if st.CheckoutOpen {
		t.Fatalf("expected checkout closed")
	}
	if st.CurrentOrder == nil || st.CurrentOrder.TotalCents != 6480 {
		t.Fatalf("expected current order total 6480, got %+v", st.CurrentOrder)
	}
	if st.CurrentOrder.OrderNumber != "SS-00000001" {
		t.Fatalf("expected server order number, got %q", st.CurrentOrder.OrderNumber)
	}
	if stock.stock["item-1"] != 9 {
		t.Fatalf("expected stock decremented to 9, got %d", stock.stock["item-1"])
	}
	if len(orders.lines) != 1 {
		t.Fatalf("expected one order line, got %d", len(orders.lines))
	}
}

func TestPlacement_HeaderFailureRetainsState(t *testing.T) {
	f, store, _, stock := placementFixture(true)
	toReview(t, f)

	_, err := f.PlaceOrder(context.Background())
	if !errors.Is(err, order.ErrOrderHeaderWriteFailed) {
		t.Fatalf("expected header failure, got %v", err)
	}

	st := store.State()
	if len(st.Items) != 1 {
		t.Fatalf("expected cart to keep its line, got %+v", st.Items)
	}
	if f.Step() != StepReview {
		t.Fatalf("expected review, got %s", f.Step())
	}
	if st.CurrentOrder != nil {
		t.Fatalf("expected no current order")
	}
	if !st.CheckoutOpen {
		t.Fatalf("expected checkout to stay open")
	}
	if stock.stock["item-1"] != 10 {
		t.Fatalf("stock must not move, got %d", stock.stock["item-1"])
	}
}

func TestPlacement_RetryAfterCartEditPersistsEditedOrder(t *testing.T) {
	f, store, orders, _ := placementFixture(false)
	orders.failLines = true
	toReview(t, f)

	if _, err := f.PlaceOrder(context.Background()); !errors.Is(err, order.ErrOrderLinesWriteFailed) {
		t.Fatalf("expected lines failure, got %v", err)
	}

	lineID := store.Lines()[0].ID
	if err := f.EditCart(func(s *cart.Store) { s.UpdateQuantity(lineID, 3) }); err != nil {
		t.Fatalf("edit cart: %v", err)
	}

	orders.failLines = false
	placed, err := f.PlaceOrder(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if placed.TotalCents != 19440 {
		t.Fatalf("expected confirmation total 19440, got %d", placed.TotalCents)
	}

	var header domain.OrderHeader
	for _, h := range orders.headers {
		if h.ID == placed.ID {
			header = h
		}
	}
	if header.TotalCents != placed.TotalCents {
		t.Fatalf("persisted header total %d disagrees with confirmation %d", header.TotalCents, placed.TotalCents)
	}
	if len(orders.lines) != 1 || orders.lines[0].OrderID != placed.ID || orders.lines[0].Quantity != 3 {
		t.Fatalf("expected one line of quantity 3 on %s, got %+v", placed.ID, orders.lines)
	}
}
