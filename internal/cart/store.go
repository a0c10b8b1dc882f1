// Package cart holds the in-memory shopping cart of a single shopper session.
package cart

import (
	"fmt"
	"sync"
	"time"

	"socialshop/internal/domain"
	"socialshop/internal/pricing"

	"github.com/google/uuid"
)

// State is a point-in-time copy of the store.
type State struct {
	Items        []domain.CartLineItem `json:"items"`
	CartOpen     bool                  `json:"cartOpen"`
	CheckoutOpen bool                  `json:"checkoutOpen"`
	CurrentOrder *domain.Order         `json:"currentOrder,omitempty"`
	Count        int                   `json:"count"`
	Totals       pricing.Totals        `json:"totals"`
}

// Store owns one cart. It is the only writer of its state; every method
// serializes on mu so concurrent requests for the same session stay ordered.
// Mutations never fail: out-of-range quantities are clamped.
type Store struct {
	mu           sync.Mutex
	lines        []domain.CartLineItem
	cartOpen     bool
	checkoutOpen bool
	current      *domain.Order
	// revision counts line changes so a caller can tell whether the cart
	// it snapshotted earlier is still the same.
	revision uint64

	policy pricing.Policy
	now    func() time.Time
	newID  func() string
}

func NewStore(policy pricing.Policy) *Store {
	return &Store{
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Policy returns the pricing policy the store derives totals with.
func (s *Store) Policy() pricing.Policy {
	return s.policy
}

// AddToCart merges quantity into the line for item.ID or appends a new line.
// The result is clamped to [1, item.Stock]; quantity below 1 counts as 1.
// Items without stock are ignored. The returned bool reports whether the cart
// now holds a line for the item.
func (s *Store) AddToCart(item domain.ShopItem, quantity int) (domain.CartLineItem, bool) {
	if quantity < 1 {
		quantity = 1
	}
	if item.Stock <= 0 {
		return domain.CartLineItem{}, false
	}
	if quantity > item.Stock {
		quantity = item.Stock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ItemID != item.ID {
			continue
		}
		line := &s.lines[i]
		line.Stock = item.Stock
		line.Quantity = clamp(line.Quantity+quantity, item.Stock)
		s.revision++
		return *line, true
	}

	line := domain.CartLineItem{
		ID:                 s.newID(),
		ItemID:             item.ID,
		Title:              item.Title,
		PriceCents:         item.PriceCents,
		OriginalPriceCents: copyCents(item.OriginalPriceCents),
		Image:              item.PrimaryImage(),
		Seller:             item.Seller,
		Quantity:           clamp(quantity, item.Stock),
		Stock:              item.Stock,
		Category:           item.Category,
	}
	s.lines = append(s.lines, line)
	s.revision++
	return line, true
}

// RemoveFromCart is a no-op when lineID is unknown.
func (s *Store) RemoveFromCart(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(lineID)
}

// UpdateQuantity removes the line when quantity <= 0, otherwise sets it to
// min(quantity, stock). It reports whether the line existed.
func (s *Store) UpdateQuantity(lineID string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(lineID)
	}
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines[i].Quantity = clamp(quantity, s.lines[i].Stock)
			s.revision++
			return true
		}
	}
	return false
}

// ClearCart empties the lines; the current order is kept.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.revision++
}

// Revision changes whenever the lines change.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Total is the sum of price * quantity in cents.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// Count is the sum of quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

func (s *Store) Totals() pricing.Totals {
	return s.policy.Totals(s.Total())
}

// Lines returns a copy of the line items in insertion order.
func (s *Store) Lines() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

func (s *Store) OpenCart()      { s.setFlags(func() { s.cartOpen = true }) }
func (s *Store) CloseCart()     { s.setFlags(func() { s.cartOpen = false }) }
func (s *Store) OpenCheckout()  { s.setFlags(func() { s.checkoutOpen = true }) }
func (s *Store) CloseCheckout() { s.setFlags(func() { s.checkoutOpen = false }) }

func (s *Store) setFlags(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
}

// CreateOrder builds an Order snapshot from the current cart. It neither
// clears the cart nor persists anything.
func (s *Store) CreateOrder(shipping domain.ShippingAddress, payment domain.PaymentMethod) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	totals := s.policy.Totals(s.totalLocked())
	return domain.Order{
		ID:                fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Items:             copyLines(s.lines),
		ShippingAddress:   shipping,
		PaymentMethod:     payment.Masked(),
		SubtotalCents:     totals.SubtotalCents,
		ShippingCents:     totals.ShippingCents,
		TaxCents:          totals.TaxCents,
		TotalCents:        totals.TotalCents,
		Status:            domain.OrderPending,
		OrderDate:         now,
		EstimatedDelivery: s.policy.EstimatedDelivery(now),
	}
}

// SetCurrentOrder sets or, with nil, clears the confirmation record.
func (s *Store) SetCurrentOrder(order *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order == nil {
		s.current = nil
		return
	}
	clone := *order
	clone.Items = copyLines(order.Items)
	s.current = &clone
}

func (s *Store) CurrentOrder() *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	clone := *s.current
	clone.Items = copyLines(s.current.Items)
	return &clone
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Items:        copyLines(s.lines),
		CartOpen:     s.cartOpen,
		CheckoutOpen: s.checkoutOpen,
		Count:        s.countLocked(),
		Totals:       s.policy.Totals(s.totalLocked()),
	}
	if s.current != nil {
		clone := *s.current
		clone.Items = copyLines(s.current.Items)
		st.CurrentOrder = &clone
	}
	return st
}

func (s *Store) removeLocked(lineID string) bool {
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.revision++
			return true
		}
	}
	return false
}

func (s *Store) totalLocked() int64 {
	var total int64
	for _, l := range s.lines {
		total += l.LineTotalCents()
	}
	return total
}

func (s *Store) countLocked() int {
	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

func clamp(quantity, stock int) int {
	if quantity > stock {
		quantity = stock
	}
	if quantity < 1 {
		quantity = 1
	}
	return quantity
}

func copyLines(lines []domain.CartLineItem) []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(lines))
	for i, l := range lines {
		l.OriginalPriceCents = copyCents(l.OriginalPriceCents)
		out[i] = l
	}
	return out
}

func copyCents(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
