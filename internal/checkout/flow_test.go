package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"socialshop/internal/cart"
	"socialshop/internal/domain"
	"socialshop/internal/pricing"
	"socialshop/internal/service/order"
)

type stubSubmitter struct {
	mu          sync.Mutex
	err         error
	calls       []order.Request
	ctxErr      error
	hasDeadline bool
	started     chan struct{}
	release     chan struct{}
}

func (s *stubSubmitter) Submit(ctx context.Context, req order.Request) (*domain.Order, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.ctxErr = ctx.Err()
	_, s.hasDeadline = ctx.Deadline()
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	o := req.Cart.CreateOrder(req.Shipping, req.Payment)
	req.Cart.ClearCart()
	return &o, nil
}

func validShipping() domain.ShippingAddress {
	return domain.ShippingAddress{FullName: "Ana Ruiz", Street: "1 Main St", City: "Austin", ZipCode: "78701"}
}

func validCard() domain.PaymentMethod {
	return domain.PaymentMethod{Type: domain.PaymentCard, CardNumber: "4242424242424242", ExpiryDate: "12/29", HolderName: "Ana Ruiz"}
}

func newFlow(sub Submitter) (*Flow, *cart.Store) {
	store := cart.NewStore(pricing.Default())
	store.AddToCart(domain.ShopItem{ID: "item-1", Title: "Mug", PriceCents: 6000, Stock: 10}, 1)
	f := New(store, sub, "US", nil)
	f.Open()
	return f, store
}

func toReview(t *testing.T, f *Flow) {
	t.Helper()
	if err := f.SetShipping(validShipping()); err != nil {
		t.Fatalf("set shipping: %v", err)
	}
	if err := f.SetPayment(validCard()); err != nil {
		t.Fatalf("set payment: %v", err)
	}
	if _, err := f.Continue(); err != nil {
		t.Fatalf("continue from shipping: %v", err)
	}
	if _, err := f.Continue(); err != nil {
		t.Fatalf("continue from payment: %v", err)
	}
	if f.Step() != StepReview {
		t.Fatalf("expected review, got %s", f.Step())
	}
}

func TestContinue_ShippingGuard(t *testing.T) {
	f, _ := newFlow(&stubSubmitter{})
	addr := validShipping()
	addr.FullName = "   "
	_ = f.SetShipping(addr)

	step, err := f.Continue()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if step != StepShipping || f.Step() != StepShipping {
		t.Fatalf("expected to stay on shipping, got %s", step)
	}
	if len(verr.Fields) != 1 || verr.Fields[0] != "full name" {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}
	if f.View().Shipping.Country != "US" {
		t.Fatalf("expected default country, got %q", f.View().Shipping.Country)
	}
}

func TestContinue_ShippingOptionalFields(t *testing.T) {
	f, _ := newFlow(&stubSubmitter{})
	_ = f.SetShipping(domain.ShippingAddress{FullName: "A", Street: "B", City: "C", ZipCode: "D"})
	if step, err := f.Continue(); err != nil || step != StepPayment {
		t.Fatalf("expected payment step, got %s %v", step, err)
	}
}

func TestContinue_PaymentGuardCardOnly(t *testing.T) {
	f, _ := newFlow(&stubSubmitter{})
	_ = f.SetShipping(validShipping())
	_, _ = f.Continue()

	_ = f.SetPayment(domain.PaymentMethod{Type: domain.PaymentCard, ExpiryDate: "12/29", HolderName: "Ana"})
	if _, err := f.Continue(); err == nil {
		t.Fatalf("expected empty card number to block")
	}
	if f.Step() != StepPayment {
		t.Fatalf("expected to stay on payment, got %s", f.Step())
	}

	_ = f.SetPayment(domain.PaymentMethod{Type: domain.PaymentPayPal})
	if step, err := f.Continue(); err != nil || step != StepReview {
		t.Fatalf("expected paypal to advance, got %s %v", step, err)
	}
}

func TestSetPayment_RejectsUnknownType(t *testing.T) {
	f, _ := newFlow(&stubSubmitter{})
	var verr *ValidationError
	if err := f.SetPayment(domain.PaymentMethod{Type: "cash"}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBack_KeepsData(t *testing.T) {
	f, _ := newFlow(&stubSubmitter{})
	toReview(t, f)

	if got := f.Back(); got != StepPayment {
		t.Fatalf("expected payment, got %s", got)
	}
	if got := f.Back(); got != StepShipping {
		t.Fatalf("expected shipping, got %s", got)
	}
	if got := f.Back(); got != StepShipping {
		t.Fatalf("expected to stay on shipping, got %s", got)
	}
	v := f.View()
	if v.Shipping.FullName != "Ana Ruiz" || v.Payment.HolderName != "Ana Ruiz" {
		t.Fatalf("expected data to be kept, got %+v", v)
	}
	if v.Payment.CardNumber != "****4242" {
		t.Fatalf("expected masked card in view, got %q", v.Payment.CardNumber)
	}
}

func TestPlaceOrder_RequiresReview(t *testing.T) {
	sub := &stubSubmitter{}
	f, _ := newFlow(sub)
	if _, err := f.PlaceOrder(context.Background()); !errors.Is(err, ErrNotOnReview) {
		t.Fatalf("expected ErrNotOnReview, got %v", err)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("submitter must not be called")
	}
}

func TestPlaceOrder_SuccessResetsFlow(t *testing.T) {
	sub := &stubSubmitter{}
	f, store := newFlow(sub)
	toReview(t, f)
	firstKey := f.submissionID

	placed, err := f.PlaceOrder(context.Background())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if placed.TotalCents != 6480 {
		t.Fatalf("expected total 6480, got %d", placed.TotalCents)
	}
	if f.Step() != StepShipping {
		t.Fatalf("expected reset to shipping, got %s", f.Step())
	}
	if store.State().CheckoutOpen {
		t.Fatalf("expected checkout closed")
	}
	if f.submissionID == firstKey {
		t.Fatalf("expected a fresh submission id after success")
	}
}

func TestPlaceOrder_FailureStaysOnReviewAndKeepsKey(t *testing.T) {
	sub := &stubSubmitter{err: order.ErrOrderHeaderWriteFailed}
	f, store := newFlow(sub)
	toReview(t, f)

	if _, err := f.PlaceOrder(context.Background()); !errors.Is(err, order.ErrOrderHeaderWriteFailed) {
		t.Fatalf("expected header failure, got %v", err)
	}
	if f.Step() != StepReview {
		t.Fatalf("expected review, got %s", f.Step())
	}
	if f.View().LastError == "" {
		t.Fatalf("expected last error to be surfaced")
	}
	if store.Count() != 1 {
		t.Fatalf("expected cart to be kept")
	}

	sub.err = nil
	if _, err := f.PlaceOrder(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(sub.calls) != 2 || sub.calls[0].SubmissionID != sub.calls[1].SubmissionID {
		t.Fatalf("expected retry to reuse the submission id, got %+v", sub.calls)
	}
}

func TestPlaceOrder_SingleFlight(t *testing.T) {
	sub := &stubSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	f, _ := newFlow(sub)
	toReview(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := f.PlaceOrder(context.Background())
		done <- err
	}()
	<-sub.started

	if _, err := f.PlaceOrder(context.Background()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}
	if err := f.Close(); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected close to be refused during submission, got %v", err)
	}
	if !f.View().Submitting {
		t.Fatalf("expected submitting flag")
	}

	close(sub.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if len(sub.calls) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(sub.calls))
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close after submission: %v", err)
	}
}

func TestPlaceOrder_RetryWithChangedCheckoutGetsNewKey(t *testing.T) {
	tests := []struct {
		name   string
		change func(t *testing.T, f *Flow, store *cart.Store)
	}{
		{
			name: "cart quantity",
			change: func(t *testing.T, f *Flow, store *cart.Store) {
				lineID := store.Lines()[0].ID
				if err := f.EditCart(func(s *cart.Store) { s.UpdateQuantity(lineID, 3) }); err != nil {
					t.Fatalf("edit cart: %v", err)
				}
			},
		},
		{
			name: "shipping address",
			change: func(t *testing.T, f *Flow, _ *cart.Store) {
				addr := validShipping()
				addr.Street = "9 Elm St"
				if err := f.SetShipping(addr); err != nil {
					t.Fatalf("set shipping: %v", err)
				}
			},
		},
		{
			name: "payment method",
			change: func(t *testing.T, f *Flow, _ *cart.Store) {
				if err := f.SetPayment(domain.PaymentMethod{Type: domain.PaymentPayPal}); err != nil {
					t.Fatalf("set payment: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &stubSubmitter{err: order.ErrOrderLinesWriteFailed}
			f, store := newFlow(sub)
			toReview(t, f)

			if _, err := f.PlaceOrder(context.Background()); err == nil {
				t.Fatalf("expected first attempt to fail")
			}
			tt.change(t, f, store)

			sub.err = nil
			if _, err := f.PlaceOrder(context.Background()); err != nil {
				t.Fatalf("retry: %v", err)
			}
			if len(sub.calls) != 2 || sub.calls[0].SubmissionID == sub.calls[1].SubmissionID {
				t.Fatalf("expected a new submission id after the change, got %+v", sub.calls)
			}
		})
	}
}

func TestEditCart_RefusedWhileSubmitting(t *testing.T) {
	sub := &stubSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	f, store := newFlow(sub)
	toReview(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := f.PlaceOrder(context.Background())
		done <- err
	}()
	<-sub.started

	ran := false
	err := f.EditCart(func(s *cart.Store) {
		ran = true
		s.AddToCart(domain.ShopItem{ID: "item-2", Title: "Print", PriceCents: 1500, Stock: 4}, 1)
	})
	if !errors.Is(err, ErrSubmissionInFlight) || ran {
		t.Fatalf("expected edit to be refused, got err=%v ran=%v", err, ran)
	}

	close(sub.release)
	if err := <-done; err != nil {
		t.Fatalf("submission: %v", err)
	}
	if err := f.EditCart(func(s *cart.Store) {
		s.AddToCart(domain.ShopItem{ID: "item-2", Title: "Print", PriceCents: 1500, Stock: 4}, 1)
	}); err != nil {
		t.Fatalf("edit after submission: %v", err)
	}
	if store.Count() != 1 {
		t.Fatalf("expected only the new line after the order cleared the cart, got %d", store.Count())
	}
}

type ctxKey struct{}

func TestPlaceOrder_DetachedFromCallerCancellation(t *testing.T) {
	sub := &stubSubmitter{}
	f, _ := newFlow(sub)
	toReview(t, f)

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "buyer-1"))
	cancel()

	if _, err := f.PlaceOrder(ctx); err != nil {
		t.Fatalf("place order: %v", err)
	}
	if sub.ctxErr != nil {
		t.Fatalf("submission saw caller cancellation: %v", sub.ctxErr)
	}
	if !sub.hasDeadline {
		t.Fatalf("expected the submission to be bounded by a timeout")
	}
}
