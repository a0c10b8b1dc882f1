// Package checkout implements the shipping -> payment -> review flow that
// sits on top of a cart store.
package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"socialshop/internal/cart"
	"socialshop/internal/domain"
	"socialshop/internal/service/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Step string

const (
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
)

var (
	// ErrSubmissionInFlight is returned while an order submission is running.
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	// ErrNotOnReview is returned when placing an order before the review step.
	ErrNotOnReview = errors.New("order can only be placed from the review step")
)

// ValidationError lists the required fields missing for a step transition.
type ValidationError struct {
	Step   Step
	Fields []string
}

func (e *ValidationError) Error() string {
	return "please fill in: " + strings.Join(e.Fields, ", ")
}

// Submitter performs the remote order write.
type Submitter interface {
	Submit(ctx context.Context, req order.Request) (*domain.Order, error)
}

// View is a snapshot of the flow for rendering.
type View struct {
	Step       Step                   `json:"step"`
	Shipping   domain.ShippingAddress `json:"shipping"`
	Payment    domain.PaymentMethod   `json:"payment"`
	Submitting bool                   `json:"submitting"`
	LastError  string                 `json:"lastError,omitempty"`
}

// DefaultSubmitTimeout bounds one order submission once it has started.
const DefaultSubmitTimeout = 30 * time.Second

// attempt is the content a submission id was last sent with.
type attempt struct {
	revision uint64
	shipping domain.ShippingAddress
	payment  domain.PaymentMethod
}

// Flow is the checkout state machine of one shopper session.
type Flow struct {
	mu           sync.Mutex
	store        *cart.Store
	submitter    Submitter
	logger       *zap.Logger
	step         Step
	shipping     domain.ShippingAddress
	payment      domain.PaymentMethod
	submissionID string
	submitting   bool
	lastErr      string
	// failed is set while submissionID belongs to a failed attempt.
	failed *attempt

	defaultCountry string
	submitTimeout  time.Duration
	newID          func() string
}

func New(store *cart.Store, submitter Submitter, defaultCountry string, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Flow{
		store:          store,
		submitter:      submitter,
		logger:         logger,
		step:           StepShipping,
		payment:        domain.PaymentMethod{Type: domain.PaymentCard},
		defaultCountry: defaultCountry,
		submitTimeout:  DefaultSubmitTimeout,
		newID:          uuid.NewString,
	}
	f.shipping.Country = defaultCountry
	f.submissionID = f.newID()
	return f
}

// Open shows the checkout panel at the shipping step. Entered data is kept.
func (f *Flow) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.submitting {
		f.step = StepShipping
	}
	f.store.OpenCheckout()
}

// Close hides the checkout panel. It is refused while a submission is running
// so the outcome cannot be lost.
func (f *Flow) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmissionInFlight
	}
	f.store.CloseCheckout()
	return nil
}

// EditCart runs fn against the cart unless a submission is in flight. Cart
// edits made while an order is being written would be dropped when the cart
// is cleared, so they are refused with ErrSubmissionInFlight instead.
func (f *Flow) EditCart(fn func(store *cart.Store)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmissionInFlight
	}
	fn(f.store)
	return nil
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) SetShipping(addr domain.ShippingAddress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmissionInFlight
	}
	if strings.TrimSpace(addr.Country) == "" {
		addr.Country = f.defaultCountry
	}
	f.shipping = addr
	return nil
}

func (f *Flow) SetPayment(pm domain.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmissionInFlight
	}
	if !pm.Type.Valid() {
		return &ValidationError{Step: StepPayment, Fields: []string{"payment type"}}
	}
	f.payment = pm
	return nil
}

// Continue advances one step when the current step's required fields are
// present. A refused transition returns *ValidationError and changes nothing.
func (f *Flow) Continue() (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return f.step, ErrSubmissionInFlight
	}

	switch f.step {
	case StepShipping:
		if missing := missingShippingFields(f.shipping); len(missing) > 0 {
			return f.step, &ValidationError{Step: StepShipping, Fields: missing}
		}
		f.step = StepPayment
	case StepPayment:
		if missing := missingPaymentFields(f.payment); len(missing) > 0 {
			return f.step, &ValidationError{Step: StepPayment, Fields: missing}
		}
		f.step = StepReview
	}
	return f.step, nil
}

// Back moves one step backwards without discarding data.
func (f *Flow) Back() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return f.step
	}
	switch f.step {
	case StepReview:
		f.step = StepPayment
	case StepPayment:
		f.step = StepShipping
	}
	return f.step
}

// PlaceOrder submits the order. Only one submission runs at a time; a
// concurrent call gets ErrSubmissionInFlight. On success the flow resets to
// shipping with a fresh idempotency key. On failure it stays on review and
// keeps the key, so a retry of the same cart, address and payment reuses the
// order header already written. If any of those changed since the failed
// attempt, the retry gets a new key.
//
// Once started, the submission is detached from ctx cancellation and bounded
// by the submit timeout; ctx values such as the buyer identity are kept.
func (f *Flow) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if f.step != StepReview {
		f.mu.Unlock()
		return nil, ErrNotOnReview
	}
	current := attempt{revision: f.store.Revision(), shipping: f.shipping, payment: f.payment}
	if f.failed != nil && *f.failed != current {
		f.logger.Info("checkout changed since failed attempt, new submission id",
			zap.String("previous_submission_id", f.submissionID))
		f.submissionID = f.newID()
	}
	f.submitting = true
	f.lastErr = ""
	req := order.Request{
		SubmissionID: f.submissionID,
		Cart:         f.store,
		Shipping:     f.shipping,
		Payment:      f.payment,
	}
	f.mu.Unlock()

	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.submitTimeout)
	defer cancel()
	placed, err := f.submitter.Submit(submitCtx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.lastErr = err.Error()
		f.failed = &current
		f.logger.Warn("place order failed", zap.String("submission_id", req.SubmissionID), zap.Error(err))
		return nil, err
	}
	f.failed = nil
	f.step = StepShipping
	f.submissionID = f.newID()
	f.store.CloseCheckout()
	return placed, nil
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return View{
		Step:       f.step,
		Shipping:   f.shipping,
		Payment:    f.payment.Masked(),
		Submitting: f.submitting,
		LastError:  f.lastErr,
	}
}

func missingShippingFields(a domain.ShippingAddress) []string {
	var missing []string
	if blank(a.FullName) {
		missing = append(missing, "full name")
	}
	if blank(a.Street) {
		missing = append(missing, "street")
	}
	if blank(a.City) {
		missing = append(missing, "city")
	}
	if blank(a.ZipCode) {
		missing = append(missing, "zip code")
	}
	return missing
}

func missingPaymentFields(p domain.PaymentMethod) []string {
	if p.Type != domain.PaymentCard {
		return nil
	}
	var missing []string
	if blank(p.CardNumber) {
		missing = append(missing, "card number")
	}
	if blank(p.ExpiryDate) {
		missing = append(missing, "expiry date")
	}
	if blank(p.HolderName) {
		missing = append(missing, "card holder name")
	}
	return missing
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
