package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	cartstore "socialshop/internal/cart"
	"socialshop/internal/checkout"
	"socialshop/internal/domain"
	"socialshop/internal/pricing"

	"go.uber.org/zap"
)

var (
	// ErrOutOfStock is returned when an item with no stock is added.
	ErrOutOfStock = errors.New("item out of stock")
	// ErrNoSession is returned for a key that has never been used.
	ErrNoSession = errors.New("no such session")
)

type itemSource interface {
	Get(ctx context.Context, id string) (*domain.ShopItem, error)
}

// Session is the cart and checkout state of one shopper.
type Session struct {
	Store *cartstore.Store
	Flow  *checkout.Flow

	lastSeen time.Time
}

// Service owns one Session per shopper key. Sessions live in memory for the
// lifetime of the process.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session

	items          itemSource
	submitter      checkout.Submitter
	policy         pricing.Policy
	defaultCountry string
	logger         *zap.Logger
	now            func() time.Time
}

func New(items itemSource, submitter checkout.Submitter, policy pricing.Policy, defaultCountry string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions:       make(map[string]*Session),
		items:          items,
		submitter:      submitter,
		policy:         policy,
		defaultCountry: defaultCountry,
		logger:         logger,
		now:            time.Now,
	}
}

// Session returns the session for key, creating an empty one on first use.
func (s *Service) Session(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(key)
}

func (s *Service) sessionLocked(key string) *Session {
	sess, ok := s.sessions[key]
	if !ok {
		store := cartstore.NewStore(s.policy)
		sess = &Session{
			Store: store,
			Flow:  checkout.New(store, s.submitter, s.defaultCountry, s.logger),
		}
		s.sessions[key] = sess
		s.logger.Debug("session created", zap.String("session", key))
	}
	sess.lastSeen = s.now()
	return sess
}

// AddItem resolves itemID in the catalog and adds it to the session's cart.
func (s *Service) AddItem(ctx context.Context, key, itemID string, quantity int) (domain.CartLineItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return domain.CartLineItem{}, domain.ErrNotFound
	}
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return domain.CartLineItem{}, err
	}
	var (
		line domain.CartLineItem
		ok   bool
	)
	err = s.Session(key).Flow.EditCart(func(store *cartstore.Store) {
		line, ok = store.AddToCart(*item, quantity)
	})
	if err != nil {
		return domain.CartLineItem{}, err
	}
	if !ok {
		return domain.CartLineItem{}, ErrOutOfStock
	}
	return line, nil
}

// Adopt moves the guest cart into the profile cart once the guest signs in.
// Lines merge with the same clamping as a regular add and the guest session
// is dropped. While the profile cart has an order in flight the guest
// session is kept and checkout.ErrSubmissionInFlight is returned.
func (s *Service) Adopt(guestKey, profileKey string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guest, ok := s.sessions[guestKey]
	if !ok {
		return nil, ErrNoSession
	}
	target := s.sessionLocked(profileKey)
	lines := guest.Store.Lines()
	err := target.Flow.EditCart(func(store *cartstore.Store) {
		for _, line := range lines {
			store.AddToCart(itemFromLine(line), line.Quantity)
		}
	})
	if err != nil {
		return nil, err
	}
	delete(s.sessions, guestKey)
	s.logger.Info("guest cart adopted",
		zap.String("guest", guestKey),
		zap.String("profile", profileKey),
		zap.Int("lines", len(lines)),
	)
	return target, nil
}

// Sweep drops sessions idle for longer than maxIdle. Sessions with a
// submission in flight are kept.
func (s *Service) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	dropped := 0
	for key, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) || sess.Flow.View().Submitting {
			continue
		}
		delete(s.sessions, key)
		dropped++
	}
	return dropped
}

func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func itemFromLine(line domain.CartLineItem) domain.ShopItem {
	var images []string
	if line.Image != "" {
		images = []string{line.Image}
	}
	return domain.ShopItem{
		ID:                 line.ItemID,
		Title:              line.Title,
		PriceCents:         line.PriceCents,
		OriginalPriceCents: line.OriginalPriceCents,
		Images:             images,
		Stock:              line.Stock,
		Category:           line.Category,
		Seller:             line.Seller,
	}
}
