package httpserver

import (
	"context"
	"strings"

	"socialshop/internal/auth"
	"socialshop/internal/domain"
	"socialshop/internal/pricing"
	"socialshop/internal/service/account"
	cartsvc "socialshop/internal/service/cart"
	"socialshop/internal/service/order"

	"go.uber.org/zap"
)

type stubAccountSvc struct {
	profile  *domain.Profile
	loginErr error
	signErr  error
}

func (s *stubAccountSvc) Signup(_ context.Context, in account.SignupInput) (*domain.Profile, error) {
	if s.signErr != nil {
		return nil, s.signErr
	}
	return &domain.Profile{ID: "p-new", Email: strings.ToLower(in.Email)}, nil
}

func (s *stubAccountSvc) Login(_ context.Context, _, _ string) (*domain.Profile, string, string, error) {
	if s.loginErr != nil {
		return nil, "", "", s.loginErr
	}
	return s.profile, "profile-token", "refresh", nil
}

func (s *stubAccountSvc) LookupByToken(_ context.Context, token string) (*domain.Profile, error) {
	if token == "profile-token" && s.profile != nil {
		return s.profile, nil
	}
	return nil, account.ErrInvalidToken
}

func (s *stubAccountSvc) AccessTTLSeconds() int { return 3600 }

type stubGuestSvc struct {
	tokens  map[string]string
	revoked []string
}

func newStubGuestSvc() *stubGuestSvc {
	return &stubGuestSvc{tokens: map[string]string{"guest-token": "g1"}}
}

func (s *stubGuestSvc) Issue(context.Context) (string, string, error) {
	s.tokens["guest-new"] = "g2"
	return "guest-new", "g2", nil
}

func (s *stubGuestSvc) LookupByToken(_ context.Context, token string) (string, error) {
	id, ok := s.tokens[token]
	if !ok {
		return "", account.ErrInvalidToken
	}
	return id, nil
}

func (s *stubGuestSvc) Revoke(token string) {
	s.revoked = append(s.revoked, token)
	delete(s.tokens, token)
}

func (s *stubGuestSvc) AccessTTLSeconds() int { return 600 }

type stubCatalogSvc struct {
	items map[string]domain.ShopItem
}

func newStubCatalogSvc() *stubCatalogSvc {
	orig := int64(4000)
	return &stubCatalogSvc{items: map[string]domain.ShopItem{
		"mug": {ID: "mug", Title: "Mug", PriceCents: 2500, OriginalPriceCents: &orig, Stock: 3, Category: "home",
			Seller: domain.SellerRef{ID: "s1", DisplayName: "Ada"}},
		"hat": {ID: "hat", Title: "Hat", PriceCents: 1000, Stock: 0, Category: "apparel"},
	}}
}

func (s *stubCatalogSvc) List(_ context.Context, category string) ([]domain.ShopItem, error) {
	var out []domain.ShopItem
	for _, id := range []string{"hat", "mug"} {
		it := s.items[id]
		if category == "" || it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *stubCatalogSvc) Get(_ context.Context, id string) (*domain.ShopItem, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &it, nil
}

func (s *stubCatalogSvc) Seller(_ context.Context, id string) (*domain.Seller, error) {
	if id != "s1" {
		return nil, domain.ErrNotFound
	}
	return &domain.Seller{ID: "s1", DisplayName: "Ada", TotalSales: 12}, nil
}

func (s *stubCatalogSvc) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{Name: "apparel", ItemCount: 1}, {Name: "home", ItemCount: 1}}, nil
}

// stubSubmitter completes the order the way the order service does on
// success, or fails with err. With started/release set it blocks until
// release is closed. ctxErr records ctx.Err() seen when the write starts.
type stubSubmitter struct {
	err     error
	calls   int
	ctxErr  error
	started chan struct{}
	release chan struct{}
}

func (s *stubSubmitter) Submit(ctx context.Context, req order.Request) (*domain.Order, error) {
	s.calls++
	s.ctxErr = ctx.Err()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := (auth.Identity{}).CurrentUser(ctx); !ok {
		return nil, order.ErrNotAuthenticated
	}
	placed := req.Cart.CreateOrder(req.Shipping, req.Payment)
	placed.OrderNumber = "SS-00000001"
	req.Cart.ClearCart()
	req.Cart.CloseCheckout()
	req.Cart.SetCurrentOrder(&placed)
	return &placed, nil
}

type stubOrderSvc struct {
	orders []domain.OrderHeader
}

func (s *stubOrderSvc) ListOrders(_ context.Context, buyerID string) ([]domain.OrderHeader, error) {
	var out []domain.OrderHeader
	for _, o := range s.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrderSvc) GetOrder(_ context.Context, buyerID, id string) (*domain.OrderHeader, error) {
	for _, o := range s.orders {
		if o.BuyerID == buyerID && o.ID == id {
			clone := o
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

type testEnv struct {
	accounts  *stubAccountSvc
	guests    *stubGuestSvc
	catalog   *stubCatalogSvc
	sessions  *cartsvc.Service
	submitter *stubSubmitter
	orders    *stubOrderSvc
}

func newTestEnv() *testEnv {
	catalog := newStubCatalogSvc()
	submitter := &stubSubmitter{}
	return &testEnv{
		accounts:  &stubAccountSvc{profile: &domain.Profile{ID: "p1", Email: "me@example.com"}},
		guests:    newStubGuestSvc(),
		catalog:   catalog,
		sessions:  cartsvc.New(catalog, submitter, pricing.Default(), "US", zap.NewNop()),
		submitter: submitter,
		orders:    &stubOrderSvc{},
	}
}

func (e *testEnv) deps() Deps {
	return Deps{
		Accounts: e.accounts,
		Guests:   e.guests,
		Catalog:  e.catalog,
		Sessions: e.sessions,
		Orders:   e.orders,
	}
}
