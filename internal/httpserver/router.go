package httpserver

import (
	"context"
	"errors"
	"time"

	"socialshop/internal/domain"
	"socialshop/internal/service/account"
	cartsvc "socialshop/internal/service/cart"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type accountService interface {
	Signup(ctx context.Context, in account.SignupInput) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*domain.Profile, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Profile, error)
	AccessTTLSeconds() int
}

type guestService interface {
	Issue(ctx context.Context) (string, string, error)
	LookupByToken(ctx context.Context, token string) (string, error)
	Revoke(token string)
	AccessTTLSeconds() int
}

type catalogService interface {
	List(ctx context.Context, category string) ([]domain.ShopItem, error)
	Get(ctx context.Context, id string) (*domain.ShopItem, error)
	Seller(ctx context.Context, id string) (*domain.Seller, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type sessionService interface {
	Session(key string) *cartsvc.Session
	AddItem(ctx context.Context, key, itemID string, quantity int) (domain.CartLineItem, error)
	Adopt(guestKey, profileKey string) (*cartsvc.Session, error)
}

type orderService interface {
	ListOrders(ctx context.Context, buyerID string) ([]domain.OrderHeader, error)
	GetOrder(ctx context.Context, buyerID, id string) (*domain.OrderHeader, error)
}

// Deps carries the services the handlers call.
type Deps struct {
	Accounts accountService
	Guests   guestService
	Catalog  catalogService
	Sessions sessionService
	Orders   orderService
}

func (d Deps) validate() error {
	switch {
	case d.Accounts == nil:
		return errors.New("accounts service required")
	case d.Guests == nil:
		return errors.New("guest service required")
	case d.Catalog == nil:
		return errors.New("catalog service required")
	case d.Sessions == nil:
		return errors.New("session service required")
	case d.Orders == nil:
		return errors.New("order service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger))
	router.Use(cors.New(corsConfig(corsOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/")
	api.Use(authMiddleware(deps.Accounts, deps.Guests))

	api.POST("/auth/signup", h.signup)
	api.POST("/auth/token", h.token)
	api.POST("/auth/guest", h.guest)

	api.GET("/shop/items", h.listItems)
	api.GET("/shop/items/:id", h.getItem)
	api.GET("/shop/categories", h.listCategories)
	api.GET("/sellers/:id", h.getSeller)

	me := api.Group("/me")
	me.GET("", requireProfile(), h.me)

	session := me.Group("", requireSession())
	session.GET("/cart", h.getCart)
	session.POST("/cart/items", h.addCartItem)
	session.PATCH("/cart/items/:lineId", h.updateCartItem)
	session.DELETE("/cart/items/:lineId", h.removeCartItem)
	session.DELETE("/cart", h.clearCart)
	session.POST("/cart/open", h.openCart)
	session.POST("/cart/close", h.closeCart)

	session.GET("/checkout", h.getCheckout)
	session.POST("/checkout/open", h.openCheckout)
	session.POST("/checkout/close", h.closeCheckout)
	session.PUT("/checkout/shipping", h.setShipping)
	session.PUT("/checkout/payment", h.setPayment)
	session.POST("/checkout/continue", h.continueCheckout)
	session.POST("/checkout/back", h.backCheckout)
	session.POST("/checkout/place", h.placeOrder)

	session.GET("/orders/current", h.currentOrder)
	session.DELETE("/orders/current", h.dismissCurrentOrder)

	orders := me.Group("/orders", requireProfile())
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", guestTokenHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
