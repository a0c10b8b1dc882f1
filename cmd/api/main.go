package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialshop/internal/auth"
	"socialshop/internal/cache"
	"socialshop/internal/config"
	"socialshop/internal/db"
	"socialshop/internal/httpserver"
	"socialshop/internal/logging"
	itemrepo "socialshop/internal/repository/item"
	orderrepo "socialshop/internal/repository/order"
	profilerepo "socialshop/internal/repository/profile"
	sellerrepo "socialshop/internal/repository/seller"
	tokenrepo "socialshop/internal/repository/token"
	accountsvc "socialshop/internal/service/account"
	anonymoussvc "socialshop/internal/service/anonymous"
	cartsvc "socialshop/internal/service/cart"
	catalogsvc "socialshop/internal/service/catalog"
	ordersvc "socialshop/internal/service/order"

	"go.uber.org/zap"
)

const janitorInterval = time.Minute

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New("api", cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	readCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		logger.Fatal("init cache", zap.Error(err))
	}

	itemRepo := itemrepo.NewPostgres(dbpool, logger)
	sellerRepo := sellerrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	profileRepo := profilerepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	catalogService := catalogsvc.New(itemRepo, sellerRepo, readCache, logger)
	orderService := ordersvc.New(orderRepo, itemRepo, sellerRepo, auth.Identity{}, readCache, logger)
	sessionService := cartsvc.New(catalogService, orderService, cfg.Pricing, cfg.DefaultCountry, logger)
	accountService := accountsvc.New(profileRepo, tokenRepo, logger)
	anonymousService := anonymoussvc.New()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Accounts: accountService,
		Guests:   anonymousService,
		Catalog:  catalogService,
		Sessions: sessionService,
		Orders:   orderService,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go runJanitor(janitorCtx, logger, sessionService, accountService, cfg.SessionIdle)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}
	stopJanitor()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// runJanitor drops idle shopper sessions and expired profile tokens until ctx is done.
func runJanitor(ctx context.Context, logger *zap.Logger, sessions *cartsvc.Service, accounts *accountsvc.Service, maxIdle time.Duration) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(maxIdle); n > 0 {
				logger.Info("swept idle sessions", zap.Int("count", n))
			}
			n, err := accounts.PurgeExpiredTokens(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Warn("purge expired tokens", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				logger.Info("purged expired tokens", zap.Int64("count", n))
			}
		}
	}
}
