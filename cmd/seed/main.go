package main

import (
	"context"
	"log"

	"socialshop/internal/config"
	"socialshop/internal/db"
	"socialshop/internal/logging"
	itemrepo "socialshop/internal/repository/item"
	sellerrepo "socialshop/internal/repository/seller"
	"socialshop/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New("seed", cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, sellerrepo.NewPostgres(pool), itemrepo.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.Int("items", n))
}
