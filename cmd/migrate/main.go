package main

import (
	"context"
	"flag"
	"log"

	"socialshop/internal/config"
	"socialshop/internal/db"
	"socialshop/internal/logging"
	"socialshop/internal/migrate"

	"go.uber.org/zap"
)

func main() {
	var down int
	flag.IntVar(&down, "down", 0, "Roll back this many migration steps instead of applying")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New("migrate", cfg.LogLevel)
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

	if down > 0 {
		if err := migrate.Rollback(ctx, pool, down); err != nil {
			logger.Fatal("rollback migrations", zap.Int("steps", down), zap.Error(err))
		}
		logger.Info("migrations rolled back", zap.Int("steps", down))
		return
	}

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	logger.Info("migrations applied", zap.Uint("version", version))
}
