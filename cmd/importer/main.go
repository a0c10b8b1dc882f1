package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"socialshop/internal/config"
	"socialshop/internal/db"
	"socialshop/internal/importer"
	"socialshop/internal/logging"
	itemrepo "socialshop/internal/repository/item"
	sellerrepo "socialshop/internal/repository/seller"

	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to shop items CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New("importer", cfg.LogLevel)
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

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, itemrepo.NewPostgres(pool, logger), sellerrepo.NewPostgres(pool), logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("Imported %d shop items in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
