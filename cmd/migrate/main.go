package main

import (
	"context"
	"flag"
	"log"
	"os"

	"shopping-backend/internal/config"
	"shopping-backend/internal/db"
	"shopping-backend/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "Revert all migrations instead of applying them")
	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load(".env")
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if *down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatalf("revert migrations: %v", err)
		}
		logger.Println("migrations reverted")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}
	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		logger.Fatalf("read schema version: %v", err)
	}
	logger.Printf("migrations applied, version=%d dirty=%t", version, dirty)
}
