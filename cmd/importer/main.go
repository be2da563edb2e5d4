package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"shopping-backend/internal/config"
	"shopping-backend/internal/db"
	"shopping-backend/internal/events"
	"shopping-backend/internal/importer"
	itemrepo "shopping-backend/internal/repository/item"
	itemsvc "shopping-backend/internal/service/item"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV (id,name,description,price,stock,image)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC)
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

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer kp.Close()
		publisher = kp
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	items := itemsvc.New(itemrepo.NewPostgres(pool, nil), publisher, logger)
	imp := importer.NewCSVImporter(f, items)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d created, %d updated: %v", res.Created, res.Updated, err)
	}

	fmt.Printf("Imported %d new and %d updated items in %s\n", res.Created, res.Updated, time.Since(start).Truncate(time.Millisecond))
}
