package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopping-backend/internal/config"
	"shopping-backend/internal/db"
	"shopping-backend/internal/events"
	"shopping-backend/internal/httpserver"
	"shopping-backend/internal/migrate"
	cartrepo "shopping-backend/internal/repository/cart"
	itemrepo "shopping-backend/internal/repository/item"
	cartsvc "shopping-backend/internal/service/cart"
	itemsvc "shopping-backend/internal/service/item"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load(".env")
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	if cfg.AutoMigrate {
		if err := migrate.Apply(ctx, dbpool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Printf("migrations applied")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Printf("close kafka publisher: %v", err)
			}
		}()
		publisher = kp
		logger.Printf("publishing events to topic %s", cfg.KafkaTopic)
	}

	itemService := itemsvc.New(itemrepo.NewPostgres(dbpool, logger), publisher, logger)
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool, logger), publisher, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ItemSvc: itemService,
		CartSvc: cartService,
	}, httpserver.Options{
		FileURLHost: cfg.FileURLHost,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
