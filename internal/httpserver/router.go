package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"shopping-backend/internal/domain"
	cartsvc "shopping-backend/internal/service/cart"
	itemsvc "shopping-backend/internal/service/item"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type itemService interface {
	List(ctx context.Context) ([]domain.Item, error)
	Get(ctx context.Context, id int64) (*domain.Item, error)
	Create(ctx context.Context, in itemsvc.Input) (*domain.Item, error)
	Update(ctx context.Context, id int64, in itemsvc.Input) (*domain.Item, error)
	Patch(ctx context.Context, id int64, in itemsvc.Input) (*domain.Item, error)
	Delete(ctx context.Context, id int64) error
}

type cartService interface {
	Get(ctx context.Context, cartID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartItem, error)
	RemoveOne(ctx context.Context, cartID, itemID int64) (cartsvc.RemoveResult, error)
	RemoveLine(ctx context.Context, cartID, itemID int64) error
	Clear(ctx context.Context, cartID int64) (int, error)
}

// Deps are the services the routes call into.
type Deps struct {
	ItemSvc itemService
	CartSvc cartService
}

// Options tune response rendering and CORS.
type Options struct {
	// FileURLHost prefixes relative image references, e.g. "https://cdn.example.com".
	FileURLHost string
	// CORSOrigins lists allowed origins. Empty or "*" allows any origin.
	CORSOrigins []string
}

type api struct {
	items       itemService
	carts       cartService
	logger      *log.Logger
	fileURLHost string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db pinger, deps Deps, opts Options) (*gin.Engine, error) {
	if deps.ItemSvc == nil {
		return nil, errors.New("item service is required")
	}
	if deps.CartSvc == nil {
		return nil, errors.New("cart service is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	corsCfg := corsConfig(opts.CORSOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors config: %w", err)
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), cors.New(corsCfg))

	a := &api{
		items:       deps.ItemSvc,
		carts:       deps.CartSvc,
		logger:      logger,
		fileURLHost: strings.TrimRight(opts.FileURLHost, "/"),
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	handle(router, "GET", "/items", a.listItems)
	handle(router, "POST", "/items", a.createItem)
	handle(router, "GET", "/items/:id", a.getItem)
	handle(router, "PUT", "/items/:id", a.updateItem)
	handle(router, "PATCH", "/items/:id", a.patchItem)
	handle(router, "DELETE", "/items/:id", a.deleteItem)

	handle(router, "GET", "/cart", a.getCart)
	handle(router, "POST", "/cart", a.addToCart)
	handle(router, "DELETE", "/cart", a.removeFromCart)
	handle(router, "POST", "/cart/clear", a.clearCart)
	handle(router, "PUT", "/cart/items/:item_id", a.setCartQuantity)
	handle(router, "PATCH", "/cart/items/:item_id", a.setCartQuantity)
	handle(router, "DELETE", "/cart/items/:item_id", a.removeCartLine)

	return router, nil
}

// handle registers path both with and without the trailing slash.
func handle(router *gin.Engine, method, path string, h gin.HandlerFunc) {
	router.Handle(method, path, h)
	router.Handle(method, path+"/", h)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", cartIDHeader)
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
