package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"shopping-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// money renders with at least two decimals and never drops precision:
// 1.5 becomes "1.50" but 0.5005 stays "0.5005".
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	d := decimal.Decimal(m)
	if d.Equal(d.Round(domain.PriceDecimalPlaces)) {
		return json.Marshal(d.StringFixed(domain.PriceDecimalPlaces))
	}
	return json.Marshal(d.String())
}

type itemResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       money     `json:"price"`
	Stock       int       `json:"stock"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type cartItemResponse struct {
	ID       int64        `json:"id"`
	Cart     int64        `json:"cart"`
	Item     itemResponse `json:"item"`
	Quantity int          `json:"quantity"`
	GetCost  money        `json:"get_cost"`
}

type totalResponse struct {
	Subtotal    money `json:"subtotal"`
	Tax         money `json:"tax"`
	DeliveryFee money `json:"delivery_fee"`
	Total       money `json:"total"`
}

type cartResponse struct {
	ID        int64              `json:"id"`
	Items     []cartItemResponse `json:"items"`
	Total     totalResponse      `json:"total"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (a *api) toItem(it domain.Item) itemResponse {
	return itemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       money(it.Price),
		Stock:       it.Stock,
		Image:       a.imageURL(it.Image),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

func (a *api) toCartItem(ci domain.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:       ci.ID,
		Cart:     ci.CartID,
		Item:     a.toItem(ci.Item),
		Quantity: ci.Quantity,
		GetCost:  money(ci.Cost()),
	}
}

func (a *api) toCart(c domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(c.Items))
	for _, ci := range c.Items {
		items = append(items, a.toCartItem(ci))
	}
	t := c.Totals()
	return cartResponse{
		ID:    c.ID,
		Items: items,
		Total: totalResponse{
			Subtotal:    money(t.Subtotal),
			Tax:         money(t.Tax),
			DeliveryFee: money(t.DeliveryFee),
			Total:       money(t.Total),
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// imageURL makes a stored relative reference absolute when a file host is
// configured. Absolute URLs pass through unchanged.
func (a *api) imageURL(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	if a.fileURLHost == "" || strings.HasPrefix(*ref, "http://") || strings.HasPrefix(*ref, "https://") {
		return ref
	}
	u := a.fileURLHost + "/" + strings.TrimLeft(*ref, "/")
	return &u
}

func writeMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func writeBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeError maps domain errors onto status codes. Anything unrecognised is a
// 500 whose detail goes to the log only.
func (a *api) writeError(c *gin.Context, err error) {
	var (
		nf    *domain.NotFoundError
		ve    *domain.ValidationError
		stock *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &stock):
		c.JSON(http.StatusBadRequest, gin.H{"error": stock.Error(), "available": stock.Available})
	case errors.As(err, &ve):
		body := gin.H{"error": ve.Message}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(nf.Resource)})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		a.logger.Printf("http: %s %s error=%v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func notFoundMessage(resource string) string {
	switch resource {
	case domain.ResourceItem:
		return "Item not found"
	case domain.ResourceCartItem:
		return "Item not found in cart"
	case domain.ResourceCart:
		return "Cart not found"
	default:
		return "Not found"
	}
}
