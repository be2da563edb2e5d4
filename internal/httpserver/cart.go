package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"shopping-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// cartIDHeader selects the cart a request works on. Requests without it use
// domain.DefaultCartID.
const cartIDHeader = "X-Cart-ID"

type cartItemRequest struct {
	ItemID   *int64 `json:"item_id"`
	Quantity *int   `json:"quantity"`
}

// hasItemID reports whether a usable item id was sent. Zero counts as missing.
func (r cartItemRequest) hasItemID() bool {
	return r.ItemID != nil && *r.ItemID > 0
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (a *api) getCart(c *gin.Context) {
	cartID, ok := cartIDFromHeader(c)
	if !ok {
		return
	}
	cart, err := a.carts.Get(c.Request.Context(), cartID)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.toCart(*cart))
}

func (a *api) addToCart(c *gin.Context) {
	cartID, ok := cartIDFromHeader(c)
	if !ok {
		return
	}
	var req cartItemRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if !req.hasItemID() {
		writeBadRequest(c, "Item ID is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if _, err := a.carts.AddItem(c.Request.Context(), cartID, *req.ItemID, quantity); err != nil {
		a.writeError(c, err)
		return
	}
	writeMessage(c, "Item added to cart")
}

func (a *api) removeFromCart(c *gin.Context) {
	cartID, ok := cartIDFromHeader(c)
	if !ok {
		return
	}
	var req cartItemRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if !req.hasItemID() {
		writeBadRequest(c, "Item ID is required")
		return
	}
	res, err := a.carts.RemoveOne(c.Request.Context(), cartID, *req.ItemID)
	if err != nil {
		a.writeError(c, err)
		return
	}
	if res.Deleted {
		writeMessage(c, "Item removed from cart")
		return
	}
	writeMessage(c, "One quantity removed from cart")
}

func (a *api) setCartQuantity(c *gin.Context) {
	cartID, ok := cartIDFromHeader(c)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(c, "item_id")
	if !ok {
		return
	}
	var req quantityRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.Quantity == nil {
		writeBadRequest(c, "Quantity is required")
		return
	}
	line, err := a.carts.SetQuantity(c.Request.Context(), cartID, itemID, *req.Quantity)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.toCartItem(*line))
}

func (a *api) removeCartLine(c *gin.Context) {
	cartID, ok := cartIDFromHeader(c)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(c, "item_id")
	if !ok {
		return
	}
	if err := a.carts.RemoveLine(c.Request.Context(), cartID, itemID); err != nil {
		a.writeError(c, err)
		return
	}
	writeMessage(c, "Item removed from cart")
}

func (a *api) clearCart(c *gin.Context) {
	cartID, ok := cartIDFromHeader(c)
	if !ok {
		return
	}
	removed, err := a.carts.Clear(c.Request.Context(), cartID)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "removed": removed})
}

func cartIDFromHeader(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.GetHeader(cartIDHeader))
	if raw == "" {
		return domain.DefaultCartID, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(c, "Invalid cart id")
		return 0, false
	}
	return id, true
}

// bindOptionalJSON decodes the body into dst. An empty body leaves dst as is.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(c, "invalid request body")
		return false
	}
	return true
}
