package httpserver

import (
	"net/http"
	"strconv"

	"shopping-backend/internal/domain"
	itemsvc "shopping-backend/internal/service/item"

	"github.com/gin-gonic/gin"
)

func (a *api) listItems(c *gin.Context) {
	items, err := a.items.List(c.Request.Context())
	if err != nil {
		a.writeError(c, err)
		return
	}
	resp := make([]itemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, a.toItem(it))
	}
	c.JSON(http.StatusOK, resp)
}

func (a *api) getItem(c *gin.Context) {
	id, ok := itemIDParam(c, "id")
	if !ok {
		return
	}
	it, err := a.items.Get(c.Request.Context(), id)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.toItem(*it))
}

func (a *api) createItem(c *gin.Context) {
	in, ok := bindItemInput(c)
	if !ok {
		return
	}
	it, err := a.items.Create(c.Request.Context(), in)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a.toItem(*it))
}

func (a *api) updateItem(c *gin.Context) {
	id, ok := itemIDParam(c, "id")
	if !ok {
		return
	}
	in, ok := bindItemInput(c)
	if !ok {
		return
	}
	it, err := a.items.Update(c.Request.Context(), id, in)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.toItem(*it))
}

func (a *api) patchItem(c *gin.Context) {
	id, ok := itemIDParam(c, "id")
	if !ok {
		return
	}
	in, ok := bindItemInput(c)
	if !ok {
		return
	}
	it, err := a.items.Patch(c.Request.Context(), id, in)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.toItem(*it))
}

func (a *api) deleteItem(c *gin.Context) {
	id, ok := itemIDParam(c, "id")
	if !ok {
		return
	}
	if err := a.items.Delete(c.Request.Context(), id); err != nil {
		a.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// itemIDParam parses a path id. Ids that cannot name a row are reported as a
// missing item.
func itemIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(domain.ResourceItem)})
		return 0, false
	}
	return id, true
}

func bindItemInput(c *gin.Context) (itemsvc.Input, bool) {
	var in itemsvc.Input
	if !bindOptionalJSON(c, &in) {
		return itemsvc.Input{}, false
	}
	return in, true
}
