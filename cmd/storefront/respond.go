package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lmoreno89/tienda-core/internal/cart"
	"github.com/lmoreno89/tienda-core/internal/catalog"
	"github.com/lmoreno89/tienda-core/internal/inventory"
	"github.com/lmoreno89/tienda-core/internal/order"
)

// fail maps core errors onto HTTP statuses. Insufficient stock carries the
// available count so the client can say "only 3 left" instead of a generic
// failure.
func fail(c *gin.Context, err error) {
	var stockErr *catalog.InsufficientStockError
	var valErr *order.ValidationError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Error()})
	case errors.Is(err, order.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, inventory.ErrInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, order.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// userID pulls the caller identity injected by the auth layer in front of
// this service. Authentication itself is out of scope here.
func userID(c *gin.Context) (string, bool) {
	uid := c.GetHeader("X-User-ID")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return "", false
	}
	return uid, true
}
