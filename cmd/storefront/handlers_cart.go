package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lmoreno89/tienda-core/internal/cart"
)

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// getCartHandler godoc
// @Summary Current cart with derived totals
// @Produce json
// @Success 200 {object} cart.View
// @Router /cart [get]
func getCartHandler(m *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		crt, err := m.Get(c.Request.Context(), uid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, crt.View())
	}
}

// addCartItemHandler godoc
// @Summary Add a product to the cart (increments an existing line)
// @Accept json
// @Produce json
// @Success 200 {object} cart.View
// @Failure 409 {object} catalog.HTTPError
// @Router /cart/items [post]
func addCartItemHandler(m *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and quantity are required"})
			return
		}
		crt, err := m.AddItem(c.Request.Context(), uid, req.ProductID, req.Quantity)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, crt.View())
	}
}

// updateCartItemHandler sets a line to an exact quantity. Zero is rejected;
// removal has its own route.
func updateCartItemHandler(m *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
			return
		}
		crt, err := m.UpdateQuantity(c.Request.Context(), uid, c.Param("product_id"), req.Quantity)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, crt.View())
	}
}

func removeCartItemHandler(m *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		crt, err := m.RemoveItem(c.Request.Context(), uid, c.Param("product_id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, crt.View())
	}
}

func clearCartHandler(m *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		if err := m.Clear(c.Request.Context(), uid); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, (&cart.Cart{UserID: uid}).View())
	}
}

type anonymousCartRequest struct {
	Op        string    `json:"op"` // add | update | remove | clear
	Cart      cart.Cart `json:"cart"`
	ProductID string    `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
}

// anonymousCartHandler applies one mutation to a client-held cart and
// returns the updated value. Nothing is persisted server-side; the catalog
// is only read for validation and snapshots. Anonymous carts are not merged
// into the persisted cart at login; the client replays its lines instead.
func anonymousCartHandler(m *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req anonymousCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		req.Cart.UserID = ""

		var err error
		switch req.Op {
		case "add":
			err = m.AddAnonymousItem(c.Request.Context(), &req.Cart, req.ProductID, req.Quantity)
		case "update":
			err = m.UpdateAnonymousQuantity(c.Request.Context(), &req.Cart, req.ProductID, req.Quantity)
		case "remove":
			m.RemoveAnonymousItem(&req.Cart, req.ProductID)
		case "clear":
			m.ClearAnonymous(&req.Cart)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown op"})
			return
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, req.Cart.View())
	}
}
