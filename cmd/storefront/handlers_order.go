package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lmoreno89/tienda-core/internal/cart"
	"github.com/lmoreno89/tienda-core/internal/order"
)

// checkoutHandler godoc
// @Summary Convert a cart into an order
// @Accept json
// @Produce json
// @Param request body order.CheckoutRequest true "checkout form"
// @Success 201 {object} order.Order
// @Failure 400 {object} catalog.HTTPError
// @Failure 409 {object} catalog.HTTPError
// @Router /checkout [post]
func checkoutHandler(f *order.Factory, carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		uid := c.GetHeader("X-User-ID")
		items := make([]order.Item, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, order.Item{
				ProductID: it.ProductID,
				Name:      it.Name,
				Quantity:  it.Quantity,
				Price:     it.Price,
				Image:     it.Image,
			})
		}
		// Authenticated checkout with no explicit items consumes the
		// persisted cart.
		fromPersistedCart := false
		if len(items) == 0 && uid != "" {
			crt, err := carts.Get(c.Request.Context(), uid)
			if err != nil {
				fail(c, err)
				return
			}
			for _, l := range crt.Lines {
				items = append(items, order.Item{
					ProductID: l.ProductID,
					Name:      l.Name,
					Quantity:  l.Quantity,
					Price:     l.Price,
					Image:     l.Image,
				})
			}
			fromPersistedCart = true
		}

		o, err := f.Create(c.Request.Context(), order.CreateInput{
			UserID:        uid,
			Items:         items,
			Customer:      req.Customer,
			ShippingAddr:  req.ShippingAddr,
			BillingAddr:   req.BillingAddr,
			PaymentMethod: req.PaymentMethod,
			Pricing:       req.Pricing,
		})
		if err != nil {
			fail(c, err)
			return
		}
		if fromPersistedCart {
			// Best effort: the order exists either way, the user can
			// still clear the cart by hand.
			_ = carts.Clear(c.Request.Context(), uid)
		}
		c.JSON(http.StatusCreated, o)
	}
}

// listOrdersHandler filters by user and/or status with the usual pagination.
func listOrdersHandler(store order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		out, err := store.List(c.Request.Context(), order.Filter{
			UserID: c.Query("user_id"),
			Status: order.Status(c.Query("status")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			fail(c, err)
			return
		}
		if out == nil {
			out = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"items": out, "limit": limit, "offset": offset})
	}
}

// getOrderHandler godoc
// @Summary Order by id or human-readable number
// @Produce json
// @Success 200 {object} order.Order
// @Failure 404 {object} catalog.HTTPError
// @Router /orders/{id} [get]
func getOrderHandler(store order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var (
			o   *order.Order
			err error
		)
		// confirmation pages link by the customer-facing number
		if strings.HasPrefix(id, "ORD-") {
			o, err = store.GetByNumber(c.Request.Context(), id)
		} else {
			o, err = store.GetByID(c.Request.Context(), id)
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateOrderStatusHandler moves the fulfillment axis one step. Skipping
// states or moving backwards yields 409.
func updateOrderStatusHandler(lc *order.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.StatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		o, err := lc.SetStatus(c.Request.Context(), c.Param("id"), order.Status(req.Status))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updatePaymentStatusHandler(lc *order.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.StatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		o, err := lc.SetPaymentStatus(c.Request.Context(), c.Param("id"), order.PaymentStatus(req.Status))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updateOrderNotesHandler(lc *order.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.NotesUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		o, err := lc.UpdateNotes(c.Request.Context(), c.Param("id"), req.Notes)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
