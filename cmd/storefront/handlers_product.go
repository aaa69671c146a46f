package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lmoreno89/tienda-core/internal/catalog"
)

// listProductsHandler godoc
// @Summary Browse the catalog
// @Produce json
// @Success 200 {object} catalog.ListResponse
// @Router /products [get]
func listProductsHandler(store catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := c.Query("q")
		items, err := store.List(c.Request.Context(), catalog.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			fail(c, err)
			return
		}
		if items == nil {
			items = []catalog.Product{}
		}
		c.JSON(http.StatusOK, catalog.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

func getProductHandler(store catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := store.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
