package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lmoreno89/tienda-core/internal/analytics"
	"github.com/lmoreno89/tienda-core/internal/config"
)

// getDashboardHandler godoc
// @Summary Admin dashboard rollup
// @Produce json
// @Success 200 {object} analytics.Dashboard
// @Router /dashboard [get]
func getDashboardHandler(agg *analytics.Aggregator, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := agg.Dashboard(c.Request.Context(), cfg.LowStockThreshold, cfg.TopSellersLimit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func monthlySeriesHandler(agg *analytics.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
		series, err := agg.MonthlySeries(c.Request.Context(), months)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"months": months, "series": series})
	}
}

func lowStockHandler(agg *analytics.Aggregator, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", strconv.Itoa(cfg.LowStockThreshold)))
		items, err := agg.LowStock(c.Request.Context(), threshold)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"threshold": threshold, "items": items})
	}
}

func topSellersHandler(agg *analytics.Aggregator, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(cfg.TopSellersLimit)))
		items, err := agg.TopSellers(c.Request.Context(), limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"limit": limit, "items": items})
	}
}
