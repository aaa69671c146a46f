// @title Tienda storefront API
// @version 1.0
// @description Cart, checkout, order management and dashboard endpoints.
// @BasePath /
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"

	_ "github.com/lmoreno89/tienda-core/docs"
	"github.com/lmoreno89/tienda-core/internal/analytics"
	"github.com/lmoreno89/tienda-core/internal/cart"
	"github.com/lmoreno89/tienda-core/internal/catalog"
	"github.com/lmoreno89/tienda-core/internal/config"
	"github.com/lmoreno89/tienda-core/internal/httpx"
	"github.com/lmoreno89/tienda-core/internal/inventory"
	"github.com/lmoreno89/tienda-core/internal/order"
)

func main() {
	cfg := config.Load()

	db, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[main] postgres: %v", err)
	}
	defer db.Close()

	products := catalog.NewPGStore(db)
	carts := cart.NewPGStore(db)
	orders := order.NewPGStore(db)

	guard := inventory.NewGuard(products)
	manager := cart.NewManager(carts, guard)
	factory := order.NewFactory(orders, guard)
	lifecycle := order.NewLifecycle(orders)
	aggregator := analytics.NewAggregator(orders, products)

	r := newRouter(cfg, products, manager, factory, lifecycle, orders, aggregator)

	log.Printf("[main] storefront listening on %s", cfg.Addr)
	log.Fatal(r.Run(cfg.Addr))
}

func newRouter(
	cfg config.Config,
	products catalog.Store,
	manager *cart.Manager,
	factory *order.Factory,
	lifecycle *order.Lifecycle,
	orders order.Store,
	aggregator *analytics.Aggregator,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	r.GET("/products", listProductsHandler(products))
	r.GET("/products/:id", getProductHandler(products))

	r.GET("/cart", getCartHandler(manager))
	r.POST("/cart/items", addCartItemHandler(manager))
	r.PUT("/cart/items/:product_id", updateCartItemHandler(manager))
	r.DELETE("/cart/items/:product_id", removeCartItemHandler(manager))
	r.DELETE("/cart", clearCartHandler(manager))
	r.POST("/cart/anonymous", anonymousCartHandler(manager))

	r.POST("/checkout", checkoutHandler(factory, manager))

	r.GET("/orders", listOrdersHandler(orders))
	r.GET("/orders/:id", getOrderHandler(orders))
	r.PUT("/orders/:id/status", updateOrderStatusHandler(lifecycle))
	r.PUT("/orders/:id/payment-status", updatePaymentStatusHandler(lifecycle))
	r.PUT("/orders/:id/notes", updateOrderNotesHandler(lifecycle))

	r.GET("/dashboard", getDashboardHandler(aggregator, cfg))
	r.GET("/dashboard/monthly", monthlySeriesHandler(aggregator))
	r.GET("/dashboard/low-stock", lowStockHandler(aggregator, cfg))
	r.GET("/dashboard/top-sellers", topSellersHandler(aggregator, cfg))

	return r
}
