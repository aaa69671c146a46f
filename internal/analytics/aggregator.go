// Package analytics derives dashboard rollups from the order ledger and the
// catalog. Everything here is read-only and recomputed per query; with no
// writes in between, repeated calls return identical results.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lmoreno89/tienda-core/internal/catalog"
	"github.com/lmoreno89/tienda-core/internal/order"
)

const lowStockCap = 20

// Summary aggregates revenue over non-cancelled orders.
// swagger:model
type Summary struct {
	TotalRevenue  string `json:"total_revenue"`
	TotalOrders   int    `json:"total_orders"`
	AvgOrderValue string `json:"avg_order_value"`
}

// MonthBucket is one month of the revenue series. Months with no orders are
// absent from the series, not zero-filled.
type MonthBucket struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Revenue string `json:"revenue"`
	Orders  int    `json:"orders"`
}

// SellerStat ranks a product by units sold across the whole ledger.
// Cancelled orders are included here, unlike Summary: top sellers reflect
// demand, not realized revenue.
type SellerStat struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	TotalSold int    `json:"total_sold"`
	Revenue   string `json:"revenue"`
}

// Dashboard is the admin landing payload: summary numbers, status counts,
// month-over-month trends and the operational lists.
// swagger:model
type Dashboard struct {
	Summary         Summary              `json:"summary"`
	StatusBreakdown map[order.Status]int `json:"status_breakdown"`
	RevenueTrendPct float64              `json:"revenue_trend_pct"`
	OrdersTrendPct  float64              `json:"orders_trend_pct"`
	LowStock        []catalog.Product    `json:"low_stock"`
	TopSellers      []SellerStat         `json:"top_sellers"`
}

type Aggregator struct {
	orders   order.Store
	products catalog.Store
}

func NewAggregator(orders order.Store, products catalog.Store) *Aggregator {
	return &Aggregator{orders: orders, products: products}
}

// RevenueSummary sums order totals, excluding cancelled orders. An empty
// ledger yields zeros, never an error.
func (a *Aggregator) RevenueSummary(ctx context.Context) (Summary, error) {
	ledger, err := a.orders.ScanAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(ledger), nil
}

func summarize(ledger []order.Order) Summary {
	revenue := decimal.Zero
	count := 0
	for i := range ledger {
		if ledger[i].Status == order.StatusCancelled {
			continue
		}
		revenue = revenue.Add(orZero(ledger[i].Total))
		count++
	}
	avg := decimal.Zero
	if count > 0 {
		avg = revenue.DivRound(decimal.NewFromInt(int64(count)), 2)
	}
	return Summary{
		TotalRevenue:  revenue.StringFixed(2),
		TotalOrders:   count,
		AvgOrderValue: avg.StringFixed(2),
	}
}

// StatusBreakdown counts orders per status. Statuses with no orders are
// omitted; callers treat absence as zero.
func (a *Aggregator) StatusBreakdown(ctx context.Context) (map[order.Status]int, error) {
	ledger, err := a.orders.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	return breakdown(ledger), nil
}

func breakdown(ledger []order.Order) map[order.Status]int {
	out := make(map[order.Status]int)
	for i := range ledger {
		out[ledger[i].Status]++
	}
	return out
}

// MonthlySeries buckets non-cancelled orders by creation year/month over the
// lookback window, ascending. Gap months are silently absent.
func (a *Aggregator) MonthlySeries(ctx context.Context, lookbackMonths int) ([]MonthBucket, error) {
	ledger, err := a.orders.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	return monthlySeries(ledger, lookbackMonths, time.Now().UTC()), nil
}

func monthlySeries(ledger []order.Order, lookbackMonths int, now time.Time) []MonthBucket {
	if lookbackMonths < 1 {
		lookbackMonths = 1
	}
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(lookbackMonths - 1), 0)

	type key struct{ year, month int }
	revenue := make(map[key]decimal.Decimal)
	counts := make(map[key]int)
	for i := range ledger {
		o := &ledger[i]
		if o.Status == order.StatusCancelled {
			continue
		}
		created := o.CreatedAt.UTC()
		if created.Before(cutoff) {
			continue
		}
		k := key{created.Year(), int(created.Month())}
		revenue[k] = revenue[k].Add(orZero(o.Total))
		counts[k]++
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthBucket{
			Year:    k.year,
			Month:   k.month,
			Revenue: revenue[k].StringFixed(2),
			Orders:  counts[k],
		})
	}
	return out
}

// Trend is the period-over-period percent delta. A zero prior yields 0, not
// a division error.
func Trend(current, prior decimal.Decimal) float64 {
	if prior.IsZero() {
		return 0
	}
	return current.Sub(prior).Div(prior).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// LowStock lists active products with stock below threshold, lowest first,
// capped so the dashboard stays bounded.
func (a *Aggregator) LowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	return a.products.LowStock(ctx, threshold, lowStockCap)
}

// TopSellers flattens every order's items (cancelled orders included),
// groups by product and ranks by units sold.
func (a *Aggregator) TopSellers(ctx context.Context, limit int) ([]SellerStat, error) {
	ledger, err := a.orders.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	return topSellers(ledger, limit), nil
}

func topSellers(ledger []order.Order, limit int) []SellerStat {
	if limit < 1 {
		limit = 5
	}
	sold := make(map[string]int)
	revenue := make(map[string]decimal.Decimal)
	names := make(map[string]string)
	for i := range ledger {
		for _, it := range ledger[i].Items {
			sold[it.ProductID] += it.Quantity
			revenue[it.ProductID] = revenue[it.ProductID].
				Add(orZero(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
			names[it.ProductID] = it.Name
		}
	}

	out := make([]SellerStat, 0, len(sold))
	for id, qty := range sold {
		out = append(out, SellerStat{
			ProductID: id,
			Name:      names[id],
			TotalSold: qty,
			Revenue:   revenue[id].StringFixed(2),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Dashboard assembles the whole admin payload in one pass over the ledger:
// summary, breakdown, current-vs-prior month trends, low stock and top
// sellers.
func (a *Aggregator) Dashboard(ctx context.Context, lowStockThreshold, topLimit int) (*Dashboard, error) {
	ledger, err := a.orders.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	low, err := a.products.LowStock(ctx, lowStockThreshold, lowStockCap)
	if err != nil {
		return nil, err
	}

	curRev, curOrders := monthWindow(ledger, time.Now().UTC(), 0)
	priorRev, priorOrders := monthWindow(ledger, time.Now().UTC(), -1)

	return &Dashboard{
		Summary:         summarize(ledger),
		StatusBreakdown: breakdown(ledger),
		RevenueTrendPct: Trend(curRev, priorRev),
		OrdersTrendPct:  Trend(decimal.NewFromInt(int64(curOrders)), decimal.NewFromInt(int64(priorOrders))),
		LowStock:        low,
		TopSellers:      topSellers(ledger, topLimit),
	}, nil
}

// monthWindow sums non-cancelled revenue and order count for the month at
// the given offset from now (0 = current month, -1 = prior month).
func monthWindow(ledger []order.Order, now time.Time, offset int) (decimal.Decimal, int) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
	end := start.AddDate(0, 1, 0)

	revenue := decimal.Zero
	count := 0
	for i := range ledger {
		o := &ledger[i]
		if o.Status == order.StatusCancelled {
			continue
		}
		created := o.CreatedAt.UTC()
		if created.Before(start) || !created.Before(end) {
			continue
		}
		revenue = revenue.Add(orZero(o.Total))
		count++
	}
	return revenue, count
}

func orZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
