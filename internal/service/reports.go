package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
)

// QueueEntry is an active order as shown on the kitchen queue.
type QueueEntry struct {
	Order            model.OrderSnapshot `json:"order"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
	ElapsedMinutes   int                 `json:"elapsed_minutes"`
}

// Queue returns pending, preparing and ready orders, priority orders first,
// then oldest first.
func (r *Restaurant) Queue() []QueueEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var active []*model.Order
	for _, o := range r.orders {
		if !o.IsTerminal() {
			active = append(active, o)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].IsPriority() != active[j].IsPriority() {
			return active[i].IsPriority()
		}
		return active[i].Timestamp().Before(active[j].Timestamp())
	})

	out := make([]QueueEntry, len(active))
	for i, o := range active {
		elapsed := int(now.Sub(o.Timestamp()).Minutes())
		if elapsed < 0 {
			elapsed = 0
		}
		out[i] = QueueEntry{
			Order:            o.Snapshot(),
			EstimatedMinutes: o.PreparationTimeEstimate(),
			ElapsedMinutes:   elapsed,
		}
	}
	return out
}

// Receipt renders an order with the configured restaurant details.
func (r *Restaurant) Receipt(orderID string) (model.Receipt, error) {
	cfg := r.settings.Current()
	header := model.ReceiptHeader{
		Name:    cfg.RestaurantName,
		Address: cfg.RestaurantAddress,
		Phone:   cfg.RestaurantPhone,
		Email:   cfg.RestaurantEmail,
		Footer:  cfg.ReceiptFooter,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.orderLocked(orderID)
	if err != nil {
		return model.Receipt{}, err
	}
	return o.Receipt(header, cfg.CurrencySymbol, time.Local), nil
}

type DaySales struct {
	Date   string          `json:"date"`
	Orders int             `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

type TypeSales struct {
	Orders int             `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

// SalesReport aggregates the sales log over a date range.
type SalesReport struct {
	StartDate    string               `json:"start_date,omitempty"`
	EndDate      string               `json:"end_date,omitempty"`
	OrderCount   int                  `json:"order_count"`
	ItemsSold    int                  `json:"items_sold"`
	Subtotal     decimal.Decimal      `json:"subtotal"`
	TaxAmount    decimal.Decimal      `json:"tax_amount"`
	TotalAmount  decimal.Decimal      `json:"total_amount"`
	AverageOrder decimal.Decimal      `json:"average_order"`
	ByDay        []DaySales           `json:"by_day"`
	ByOrderType  map[string]TypeSales `json:"by_order_type"`
	SkippedRows  int                  `json:"skipped_rows"`
}

// SalesReport reads the sales log between start and end inclusive. Zero
// bounds are open.
func (r *Restaurant) SalesReport(start, end time.Time) (SalesReport, error) {
	records, stats, err := r.store.LoadSalesData(start, end)
	if err != nil {
		return SalesReport{}, fmt.Errorf("load sales: %w", err)
	}

	report := SalesReport{
		Subtotal:     decimal.Zero,
		TaxAmount:    decimal.Zero,
		TotalAmount:  decimal.Zero,
		AverageOrder: decimal.Zero,
		ByDay:        []DaySales{},
		ByOrderType:  make(map[string]TypeSales),
		SkippedRows:  stats.Skipped,
	}
	if !start.IsZero() {
		report.StartDate = start.Format(validate.DateLayout)
	}
	if !end.IsZero() {
		report.EndDate = end.Format(validate.DateLayout)
	}

	days := make(map[string]*DaySales)
	for _, rec := range records {
		report.OrderCount++
		report.ItemsSold += rec.ItemsCount
		report.Subtotal = report.Subtotal.Add(rec.Subtotal)
		report.TaxAmount = report.TaxAmount.Add(rec.TaxAmount)
		report.TotalAmount = report.TotalAmount.Add(rec.TotalAmount)

		d, ok := days[rec.Date]
		if !ok {
			d = &DaySales{Date: rec.Date, Total: decimal.Zero}
			days[rec.Date] = d
		}
		d.Orders++
		d.Total = d.Total.Add(rec.TotalAmount)

		ts := report.ByOrderType[rec.OrderType]
		ts.Orders++
		ts.Total = ts.Total.Add(rec.TotalAmount)
		report.ByOrderType[rec.OrderType] = ts
	}
	if report.OrderCount > 0 {
		report.AverageOrder = report.TotalAmount.Div(decimal.NewFromInt(int64(report.OrderCount))).RoundBank(2)
	}
	for _, d := range days {
		report.ByDay = append(report.ByDay, *d)
	}
	sort.Slice(report.ByDay, func(i, j int) bool { return report.ByDay[i].Date < report.ByDay[j].Date })
	return report, nil
}
