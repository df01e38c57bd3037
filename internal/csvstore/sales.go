package csvstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
)

// SalesRecord is one row of the append-only sales log.
type SalesRecord struct {
	Date         string          `json:"date"`
	OrderID      string          `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	OrderType    string          `json:"order_type"`
	Status       string          `json:"status"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ItemsCount   int             `json:"items_count"`
}

// NewSalesRecord flattens o. The date is the order's creation day in UTC and
// an order without a customer name is logged under model.GuestName.
func NewSalesRecord(o *model.Order) SalesRecord {
	return SalesRecord{
		Date:         o.Timestamp().UTC().Format(validate.DateLayout),
		OrderID:      o.ID(),
		CustomerName: o.DisplayName(),
		OrderType:    o.OrderType(),
		Status:       o.Status(),
		Subtotal:     o.Subtotal(),
		TaxAmount:    o.TaxAmount(),
		TotalAmount:  o.TotalAmount(),
		ItemsCount:   o.ItemCount(),
	}
}

// AppendSalesRecord appends one row for o to the sales log without reading
// the existing file.
func (s *Store) AppendSalesRecord(o *model.Order) error {
	rec := NewSalesRecord(o)

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(SalesFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write(salesHeader)
	}
	w.Write([]string{
		rec.Date,
		rec.OrderID,
		rec.CustomerName,
		rec.OrderType,
		rec.Status,
		rec.Subtotal.StringFixed(2),
		rec.TaxAmount.StringFixed(2),
		rec.TotalAmount.StringFixed(2),
		strconv.Itoa(rec.ItemsCount),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}

// LoadSalesData returns the sales rows dated within [start, end]. A zero bound
// leaves that side of the range open. stats.Rows counts only the rows
// returned; rows outside the range are neither loaded nor skipped.
func (s *Store) LoadSalesData(start, end time.Time) ([]SalesRecord, ReadStats, error) {
	var out []SalesRecord
	stats, err := s.readTable(SalesFile, salesHeader, func(r row) error {
		day, err := time.Parse(validate.DateLayout, r.get("date"))
		if err != nil {
			return fmt.Errorf("date %q: %w", r.get("date"), err)
		}
		rec := SalesRecord{
			Date:         r.get("date"),
			OrderID:      r.get("order_id"),
			CustomerName: r.get("customer_name"),
			OrderType:    r.get("order_type"),
			Status:       r.get("status"),
		}
		for col, dst := range map[string]*decimal.Decimal{
			"subtotal":     &rec.Subtotal,
			"tax_amount":   &rec.TaxAmount,
			"total_amount": &rec.TotalAmount,
		} {
			if *dst, err = decimal.NewFromString(r.get(col)); err != nil {
				return fmt.Errorf("%s %q: %w", col, r.get(col), err)
			}
		}
		if rec.ItemsCount, err = strconv.Atoi(r.get("items_count")); err != nil {
			return fmt.Errorf("items_count %q: %w", r.get("items_count"), err)
		}
		if (!start.IsZero() && day.Before(start)) || (!end.IsZero() && day.After(end)) {
			return nil
		}
		out = append(out, rec)
		return nil
	})
	stats.Rows = len(out)
	return out, stats, err
}
