package csvstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// itemsEnvelope is the versioned form of items_json. Files written so far hold
// a bare array; the reader accepts both.
type itemsEnvelope struct {
	Version int                  `json:"version"`
	Items   []model.LineSnapshot `json:"items"`
}

// LoadOrders reads every order, relinking lines to the catalog through index.
// Lines whose menu item is not in index, or that fail to restore, are
// dropped and counted; the order still loads. The persisted status is
// applied after the lines.
func (s *Store) LoadOrders(index map[string]*model.MenuItem) ([]*model.Order, ReadStats, error) {
	var orders []*model.Order
	dropped := 0

	stats, err := s.readTable(OrdersFile, ordersHeader, func(r row) error {
		o, lost, err := s.parseOrder(r, index)
		if err != nil {
			return err
		}
		dropped += lost
		orders = append(orders, o)
		return nil
	})
	stats.Dropped = dropped
	return orders, stats, err
}

func (s *Store) parseOrder(r row, index map[string]*model.MenuItem) (*model.Order, int, error) {
	ts, err := parseTimestamp(r.get("timestamp"))
	if err != nil {
		return nil, 0, err
	}
	priority, err := parseBool(r.get("is_priority"))
	if err != nil {
		return nil, 0, err
	}
	var rate decimal.NullDecimal
	if v := r.get("tax_rate"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, 0, fmt.Errorf("tax_rate %q: %w", v, err)
		}
		rate = decimal.NewNullDecimal(d)
	}
	lines, err := decodeItems(r.raw("items_json"))
	if err != nil {
		return nil, 0, err
	}

	o, err := model.RestoreOrder(model.OrderRecord{
		OrderID:   r.get("order_id"),
		Timestamp: ts,
		OrderOptions: model.OrderOptions{
			CustomerName:  r.get("customer_name"),
			CustomerPhone: r.get("customer_phone"),
			TableNumber:   r.get("table_number"),
			OrderType:     r.get("order_type"),
			TaxRate:       rate,
			IsPriority:    priority,
			Notes:         r.raw("notes"),
		},
	})
	if err != nil {
		return nil, 0, err
	}

	log := s.log.WithFields(logrus.Fields{"order_id": o.ID(), "row": r.line})
	dropped := 0
	for i, line := range lines {
		m, ok := index[line.MenuItemID]
		if !ok {
			dropped++
			log.WithFields(logrus.Fields{
				"menu_item_id":   line.MenuItemID,
				"menu_item_name": line.MenuItemName,
			}).Warn("dropping order line for unknown menu item")
			continue
		}
		if _, err := o.RestoreLine(m, line.Quantity, line.SpecialInstructions); err != nil {
			dropped++
			log.WithError(err).WithFields(logrus.Fields{
				"item":         i,
				"menu_item_id": line.MenuItemID,
			}).Warn("dropping order line that cannot be restored")
		}
	}
	if err := o.RestoreStatus(r.get("status")); err != nil {
		return nil, 0, err
	}

	if stored, err := decimal.NewFromString(r.get("total_amount")); err == nil && !stored.Equal(o.TotalAmount()) {
		log.WithFields(logrus.Fields{
			"stored_total":     stored.StringFixed(2),
			"recomputed_total": o.TotalAmount().StringFixed(2),
		}).Warn("stored order total differs from recomputed total")
	}
	return o, dropped, nil
}

// SaveOrders rewrites the orders file.
func (s *Store) SaveOrders(orders []*model.Order) error {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		snap := o.Snapshot()
		items, err := json.Marshal(snap.Items)
		if err != nil {
			return fmt.Errorf("encode items of %s: %w", snap.OrderID, err)
		}
		rows = append(rows, []string{
			snap.OrderID,
			snap.Timestamp.UTC().Format(time.RFC3339Nano),
			snap.CustomerName,
			snap.CustomerPhone,
			snap.TableNumber,
			snap.OrderType,
			snap.Status,
			strconv.FormatBool(snap.IsPriority),
			snap.Notes,
			snap.TaxRate.String(),
			snap.Subtotal.StringFixed(2),
			snap.TaxAmount.StringFixed(2),
			snap.TotalAmount.StringFixed(2),
			string(items),
		})
	}
	return s.writeTable(OrdersFile, ordersHeader, rows)
}

func decodeItems(raw string) ([]model.LineSnapshot, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		var env itemsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("items_json: %w", err)
		}
		return env.Items, nil
	}
	var lines []model.LineSnapshot
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("items_json: %w", err)
	}
	return lines, nil
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
}
