package csvstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/shopspring/decimal"
)

// LoadMenuItems reads the catalog. Rows repeating an earlier id are skipped.
func (s *Store) LoadMenuItems() ([]*model.MenuItem, ReadStats, error) {
	var items []*model.MenuItem
	seen := make(map[string]bool)

	stats, err := s.readTable(MenuFile, menuHeader, func(r row) error {
		price, err := decimal.NewFromString(r.get("price"))
		if err != nil {
			return fmt.Errorf("price %q: %w", r.get("price"), err)
		}
		available, err := parseBool(r.get("is_available"))
		if err != nil {
			return err
		}
		item, err := model.MenuItemFromRecord(model.MenuItemRecord{
			ID:          r.get("id"),
			Name:        r.get("name"),
			Category:    r.get("category"),
			Price:       price,
			Description: r.get("description"),
			IsAvailable: available,
		})
		if err != nil {
			return err
		}
		if seen[item.ID()] {
			return fmt.Errorf("duplicate menu item id %s", item.ID())
		}
		seen[item.ID()] = true
		items = append(items, item)
		return nil
	})
	return items, stats, err
}

// SaveMenuItems rewrites the catalog file.
func (s *Store) SaveMenuItems(items []*model.MenuItem) error {
	rows := make([][]string, 0, len(items))
	for _, m := range items {
		rows = append(rows, []string{
			m.ID(),
			m.Name(),
			m.Category(),
			m.Price().StringFixed(2),
			m.Description(),
			strconv.FormatBool(m.IsAvailable()),
		})
	}
	return s.writeTable(MenuFile, menuHeader, rows)
}

// parseBool accepts true/false in any letter case.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
