package service

import (
	"fmt"
	"strings"

	"github.com/gourmet-kitchen/ordersys/internal/enum"
	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/shopspring/decimal"
)

// MenuFilter narrows Menu results. Zero values match everything.
type MenuFilter struct {
	Category      string
	Query         string // case-insensitive match on name or description
	AvailableOnly bool
}

// MenuItemInput is the validated input for a new catalog entry.
type MenuItemInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
	IsAvailable *bool // nil means available
}

// MenuItemPatch changes the non-nil fields of a catalog entry.
type MenuItemPatch struct {
	Name        *string
	Category    *string
	Price       *decimal.Decimal
	Description *string
	IsAvailable *bool
}

// Menu returns the catalog entries matching f in catalog order.
func (r *Restaurant) Menu(f MenuFilter) []model.MenuItemRecord {
	category := strings.ToLower(strings.TrimSpace(f.Category))
	query := strings.ToLower(strings.TrimSpace(f.Query))

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.MenuItemRecord, 0, len(r.menu))
	for _, m := range r.menu {
		if category != "" && m.Category() != category {
			continue
		}
		if f.AvailableOnly && !m.IsAvailable() {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(m.Name()), query) &&
			!strings.Contains(strings.ToLower(m.Description()), query) {
			continue
		}
		out = append(out, m.Record())
	}
	return out
}

func (r *Restaurant) MenuItem(id string) (model.MenuItemRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.menuItemLocked(id)
	if err != nil {
		return model.MenuItemRecord{}, err
	}
	return m.Record(), nil
}

// CreateMenuItem adds an entry to the catalog. Names are unique ignoring case.
func (r *Restaurant) CreateMenuItem(in MenuItemInput) (model.MenuItemRecord, error) {
	m, err := model.NewMenuItem(in.Name, in.Category, in.Price, in.Description)
	if err != nil {
		return model.MenuItemRecord{}, err
	}
	if in.IsAvailable != nil {
		m.SetAvailable(*in.IsAvailable)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNameLocked(m.Name(), ""); err != nil {
		return model.MenuItemRecord{}, err
	}
	r.menu = append(r.menu, m)
	r.menuByID[m.ID()] = m
	r.markDirty()

	rec := m.Record()
	r.notify.Publish(enum.EventMenuUpdated, rec)
	return rec, nil
}

// UpdateMenuItem applies p to the entry with the given id. The patched entry
// is validated as a whole before anything changes. Open orders holding the
// item see the new name and price.
func (r *Restaurant) UpdateMenuItem(id string, p MenuItemPatch) (model.MenuItemRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.menuItemLocked(id)
	if err != nil {
		return model.MenuItemRecord{}, err
	}

	next := m.Record()
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.Price != nil {
		next.Price = *p.Price
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.IsAvailable != nil {
		next.IsAvailable = *p.IsAvailable
	}
	checked, err := model.MenuItemFromRecord(next)
	if err != nil {
		return model.MenuItemRecord{}, err
	}
	if err := r.checkNameLocked(checked.Name(), id); err != nil {
		return model.MenuItemRecord{}, err
	}

	// Every value was accepted above, so the setters cannot fail here.
	m.SetName(checked.Name())
	m.SetCategory(checked.Category())
	m.SetPrice(checked.Price())
	m.SetDescription(checked.Description())
	m.SetAvailable(checked.IsAvailable())
	r.markDirty()

	rec := m.Record()
	r.notify.Publish(enum.EventMenuUpdated, rec)
	return rec, nil
}

// DeleteMenuItem removes an entry. It is refused while a pending, preparing
// or ready order still contains the item.
func (r *Restaurant) DeleteMenuItem(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.menuItemLocked(id)
	if err != nil {
		return err
	}
	for _, o := range r.orders {
		if o.IsTerminal() {
			continue
		}
		for _, line := range o.Items() {
			if line.MenuItem().Equal(m) {
				return fmt.Errorf("%s in order %s: %w", m.Name(), o.ID(), ErrMenuItemInUse)
			}
		}
	}

	for i, item := range r.menu {
		if item == m {
			r.menu = append(r.menu[:i], r.menu[i+1:]...)
			break
		}
	}
	delete(r.menuByID, id)
	r.markDirty()

	r.notify.Publish(enum.EventMenuUpdated, map[string]any{"id": id, "deleted": true})
	return nil
}

func (r *Restaurant) checkNameLocked(name, exceptID string) error {
	for _, m := range r.menu {
		if m.ID() != exceptID && strings.EqualFold(m.Name(), name) {
			return fmt.Errorf("%q: %w", name, ErrDuplicateName)
		}
	}
	return nil
}
