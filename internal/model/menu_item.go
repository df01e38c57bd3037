package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gourmet-kitchen/ordersys/internal/enum"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
)

// MenuItem is a catalog entry. Its id is fixed at creation; every other
// attribute is re-validated on assignment.
type MenuItem struct {
	id          string
	name        string
	category    string
	price       decimal.Decimal
	description string
	available   bool
}

// MenuItemRecord is the flat form of a MenuItem used for CSV rows and API
// responses.
type MenuItemRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	IsAvailable bool            `json:"is_available"`
}

// NewMenuItem creates an available item with a fresh id.
func NewMenuItem(name, category string, price decimal.Decimal, description string) (*MenuItem, error) {
	return MenuItemFromRecord(MenuItemRecord{
		ID:          uuid.NewString(),
		Name:        name,
		Category:    category,
		Price:       price,
		Description: description,
		IsAvailable: true,
	})
}

// MenuItemFromRecord rebuilds an item, re-quantizing the price to cents.
func MenuItemFromRecord(r MenuItemRecord) (*MenuItem, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return nil, ErrMissingID
	}
	m := &MenuItem{id: id, available: r.IsAvailable}
	if err := m.SetName(r.Name); err != nil {
		return nil, err
	}
	if err := m.SetCategory(r.Category); err != nil {
		return nil, err
	}
	if err := m.SetPrice(r.Price); err != nil {
		return nil, err
	}
	if err := m.SetDescription(r.Description); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MenuItem) ID() string             { return m.id }
func (m *MenuItem) Name() string           { return m.name }
func (m *MenuItem) Category() string       { return m.category }
func (m *MenuItem) Price() decimal.Decimal { return m.price }
func (m *MenuItem) Description() string    { return m.description }
func (m *MenuItem) IsAvailable() bool      { return m.available }
func (m *MenuItem) SetAvailable(v bool)    { m.available = v }

// Equal reports whether both values are the same catalog entity.
func (m *MenuItem) Equal(other *MenuItem) bool {
	return other != nil && m.id == other.id
}

func (m *MenuItem) SetName(name string) error {
	v, err := validate.RequiredString(name, "name", 1, validate.MaxNameLength)
	if err != nil {
		return err
	}
	m.name = v
	return nil
}

func (m *MenuItem) SetCategory(category string) error {
	v, err := validate.Category(category, enum.Categories)
	if err != nil {
		return err
	}
	m.category = v
	return nil
}

func (m *MenuItem) SetPrice(price decimal.Decimal) error {
	v, err := validate.CheckPrice("price", price)
	if err != nil {
		return err
	}
	m.price = v
	return nil
}

func (m *MenuItem) SetDescription(description string) error {
	v, err := validate.OptionalString(description, "description", validate.MaxDescriptionLength)
	if err != nil {
		return err
	}
	m.description = v
	return nil
}

// Record returns a copy of the item's current attributes.
func (m *MenuItem) Record() MenuItemRecord {
	return MenuItemRecord{
		ID:          m.id,
		Name:        m.name,
		Category:    m.category,
		Price:       m.price,
		Description: m.description,
		IsAvailable: m.available,
	}
}

func (m *MenuItem) String() string {
	status := "Available"
	if !m.available {
		status = "Out of Stock"
	}
	return fmt.Sprintf("%s (%s) - $%s [%s]", m.name, titleWords(m.category), m.price.StringFixed(2), status)
}

// titleWords turns "dine_in" into "Dine In".
func titleWords(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
