package model

import (
	"fmt"
	"strings"

	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the largest quantity a single order line may carry.
const MaxLineQuantity = 99

// OrderItem is one line of an Order. It tracks its MenuItem by reference, so
// unit price and name always reflect the catalog's current values.
type OrderItem struct {
	menuItem     *MenuItem
	quantity     int
	instructions string
}

// LineSnapshot is the persisted form of an order line. Name, category and
// price are copied at serialization time so old orders stay readable after
// the catalog changes; MenuItemID is used to relink on load.
type LineSnapshot struct {
	MenuItemID          string          `json:"menu_item_id"`
	MenuItemName        string          `json:"menu_item_name"`
	MenuItemCategory    string          `json:"menu_item_category"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"special_instructions"`
	Subtotal            decimal.Decimal `json:"subtotal"`
}

func newOrderItem(m *MenuItem, quantity int, instructions string) (*OrderItem, error) {
	oi := &OrderItem{menuItem: m}
	if err := oi.SetQuantity(quantity); err != nil {
		return nil, err
	}
	if err := oi.SetSpecialInstructions(instructions); err != nil {
		return nil, err
	}
	return oi, nil
}

func (oi *OrderItem) MenuItem() *MenuItem         { return oi.menuItem }
func (oi *OrderItem) MenuItemID() string          { return oi.menuItem.ID() }
func (oi *OrderItem) Name() string                { return oi.menuItem.Name() }
func (oi *OrderItem) Category() string            { return oi.menuItem.Category() }
func (oi *OrderItem) Quantity() int               { return oi.quantity }
func (oi *OrderItem) SpecialInstructions() string { return oi.instructions }

// UnitPrice is the referenced menu item's current price.
func (oi *OrderItem) UnitPrice() decimal.Decimal {
	return oi.menuItem.Price()
}

func (oi *OrderItem) Subtotal() decimal.Decimal {
	return oi.UnitPrice().Mul(decimal.NewFromInt(int64(oi.quantity)))
}

// SetQuantity rejects values outside 1..MaxLineQuantity without clamping.
func (oi *OrderItem) SetQuantity(quantity int) error {
	if err := checkLineQuantity(quantity); err != nil {
		return err
	}
	oi.quantity = quantity
	return nil
}

func (oi *OrderItem) SetSpecialInstructions(instructions string) error {
	v, err := validate.OptionalString(instructions, "special_instructions", validate.MaxInstructionsLength)
	if err != nil {
		return err
	}
	oi.instructions = v
	return nil
}

// AddSpecialInstruction appends to the existing instructions with "; ".
func (oi *OrderItem) AddSpecialInstruction(instruction string) error {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil
	}
	if oi.instructions == "" {
		return oi.SetSpecialInstructions(instruction)
	}
	return oi.SetSpecialInstructions(oi.instructions + "; " + instruction)
}

func (oi *OrderItem) ClearSpecialInstructions() {
	oi.instructions = ""
}

// IsSameItem reports whether m with instructions would merge into this line.
func (oi *OrderItem) IsSameItem(m *MenuItem, instructions string) bool {
	return oi.menuItem.Equal(m) && normalizeInstructions(oi.instructions) == normalizeInstructions(instructions)
}

func (oi *OrderItem) Snapshot() LineSnapshot {
	return LineSnapshot{
		MenuItemID:          oi.menuItem.ID(),
		MenuItemName:        oi.menuItem.Name(),
		MenuItemCategory:    oi.menuItem.Category(),
		UnitPrice:           oi.UnitPrice(),
		Quantity:            oi.quantity,
		SpecialInstructions: oi.instructions,
		Subtotal:            oi.Subtotal(),
	}
}

// DisplayText renders the line as shown on the order screen, e.g.
// "2x Burger - $31.98 (Special: no onions)".
func (oi *OrderItem) DisplayText() string {
	text := fmt.Sprintf("%dx %s - $%s", oi.quantity, oi.Name(), oi.Subtotal().StringFixed(2))
	if oi.instructions != "" {
		text += fmt.Sprintf(" (Special: %s)", oi.instructions)
	}
	return text
}

func (oi *OrderItem) String() string { return oi.DisplayText() }

func checkLineQuantity(quantity int) error {
	if quantity <= 0 {
		return &validate.Error{Field: "quantity", Reason: "must be positive"}
	}
	if quantity > MaxLineQuantity {
		return &validate.Error{Field: "quantity", Reason: fmt.Sprintf("cannot exceed %d", MaxLineQuantity)}
	}
	return nil
}

func normalizeInstructions(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
