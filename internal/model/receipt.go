package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptTimeLayout formats the receipt timestamp.
const ReceiptTimeLayout = "2006-01-02 15:04:05"

// ReceiptHeader carries the restaurant's details printed on every receipt.
type ReceiptHeader struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Footer  string `json:"footer"`
}

type ReceiptLine struct {
	Name                string `json:"name"`
	Quantity            int    `json:"quantity"`
	UnitPrice           string `json:"unit_price"`
	Subtotal            string `json:"subtotal"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// Receipt is a print-ready rendering of an order. Amounts are formatted
// strings with two decimal places. TaxRate is a percentage carrying the
// rate's full stored precision, such as "8.25%".
type Receipt struct {
	Restaurant    ReceiptHeader `json:"restaurant"`
	OrderID       string        `json:"order_id"`
	Timestamp     string        `json:"timestamp"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	TableNumber   string        `json:"table_number,omitempty"`
	OrderType     string        `json:"order_type"`
	Status        string        `json:"status"`
	Items         []ReceiptLine `json:"items"`
	ItemCount     int           `json:"item_count"`
	Subtotal      string        `json:"subtotal"`
	TaxRate       string        `json:"tax_rate"`
	TaxAmount     string        `json:"tax_amount"`
	Total         string        `json:"total"`
	Currency      string        `json:"currency"`
	Notes         string        `json:"notes,omitempty"`
}

// Receipt renders the order for printing. The timestamp is shown in loc, or
// UTC when loc is nil.
func (o *Order) Receipt(header ReceiptHeader, currency string, loc *time.Location) Receipt {
	if loc == nil {
		loc = time.UTC
	}
	lines := make([]ReceiptLine, len(o.items))
	for i, item := range o.items {
		lines[i] = ReceiptLine{
			Name:                item.Name(),
			Quantity:            item.quantity,
			UnitPrice:           item.UnitPrice().StringFixed(2),
			Subtotal:            item.Subtotal().StringFixed(2),
			SpecialInstructions: item.instructions,
		}
	}
	return Receipt{
		Restaurant:    header,
		OrderID:       o.id,
		Timestamp:     o.timestamp.In(loc).Format(ReceiptTimeLayout),
		CustomerName:  o.DisplayName(),
		CustomerPhone: o.customerPhone,
		TableNumber:   o.tableNumber,
		OrderType:     titleWords(o.orderType),
		Status:        titleWords(o.status),
		Items:         lines,
		ItemCount:     o.ItemCount(),
		Subtotal:      o.Subtotal().StringFixed(2),
		TaxRate:       o.taxRate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%",
		TaxAmount:     o.TaxAmount().StringFixed(2),
		Total:         o.TotalAmount().StringFixed(2),
		Currency:      currency,
		Notes:         o.notes,
	}
}
