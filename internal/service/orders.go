package service

import (
	"fmt"
	"strings"

	"github.com/gourmet-kitchen/ordersys/internal/enum"
	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderLineInput adds quantity of a menu item to an order.
type OrderLineInput struct {
	MenuItemID          string
	Quantity            int
	SpecialInstructions string
}

// CreateOrderInput is the input for a new order. Items may be empty.
type CreateOrderInput struct {
	CustomerName  string
	CustomerPhone string
	TableNumber   string
	OrderType     string
	TaxRate       decimal.NullDecimal // unset uses the configured rate
	IsPriority    bool
	Notes         string
	Items         []OrderLineInput
}

// OrderPatch changes the non-nil header fields of an order.
type OrderPatch struct {
	CustomerName  *string
	CustomerPhone *string
	TableNumber   *string
	OrderType     *string
	TaxRate       *decimal.Decimal
	IsPriority    *bool
	Notes         *string
}

// LinePatch changes one order line. A quantity of zero or less removes it.
type LinePatch struct {
	Quantity            *int
	SpecialInstructions *string
}

// CreateOrder registers a new pending order. If any line is rejected no order
// is created.
func (r *Restaurant) CreateOrder(in CreateOrderInput) (model.OrderSnapshot, error) {
	phone, err := validate.Phone(in.CustomerPhone, false)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	table, err := validate.TableNumber(in.TableNumber)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	rate := in.TaxRate
	if !rate.Valid {
		rate = decimal.NewNullDecimal(r.settings.Current().TaxRate)
	}

	o, err := model.NewOrder(model.OrderOptions{
		CustomerName:  in.CustomerName,
		CustomerPhone: phone,
		TableNumber:   table,
		OrderType:     in.OrderType,
		TaxRate:       rate,
		IsPriority:    in.IsPriority,
		Notes:         in.Notes,
	})
	if err != nil {
		return model.OrderSnapshot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, line := range in.Items {
		if err := r.addLineLocked(o, line); err != nil {
			return model.OrderSnapshot{}, fmt.Errorf("item[%d]: %w", i, err)
		}
	}
	r.orders = append(r.orders, o)
	r.ordersByID[o.ID()] = o
	r.markDirty()

	snap := o.Snapshot()
	r.log.WithFields(logrus.Fields{"order_id": o.ID(), "items": o.ItemCount()}).Info("order created")
	r.notify.Publish(enum.EventOrderCreated, snap)
	return snap, nil
}

func (r *Restaurant) addLineLocked(o *model.Order, line OrderLineInput) error {
	m, err := r.menuItemLocked(line.MenuItemID)
	if err != nil {
		return err
	}
	_, err = o.AddItem(m, line.Quantity, line.SpecialInstructions)
	return err
}

// AddOrderItem adds a line to an open order, merging with an equivalent line.
func (r *Restaurant) AddOrderItem(orderID string, line OrderLineInput) (model.OrderSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.orderLocked(orderID)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	if err := r.addLineLocked(o, line); err != nil {
		return model.OrderSnapshot{}, err
	}
	return r.orderChangedLocked(o, enum.EventOrderUpdated), nil
}

// UpdateOrderLine changes the line at index. A line whose new instructions
// match another line of the same item merges into it. A rejected patch
// changes nothing.
func (r *Restaurant) UpdateOrderLine(orderID string, index int, p LinePatch) (model.OrderSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.orderLocked(orderID)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	line, err := o.Line(index)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	if _, err := o.UpdateLine(line, p.Quantity, p.SpecialInstructions); err != nil {
		return model.OrderSnapshot{}, fmt.Errorf("update line %d of %s: %w", index, orderID, err)
	}
	return r.orderChangedLocked(o, enum.EventOrderUpdated), nil
}

// RemoveOrderLine deletes the line at index from an open order.
func (r *Restaurant) RemoveOrderLine(orderID string, index int) (model.OrderSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.orderLocked(orderID)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	line, err := o.Line(index)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	if _, err := o.RemoveItem(line); err != nil {
		return model.OrderSnapshot{}, err
	}
	return r.orderChangedLocked(o, enum.EventOrderUpdated), nil
}

// UpdateOrderDetails changes header fields of an open order. All fields are
// validated before any is applied.
func (r *Restaurant) UpdateOrderDetails(orderID string, p OrderPatch) (model.OrderSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.orderLocked(orderID)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	if o.IsTerminal() {
		return model.OrderSnapshot{}, fmt.Errorf("update %s order: %w", o.Status(), model.ErrOrderClosed)
	}

	// Validate on a scratch order carrying the patched values.
	opts := model.OrderOptions{
		CustomerName:  o.CustomerName(),
		CustomerPhone: o.CustomerPhone(),
		TableNumber:   o.TableNumber(),
		OrderType:     o.OrderType(),
		TaxRate:       decimal.NewNullDecimal(o.TaxRate()),
		IsPriority:    o.IsPriority(),
		Notes:         o.Notes(),
	}
	if p.CustomerName != nil {
		opts.CustomerName = *p.CustomerName
	}
	if p.CustomerPhone != nil {
		if opts.CustomerPhone, err = validate.Phone(*p.CustomerPhone, false); err != nil {
			return model.OrderSnapshot{}, err
		}
	}
	if p.TableNumber != nil {
		if opts.TableNumber, err = validate.TableNumber(*p.TableNumber); err != nil {
			return model.OrderSnapshot{}, err
		}
	}
	if p.OrderType != nil {
		opts.OrderType = *p.OrderType
	}
	if p.TaxRate != nil {
		opts.TaxRate = decimal.NewNullDecimal(*p.TaxRate)
	}
	if p.IsPriority != nil {
		opts.IsPriority = *p.IsPriority
	}
	if p.Notes != nil {
		opts.Notes = *p.Notes
	}
	checked, err := model.RestoreOrder(model.OrderRecord{OrderID: o.ID(), Timestamp: o.Timestamp(), OrderOptions: opts})
	if err != nil {
		return model.OrderSnapshot{}, err
	}

	o.SetCustomerName(checked.CustomerName())
	o.SetCustomerPhone(checked.CustomerPhone())
	o.SetTableNumber(checked.TableNumber())
	o.SetOrderType(checked.OrderType())
	o.SetTaxRate(checked.TaxRate())
	o.SetPriority(checked.IsPriority())
	o.SetNotes(checked.Notes())
	return r.orderChangedLocked(o, enum.EventOrderUpdated), nil
}

// UpdateOrderStatus moves an order through its lifecycle. Completing an order
// appends it to the sales log.
func (r *Restaurant) UpdateOrderStatus(orderID, status string) (model.OrderSnapshot, error) {
	status = strings.ToLower(strings.TrimSpace(status))

	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.orderLocked(orderID)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	previous := o.Status()
	if err := o.UpdateStatus(status); err != nil {
		return model.OrderSnapshot{}, err
	}
	if previous == o.Status() {
		return o.Snapshot(), nil
	}
	if o.Status() == enum.OrderStatusCompleted {
		r.recordSaleLocked(o)
	}
	return r.orderChangedLocked(o, enum.EventOrderStatusChanged), nil
}

// CancelOrder cancels an order that is not completed. Cancelling twice is
// accepted and records nothing new.
func (r *Restaurant) CancelOrder(orderID, reason string) (model.OrderSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.orderLocked(orderID)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	if o.Status() == enum.OrderStatusCancelled {
		return o.Snapshot(), nil
	}
	if err := o.CancelOrder(reason); err != nil {
		return model.OrderSnapshot{}, err
	}
	return r.orderChangedLocked(o, enum.EventOrderStatusChanged), nil
}

// recordSaleLocked appends the sales row. The status change has already
// happened, so a failure is logged rather than returned.
func (r *Restaurant) recordSaleLocked(o *model.Order) {
	if err := r.store.AppendSalesRecord(o); err != nil {
		r.log.WithError(err).WithField("order_id", o.ID()).Error("failed to append sales record")
	}
}

func (r *Restaurant) orderChangedLocked(o *model.Order, event string) model.OrderSnapshot {
	r.markDirty()
	snap := o.Snapshot()
	r.notify.Publish(event, snap)
	return snap
}

func (r *Restaurant) Order(id string) (model.OrderSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.orderLocked(id)
	if err != nil {
		return model.OrderSnapshot{}, err
	}
	return o.Snapshot(), nil
}

// Orders lists orders oldest first, optionally only those in status.
func (r *Restaurant) Orders(status string) ([]model.OrderSnapshot, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !enum.IsOrderStatus(status) {
		return nil, &validate.Error{Field: "status", Reason: "unknown order status"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.OrderSnapshot, 0, len(r.orders))
	for _, o := range r.orders {
		if status == "" || o.Status() == status {
			out = append(out, o.Snapshot())
		}
	}
	return out, nil
}
