package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gourmet-kitchen/ordersys/internal/enum"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies when an order is created without an explicit rate.
var DefaultTaxRate = decimal.RequireFromString("0.08")

var (
	baseMinutes     = decimal.NewFromInt(5)
	perLineMinutes  = decimal.NewFromInt(2)
	perUnitMinutes  = decimal.New(5, -1)
	priorityFactor  = decimal.New(8, -1)
	minimumEstimate = 5
)

// allowedTransitions lists the statuses reachable from each non-terminal
// status. Active statuses are reachable from one another in either
// direction. Completed and cancelled have no outgoing transitions.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusPreparing, enum.OrderStatusReady, enum.OrderStatusCompleted, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusPending, enum.OrderStatusReady, enum.OrderStatusCompleted, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

// StatusChange is one entry of an order's append-only status log.
// OldStatus is empty for the creation entry.
type StatusChange struct {
	Timestamp time.Time         `json:"timestamp"`
	OldStatus string            `json:"old_status"`
	NewStatus string            `json:"new_status"`
	Metadata  map[string]string `json:"metadata"`
}

// OrderOptions carries the customer and fulfillment fields of an order.
type OrderOptions struct {
	CustomerName  string
	CustomerPhone string
	TableNumber   string
	OrderType     string              // defaults to dine_in
	TaxRate       decimal.NullDecimal // defaults to DefaultTaxRate
	IsPriority    bool
	Notes         string
}

// OrderRecord identifies a previously persisted order being rebuilt.
type OrderRecord struct {
	OrderID   string
	Timestamp time.Time
	OrderOptions
}

// OrderSnapshot is the complete serializable state of an order.
type OrderSnapshot struct {
	OrderID       string          `json:"order_id"`
	Timestamp     time.Time       `json:"timestamp"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	TableNumber   string          `json:"table_number"`
	OrderType     string          `json:"order_type"`
	Status        string          `json:"status"`
	IsPriority    bool            `json:"is_priority"`
	Notes         string          `json:"notes"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Items         []LineSnapshot  `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
	StatusHistory []StatusChange  `json:"status_history"`
}

// Order aggregates order lines and owns the status state machine. It is not
// safe for concurrent use; callers serialize access.
type Order struct {
	id        string
	timestamp time.Time
	items     []*OrderItem
	status    string
	history   []StatusChange

	customerName  string
	customerPhone string
	tableNumber   string
	orderType     string
	taxRate       decimal.Decimal
	priority      bool
	notes         string
}

// NewOrder creates an empty pending order with a generated id.
func NewOrder(opts OrderOptions) (*Order, error) {
	ts := now()
	return buildOrder(generateOrderID(ts), ts, opts)
}

// RestoreOrder rebuilds a persisted order header. Items and the final status
// are applied afterwards through RestoreLine and RestoreStatus.
func RestoreOrder(r OrderRecord) (*Order, error) {
	id := strings.TrimSpace(r.OrderID)
	if id == "" {
		return nil, ErrMissingID
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = now()
	}
	return buildOrder(id, ts.UTC(), r.OrderOptions)
}

func buildOrder(id string, ts time.Time, opts OrderOptions) (*Order, error) {
	o := &Order{
		id:        id,
		timestamp: ts,
		status:    enum.OrderStatusPending,
		orderType: enum.OrderTypeDineIn,
		taxRate:   DefaultTaxRate,
		priority:  opts.IsPriority,
	}
	if err := o.SetCustomerName(opts.CustomerName); err != nil {
		return nil, err
	}
	o.SetCustomerPhone(opts.CustomerPhone)
	o.SetTableNumber(opts.TableNumber)
	if opts.OrderType != "" {
		if err := o.SetOrderType(opts.OrderType); err != nil {
			return nil, err
		}
	}
	if opts.TaxRate.Valid {
		if err := o.SetTaxRate(opts.TaxRate.Decimal); err != nil {
			return nil, err
		}
	}
	if err := o.SetNotes(opts.Notes); err != nil {
		return nil, err
	}
	o.history = append(o.history, StatusChange{
		Timestamp: ts,
		NewStatus: enum.OrderStatusPending,
		Metadata:  map[string]string{},
	})
	return o, nil
}

// generateOrderID returns ORD-<YYYYMMDDHHMM>-<8 uppercase hex chars>.
func generateOrderID(ts time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%s-%s", ts.Format("200601021504"), suffix)
}

// --- Accessors ---

func (o *Order) ID() string                { return o.id }
func (o *Order) Timestamp() time.Time      { return o.timestamp }
func (o *Order) Status() string            { return o.status }
func (o *Order) CustomerName() string      { return o.customerName }
func (o *Order) CustomerPhone() string     { return o.customerPhone }
func (o *Order) TableNumber() string       { return o.tableNumber }
func (o *Order) OrderType() string         { return o.orderType }
func (o *Order) TaxRate() decimal.Decimal  { return o.taxRate }
func (o *Order) IsPriority() bool          { return o.priority }
func (o *Order) Notes() string             { return o.notes }
func (o *Order) LineCount() int            { return len(o.items) }
func (o *Order) IsEmpty() bool             { return len(o.items) == 0 }
func (o *Order) SetPriority(priority bool) { o.priority = priority }
func (o *Order) SetCustomerPhone(v string) { o.customerPhone = strings.TrimSpace(v) }
func (o *Order) SetTableNumber(v string)   { o.tableNumber = strings.TrimSpace(v) }

// Items returns the order lines in insertion order. The slice is a copy; the
// lines are not.
func (o *Order) Items() []*OrderItem {
	out := make([]*OrderItem, len(o.items))
	copy(out, o.items)
	return out
}

// Line returns the line at index i.
func (o *Order) Line(i int) (*OrderItem, error) {
	if i < 0 || i >= len(o.items) {
		return nil, fmt.Errorf("line %d: %w", i, ErrLineNotFound)
	}
	return o.items[i], nil
}

// StatusHistory returns a deep copy of the status log.
func (o *Order) StatusHistory() []StatusChange {
	out := make([]StatusChange, len(o.history))
	for i, h := range o.history {
		md := make(map[string]string, len(h.Metadata))
		for k, v := range h.Metadata {
			md[k] = v
		}
		h.Metadata = md
		out[i] = h
	}
	return out
}

// IsTerminal reports whether the order is completed or cancelled.
func (o *Order) IsTerminal() bool {
	return o.status == enum.OrderStatusCompleted || o.status == enum.OrderStatusCancelled
}

func (o *Order) SetCustomerName(v string) error {
	name, err := validate.OptionalString(v, "customer_name", validate.MaxNameLength)
	if err != nil {
		return err
	}
	o.customerName = name
	return nil
}

func (o *Order) SetOrderType(t string) error {
	t = strings.ToLower(strings.TrimSpace(t))
	if !enum.IsOrderType(t) {
		return fmt.Errorf("%q: %w", t, ErrInvalidOrderType)
	}
	o.orderType = t
	return nil
}

// SetTaxRate accepts a fraction in [0, 1].
func (o *Order) SetTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s: %w", rate, ErrInvalidTaxRate)
	}
	o.taxRate = rate
	return nil
}

func (o *Order) SetNotes(v string) error {
	notes, err := validate.OptionalString(v, "notes", validate.MaxNotesLength)
	if err != nil {
		return err
	}
	o.notes = notes
	return nil
}

// --- Items ---

// AddItem adds quantity of m to the order. A line with the same menu item and
// equivalent instructions absorbs the quantity; otherwise a new line is
// appended. The affected line is returned.
func (o *Order) AddItem(m *MenuItem, quantity int, instructions string) (*OrderItem, error) {
	if o.IsTerminal() {
		return nil, fmt.Errorf("add item to %s order: %w", o.status, ErrOrderClosed)
	}
	if m == nil {
		return nil, ErrNilMenuItem
	}
	if !m.IsAvailable() {
		return nil, fmt.Errorf("%q: %w", m.Name(), ErrItemUnavailable)
	}
	return o.addLine(m, quantity, instructions)
}

// RestoreLine re-adds a persisted line. Availability is not checked, since a
// historical order may reference an item that has since sold out.
func (o *Order) RestoreLine(m *MenuItem, quantity int, instructions string) (*OrderItem, error) {
	if m == nil {
		return nil, ErrNilMenuItem
	}
	return o.addLine(m, quantity, instructions)
}

func (o *Order) addLine(m *MenuItem, quantity int, instructions string) (*OrderItem, error) {
	if err := checkLineQuantity(quantity); err != nil {
		return nil, err
	}
	if existing := o.findMatchingItem(m, instructions); existing != nil {
		if err := existing.SetQuantity(existing.quantity + quantity); err != nil {
			return nil, err
		}
		return existing, nil
	}
	item, err := newOrderItem(m, quantity, instructions)
	if err != nil {
		return nil, err
	}
	o.items = append(o.items, item)
	return item, nil
}

func (o *Order) findMatchingItem(m *MenuItem, instructions string) *OrderItem {
	for _, item := range o.items {
		if item.IsSameItem(m, instructions) {
			return item
		}
	}
	return nil
}

func (o *Order) indexOf(item *OrderItem) int {
	for i, it := range o.items {
		if it == item {
			return i
		}
	}
	return -1
}

// RemoveItem removes item by identity and reports whether it was present.
func (o *Order) RemoveItem(item *OrderItem) (bool, error) {
	if o.IsTerminal() {
		return false, fmt.Errorf("remove item from %s order: %w", o.status, ErrOrderClosed)
	}
	i := o.indexOf(item)
	if i < 0 {
		return false, nil
	}
	o.items = append(o.items[:i], o.items[i+1:]...)
	return true, nil
}

// UpdateItemQuantity sets a line's quantity; zero or less removes the line.
// It reports whether the line belonged to this order.
func (o *Order) UpdateItemQuantity(item *OrderItem, quantity int) (bool, error) {
	if o.IsTerminal() {
		return false, fmt.Errorf("update item on %s order: %w", o.status, ErrOrderClosed)
	}
	if o.indexOf(item) < 0 {
		return false, nil
	}
	if quantity <= 0 {
		return o.RemoveItem(item)
	}
	if err := item.SetQuantity(quantity); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateLine applies the non-nil quantity and instructions to item. A
// quantity of zero or less removes the line. When the new instructions make
// item equivalent to another line, the two merge into that line; a merged
// quantity over MaxLineQuantity is rejected. Nothing changes on error.
func (o *Order) UpdateLine(item *OrderItem, quantity *int, instructions *string) (bool, error) {
	if o.IsTerminal() {
		return false, fmt.Errorf("update item on %s order: %w", o.status, ErrOrderClosed)
	}
	if o.indexOf(item) < 0 {
		return false, nil
	}

	qty, text := item.quantity, item.instructions
	if instructions != nil {
		v, err := validate.OptionalString(*instructions, "special_instructions", validate.MaxInstructionsLength)
		if err != nil {
			return false, err
		}
		text = v
	}
	if quantity != nil {
		if *quantity <= 0 {
			return o.RemoveItem(item)
		}
		if err := checkLineQuantity(*quantity); err != nil {
			return false, err
		}
		qty = *quantity
	}

	if other := o.findOtherMatchingItem(item, text); other != nil {
		if err := checkLineQuantity(other.quantity + qty); err != nil {
			return false, err
		}
		other.quantity += qty
		return o.RemoveItem(item)
	}
	item.quantity, item.instructions = qty, text
	return true, nil
}

func (o *Order) findOtherMatchingItem(item *OrderItem, instructions string) *OrderItem {
	for _, it := range o.items {
		if it != item && it.IsSameItem(item.menuItem, instructions) {
			return it
		}
	}
	return nil
}

func (o *Order) ClearItems() error {
	if o.IsTerminal() {
		return fmt.Errorf("clear %s order: %w", o.status, ErrOrderClosed)
	}
	o.items = nil
	return nil
}

// ItemsByCategory groups lines by their menu category.
func (o *Order) ItemsByCategory() map[string][]*OrderItem {
	groups := make(map[string][]*OrderItem)
	for _, item := range o.items {
		groups[item.Category()] = append(groups[item.Category()], item)
	}
	return groups
}

// --- Status ---

// UpdateStatus moves the order to status. Re-applying the current status is a
// no-op and records nothing.
func (o *Order) UpdateStatus(status string) error {
	return o.transition(status, nil)
}

// CancelOrder cancels the order and records reason in the transition's
// metadata. Cancelling a cancelled order is a no-op.
func (o *Order) CancelOrder(reason string) error {
	return o.transition(enum.OrderStatusCancelled, map[string]string{"reason": strings.TrimSpace(reason)})
}

// RestoreStatus applies the persisted final status of a reloaded order. Only
// the final status is stored, so the rebuilt history holds a single entry
// marked as restored.
func (o *Order) RestoreStatus(status string) error {
	return o.transition(status, map[string]string{"source": "restored"})
}

func (o *Order) transition(next string, metadata map[string]string) error {
	if !enum.IsOrderStatus(next) {
		return fmt.Errorf("%q: %w", next, ErrInvalidStatus)
	}
	if next == o.status {
		return nil
	}
	if o.status == enum.OrderStatusCancelled {
		return fmt.Errorf("cannot change status of a cancelled order: %w", ErrInvalidTransition)
	}
	if !isAllowedTransition(o.status, next) {
		return fmt.Errorf("cannot transition from %s to %s: %w", o.status, next, ErrInvalidTransition)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	o.history = append(o.history, StatusChange{
		Timestamp: now(),
		OldStatus: o.status,
		NewStatus: next,
		Metadata:  metadata,
	})
	o.status = next
	return nil
}

func isAllowedTransition(current, next string) bool {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// --- Totals ---

func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// TaxAmount is subtotal * tax rate rounded half-even to cents.
func (o *Order) TaxAmount() decimal.Decimal {
	return o.Subtotal().Mul(o.taxRate).RoundBank(2)
}

func (o *Order) TotalAmount() decimal.Decimal {
	return o.Subtotal().Add(o.TaxAmount())
}

// ItemCount is the sum of line quantities.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.items {
		n += item.quantity
	}
	return n
}

// PreparationTimeEstimate returns a rough kitchen time in whole minutes:
// 5 + 2 per line + 0.5 per unit, times 0.8 for priority orders, at least 5.
func (o *Order) PreparationTimeEstimate() int {
	total := baseMinutes.
		Add(perLineMinutes.Mul(decimal.NewFromInt(int64(len(o.items))))).
		Add(perUnitMinutes.Mul(decimal.NewFromInt(int64(o.ItemCount()))))
	if o.priority {
		total = total.Mul(priorityFactor)
	}
	minutes := int(total.IntPart())
	if minutes < minimumEstimate {
		return minimumEstimate
	}
	return minutes
}

// --- Serialization ---

func (o *Order) Snapshot() OrderSnapshot {
	lines := make([]LineSnapshot, len(o.items))
	for i, item := range o.items {
		lines[i] = item.Snapshot()
	}
	return OrderSnapshot{
		OrderID:       o.id,
		Timestamp:     o.timestamp,
		CustomerName:  o.customerName,
		CustomerPhone: o.customerPhone,
		TableNumber:   o.tableNumber,
		OrderType:     o.orderType,
		Status:        o.status,
		IsPriority:    o.priority,
		Notes:         o.notes,
		TaxRate:       o.taxRate,
		Items:         lines,
		Subtotal:      o.Subtotal(),
		TaxAmount:     o.TaxAmount(),
		TotalAmount:   o.TotalAmount(),
		ItemCount:     o.ItemCount(),
		StatusHistory: o.StatusHistory(),
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("Order %s - %s - %s - $%s", o.id, o.DisplayName(), titleWords(o.status), o.TotalAmount().StringFixed(2))
}

// GuestName stands in for an order placed without a customer name.
const GuestName = "Guest"

// DisplayName is the customer name, or GuestName when none was given.
func (o *Order) DisplayName() string {
	if o.customerName == "" {
		return GuestName
	}
	return o.customerName
}
