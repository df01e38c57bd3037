package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gourmet-kitchen/ordersys/internal/config"
	"github.com/gourmet-kitchen/ordersys/internal/csvstore"
	"github.com/gourmet-kitchen/ordersys/internal/enum"
	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test doubles ---

// memStore implements Persistence in memory.
type memStore struct {
	menu      []*model.MenuItem
	orders    []*model.Order
	sales     []*model.Order
	records   []csvstore.SalesRecord
	saveErr   error
	appendErr error

	saves     int
	prunedTo  []int
	loadStats csvstore.ReadStats
}

func (m *memStore) LoadMenuItems() ([]*model.MenuItem, csvstore.ReadStats, error) {
	return m.menu, csvstore.ReadStats{Rows: len(m.menu)}, nil
}
func (m *memStore) SaveMenuItems(items []*model.MenuItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.menu = append([]*model.MenuItem(nil), items...)
	return nil
}
func (m *memStore) LoadOrders(index map[string]*model.MenuItem) ([]*model.Order, csvstore.ReadStats, error) {
	return m.orders, m.loadStats, nil
}
func (m *memStore) SaveOrders(orders []*model.Order) error {
	m.saves++
	m.orders = append([]*model.Order(nil), orders...)
	return nil
}
func (m *memStore) AppendSalesRecord(o *model.Order) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.sales = append(m.sales, o)
	return nil
}
func (m *memStore) LoadSalesData(start, end time.Time) ([]csvstore.SalesRecord, csvstore.ReadStats, error) {
	return m.records, csvstore.ReadStats{Rows: len(m.records), Skipped: 1}, nil
}
func (m *memStore) PruneBackups(keep int) (int, error) {
	m.prunedTo = append(m.prunedTo, keep)
	return 0, nil
}

type published struct {
	event   string
	payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{event, payload})
}

func (n *recordingNotifier) last() published {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return published{}
	}
	return n.events[len(n.events)-1]
}

func testSettings() *config.Settings {
	return config.NewSettings(&config.Config{
		DataDir:          "data",
		TaxRate:          decimal.RequireFromString("0.08"),
		RestaurantName:   "Gourmet Kitchen",
		ReceiptFooter:    "Thanks!",
		CurrencySymbol:   "$",
		AutoSaveInterval: time.Minute,
		MaxBackups:       3,
		SessionTTL:       time.Hour,
	})
}

type fixture struct {
	r      *Restaurant
	store  *memStore
	notify *recordingNotifier
	burger model.MenuItemRecord
	fries  model.MenuItemRecord
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	f := &fixture{store: &memStore{}, notify: &recordingNotifier{}}
	f.r = New(f.store, testSettings(), f.notify, log)

	var err error
	f.burger, err = f.r.CreateMenuItem(MenuItemInput{Name: "Burger", Category: "mains", Price: decimal.RequireFromString("15.99")})
	require.NoError(t, err)
	f.fries, err = f.r.CreateMenuItem(MenuItemInput{Name: "Fries", Category: "sides", Price: decimal.RequireFromString("5.99"), Description: "Crispy potato"})
	require.NoError(t, err)
	return f
}

func (f *fixture) order(t *testing.T, in CreateOrderInput) model.OrderSnapshot {
	t.Helper()
	snap, err := f.r.CreateOrder(in)
	require.NoError(t, err)
	return snap
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

// =====================
// Orders
// =====================

func TestCreateOrder_Totals(t *testing.T) {
	f := newFixture(t)
	snap := f.order(t, CreateOrderInput{
		CustomerName: "Ada",
		Items: []OrderLineInput{
			{MenuItemID: f.burger.ID, Quantity: 2},
			{MenuItemID: f.fries.ID, Quantity: 1},
		},
	})

	assert.Equal(t, "37.97", snap.Subtotal.StringFixed(2))
	assert.Equal(t, "3.04", snap.TaxAmount.StringFixed(2))
	assert.Equal(t, "41.01", snap.TotalAmount.StringFixed(2))
	assert.Equal(t, enum.OrderStatusPending, snap.Status)
	assert.Equal(t, enum.EventOrderCreated, f.notify.last().event)
	assert.True(t, f.r.Dirty())
}

func TestCreateOrder_UsesConfiguredTaxRate(t *testing.T) {
	f := newFixture(t)
	settings := testSettings()
	_, err := settings.Update(func(c *config.Config) error {
		c.TaxRate = decimal.RequireFromString("0.1")
		return nil
	})
	require.NoError(t, err)
	f.r.settings = settings

	snap := f.order(t, CreateOrderInput{Items: []OrderLineInput{{MenuItemID: f.burger.ID, Quantity: 1}}})
	assert.Equal(t, "0.1", snap.TaxRate.String())

	explicit := f.order(t, CreateOrderInput{TaxRate: decimal.NewNullDecimal(decimal.Zero)})
	assert.True(t, explicit.TaxRate.IsZero())
}

func TestCreateOrder_RejectsWithoutRegistering(t *testing.T) {
	f := newFixture(t)

	_, err := f.r.CreateOrder(CreateOrderInput{Items: []OrderLineInput{
		{MenuItemID: f.burger.ID, Quantity: 1},
		{MenuItemID: "missing", Quantity: 1},
	}})
	assert.ErrorIs(t, err, ErrMenuItemNotFound)

	_, err = f.r.CreateOrder(CreateOrderInput{CustomerPhone: "call me"})
	assert.ErrorIs(t, err, validate.ErrInvalid)

	_, err = f.r.CreateOrder(CreateOrderInput{OrderType: "drive_thru"})
	assert.ErrorIs(t, err, model.ErrInvalidOrderType)

	orders, err := f.r.Orders("")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestAddOrderItem_MergesAndChecksAvailability(t *testing.T) {
	f := newFixture(t)
	snap := f.order(t, CreateOrderInput{})

	_, err := f.r.AddOrderItem(snap.OrderID, OrderLineInput{MenuItemID: f.burger.ID, Quantity: 1})
	require.NoError(t, err)
	snap, err = f.r.AddOrderItem(snap.OrderID, OrderLineInput{MenuItemID: f.burger.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Items[0].Quantity)

	_, err = f.r.UpdateMenuItem(f.fries.ID, MenuItemPatch{IsAvailable: boolPtr(false)})
	require.NoError(t, err)
	_, err = f.r.AddOrderItem(snap.OrderID, OrderLineInput{MenuItemID: f.fries.ID, Quantity: 1})
	assert.ErrorIs(t, err, model.ErrItemUnavailable)

	_, err = f.r.AddOrderItem("ORD-NOPE", OrderLineInput{MenuItemID: f.burger.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateOrderLine(t *testing.T) {
	f := newFixture(t)
	snap := f.order(t, CreateOrderInput{Items: []OrderLineInput{
		{MenuItemID: f.burger.ID, Quantity: 1, SpecialInstructions: "rare"},
		{MenuItemID: f.fries.ID, Quantity: 1},
	}})

	_, err := f.r.UpdateOrderLine(snap.OrderID, 0, LinePatch{Quantity: intPtr(150), SpecialInstructions: strPtr("well done")})
	assert.ErrorIs(t, err, validate.ErrInvalid)
	got, err := f.r.Order(snap.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
	assert.Equal(t, "rare", got.Items[0].SpecialInstructions, "rejected patch changes nothing")

	got, err = f.r.UpdateOrderLine(snap.OrderID, 0, LinePatch{Quantity: intPtr(4), SpecialInstructions: strPtr("well done")})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Items[0].Quantity)
	assert.Equal(t, "well done", got.Items[0].SpecialInstructions)

	got, err = f.r.UpdateOrderLine(snap.OrderID, 1, LinePatch{Quantity: intPtr(0)})
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = f.r.UpdateOrderLine(snap.OrderID, 5, LinePatch{Quantity: intPtr(1)})
	assert.ErrorIs(t, err, model.ErrLineNotFound)
}

func TestUpdateOrderLine_EquivalentLinesSurviveReload(t *testing.T) {
	log, _ := test.NewNullLogger()
	store, err := csvstore.NewStore(t.TempDir(), "", log)
	require.NoError(t, err)

	r := New(store, testSettings(), nil, log)
	burger, err := r.CreateMenuItem(MenuItemInput{Name: "Burger", Category: "mains", Price: decimal.RequireFromString("15.99")})
	require.NoError(t, err)
	snap, err := r.CreateOrder(CreateOrderInput{Items: []OrderLineInput{
		{MenuItemID: burger.ID, Quantity: 60, SpecialInstructions: "no onions"},
		{MenuItemID: burger.ID, Quantity: 50},
	}})
	require.NoError(t, err)

	// Clearing the instructions would merge the lines into 110 burgers.
	_, err = r.UpdateOrderLine(snap.OrderID, 0, LinePatch{SpecialInstructions: strPtr("")})
	assert.ErrorIs(t, err, validate.ErrInvalid)
	got, err := r.Order(snap.OrderID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "no onions", got.Items[0].SpecialInstructions)

	got, err = r.UpdateOrderLine(snap.OrderID, 0, LinePatch{Quantity: intPtr(40), SpecialInstructions: strPtr("")})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 90, got.Items[0].Quantity)
	require.NoError(t, r.Save())

	reloaded := New(store, testSettings(), nil, log)
	report, err := reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Orders.Rows)
	assert.Zero(t, report.Orders.Skipped)
	again, err := reloaded.Order(snap.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 90, again.ItemCount)
}

func TestRemoveOrderLine(t *testing.T) {
	f := newFixture(t)
	snap := f.order(t, CreateOrderInput{Items: []OrderLineInput{{MenuItemID: f.burger.ID, Quantity: 1}}})

	got, err := f.r.RemoveOrderLine(snap.OrderID, 0)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	_, err = f.r.RemoveOrderLine(snap.OrderID, 0)
	assert.ErrorIs(t, err, model.ErrLineNotFound)
}

func TestUpdateOrderDetails(t *testing.T) {
	f := newFixture(t)
	snap := f.order(t, CreateOrderInput{CustomerName: "Ada"})

	_, err := f.r.UpdateOrderDetails(snap.OrderID, OrderPatch{CustomerName: strPtr("Bob"), OrderType: strPtr("boat")})
	assert.ErrorIs(t, err, model.ErrInvalidOrderType)
	got, _ := f.r.Order(snap.OrderID)
	assert.Equal(t, "Ada", got.CustomerName, "rejected patch changes nothing")

	rate := decimal.RequireFromString("0.05")
	got, err = f.r.UpdateOrderDetails(snap.OrderID, OrderPatch{
		CustomerName: strPtr("Bob"),
		TableNumber:  strPtr("t12"),
		OrderType:    strPtr("delivery"),
		TaxRate:      &rate,
		IsPriority:   boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.CustomerName)
	assert.Equal(t, "T12", got.TableNumber)
	assert.Equal(t, enum.OrderTypeDelivery, got.OrderType)
	assert.True(t, got.TaxRate.Equal(rate))
	assert.True(t, got.IsPriority)
}

func TestUpdateOrderStatus_CompletionRecordsSale(t *testing.T) {
	f := newFixture(t)
	snap := f.order(t, CreateOrderInput{Items: []OrderLineInput{{MenuItemID: f.burger.ID, Quantity: 1}}})

	for _, s := range []string{"preparing", "ready", "Completed", "completed"} {
		_, err := f.r.UpdateOrderStatus(snap.OrderID, s)
		require.NoError(t, err, s)
	}
	require.Len(t, f.store.sales, 1, "one sales record per completed order")

	got, _ := f.r.Order(snap.OrderID)
	assert.Len(t, got.StatusHistory, 4)

	_, err := f.r.UpdateOrderStatus(snap.OrderID, "preparing")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.r.AddOrderItem(snap.OrderID, OrderLineInput{MenuItemID: f.burger.ID, Quantity: 1})
	assert.ErrorIs(t, err, model.ErrOrderClosed)
	_, err = f.r.UpdateOrderDetails(snap.OrderID, OrderPatch{Notes: strPtr("late")})
	assert.ErrorIs(t, err, model.ErrOrderClosed)
}

func TestUpdateOrderStatus_SalesFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	log, hook := test.NewNullLogger()
	f.r.log = log
	f.store.appendErr = errors.New("disk full")
	snap := f.order(t, CreateOrderInput{})

	got, err := f.r.UpdateOrderStatus(snap.OrderID, "completed")
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCompleted, got.Status)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "failed to append sales record", hook.LastEntry().Message)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	snap := f.order(t, CreateOrderInput{})

	got, err := f.r.CancelOrder(snap.OrderID, "changed mind")
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCancelled, got.Status)
	got, err = f.r.CancelOrder(snap.OrderID, "again")
	require.NoError(t, err)
	assert.Len(t, got.StatusHistory, 2)
	assert.Equal(t, "changed mind", got.StatusHistory[1].Metadata["reason"])

	done := f.order(t, CreateOrderInput{})
	_, err = f.r.UpdateOrderStatus(done.OrderID, "completed")
	require.NoError(t, err)
	_, err = f.r.CancelOrder(done.OrderID, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestOrders_FilterByStatus(t *testing.T) {
	f := newFixture(t)
	a := f.order(t, CreateOrderInput{})
	f.order(t, CreateOrderInput{})
	_, err := f.r.UpdateOrderStatus(a.OrderID, "ready")
	require.NoError(t, err)

	ready, err := f.r.Orders("ready")
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, a.OrderID, ready[0].OrderID)

	_, err = f.r.Orders("lost")
	assert.ErrorIs(t, err, validate.ErrInvalid)
}

// =====================
// Menu
// =====================

func TestMenu_CreateUpdateDelete(t *testing.T) {
	f := newFixture(t)

	_, err := f.r.CreateMenuItem(MenuItemInput{Name: "burger", Category: "mains", Price: decimal.NewFromInt(3)})
	assert.ErrorIs(t, err, ErrDuplicateName)

	snap := f.order(t, CreateOrderInput{Items: []OrderLineInput{{MenuItemID: f.burger.ID, Quantity: 2}}})

	price := decimal.RequireFromString("17.50")
	updated, err := f.r.UpdateMenuItem(f.burger.ID, MenuItemPatch{Price: &price, Name: strPtr("Cheeseburger")})
	require.NoError(t, err)
	assert.Equal(t, "Cheeseburger", updated.Name)
	got, _ := f.r.Order(snap.OrderID)
	assert.Equal(t, "35.00", got.Subtotal.StringFixed(2), "open orders follow the catalog price")
	assert.Equal(t, "Cheeseburger", got.Items[0].MenuItemName)

	bad := decimal.NewFromInt(-1)
	_, err = f.r.UpdateMenuItem(f.burger.ID, MenuItemPatch{Price: &bad, Name: strPtr("Renamed")})
	assert.ErrorIs(t, err, validate.ErrInvalid)
	rec, err := f.r.MenuItem(f.burger.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cheeseburger", rec.Name)

	_, err = f.r.UpdateMenuItem(f.burger.ID, MenuItemPatch{Name: strPtr("FRIES")})
	assert.ErrorIs(t, err, ErrDuplicateName)

	assert.ErrorIs(t, f.r.DeleteMenuItem(f.burger.ID), ErrMenuItemInUse)
	_, err = f.r.UpdateOrderStatus(snap.OrderID, "completed")
	require.NoError(t, err)
	require.NoError(t, f.r.DeleteMenuItem(f.burger.ID))

	_, err = f.r.MenuItem(f.burger.ID)
	assert.ErrorIs(t, err, ErrMenuItemNotFound)
	assert.ErrorIs(t, f.r.DeleteMenuItem(f.burger.ID), ErrMenuItemNotFound)
}

func TestMenu_Filter(t *testing.T) {
	f := newFixture(t)
	_, err := f.r.CreateMenuItem(MenuItemInput{Name: "Lemonade", Category: "beverages", Price: decimal.NewFromInt(3), IsAvailable: boolPtr(false)})
	require.NoError(t, err)

	assert.Len(t, f.r.Menu(MenuFilter{}), 3)
	assert.Len(t, f.r.Menu(MenuFilter{AvailableOnly: true}), 2)
	sides := f.r.Menu(MenuFilter{Category: "Sides"})
	require.Len(t, sides, 1)
	assert.Equal(t, "Fries", sides[0].Name)
	potato := f.r.Menu(MenuFilter{Query: "POTATO"})
	require.Len(t, potato, 1)
	assert.Equal(t, f.fries.ID, potato[0].ID)
}

// =====================
// Queue, receipts, reports
// =====================

func TestQueue_PriorityThenOldest(t *testing.T) {
	f := newFixture(t)
	base := time.Now().UTC()

	first := f.order(t, CreateOrderInput{CustomerName: "first"})
	second := f.order(t, CreateOrderInput{CustomerName: "second", IsPriority: true})
	done := f.order(t, CreateOrderInput{CustomerName: "done"})
	_, err := f.r.UpdateOrderStatus(done.OrderID, "completed")
	require.NoError(t, err)

	f.r.now = func() time.Time { return base.Add(30 * time.Minute) }
	q := f.r.Queue()
	require.Len(t, q, 2)
	assert.Equal(t, second.OrderID, q[0].Order.OrderID)
	assert.Equal(t, first.OrderID, q[1].Order.OrderID)
	assert.Equal(t, 5, q[0].EstimatedMinutes)
	assert.GreaterOrEqual(t, q[1].ElapsedMinutes, 29)
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	snap := f.order(t, CreateOrderInput{Items: []OrderLineInput{{MenuItemID: f.fries.ID, Quantity: 2}}})

	r, err := f.r.Receipt(snap.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Gourmet Kitchen", r.Restaurant.Name)
	assert.Equal(t, "Thanks!", r.Restaurant.Footer)
	assert.Equal(t, "Guest", r.CustomerName)
	assert.Equal(t, "11.98", r.Subtotal)
	assert.Equal(t, "$", r.Currency)

	_, err = f.r.Receipt("nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSalesReport(t *testing.T) {
	f := newFixture(t)
	d := decimal.RequireFromString
	f.store.records = []csvstore.SalesRecord{
		{Date: "2026-01-02", OrderType: "dine_in", Subtotal: d("10"), TaxAmount: d("0.80"), TotalAmount: d("10.80"), ItemsCount: 2},
		{Date: "2026-01-01", OrderType: "takeout", Subtotal: d("20"), TaxAmount: d("1.60"), TotalAmount: d("21.60"), ItemsCount: 3},
		{Date: "2026-01-02", OrderType: "dine_in", Subtotal: d("5"), TaxAmount: d("0.40"), TotalAmount: d("5.40"), ItemsCount: 1},
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	report, err := f.r.SalesReport(start, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", report.StartDate)
	assert.Empty(t, report.EndDate)
	assert.Equal(t, 3, report.OrderCount)
	assert.Equal(t, 6, report.ItemsSold)
	assert.Equal(t, "37.80", report.TotalAmount.StringFixed(2))
	assert.Equal(t, "12.60", report.AverageOrder.StringFixed(2))
	assert.Equal(t, 1, report.SkippedRows)
	require.Len(t, report.ByDay, 2)
	assert.Equal(t, "2026-01-01", report.ByDay[0].Date)
	assert.Equal(t, 2, report.ByDay[1].Orders)
	assert.Equal(t, 2, report.ByOrderType["dine_in"].Orders)
	assert.Equal(t, "16.20", report.ByOrderType["dine_in"].Total.StringFixed(2))
}

// =====================
// Persistence
// =====================

func TestSaveAndLoad_ThroughCSVStore(t *testing.T) {
	log, _ := test.NewNullLogger()
	store, err := csvstore.NewStore(t.TempDir(), "", log)
	require.NoError(t, err)

	r := New(store, testSettings(), nil, log)
	burger, err := r.CreateMenuItem(MenuItemInput{Name: "Burger", Category: "mains", Price: decimal.RequireFromString("15.99")})
	require.NoError(t, err)
	snap, err := r.CreateOrder(CreateOrderInput{Items: []OrderLineInput{{MenuItemID: burger.ID, Quantity: 2}}})
	require.NoError(t, err)
	_, err = r.UpdateOrderStatus(snap.OrderID, "preparing")
	require.NoError(t, err)
	require.NoError(t, r.Save())
	assert.False(t, r.Dirty())

	reloaded := New(store, testSettings(), nil, log)
	report, err := reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Menu.Rows)
	assert.Equal(t, 1, report.Orders.Rows)

	got, err := reloaded.Order(snap.OrderID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusPreparing, got.Status)
	assert.Equal(t, snap.TotalAmount.StringFixed(2), got.TotalAmount.StringFixed(2))

	_, err = reloaded.AddOrderItem(snap.OrderID, OrderLineInput{MenuItemID: burger.ID, Quantity: 1})
	require.NoError(t, err)
	got, _ = reloaded.Order(snap.OrderID)
	assert.Equal(t, 3, got.Items[0].Quantity, "reloaded lines are relinked to the catalog")
}

func TestSave_ErrorKeepsDirty(t *testing.T) {
	f := newFixture(t)
	f.store.saveErr = errors.New("read-only")
	assert.Error(t, f.r.Save())
	assert.True(t, f.r.Dirty())
}

func TestRunAutoSave(t *testing.T) {
	f := newFixture(t)

	f.r.autoSave()
	assert.Equal(t, 1, f.store.saves)
	assert.Equal(t, []int{3}, f.store.prunedTo)

	f.r.autoSave()
	assert.Equal(t, 1, f.store.saves, "nothing to save when clean")

	f.order(t, CreateOrderInput{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.r.RunAutoSave(ctx, time.Hour))
	assert.Equal(t, 2, f.store.saves, "pending changes are saved on shutdown")
	assert.False(t, f.r.Dirty())
}
