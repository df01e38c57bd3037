package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gourmet-kitchen/ordersys/internal/config"
	"github.com/gourmet-kitchen/ordersys/internal/csvstore"
	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/sirupsen/logrus"
)

// Errors returned by the restaurant service.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrMenuItemInUse    = errors.New("menu item is used by an active order")
	ErrDuplicateName    = errors.New("a menu item with this name already exists")
)

// Persistence loads and saves the catalog and orders.
// Satisfied by *csvstore.Store; narrow interface for testability.
type Persistence interface {
	LoadMenuItems() ([]*model.MenuItem, csvstore.ReadStats, error)
	SaveMenuItems(items []*model.MenuItem) error
	LoadOrders(index map[string]*model.MenuItem) ([]*model.Order, csvstore.ReadStats, error)
	SaveOrders(orders []*model.Order) error
	AppendSalesRecord(o *model.Order) error
	LoadSalesData(start, end time.Time) ([]csvstore.SalesRecord, csvstore.ReadStats, error)
	PruneBackups(keep int) (int, error)
}

// Notifier is told about every change to menu or orders.
// Satisfied by *ws.Hub.
type Notifier interface {
	Publish(eventType string, payload any)
}

// SettingsSource supplies the live configuration.
// Satisfied by *config.Settings.
type SettingsSource interface {
	Current() config.Config
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}

// LoadReport summarizes a Load.
type LoadReport struct {
	Menu   csvstore.ReadStats `json:"menu"`
	Orders csvstore.ReadStats `json:"orders"`
}

// Restaurant owns the in-memory catalog and order list. All access goes
// through its mutex; callers only ever receive copies.
type Restaurant struct {
	store    Persistence
	settings SettingsSource
	notify   Notifier
	log      logrus.FieldLogger
	now      func() time.Time

	mu         sync.Mutex
	menu       []*model.MenuItem
	menuByID   map[string]*model.MenuItem
	orders     []*model.Order
	ordersByID map[string]*model.Order
	dirty      bool
}

// New creates a Restaurant with an empty catalog. Call Load to read the
// persisted data. notify may be nil.
func New(store Persistence, settings SettingsSource, notify Notifier, log logrus.FieldLogger) *Restaurant {
	if notify == nil {
		notify = nopNotifier{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Restaurant{
		store:      store,
		settings:   settings,
		notify:     notify,
		log:        log.WithField("component", "restaurant"),
		now:        func() time.Time { return time.Now().UTC() },
		menuByID:   make(map[string]*model.MenuItem),
		ordersByID: make(map[string]*model.Order),
	}
}

// Load replaces the in-memory state with the persisted catalog and orders.
// The catalog is read first so order lines can be relinked to it.
func (r *Restaurant) Load() (LoadReport, error) {
	var report LoadReport

	items, menuStats, err := r.store.LoadMenuItems()
	if err != nil {
		return report, fmt.Errorf("load menu: %w", err)
	}
	index := make(map[string]*model.MenuItem, len(items))
	for _, m := range items {
		index[m.ID()] = m
	}
	orders, orderStats, err := r.store.LoadOrders(index)
	if err != nil {
		return report, fmt.Errorf("load orders: %w", err)
	}
	report = LoadReport{Menu: menuStats, Orders: orderStats}

	r.mu.Lock()
	r.menu = items
	r.menuByID = index
	r.orders = nil
	r.ordersByID = make(map[string]*model.Order, len(orders))
	for _, o := range orders {
		if _, dup := r.ordersByID[o.ID()]; dup {
			r.log.WithField("order_id", o.ID()).Warn("ignoring duplicate order id")
			report.Orders.Skipped++
			report.Orders.Rows--
			continue
		}
		r.orders = append(r.orders, o)
		r.ordersByID[o.ID()] = o
	}
	r.dirty = false
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"menu_items":     menuStats.Rows,
		"menu_skipped":   menuStats.Skipped,
		"orders":         report.Orders.Rows,
		"orders_skipped": report.Orders.Skipped,
		"lines_dropped":  orderStats.Dropped,
	}).Info("loaded restaurant data")
	return report, nil
}

// Save writes the catalog and the orders.
func (r *Restaurant) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked()
}

func (r *Restaurant) saveLocked() error {
	if err := r.store.SaveMenuItems(r.menu); err != nil {
		return fmt.Errorf("save menu: %w", err)
	}
	if err := r.store.SaveOrders(r.orders); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	r.dirty = false
	return nil
}

// Dirty reports whether there are changes not yet saved.
func (r *Restaurant) Dirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirty
}

// PruneBackups trims the backup directory to the configured MaxBackups.
func (r *Restaurant) PruneBackups() (int, error) {
	return r.store.PruneBackups(r.settings.Current().MaxBackups)
}

// RunAutoSave saves pending changes and prunes backups every interval until
// ctx is done, then performs a last save if anything is pending. A changed
// AutoSaveInterval setting takes effect after the next tick.
func (r *Restaurant) RunAutoSave(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.Dirty() {
				if err := r.Save(); err != nil {
					r.log.WithError(err).Error("final save failed")
					return err
				}
				r.log.Info("saved pending changes on shutdown")
			}
			return nil
		case <-ticker.C:
			r.autoSave()
			if next := r.settings.Current().AutoSaveInterval; next > 0 && next != interval {
				interval = next
				ticker.Reset(interval)
				r.log.WithField("interval", interval.String()).Info("auto-save interval changed")
			}
		}
	}
}

func (r *Restaurant) autoSave() {
	if r.Dirty() {
		if err := r.Save(); err != nil {
			r.log.WithError(err).Error("auto-save failed")
			return
		}
		r.log.Debug("auto-saved")
	}
	if removed, err := r.PruneBackups(); err != nil {
		r.log.WithError(err).Warn("backup pruning failed")
	} else if removed > 0 {
		r.log.WithField("removed", removed).Debug("pruned backups")
	}
}

func (r *Restaurant) markDirty() {
	r.dirty = true
}

func (r *Restaurant) orderLocked(id string) (*model.Order, error) {
	o, ok := r.ordersByID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrOrderNotFound)
	}
	return o, nil
}

func (r *Restaurant) menuItemLocked(id string) (*model.MenuItem, error) {
	m, ok := r.menuByID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrMenuItemNotFound)
	}
	return m, nil
}
