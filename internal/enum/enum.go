package enum

// ── Order lifecycle ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeout  = "takeout"
	OrderTypeDelivery = "delivery"
)

// ── Menu catalog ──

const (
	CategoryAppetizers = "appetizers"
	CategoryMains      = "mains"
	CategoryDesserts   = "desserts"
	CategoryBeverages  = "beverages"
	CategorySalads     = "salads"
	CategorySoups      = "soups"
	CategorySides      = "sides"
	CategorySpecials   = "specials"
)

// Categories lists every valid menu category in display order.
var Categories = []string{
	CategoryAppetizers, CategoryMains, CategoryDesserts, CategoryBeverages,
	CategorySalads, CategorySoups, CategorySides, CategorySpecials,
}

// ActiveStatuses are the statuses shown on the kitchen queue.
var ActiveStatuses = []string{OrderStatusPending, OrderStatusPreparing, OrderStatusReady}

// ── Access (optional PIN lock) ──

const (
	RoleManager = "MANAGER"
	RoleStaff   = "STAFF"
)

// ── Queue display events ──

const (
	EventOrderCreated       = "order.created"
	EventOrderUpdated       = "order.updated"
	EventOrderStatusChanged = "order.status_changed"
	EventMenuUpdated        = "menu.updated"
)

func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func IsOrderType(s string) bool {
	switch s {
	case OrderTypeDineIn, OrderTypeTakeout, OrderTypeDelivery:
		return true
	}
	return false
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}
