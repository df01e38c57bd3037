package model

import (
	"errors"
	"time"
)

// Errors returned by the order model. Input problems (bad quantity, name,
// price) are reported as *validate.Error instead.
var (
	ErrNilMenuItem       = errors.New("menu item is required")
	ErrItemUnavailable   = errors.New("menu item is not available")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidOrderType  = errors.New("invalid order_type")
	ErrInvalidTaxRate    = errors.New("tax rate must be between 0 and 1")
	ErrOrderClosed       = errors.New("order is closed")
	ErrLineNotFound      = errors.New("order line not found")
	ErrMissingID         = errors.New("id is required")
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }
