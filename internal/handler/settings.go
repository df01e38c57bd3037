package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gourmet-kitchen/ordersys/internal/config"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SettingsStore holds the live configuration. Satisfied by *config.Settings.
type SettingsStore interface {
	Current() config.Config
	Update(fn func(*config.Config) error) (config.Config, error)
	Reset() config.Config
}

// SettingsHandler exposes the runtime-editable part of the configuration.
type SettingsHandler struct {
	settings SettingsStore
	log      logrus.FieldLogger
}

func NewSettingsHandler(settings SettingsStore, log logrus.FieldLogger) *SettingsHandler {
	return &SettingsHandler{settings: settings, log: log}
}

// RegisterRoutes registers settings endpoints. Expected to be mounted at
// /settings behind the manager role check.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Patch("/", h.Update)
	r.Post("/reset", h.Reset)
}

// --- Request / Response types ---

type settingsResponse struct {
	TaxRate           decimal.Decimal `json:"tax_rate"`
	RestaurantName    string          `json:"restaurant_name"`
	RestaurantAddress string          `json:"restaurant_address"`
	RestaurantPhone   string          `json:"restaurant_phone"`
	RestaurantEmail   string          `json:"restaurant_email"`
	ReceiptFooter     string          `json:"receipt_footer"`
	CurrencySymbol    string          `json:"currency_symbol"`
	AutoSaveInterval  string          `json:"auto_save_interval"`
	MaxBackups        int             `json:"max_backups"`
	PINLockEnabled    bool            `json:"pin_lock_enabled"`
}

// Tax rate is accepted as a string so "8.25%" works the same as in the
// environment.
type updateSettingsRequest struct {
	TaxRate           *string `json:"tax_rate"`
	RestaurantName    *string `json:"restaurant_name"`
	RestaurantAddress *string `json:"restaurant_address"`
	RestaurantPhone   *string `json:"restaurant_phone"`
	RestaurantEmail   *string `json:"restaurant_email"`
	ReceiptFooter     *string `json:"receipt_footer"`
	CurrencySymbol    *string `json:"currency_symbol"`
	AutoSaveInterval  *string `json:"auto_save_interval"`
	MaxBackups        *int    `json:"max_backups"`
}

func toSettingsResponse(c config.Config) settingsResponse {
	return settingsResponse{
		TaxRate:           c.TaxRate,
		RestaurantName:    c.RestaurantName,
		RestaurantAddress: c.RestaurantAddress,
		RestaurantPhone:   c.RestaurantPhone,
		RestaurantEmail:   c.RestaurantEmail,
		ReceiptFooter:     c.ReceiptFooter,
		CurrencySymbol:    c.CurrencySymbol,
		AutoSaveInterval:  c.AutoSaveInterval.String(),
		MaxBackups:        c.MaxBackups,
		PINLockEnabled:    c.PINLockEnabled(),
	}
}

// --- Handlers ---

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSettingsResponse(h.settings.Current()))
}

// Update applies a partial change. Nothing is kept unless the whole result
// validates.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}

	cfg, err := h.settings.Update(func(c *config.Config) error {
		if req.TaxRate != nil {
			rate, err := validate.TaxRate(*req.TaxRate)
			if err != nil {
				return err
			}
			c.TaxRate = rate
		}
		if req.AutoSaveInterval != nil {
			d, err := time.ParseDuration(*req.AutoSaveInterval)
			if err != nil {
				return &validate.Error{Field: "auto_save_interval", Reason: "invalid duration"}
			}
			c.AutoSaveInterval = d
		}
		setString(&c.RestaurantName, req.RestaurantName)
		setString(&c.RestaurantAddress, req.RestaurantAddress)
		setString(&c.RestaurantPhone, req.RestaurantPhone)
		setString(&c.RestaurantEmail, req.RestaurantEmail)
		setString(&c.ReceiptFooter, req.ReceiptFooter)
		setString(&c.CurrencySymbol, req.CurrencySymbol)
		if req.MaxBackups != nil {
			c.MaxBackups = *req.MaxBackups
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*validate.Error); ok {
			writeError(w, h.log, "update settings", err)
			return
		}
		// Validate reports every problem joined together.
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: strings.ReplaceAll(err.Error(), "\n", "; ")})
		return
	}

	h.log.WithField("tax_rate", cfg.TaxRate.String()).Info("settings updated")
	writeJSON(w, http.StatusOK, toSettingsResponse(cfg))
}

// Reset restores the values read at startup.
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	cfg := h.settings.Reset()
	h.log.Info("settings reset to startup values")
	writeJSON(w, http.StatusOK, toSettingsResponse(cfg))
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
