package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/gourmet-kitchen/ordersys/internal/service"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/sirupsen/logrus"
)

// MenuService is the catalog part of the restaurant service.
// Satisfied by *service.Restaurant; narrow interface for testability.
type MenuService interface {
	Menu(f service.MenuFilter) []model.MenuItemRecord
	MenuItem(id string) (model.MenuItemRecord, error)
	CreateMenuItem(in service.MenuItemInput) (model.MenuItemRecord, error)
	UpdateMenuItem(id string, p service.MenuItemPatch) (model.MenuItemRecord, error)
	DeleteMenuItem(id string) error
}

// MenuHandler handles menu catalog endpoints.
type MenuHandler struct {
	svc MenuService
	log logrus.FieldLogger
}

func NewMenuHandler(svc MenuService, log logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{svc: svc, log: log}
}

// RegisterRoutes registers the read-only menu endpoints.
// Expected to be mounted at /menu.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterManagerRoutes registers the catalog edits. The caller applies the
// manager role check.
func (h *MenuHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type createMenuItemRequest struct {
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       *textValue `json:"price"`
	Description string     `json:"description"`
	IsAvailable *bool      `json:"is_available"`
}

type updateMenuItemRequest struct {
	Name        *string    `json:"name"`
	Category    *string    `json:"category"`
	Price       *textValue `json:"price"`
	Description *string    `json:"description"`
	IsAvailable *bool      `json:"is_available"`
}

// --- Handlers ---

// List returns the catalog, filtered by ?category=, ?q= and ?available=true.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query, err := validate.SearchQuery(q.Get("q"))
	if err != nil {
		writeError(w, h.log, "list menu", err)
		return
	}
	f := service.MenuFilter{Category: q.Get("category"), Query: query}
	if raw := q.Get("available"); raw != "" {
		if f.AvailableOnly, err = strconv.ParseBool(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "available must be true or false", Field: "available"})
			return
		}
	}

	writeJSON(w, http.StatusOK, h.svc.Menu(f))
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.MenuItem(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, "get menu item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	// A missing price is an error, never a free item.
	price, err := validate.Price(req.Price.text())
	if err != nil {
		writeError(w, h.log, "create menu item", err)
		return
	}

	item, err := h.svc.CreateMenuItem(service.MenuItemInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       price,
		Description: req.Description,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		writeError(w, h.log, "create menu item", err)
		return
	}
	h.log.WithFields(logrus.Fields{"menu_item_id": item.ID, "name": item.Name}).Info("menu item created")
	writeJSON(w, http.StatusCreated, item)
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateMenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	patch := service.MenuItemPatch{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		IsAvailable: req.IsAvailable,
	}
	if req.Price != nil {
		price, err := validate.Price(req.Price.text())
		if err != nil {
			writeError(w, h.log, "update menu item", err)
			return
		}
		patch.Price = &price
	}

	item, err := h.svc.UpdateMenuItem(chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.log, "update menu item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteMenuItem(id); err != nil {
		writeError(w, h.log, "delete menu item", err)
		return
	}
	h.log.WithField("menu_item_id", id).Info("menu item deleted")
	w.WriteHeader(http.StatusNoContent)
}
