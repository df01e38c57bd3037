package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/gourmet-kitchen/ordersys/internal/service"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderService is the order part of the restaurant service.
// Satisfied by *service.Restaurant; narrow interface for testability.
type OrderService interface {
	CreateOrder(in service.CreateOrderInput) (model.OrderSnapshot, error)
	Order(id string) (model.OrderSnapshot, error)
	Orders(status string) ([]model.OrderSnapshot, error)
	AddOrderItem(orderID string, line service.OrderLineInput) (model.OrderSnapshot, error)
	UpdateOrderLine(orderID string, index int, p service.LinePatch) (model.OrderSnapshot, error)
	RemoveOrderLine(orderID string, index int) (model.OrderSnapshot, error)
	UpdateOrderDetails(orderID string, p service.OrderPatch) (model.OrderSnapshot, error)
	UpdateOrderStatus(orderID, status string) (model.OrderSnapshot, error)
	CancelOrder(orderID, reason string) (model.OrderSnapshot, error)
	Receipt(orderID string) (model.Receipt, error)
	QuickEntry(text string) (service.QuickEntry, error)
}

// OrderHandler handles order entry and lifecycle endpoints.
type OrderHandler struct {
	svc OrderService
	log logrus.FieldLogger
}

func NewOrderHandler(svc OrderService, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/quick-entry", h.QuickEntry)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.UpdateDetails)
	r.Post("/{id}/items", h.AddItem)
	r.Patch("/{id}/items/{line}", h.UpdateItem)
	r.Delete("/{id}/items/{line}", h.RemoveItem)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/cancel", h.Cancel)
	r.Get("/{id}/receipt", h.Receipt)
}

// --- Request types ---

type orderLineRequest struct {
	MenuItemID          string `json:"menu_item_id"`
	Quantity            *int   `json:"quantity"` // one when absent
	SpecialInstructions string `json:"special_instructions"`
}

type createOrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	TableNumber   string             `json:"table_number"`
	OrderType     string             `json:"order_type"`
	TaxRate       *textValue         `json:"tax_rate"`
	IsPriority    bool               `json:"is_priority"`
	Notes         string             `json:"notes"`
	Items         []orderLineRequest `json:"items"`
}

type updateOrderRequest struct {
	CustomerName  *string          `json:"customer_name"`
	CustomerPhone *string          `json:"customer_phone"`
	TableNumber   *string          `json:"table_number"`
	OrderType     *string          `json:"order_type"`
	TaxRate       *textValue       `json:"tax_rate"`
	IsPriority    *bool            `json:"is_priority"`
	Notes         *string          `json:"notes"`
}

type updateLineRequest struct {
	Quantity            *int    `json:"quantity"`
	SpecialInstructions *string `json:"special_instructions"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type quickEntryRequest struct {
	Text string `json:"text"`
}

func (l orderLineRequest) input() service.OrderLineInput {
	qty := 1
	if l.Quantity != nil {
		qty = *l.Quantity
	}
	return service.OrderLineInput{
		MenuItemID:          l.MenuItemID,
		Quantity:            qty,
		SpecialInstructions: l.SpecialInstructions,
	}
}

// taxRate parses an optional tax_rate field; "8", "8%" and "0.08" are the
// same rate.
func taxRate(v *textValue) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	rate, err := validate.TaxRate(v.text())
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// --- Handlers ---

// List returns all orders, optionally filtered by ?status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, h.log, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}

	rate, err := taxRate(req.TaxRate)
	if err != nil {
		writeError(w, h.log, "create order", err)
		return
	}

	in := service.CreateOrderInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		TableNumber:   req.TableNumber,
		OrderType:     req.OrderType,
		IsPriority:    req.IsPriority,
		Notes:         req.Notes,
		Items:         make([]service.OrderLineInput, len(req.Items)),
	}
	if rate != nil {
		in.TaxRate = decimal.NewNullDecimal(*rate)
	}
	for i, l := range req.Items {
		in.Items[i] = l.input()
	}

	order, err := h.svc.CreateOrder(in)
	if err != nil {
		writeError(w, h.log, "create order", err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Order(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	rate, err := taxRate(req.TaxRate)
	if err != nil {
		writeError(w, h.log, "update order", err)
		return
	}

	order, err := h.svc.UpdateOrderDetails(chi.URLParam(r, "id"), service.OrderPatch{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		TableNumber:   req.TableNumber,
		OrderType:     req.OrderType,
		TaxRate:       rate,
		IsPriority:    req.IsPriority,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, h.log, "update order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req orderLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}

	order, err := h.svc.AddOrderItem(chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, h.log, "add order item", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, ok := lineIndex(w, r)
	if !ok {
		return
	}
	var req updateLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}

	order, err := h.svc.UpdateOrderLine(chi.URLParam(r, "id"), index, service.LinePatch{
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeError(w, h.log, "update order item", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := lineIndex(w, r)
	if !ok {
		return
	}

	order, err := h.svc.RemoveOrderLine(chi.URLParam(r, "id"), index)
	if err != nil {
		writeError(w, h.log, "remove order item", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "status is required", Field: "status"})
		return
	}

	order, err := h.svc.UpdateOrderStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, h.log, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Cancel accepts an optional {"reason": "..."} body.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadBody(w)
		return
	}

	order, err := h.svc.CancelOrder(chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, h.log, "cancel order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.svc.Receipt(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, "order receipt", err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// lineIndex parses the zero-based {line} URL parameter.
func lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil || index < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid line index", Field: "line"})
		return 0, false
	}
	return index, true
}

// QuickEntry resolves a typed ticket against the menu. It only proposes
// lines; the client creates the order with the ones it accepts.
func (h *OrderHandler) QuickEntry(w http.ResponseWriter, r *http.Request) {
	var req quickEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	result, err := h.svc.QuickEntry(req.Text)
	if err != nil {
		writeError(w, h.log, "quick entry", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
