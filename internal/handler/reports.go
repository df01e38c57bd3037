package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gourmet-kitchen/ordersys/internal/service"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/sirupsen/logrus"
)

// ReportService is the reporting part of the restaurant service.
// Satisfied by *service.Restaurant; narrow interface for testability.
type ReportService interface {
	Queue() []service.QueueEntry
	SalesReport(start, end time.Time) (service.SalesReport, error)
}

// ReportsHandler serves the kitchen queue and sales summaries.
type ReportsHandler struct {
	svc ReportService
	log logrus.FieldLogger
}

func NewReportsHandler(svc ReportService, log logrus.FieldLogger) *ReportsHandler {
	return &ReportsHandler{svc: svc, log: log}
}

// RegisterRoutes registers the kitchen queue, open to all staff.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/queue", h.Queue)
}

// RegisterManagerRoutes registers sales reporting endpoints.
// Expected to be mounted at /reports behind the manager role check.
func (h *ReportsHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/sales", h.Sales)
}

// Queue returns active orders in preparation order.
func (h *ReportsHandler) Queue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Queue())
}

// Sales summarises the sales log between ?start_date= and ?end_date=
// (YYYY-MM-DD, both inclusive and optional).
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := validate.DateRange(q.Get("start_date"), q.Get("end_date"), "")
	if err != nil {
		writeError(w, h.log, "sales report", err)
		return
	}

	report, err := h.svc.SalesReport(start, end)
	if err != nil {
		writeError(w, h.log, "sales report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
