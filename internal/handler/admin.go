package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// DataService covers manual persistence controls.
// Satisfied by *service.Restaurant; narrow interface for testability.
type DataService interface {
	Save() error
	Dirty() bool
	PruneBackups() (int, error)
}

// AdminHandler exposes manual save and backup maintenance.
type AdminHandler struct {
	svc DataService
	log logrus.FieldLogger
}

func NewAdminHandler(svc DataService, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

// RegisterRoutes registers admin endpoints. Expected to be mounted at
// /admin behind the manager role check.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.Status)
	r.Post("/save", h.Save)
	r.Post("/backups/prune", h.Prune)
}

type statusResponse struct {
	Dirty bool `json:"dirty"`
}

type pruneResponse struct {
	Removed int `json:"removed"`
}

func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Dirty: h.svc.Dirty()})
}

// Save writes the catalog and orders now instead of waiting for auto-save.
func (h *AdminHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Save(); err != nil {
		writeError(w, h.log, "manual save", err)
		return
	}
	h.log.Info("manual save completed")
	writeJSON(w, http.StatusOK, statusResponse{Dirty: h.svc.Dirty()})
}

func (h *AdminHandler) Prune(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.PruneBackups()
	if err != nil {
		writeError(w, h.log, "prune backups", err)
		return
	}
	writeJSON(w, http.StatusOK, pruneResponse{Removed: removed})
}
