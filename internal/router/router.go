package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gourmet-kitchen/ordersys/internal/auth"
	"github.com/gourmet-kitchen/ordersys/internal/config"
	"github.com/gourmet-kitchen/ordersys/internal/enum"
	"github.com/gourmet-kitchen/ordersys/internal/handler"
	mw "github.com/gourmet-kitchen/ordersys/internal/middleware"
	"github.com/gourmet-kitchen/ordersys/internal/service"
	"github.com/gourmet-kitchen/ordersys/internal/ws"
	"github.com/sirupsen/logrus"
)

// New creates a Chi router with all application routes wired up.
// When a PIN hash is configured every route except /health and the auth
// endpoints requires a token, and manager routes require the MANAGER role.
func New(cfg *config.Config, settings *config.Settings, svc *service.Restaurant, hub *ws.Hub, log logrus.FieldLogger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	lock := cfg.PINLockEnabled()
	authenticated := mw.Passthrough
	managerOnly := mw.Passthrough
	if lock {
		authenticated = mw.Authenticate(cfg.JWTSecret)
		managerOnly = mw.RequireRole(enum.RoleManager)
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if lock {
		pins := auth.PINChecker{ManagerHash: cfg.ManagerPINHash, StaffHash: cfg.StaffPINHash}
		handler.NewAuthHandler(pins, cfg.JWTSecret, cfg.SessionTTL, log).RegisterRoutes(r)
	}

	// Queue displays authenticate via query param
	r.Get("/ws/queue", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, lock, w, r)
	})

	menuHandler := handler.NewMenuHandler(svc, log)
	orderHandler := handler.NewOrderHandler(svc, log)
	reportsHandler := handler.NewReportsHandler(svc, log)
	settingsHandler := handler.NewSettingsHandler(settings, log)
	adminHandler := handler.NewAdminHandler(svc, log)

	r.Group(func(r chi.Router) {
		r.Use(authenticated)

		r.Route("/menu", func(r chi.Router) {
			menuHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(managerOnly)
				menuHandler.RegisterManagerRoutes(r)
			})
		})
		r.Route("/orders", orderHandler.RegisterRoutes)
		reportsHandler.RegisterRoutes(r)

		// Manager-only routes
		r.Group(func(r chi.Router) {
			r.Use(managerOnly)
			r.Route("/reports", reportsHandler.RegisterManagerRoutes)
			r.Route("/settings", settingsHandler.RegisterRoutes)
			r.Route("/admin", adminHandler.RegisterRoutes)
		})
	})

	log.WithField("pin_lock", lock).Info("router initialized")
	return r
}
