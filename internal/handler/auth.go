package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gourmet-kitchen/ordersys/internal/auth"
	"github.com/sirupsen/logrus"
)

// RoleResolver maps a PIN to a role. Satisfied by auth.PINChecker.
type RoleResolver interface {
	RoleFor(pin string) (string, error)
}

// AuthHandler handles the optional PIN lock endpoints.
type AuthHandler struct {
	pins      RoleResolver
	jwtSecret string
	ttl       time.Duration
	log       logrus.FieldLogger
}

func NewAuthHandler(pins RoleResolver, jwtSecret string, ttl time.Duration, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{pins: pins, jwtSecret: jwtSecret, ttl: ttl, log: log}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/pin-login", h.PinLogin)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type pinLoginRequest struct {
	Pin string `json:"pin"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Handlers ---

// PinLogin exchanges a manager or staff PIN for a session token.
func (h *AuthHandler) PinLogin(w http.ResponseWriter, r *http.Request) {
	var req pinLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	if req.Pin == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "pin is required", Field: "pin"})
		return
	}

	role, err := h.pins.RoleFor(req.Pin)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPIN) {
			h.log.WithField("remote_addr", r.RemoteAddr).Warn("rejected pin login")
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
			return
		}
		writeError(w, h.log, "pin login", err)
		return
	}

	h.respondWithToken(w, role)
}

// Refresh exchanges a still-valid token for a new one with a fresh expiry.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	if req.Token == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "token is required", Field: "token"})
		return
	}

	claims, err := auth.ValidateToken(h.jwtSecret, req.Token)
	if errors.Is(err, auth.ErrTokenExpired) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
		return
	}

	h.respondWithToken(w, claims.Role)
}

// --- Helpers ---

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, role string) {
	expires := time.Now().Add(h.ttl)
	token, err := auth.GenerateToken(h.jwtSecret, role, h.ttl)
	if err != nil {
		writeError(w, h.log, "generate token", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		Role:      role,
		ExpiresAt: expires.UTC().Truncate(time.Second),
	})
}
