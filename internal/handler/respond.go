package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/gourmet-kitchen/ordersys/internal/service"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode JSON response")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// textValue takes a JSON string or number as typed, so amounts such as
// "$4.50", "8%" or 15.99 reach the validators unchanged.
type textValue string

func (v *textValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = textValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = textValue(n)
	return nil
}

// text returns the raw value, or "" when the field was absent or null.
func (v *textValue) text() string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func writeBadBody(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
}

// writeError maps domain errors to HTTP statuses. Anything unrecognised is
// logged and reported as a 500 without detail.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, op string, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Reason, Field: verr.Field})
	case errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidOrderType),
		errors.Is(err, model.ErrInvalidTaxRate),
		errors.Is(err, model.ErrNilMenuItem):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrMenuItemNotFound),
		errors.Is(err, model.ErrLineNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrOrderClosed),
		errors.Is(err, model.ErrItemUnavailable),
		errors.Is(err, service.ErrMenuItemInUse),
		errors.Is(err, service.ErrDuplicateName):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		log.WithError(err).WithField("op", op).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
