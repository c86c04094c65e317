package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/verdantlabs/herbarium/internal/domain"
)

// WriteJSON renders payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

// WriteError renders err as JSON with the status implied by its domain kind.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, ErrorStatus(err), map[string]string{"error": err.Error()})
}

// ErrorStatus maps the domain error taxonomy onto HTTP status codes.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PageParams reads 1-based page/pageSize query parameters with defaults.
func PageParams(r *http.Request) (page, pageSize int) {
	page = intQuery(r, "page", 1)
	pageSize = intQuery(r, "pageSize", 20)
	return page, pageSize
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return fallback
		}
		value = value*10 + int(c-'0')
	}
	if value == 0 {
		return fallback
	}
	return value
}
