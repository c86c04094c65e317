package taxonomy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/auth"
	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/web"
)

// Handler exposes the taxonomy reference entities over HTTP. Reads are open;
// writes require the admin role.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register binds the taxonomy routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /families", h.listFamilies)
	mux.HandleFunc("POST /families", h.createFamily)
	mux.HandleFunc("GET /families/{id}", h.getFamily)
	mux.HandleFunc("PUT /families/{id}", h.renameFamily)
	mux.HandleFunc("DELETE /families/{id}", h.deleteFamily)
	mux.HandleFunc("GET /attributes", h.listAttributes)
	mux.HandleFunc("POST /attributes", h.createAttribute)
}

type nameRequest struct {
	Name string `json:"name"`
}

func decodeName(r *http.Request) (string, error) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err)
	}
	return req.Name, nil
}

func (h *Handler) listFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := h.service.ListFamilies(r.Context())
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, families)
}

func (h *Handler) createFamily(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	name, err := decodeName(r)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	family, err := h.service.CreateFamily(r.Context(), name)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, family)
}

func (h *Handler) getFamily(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid family id", domain.ErrValidation))
		return
	}

	family, err := h.service.GetFamily(r.Context(), id)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) renameFamily(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid family id", domain.ErrValidation))
		return
	}

	name, err := decodeName(r)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	family, err := h.service.RenameFamily(r.Context(), id, name)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) deleteFamily(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid family id", domain.ErrValidation))
		return
	}

	if err := h.service.DeleteFamily(r.Context(), id); err != nil {
		web.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAttributes(w http.ResponseWriter, r *http.Request) {
	attributes, err := h.service.ListAttributes(r.Context())
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, attributes)
}

func (h *Handler) createAttribute(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	name, err := decodeName(r)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	attribute, err := h.service.CreateAttribute(r.Context(), name)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, attribute)
}
