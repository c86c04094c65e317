package history

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/auth"
	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/web"
)

// Handler exposes the history ledger over HTTP. Every route requires the
// admin role: the ledger records moderation outcomes and rollbacks rewrite
// canonical state.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register binds the history routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /history", h.list)
	mux.HandleFunc("GET /history/{id}", h.get)
	mux.HandleFunc("GET /history/{id}/diff", h.diff)
	mux.HandleFunc("POST /history/{id}/rollback", h.rollbackOne)
	mux.HandleFunc("POST /history/rollback", h.rollbackMany)
	mux.HandleFunc("GET /plants/{id}/history", h.listByPlant)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	filter := domain.HistoryFilter{Action: domain.HistoryAction(r.URL.Query().Get("action"))}
	if raw := r.URL.Query().Get("plant"); raw != "" {
		plantID, err := uuid.Parse(raw)
		if err != nil {
			web.WriteError(w, fmt.Errorf("%w: invalid plant id", domain.ErrValidation))
			return
		}
		filter.PlantID = &plantID
	}
	if raw := r.URL.Query().Get("actor"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			web.WriteError(w, fmt.Errorf("%w: invalid actor id", domain.ErrValidation))
			return
		}
		filter.ActorID = &actorID
	}

	page, pageSize := web.PageParams(r)
	records, total, err := h.service.List(r.Context(), filter, page, pageSize)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"page":       page,
		"pageSize":   pageSize,
		"totalItems": total,
		"data":       records,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid history record id", domain.ErrValidation))
		return
	}

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) listByPlant(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	plantID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid plant id", domain.ErrValidation))
		return
	}

	records, err := h.service.ListByPlant(r.Context(), plantID)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) diff(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid history record id", domain.ErrValidation))
		return
	}

	diff, err := h.service.Diff(r.Context(), id)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]string{"diff": diff})
}

func (h *Handler) rollbackOne(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid history record id", domain.ErrValidation))
		return
	}

	plant, err := h.service.RollbackOne(r.Context(), id)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, plant)
}

func (h *Handler) rollbackMany(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err))
		return
	}
	if len(req.IDs) == 0 {
		web.WriteError(w, fmt.Errorf("%w: ids is required", domain.ErrValidation))
		return
	}

	restored, err := h.service.RollbackMany(r.Context(), req.IDs)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, restored)
}
