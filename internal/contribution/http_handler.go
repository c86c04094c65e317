package contribution

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/auth"
	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/repository"
	"github.com/verdantlabs/herbarium/internal/web"
)

// Handler exposes the contribution workflow over HTTP.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register binds the contribution routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /contributions", h.create)
	mux.HandleFunc("GET /contributions", h.list)
	mux.HandleFunc("GET /contributions/{id}", h.get)
	mux.HandleFunc("PATCH /contributions/{id}", h.patch)
	mux.HandleFunc("POST /contributions/{id}/review", h.review)
	mux.HandleFunc("DELETE /contributions/{id}", h.delete)
}

type createRequest struct {
	Type      string                    `json:"type"`
	Message   string                    `json:"message"`
	PlantRef  *uuid.UUID                `json:"plant_ref"`
	Plant     *domain.ContributionPlant `json:"plant"`
	NewImages []string                  `json:"new_images"`
}

type patchRequest struct {
	Message   *string                   `json:"message"`
	Plant     *domain.ContributionPlant `json:"plant"`
	NewImages []string                  `json:"new_images"`
}

type reviewRequest struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	var req createRequest
	imageBuffers, err := web.DecodeBody(r, &req)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	var newImageBuffers [][]byte
	if r.MultipartForm != nil {
		newImageBuffers, err = web.ReadFormFiles(r.MultipartForm, "new_images")
		if err != nil {
			web.WriteError(w, err)
			return
		}
	}

	data := domain.ContributionData{
		PlantRef:  req.PlantRef,
		NewImages: req.NewImages,
	}
	if req.Plant != nil {
		data.Plant = *req.Plant
	}

	created, err := h.service.Create(r.Context(), actor.ID, domain.ContributionType(req.Type), req.Message, data, imageBuffers, newImageBuffers)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid contribution id", domain.ErrValidation))
		return
	}

	contribution, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, contribution)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleModerator, auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	filter := repository.ContributionFilter{
		Type:   domain.ContributionType(r.URL.Query().Get("type")),
		Status: domain.ContributionStatus(r.URL.Query().Get("status")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}

	page, pageSize := web.PageParams(r)
	contributions, total, err := h.service.List(r.Context(), filter, page, pageSize)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"page":       page,
		"pageSize":   pageSize,
		"totalItems": total,
		"data":       contributions,
	})
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid contribution id", domain.ErrValidation))
		return
	}

	var req patchRequest
	imageBuffers, err := web.DecodeBody(r, &req)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	var newImageBuffers [][]byte
	if r.MultipartForm != nil {
		newImageBuffers, err = web.ReadFormFiles(r.MultipartForm, "new_images")
		if err != nil {
			web.WriteError(w, err)
			return
		}
	}

	params := PatchParams{
		Message:   req.Message,
		Plant:     req.Plant,
		NewImages: req.NewImages,
	}

	updated, err := h.service.Patch(r.Context(), id, actor.ID, params, imageBuffers, newImageBuffers)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireRole(r.Context(), auth.RoleModerator, auth.RoleAdmin)
	if err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid contribution id", domain.ErrValidation))
		return
	}

	var req reviewRequest
	if _, err := web.DecodeBody(r, &req); err != nil {
		web.WriteError(w, err)
		return
	}

	reviewed, err := h.service.Moderate(r.Context(), id, ReviewAction(req.Action), actor.ID, req.Message)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, reviewed)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid contribution id", domain.ErrValidation))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		web.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
