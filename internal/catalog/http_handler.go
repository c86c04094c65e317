package catalog

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/auth"
	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/repository"
	"github.com/verdantlabs/herbarium/internal/taxonomy"
	"github.com/verdantlabs/herbarium/internal/web"
)

// Handler exposes the plant catalog over HTTP.
type Handler struct {
	service  *Service
	resolver *taxonomy.Resolver
}

// NewHTTPHandler wraps the catalog service with REST endpoints.
func NewHTTPHandler(service *Service, resolver *taxonomy.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

// Register binds the catalog routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /plants", h.create)
	mux.HandleFunc("GET /plants", h.list)
	mux.HandleFunc("GET /plants/stats", h.stats)
	mux.HandleFunc("GET /plants/{id}", h.get)
	mux.HandleFunc("PUT /plants/{id}", h.update)
	mux.HandleFunc("DELETE /plants/{id}", h.delete)
}

type plantRequest struct {
	ScientificName     string                      `json:"scientific_name"`
	CommonNames        []string                    `json:"common_names"`
	Description        string                      `json:"description"`
	Family             string                      `json:"family"`
	Attributes         []string                    `json:"attributes"`
	Images             []string                    `json:"images"`
	SpeciesDescription []domain.DescriptionSection `json:"species_description"`
}

type plantPatchRequest struct {
	ScientificName     *string                      `json:"scientific_name"`
	CommonNames        *[]string                    `json:"common_names"`
	Description        *string                      `json:"description"`
	Family             *string                      `json:"family"`
	Attributes         *[]string                    `json:"attributes"`
	Images             *[]string                    `json:"images"`
	SpeciesDescription *[]domain.DescriptionSection `json:"species_description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	var req plantRequest
	imageBuffers, err := web.DecodeBody(r, &req)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	params := CreateParams{
		ScientificName:     req.ScientificName,
		CommonNames:        req.CommonNames,
		Description:        req.Description,
		Images:             req.Images,
		SpeciesDescription: req.SpeciesDescription,
	}

	// Direct admin entry: unknown reference names create their rows.
	if strings.TrimSpace(req.Family) != "" {
		params.FamilyID, err = h.resolver.ResolveFamily(r.Context(), req.Family, taxonomy.CreateOnMiss)
		if err != nil {
			web.WriteError(w, err)
			return
		}
	}
	if len(req.Attributes) > 0 {
		params.AttributeIDs, err = h.resolver.ResolveAttributes(r.Context(), req.Attributes, taxonomy.CreateOnMiss)
		if err != nil {
			web.WriteError(w, err)
			return
		}
	}

	plant, err := h.service.Create(r.Context(), params, imageBuffers)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, plant)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid plant id", domain.ErrValidation))
		return
	}

	plant, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, plant)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.PlantFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}

	if raw := r.URL.Query().Get("family"); raw != "" {
		familyID, err := uuid.Parse(raw)
		if err != nil {
			web.WriteError(w, fmt.Errorf("%w: invalid family id", domain.ErrValidation))
			return
		}
		filter.FamilyID = &familyID
	}
	for _, raw := range r.URL.Query()["attribute"] {
		attributeID, err := uuid.Parse(raw)
		if err != nil {
			web.WriteError(w, fmt.Errorf("%w: invalid attribute id", domain.ErrValidation))
			return
		}
		filter.AttributeIDs = append(filter.AttributeIDs, attributeID)
	}

	page, pageSize := web.PageParams(r)
	plants, total, err := h.service.List(r.Context(), filter, page, pageSize)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"page":       page,
		"pageSize":   pageSize,
		"totalItems": total,
		"data":       plants,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireRole(r.Context(), auth.RoleAdmin)
	if err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid plant id", domain.ErrValidation))
		return
	}

	var req plantPatchRequest
	imageBuffers, err := web.DecodeBody(r, &req)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	patch := domain.PlantPatch{
		ScientificName: req.ScientificName,
		Description:    req.Description,
	}
	if req.CommonNames != nil {
		patch.CommonNames = orEmpty(*req.CommonNames)
	}
	if req.Attributes != nil {
		patch.AttributeIDs, err = h.resolver.ResolveAttributes(r.Context(), *req.Attributes, taxonomy.CreateOnMiss)
		if err != nil {
			web.WriteError(w, err)
			return
		}
		if patch.AttributeIDs == nil {
			patch.AttributeIDs = []uuid.UUID{}
		}
	}
	if req.Family != nil {
		familyID, err := h.resolver.ResolveFamily(r.Context(), *req.Family, taxonomy.CreateOnMiss)
		if err != nil {
			web.WriteError(w, err)
			return
		}
		patch.FamilyID = &familyID
	}
	if req.Images != nil {
		// Present means replace wholesale: the admin path may remove images.
		patch.Images = orEmpty(*req.Images)
	}
	if req.SpeciesDescription != nil {
		patch.SpeciesDescription = *req.SpeciesDescription
		if patch.SpeciesDescription == nil {
			patch.SpeciesDescription = []domain.DescriptionSection{}
		}
	}

	plant, err := h.service.Update(r.Context(), id, patch, actor.ID, nil, imageBuffers)
	if err != nil {
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, plant)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireRole(r.Context(), auth.RoleAdmin)
	if err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		web.WriteError(w, fmt.Errorf("%w: invalid plant id", domain.ErrValidation))
		return
	}

	if err := h.service.Delete(r.Context(), id, actor.ID); err != nil {
		web.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, stats)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
