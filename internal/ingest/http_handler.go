package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/verdantlabs/herbarium/internal/auth"
	"github.com/verdantlabs/herbarium/internal/web"
)

// Handler exposes bulk import as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register binds the import route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /imports", h.importFile)
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		web.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	summary, err := h.service.Import(r.Context(), Request{
		FileName: header.Filename,
		Data:     bytes.NewReader(data),
	})
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, summary)
}
