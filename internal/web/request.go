package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/verdantlabs/herbarium/internal/domain"
)

// DecodeBody reads the request either as plain JSON or as a multipart form
// with a "data" JSON field plus attached "images" files. Returned buffers
// hold the raw bytes of each attached file, in form order.
func DecodeBody(r *http.Request, dst any) ([][]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err)
		}
		return nil, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("%w: invalid form data: %v", domain.ErrValidation, err)
	}

	if raw := r.FormValue("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return nil, fmt.Errorf("%w: invalid data field: %v", domain.ErrValidation, err)
		}
	}

	return ReadFormFiles(r.MultipartForm, "images")
}

// ReadFormFiles drains every file attached under field into memory.
func ReadFormFiles(form *multipart.Form, field string) ([][]byte, error) {
	if form == nil {
		return nil, nil
	}
	buffers := [][]byte{}
	for _, header := range form.File[field] {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open upload %s: %v", domain.ErrValidation, header.Filename, err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read upload %s: %v", domain.ErrValidation, header.Filename, err)
		}
		buffers = append(buffers, data)
	}
	return buffers, nil
}
