package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/wastelink/wastelink/internal/api/middleware"
	"github.com/wastelink/wastelink/internal/api/response"
)

// OpenAPIHandler serves the YAML API description as JSON.
type OpenAPIHandler struct {
	source []byte

	once sync.Once
	body []byte
	err  error
}

// NewOpenAPIHandler creates a handler for spec. Conversion happens on the
// first request and is cached.
func NewOpenAPIHandler(spec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{source: spec}
}

// ServeHTTP handles GET /openapi.json.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.body, h.err = yaml.YAMLToJSON(h.source)
	})

	if h.err != nil {
		slog.Error("failed to convert API description", "error", h.err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "API description is unavailable", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.body); err != nil {
		slog.Error("failed to write API description", "error", err)
	}
}
