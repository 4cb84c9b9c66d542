package handler

import (
	"net/http"

	"github.com/wastelink/wastelink/internal/api/middleware"
	"github.com/wastelink/wastelink/internal/api/response"
	"github.com/wastelink/wastelink/internal/navigation"
)

type stackResponse struct {
	Name    string   `json:"name"`
	Initial string   `json:"initial"`
	Screens []string `json:"screens"`
}

// NavigationHandler serves the navigation manifest.
type NavigationHandler struct {
	items []stackResponse
}

// NewNavigationHandler creates a new NavigationHandler. The manifest is
// rendered once, in destination order.
func NewNavigationHandler(m *navigation.Manifest) *NavigationHandler {
	items := make([]stackResponse, 0, len(m.Stacks))
	for _, stack := range navigation.Destinations() {
		spec, ok := m.Stack(stack)
		if !ok {
			continue
		}
		items = append(items, stackResponse{
			Name:    string(stack),
			Initial: spec.Initial,
			Screens: append([]string(nil), spec.Screens...),
		})
	}
	return &NavigationHandler{items: items}
}

// ServeHTTP handles GET /navigation.
func (h *NavigationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	response.SuccessList(w, http.StatusOK, h.items, len(h.items), requestID)
}
