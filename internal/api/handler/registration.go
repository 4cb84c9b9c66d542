package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wastelink/wastelink/internal/api/middleware"
	"github.com/wastelink/wastelink/internal/api/response"
	"github.com/wastelink/wastelink/internal/api/validation"
	"github.com/wastelink/wastelink/internal/auth"
	"github.com/wastelink/wastelink/internal/profile"
	"github.com/wastelink/wastelink/internal/registration"
)

// Registrar creates an account with its profile document.
type Registrar interface {
	Register(ctx context.Context, req registration.Request) (*profile.Record, error)
}

type registrationRequest struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileResponse struct {
	UID       string `json:"uid"`
	Role      string `json:"role"`
	RoleLabel string `json:"roleLabel"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func toProfileResponse(rec *profile.Record) profileResponse {
	return profileResponse{
		UID:       rec.UID,
		Role:      string(rec.Role),
		RoleLabel: rec.Role.Label(),
		Name:      rec.Name,
		Phone:     rec.Phone,
		Email:     rec.Email,
		CreatedAt: rec.CreatedAt.UTC().Format(timeFormat),
	}
}

// RegistrationHandler handles the role-specific registration forms.
type RegistrationHandler struct {
	registrar Registrar
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrar Registrar) *RegistrationHandler {
	return &RegistrationHandler{registrar: registrar}
}

// Create handles POST /registrations.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateRegistrationRequest(validation.RegistrationRequest{
		Role:     req.Role,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	rec, err := h.registrar.Register(r.Context(), registration.Request{
		Role:     profile.Role(req.Role),
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			response.Err(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists", requestID)
			return
		}
		slog.Error("failed to register account", "error", err, "role", req.Role)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register account", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toProfileResponse(rec), requestID)
}
