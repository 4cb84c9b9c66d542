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
	"github.com/wastelink/wastelink/internal/session"
	"github.com/wastelink/wastelink/internal/shell"
)

// Viewer renders the current root view.
type Viewer interface {
	View() shell.View
}

// StatusReader exposes the gate's observability snapshot.
type StatusReader interface {
	Status() session.Status
}

// Authenticator checks credentials and returns the account uid.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// SessionPublisher feeds sign-in and sign-out events to the identity source.
type SessionPublisher interface {
	SignIn(uid string)
	SignOut()
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type viewResponse struct {
	State         string   `json:"state"`
	Role          *string  `json:"role,omitempty"`
	Stack         *string  `json:"stack"`
	InitialScreen *string  `json:"initialScreen,omitempty"`
	Screens       []string `json:"screens"`
	Providers     []string `json:"providers"`
	UID           *string  `json:"uid,omitempty"`
	LastFailure   *string  `json:"lastFailure,omitempty"`
}

// SessionHandler serves the resolved session view and the sign-in flow.
type SessionHandler struct {
	viewer    Viewer
	status    StatusReader
	auth      Authenticator
	publisher SessionPublisher
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(viewer Viewer, status StatusReader, authenticator Authenticator, publisher SessionPublisher) *SessionHandler {
	return &SessionHandler{
		viewer:    viewer,
		status:    status,
		auth:      authenticator,
		publisher: publisher,
	}
}

// Get handles GET /session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	response.Success(w, http.StatusOK, h.render(), requestID)
}

// SignIn handles POST /session/sign-in. Role resolution continues in the
// background, so the response carries the view at the time of sign-in.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateSignInRequest(validation.SignInRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	uid, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
			return
		}
		slog.Error("failed to authenticate", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Sign-in failed", requestID)
		return
	}

	h.publisher.SignIn(uid)
	response.Success(w, http.StatusAccepted, h.render(), requestID)
}

// SignOut handles POST /session/sign-out. It is idempotent.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	h.publisher.SignOut()
	response.Success(w, http.StatusOK, h.render(), requestID)
}

func (h *SessionHandler) render() viewResponse {
	return renderView(h.viewer.View(), h.status.Status())
}

func renderView(v shell.View, st session.Status) viewResponse {
	resp := viewResponse{
		State:     v.State.Kind().String(),
		Screens:   v.Tree.Child.Screens,
		Providers: v.Tree.Providers,
	}
	if resp.Screens == nil {
		resp.Screens = []string{}
	}
	if role, ok := v.State.Role(); ok {
		s := string(role)
		resp.Role = &s
	}
	if v.Tree.Child.Stack != "" {
		s := string(v.Tree.Child.Stack)
		resp.Stack = &s
	}
	if v.Tree.Child.Initial != "" {
		resp.InitialScreen = &v.Tree.Child.Initial
	}
	if st.UID != "" {
		resp.UID = &st.UID
	}
	if st.LastFailure != nil {
		msg := st.LastFailure.Error()
		resp.LastFailure = &msg
	}
	return resp
}
