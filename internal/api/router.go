package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/wastelink/wastelink/internal/api/handler"
	"github.com/wastelink/wastelink/internal/api/middleware"
	"github.com/wastelink/wastelink/internal/domain"
	"github.com/wastelink/wastelink/internal/navigation"
	"github.com/wastelink/wastelink/internal/profile"
	"github.com/wastelink/wastelink/internal/session"
)

// Gate is the read side of the role resolution gate.
type Gate interface {
	State() session.DisplayState
	Status() session.Status
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	Version     string
	OpenAPISpec []byte

	Gate          Gate
	Viewer        handler.Viewer
	Authenticator handler.Authenticator
	Publisher     handler.SessionPublisher
	Registrar     handler.Registrar
	Manifest      *navigation.Manifest
	Composition   *domain.Composition
}

// NewRouter creates and configures a Chi router with all middleware and routes.
// Route groups whose dependencies are missing are not registered.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Gate != nil && deps.Viewer != nil && deps.Authenticator != nil && deps.Publisher != nil {
		sessionHandler := handler.NewSessionHandler(deps.Viewer, deps.Gate, deps.Authenticator, deps.Publisher)
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Post("/sign-in", sessionHandler.SignIn)
			r.Post("/sign-out", sessionHandler.SignOut)
		})
	}

	if deps.Registrar != nil {
		registrationHandler := handler.NewRegistrationHandler(deps.Registrar)
		r.Post("/registrations", registrationHandler.Create)
	}

	if deps.Manifest != nil {
		navigationHandler := handler.NewNavigationHandler(deps.Manifest)
		r.Get("/navigation", navigationHandler.ServeHTTP)
	}

	if deps.Gate != nil && deps.Composition != nil {
		domainHandler := handler.NewDomainHandler(deps.Composition)

		r.Route("/farmer", func(r chi.Router) {
			r.Use(middleware.RequireRole(deps.Gate, profile.RoleFarmer))
			r.Get("/listings", domainHandler.ListListings)
			r.Post("/listings", domainHandler.PostListing)
		})
		r.Route("/collector", func(r chi.Router) {
			r.Use(middleware.RequireRole(deps.Gate, profile.RoleCollector))
			r.Get("/pickups", domainHandler.ListPickups)
			r.Post("/pickups", domainHandler.AcceptPickup)
		})
		r.Route("/composting", func(r chi.Router) {
			r.Use(middleware.RequireRole(deps.Gate, profile.RoleCompostingCenter))
			r.Get("/batches", domainHandler.ListBatches)
			r.Post("/batches", domainHandler.ReceiveBatch)
		})
		r.Route("/supplier", func(r chi.Router) {
			r.Use(middleware.RequireRole(deps.Gate, profile.RoleSupplier))
			r.Get("/stock", domainHandler.ListStock)
			r.Post("/stock", domainHandler.Restock)
		})
	}

	return r
}
