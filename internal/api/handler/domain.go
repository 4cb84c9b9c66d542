package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/wastelink/wastelink/internal/api/middleware"
	"github.com/wastelink/wastelink/internal/api/response"
	"github.com/wastelink/wastelink/internal/api/validation"
	"github.com/wastelink/wastelink/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

type listingRequest struct {
	Kind     string  `json:"kind"`
	WeightKg float64 `json:"weightKg"`
}

type listingResponse struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	WeightKg float64 `json:"weightKg"`
	PostedAt string  `json:"postedAt"`
}

type pickupRequest struct {
	ListingID string `json:"listingId"`
}

type pickupResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listingId"`
	Accepted  string `json:"acceptedAt"`
}

type batchRequest struct {
	InputKg float64 `json:"inputKg"`
}

type batchResponse struct {
	ID       string  `json:"id"`
	InputKg  float64 `json:"inputKg"`
	Received string  `json:"receivedAt"`
}

type restockRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type stockItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// DomainHandler serves the role dashboards from the provider chain.
type DomainHandler struct {
	composition *domain.Composition
}

// NewDomainHandler creates a new DomainHandler.
func NewDomainHandler(c *domain.Composition) *DomainHandler {
	return &DomainHandler{composition: c}
}

// PostListing handles POST /farmer/listings.
func (h *DomainHandler) PostListing(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req listingRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}
	if fieldErrors := validation.ValidateListingRequest(req.Kind, req.WeightKg); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	l, err := domain.PostListing(h.composition.Farmer, req.Kind, req.WeightKg)
	if err != nil {
		providerError(w, err, "failed to post listing", requestID)
		return
	}
	response.Success(w, http.StatusCreated, toListingResponse(l), requestID)
}

// ListListings handles GET /farmer/listings.
func (h *DomainHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var items []listingResponse
	err := h.composition.Farmer.Read(func(s domain.FarmerState) {
		items = make([]listingResponse, 0, len(s.Listings))
		for _, l := range s.Listings {
			items = append(items, toListingResponse(l))
		}
	})
	if err != nil {
		providerError(w, err, "failed to list listings", requestID)
		return
	}
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// AcceptPickup handles POST /collector/pickups.
func (h *DomainHandler) AcceptPickup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req pickupRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}
	if fieldErrors := validation.ValidatePickupRequest(req.ListingID); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	pk, err := domain.AcceptPickup(h.composition.Collector, uuid.MustParse(req.ListingID))
	if err != nil {
		providerError(w, err, "failed to accept pickup", requestID)
		return
	}
	response.Success(w, http.StatusCreated, toPickupResponse(pk), requestID)
}

// ListPickups handles GET /collector/pickups.
func (h *DomainHandler) ListPickups(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var items []pickupResponse
	err := h.composition.Collector.Read(func(s domain.CollectorState) {
		items = make([]pickupResponse, 0, len(s.Pickups))
		for _, pk := range s.Pickups {
			items = append(items, toPickupResponse(pk))
		}
	})
	if err != nil {
		providerError(w, err, "failed to list pickups", requestID)
		return
	}
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// ReceiveBatch handles POST /composting/batches.
func (h *DomainHandler) ReceiveBatch(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req batchRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}
	if fieldErrors := validation.ValidateBatchRequest(req.InputKg); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	b, err := domain.ReceiveBatch(h.composition.Composting, req.InputKg)
	if err != nil {
		providerError(w, err, "failed to receive batch", requestID)
		return
	}
	response.Success(w, http.StatusCreated, toBatchResponse(b), requestID)
}

// ListBatches handles GET /composting/batches.
func (h *DomainHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var items []batchResponse
	err := h.composition.Composting.Read(func(s domain.CompostingState) {
		items = make([]batchResponse, 0, len(s.Batches))
		for _, b := range s.Batches {
			items = append(items, toBatchResponse(b))
		}
	})
	if err != nil {
		providerError(w, err, "failed to list batches", requestID)
		return
	}
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Restock handles POST /supplier/stock.
func (h *DomainHandler) Restock(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req restockRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}
	if fieldErrors := validation.ValidateRestockRequest(req.Product, req.Quantity); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := domain.Restock(h.composition.Supplier, req.Product, req.Quantity); err != nil {
		providerError(w, err, "failed to restock", requestID)
		return
	}
	h.ListStock(w, r)
}

// ListStock handles GET /supplier/stock. Items are sorted by product name.
func (h *DomainHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var items []stockItem
	err := h.composition.Supplier.Read(func(s domain.SupplierState) {
		items = make([]stockItem, 0, len(s.Stock))
		for product, qty := range s.Stock {
			items = append(items, stockItem{Product: product, Quantity: qty})
		}
	})
	if err != nil {
		providerError(w, err, "failed to list stock", requestID)
		return
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product < items[j].Product })
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return false
	}
	return true
}

func providerError(w http.ResponseWriter, err error, msg, requestID string) {
	switch {
	case errors.Is(err, domain.ErrNotMounted):
		response.Err(w, http.StatusServiceUnavailable, "NOT_READY", "Domain state is not available", requestID)
	case errors.Is(err, domain.ErrInvalidQuantity):
		response.Err(w, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), requestID)
	case errors.Is(err, domain.ErrStockLimit):
		response.Err(w, http.StatusConflict, "STOCK_LIMIT", err.Error(), requestID)
	default:
		slog.Error(msg, "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed", requestID)
	}
}

func toListingResponse(l domain.WasteListing) listingResponse {
	return listingResponse{
		ID:       l.ID.String(),
		Kind:     l.Kind,
		WeightKg: l.WeightKg,
		PostedAt: l.PostedAt.UTC().Format(timeFormat),
	}
}

func toPickupResponse(pk domain.Pickup) pickupResponse {
	return pickupResponse{
		ID:        pk.ID.String(),
		ListingID: pk.ListingID.String(),
		Accepted:  pk.Accepted.UTC().Format(timeFormat),
	}
}

func toBatchResponse(b domain.CompostBatch) batchResponse {
	return batchResponse{
		ID:       b.ID.String(),
		InputKg:  b.InputKg,
		Received: b.Received.UTC().Format(timeFormat),
	}
}
