package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidQuantity is returned for non-positive weights or counts, or a
// restock above MaxRestockQuantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ErrStockLimit is returned when a restock would take a product past MaxStock.
var ErrStockLimit = errors.New("stock limit exceeded")

const (
	// MaxRestockQuantity is the largest single restock.
	MaxRestockQuantity = 1_000_000
	// MaxStock is the most units held of one product.
	MaxStock = 1_000_000_000
)

// WasteListing is organic waste a farmer has offered for pickup.
type WasteListing struct {
	ID       uuid.UUID
	Kind     string
	WeightKg float64
	PostedAt time.Time
}

// FarmerState holds a farmer's open listings.
type FarmerState struct {
	Listings []WasteListing
}

// Pickup is a collection run accepted by a collector or NGO.
type Pickup struct {
	ID        uuid.UUID
	ListingID uuid.UUID
	Accepted  time.Time
}

// CollectorState holds the pickups a collector has accepted.
type CollectorState struct {
	Pickups []Pickup
}

// CompostBatch is a batch of incoming material at a composting center.
type CompostBatch struct {
	ID       uuid.UUID
	InputKg  float64
	Received time.Time
}

// CompostingState holds a center's active batches.
type CompostingState struct {
	Batches []CompostBatch
}

// TotalInputKg sums the weight of every batch.
func (s CompostingState) TotalInputKg() float64 {
	var total float64
	for _, b := range s.Batches {
		total += b.InputKg
	}
	return total
}

// SupplierState holds a supplier's compost stock by product name.
type SupplierState struct {
	Stock map[string]int
}

// NewFarmerProvider returns the farmer state provider.
func NewFarmerProvider() *StateProvider[FarmerState] {
	return NewStateProvider("farmer", func() FarmerState { return FarmerState{} })
}

// NewCollectorProvider returns the collector/NGO state provider.
func NewCollectorProvider() *StateProvider[CollectorState] {
	return NewStateProvider("collector", func() CollectorState { return CollectorState{} })
}

// NewCompostingProvider returns the composting center state provider.
func NewCompostingProvider() *StateProvider[CompostingState] {
	return NewStateProvider("composting_center", func() CompostingState { return CompostingState{} })
}

// NewSupplierProvider returns the supplier state provider.
func NewSupplierProvider() *StateProvider[SupplierState] {
	return NewStateProvider("supplier", func() SupplierState {
		return SupplierState{Stock: make(map[string]int)}
	})
}

// PostListing adds a waste listing to the farmer provider.
func PostListing(p *StateProvider[FarmerState], kind string, weightKg float64) (WasteListing, error) {
	if weightKg <= 0 {
		return WasteListing{}, ErrInvalidQuantity
	}
	l := WasteListing{ID: uuid.New(), Kind: kind, WeightKg: weightKg, PostedAt: time.Now().UTC()}
	err := p.Update(func(s *FarmerState) error {
		s.Listings = append(s.Listings, l)
		return nil
	})
	return l, err
}

// AcceptPickup records a pickup for listingID on the collector provider.
func AcceptPickup(p *StateProvider[CollectorState], listingID uuid.UUID) (Pickup, error) {
	pk := Pickup{ID: uuid.New(), ListingID: listingID, Accepted: time.Now().UTC()}
	err := p.Update(func(s *CollectorState) error {
		s.Pickups = append(s.Pickups, pk)
		return nil
	})
	return pk, err
}

// ReceiveBatch records an incoming batch on the composting provider.
func ReceiveBatch(p *StateProvider[CompostingState], inputKg float64) (CompostBatch, error) {
	if inputKg <= 0 {
		return CompostBatch{}, ErrInvalidQuantity
	}
	b := CompostBatch{ID: uuid.New(), InputKg: inputKg, Received: time.Now().UTC()}
	err := p.Update(func(s *CompostingState) error {
		s.Batches = append(s.Batches, b)
		return nil
	})
	return b, err
}

// Restock adds qty units of product to the supplier provider.
func Restock(p *StateProvider[SupplierState], product string, qty int) error {
	if qty <= 0 || qty > MaxRestockQuantity {
		return ErrInvalidQuantity
	}
	return p.Update(func(s *SupplierState) error {
		if s.Stock[product] > MaxStock-qty {
			return ErrStockLimit
		}
		s.Stock[product] += qty
		return nil
	})
}
