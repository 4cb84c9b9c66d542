package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wastelink/wastelink/internal/domain"
)

// ValidateListingRequest validates a farmer waste listing.
func ValidateListingRequest(kind string, weightKg float64) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(kind) == "" {
		errs = append(errs, FieldError{Field: "kind", Message: "kind is required"})
	}
	if weightKg <= 0 {
		errs = append(errs, FieldError{Field: "weightKg", Message: "weightKg must be positive"})
	}
	return errs
}

// ValidatePickupRequest validates a collector pickup acceptance.
func ValidatePickupRequest(listingID string) []FieldError {
	if listingID == "" {
		return []FieldError{{Field: "listingId", Message: "listingId is required"}}
	}
	if _, err := uuid.Parse(listingID); err != nil {
		return []FieldError{{Field: "listingId", Message: "listingId must be a valid UUID"}}
	}
	return nil
}

// ValidateBatchRequest validates an incoming compost batch.
func ValidateBatchRequest(inputKg float64) []FieldError {
	if inputKg <= 0 {
		return []FieldError{{Field: "inputKg", Message: "inputKg must be positive"}}
	}
	return nil
}

// ValidateRestockRequest validates a supplier restock.
func ValidateRestockRequest(product string, quantity int) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(product) == "" {
		errs = append(errs, FieldError{Field: "product", Message: "product is required"})
	}
	if quantity <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must be positive"})
	} else if quantity > domain.MaxRestockQuantity {
		errs = append(errs, FieldError{Field: "quantity", Message: fmt.Sprintf("quantity must be at most %d", domain.MaxRestockQuantity)})
	}
	return errs
}
