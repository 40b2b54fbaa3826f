package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCustomer    = errors.New("invalid customer")
	ErrInvalidDraftID     = errors.New("invalid draft ID")
	ErrDraftNotFound      = errors.New("draft not found")
	ErrProductNotFound    = errors.New("product not found in catalog")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrNothingToRetry     = errors.New("draft has no failed items to retry")
)

// HeaderCreationError means the order store rejected the order header.
// Nothing was persisted.
type HeaderCreationError struct {
	Err error
}

func (e *HeaderCreationError) Error() string {
	return fmt.Sprintf("order header creation failed: %v", e.Err)
}

func (e *HeaderCreationError) Unwrap() error { return e.Err }

// ItemCreationError is the failure of one line item after the header was
// created.
type ItemCreationError struct {
	SelectionIndex int
	ProductID      string
	Err            error
}

func (e *ItemCreationError) Error() string {
	return fmt.Sprintf("order item %d (product %s) creation failed: %v", e.SelectionIndex, e.ProductID, e.Err)
}

func (e *ItemCreationError) Unwrap() error { return e.Err }
