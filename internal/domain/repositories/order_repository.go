package repositories

import (
	"context"

	"order-composer/internal/domain/entities"
)

// OrderRepository is the write side of the order store. The composer only
// relies on create-and-return-id semantics.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *entities.Order) (string, error)
	CreateOrderItem(ctx context.Context, item *entities.OrderItem) (string, error)
}

// CatalogRepository is the read side of the catalog store.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]entities.Product, error)
	ListCategories(ctx context.Context) ([]entities.Category, error)
}

// ProductFilter narrows ListProducts. Zero fields do not filter.
type ProductFilter struct {
	IDs      []string
	StoreID  string
	Category string
}

var (
	ErrOrderNotFound      = &RepositoryError{"order not found"}
	ErrOrderAlreadyExists = &RepositoryError{"order already exists"}
	ErrInvalidReference   = &RepositoryError{"invalid document reference"}
)

type RepositoryError struct {
	message string
}

func (e *RepositoryError) Error() string {
	return e.message
}
