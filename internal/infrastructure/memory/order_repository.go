package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/repositories"
)

type OrderRepositoryMemory struct {
	mu     sync.RWMutex
	orders map[string]*entities.Order
	items  map[string][]*entities.OrderItem
}

func NewOrderRepositoryMemory() *OrderRepositoryMemory {
	return &OrderRepositoryMemory{
		orders: make(map[string]*entities.Order),
		items:  make(map[string][]*entities.OrderItem),
	}
}

func (r *OrderRepositoryMemory) CreateOrder(ctx context.Context, order *entities.Order) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	orderCopy := *order
	if orderCopy.ID == "" {
		orderCopy.ID = uuid.New().String()
	}
	if _, exists := r.orders[orderCopy.ID]; exists {
		return "", repositories.ErrOrderAlreadyExists
	}
	orderCopy.Products = append([]string(nil), order.Products...)

	r.orders[orderCopy.ID] = &orderCopy
	return orderCopy.ID, nil
}

func (r *OrderRepositoryMemory) CreateOrderItem(ctx context.Context, item *entities.OrderItem) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[item.Order]; !exists {
		return "", repositories.ErrOrderNotFound
	}

	itemCopy := *item
	itemCopy.ID = uuid.New().String()
	r.items[item.Order] = append(r.items[item.Order], &itemCopy)
	return itemCopy.ID, nil
}

func (r *OrderRepositoryMemory) GetOrder(orderID string) (*entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[orderID]
	if !exists {
		return nil, repositories.ErrOrderNotFound
	}

	orderCopy := *order
	return &orderCopy, nil
}

// Items returns the items of an order in creation order.
func (r *OrderRepositoryMemory) Items(orderID string) []entities.OrderItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]entities.OrderItem, len(r.items[orderID]))
	for i, item := range r.items[orderID] {
		items[i] = *item
	}
	return items
}
