package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/repositories"
)

func TestOrderRepositoryMemory_CreateOrderAndItems(t *testing.T) {
	repo := NewOrderRepositoryMemory()
	ctx := context.Background()

	orderID, err := repo.CreateOrder(ctx, &entities.Order{User: "user123", Products: []string{"p1", "p2"}, TotalAmount: 900})
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	first, err := repo.CreateOrderItem(ctx, &entities.OrderItem{Order: orderID, Product: "p1", Amount: 500})
	require.NoError(t, err)
	second, err := repo.CreateOrderItem(ctx, &entities.OrderItem{Order: orderID, Product: "p2", Amount: 400})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	order, err := repo.GetOrder(orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), order.TotalAmount)

	items := repo.Items(orderID)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].Product)
	assert.Equal(t, second, items[1].ID)
}

func TestOrderRepositoryMemory_ItemNeedsExistingOrder(t *testing.T) {
	repo := NewOrderRepositoryMemory()

	_, err := repo.CreateOrderItem(context.Background(), &entities.OrderItem{Order: "nope"})
	assert.Equal(t, repositories.ErrOrderNotFound, err)
}

func TestOrderRepositoryMemory_DuplicateOrder(t *testing.T) {
	repo := NewOrderRepositoryMemory()
	ctx := context.Background()

	_, err := repo.CreateOrder(ctx, &entities.Order{ID: "o-1"})
	require.NoError(t, err)

	_, err = repo.CreateOrder(ctx, &entities.Order{ID: "o-1"})
	assert.Equal(t, repositories.ErrOrderAlreadyExists, err)
}

func TestOrderRepositoryMemory_CancelledContext(t *testing.T) {
	repo := NewOrderRepositoryMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.CreateOrder(ctx, &entities.Order{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.GetOrder("o-1")
	assert.Equal(t, repositories.ErrOrderNotFound, err)
}
