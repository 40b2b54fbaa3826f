package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/repositories"
)

func sampleCatalog() *CatalogRepositoryMemory {
	return NewCatalogRepositoryMemory(
		[]entities.Product{
			{ID: "burger", StoreID: "s1", Category: "Food", Price: 1000},
			{ID: "fries", StoreID: "s1", Category: "Sides", Price: 350},
			{ID: "latte", StoreID: "s2", Category: "Drinks", Price: 500},
		},
		[]entities.Category{{Name: "Food", Subcategory: []string{"Burgers"}}},
	)
}

func TestCatalogRepositoryMemory_ListProducts(t *testing.T) {
	repo := sampleCatalog()
	ctx := context.Background()

	tests := []struct {
		name   string
		filter repositories.ProductFilter
		want   []string
	}{
		{name: "no filter", filter: repositories.ProductFilter{}, want: []string{"burger", "fries", "latte"}},
		{name: "by store", filter: repositories.ProductFilter{StoreID: "s1"}, want: []string{"burger", "fries"}},
		{name: "by ids", filter: repositories.ProductFilter{IDs: []string{"latte", "fries"}}, want: []string{"fries", "latte"}},
		{name: "by category", filter: repositories.ProductFilter{Category: "Drinks"}, want: []string{"latte"}},
		{name: "no match", filter: repositories.ProductFilter{StoreID: "s1", Category: "Drinks"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.ListProducts(ctx, tt.filter)
			require.NoError(t, err)

			var ids []string
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCatalogRepositoryMemory_Upsert(t *testing.T) {
	repo := sampleCatalog()
	repo.Upsert(entities.Product{ID: "fries", StoreID: "s1", Price: 400})
	repo.Upsert(entities.Product{ID: "salad", StoreID: "s1", Price: 700})

	products, err := repo.ListProducts(context.Background(), repositories.ProductFilter{IDs: []string{"fries", "salad"}})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 400.0, products[0].Price)
	assert.Equal(t, "salad", products[1].ID)
}

func TestCatalogRepositoryMemory_ListCategories(t *testing.T) {
	categories, err := sampleCatalog().ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entities.Category{{Name: "Food", Subcategory: []string{"Burgers"}}}, categories)
}
