package memory

import (
	"context"
	"sync"

	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/repositories"
)

// CatalogRepositoryMemory serves a catalog held in memory, typically loaded
// from a seed file.
type CatalogRepositoryMemory struct {
	mu         sync.RWMutex
	products   []entities.Product
	categories []entities.Category
}

func NewCatalogRepositoryMemory(products []entities.Product, categories []entities.Category) *CatalogRepositoryMemory {
	r := &CatalogRepositoryMemory{}
	r.Replace(products, categories)
	return r
}

// Replace swaps the whole catalog.
func (r *CatalogRepositoryMemory) Replace(products []entities.Product, categories []entities.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = append([]entities.Product(nil), products...)
	r.categories = append([]entities.Category(nil), categories...)
}

// Upsert replaces the product with the same id or appends it.
func (r *CatalogRepositoryMemory) Upsert(product entities.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.products {
		if r.products[i].ID == product.ID {
			r.products[i] = product
			return
		}
	}
	r.products = append(r.products, product)
}

func (r *CatalogRepositoryMemory) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]entities.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make(map[string]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}

	var out []entities.Product
	for _, p := range r.products {
		if len(ids) > 0 && !ids[p.ID] {
			continue
		}
		if filter.StoreID != "" && p.StoreID != filter.StoreID {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *CatalogRepositoryMemory) ListCategories(ctx context.Context) ([]entities.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]entities.Category(nil), r.categories...), nil
}
