package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/repositories"
	"order-composer/internal/infrastructure/logger"
)

type CatalogRepositoryMongo struct {
	products   *mongo.Collection
	categories *mongo.Collection
	logger     *logger.Logger
}

func NewCatalogRepositoryMongo(db *Database) *CatalogRepositoryMongo {
	return &CatalogRepositoryMongo{
		products:   db.db.Collection(productsCollection),
		categories: db.db.Collection(categoriesCollection),
		logger:     db.logger,
	}
}

func (r *CatalogRepositoryMongo) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]entities.Product, error) {
	cursor, err := r.products.Find(ctx, productQuery(filter), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	var docs []ProductDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]entities.Product, 0, len(docs))
	for i := range docs {
		product, err := toProductEntity(&docs[i])
		if err != nil {
			r.logger.Warn("Skipping malformed product", "product_id", docs[i].ID.Hex(), "error", err)
			continue
		}
		products = append(products, product)
	}

	return products, nil
}

func (r *CatalogRepositoryMongo) ListCategories(ctx context.Context) ([]entities.Category, error) {
	cursor, err := r.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	var docs []CategoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	categories := make([]entities.Category, len(docs))
	for i := range docs {
		categories[i] = toCategoryEntity(&docs[i])
	}
	return categories, nil
}
