package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/repositories"
	"order-composer/internal/infrastructure/logger"
)

type OrderRepositoryMongo struct {
	orders *mongo.Collection
	items  *mongo.Collection
	logger *logger.Logger
}

func NewOrderRepositoryMongo(db *Database) (*OrderRepositoryMongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items := db.db.Collection(orderItemsCollection)

	_, err := items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &OrderRepositoryMongo{
		orders: db.db.Collection(ordersCollection),
		items:  items,
		logger: db.logger,
	}, nil
}

func (r *OrderRepositoryMongo) CreateOrder(ctx context.Context, order *entities.Order) (string, error) {
	doc, err := toOrderDocument(order)
	if err != nil {
		return "", err
	}

	return r.insert(ctx, r.orders, doc)
}

func (r *OrderRepositoryMongo) CreateOrderItem(ctx context.Context, item *entities.OrderItem) (string, error) {
	doc, err := toOrderItemDocument(item)
	if err != nil {
		return "", err
	}

	id, err := r.insert(ctx, r.items, doc)
	if err != nil {
		return "", err
	}

	r.logger.Info("Order item stored",
		"order_id", item.Order,
		"item_id", id,
		"amount", item.Amount)
	return id, nil
}

func (r *OrderRepositoryMongo) insert(ctx context.Context, collection *mongo.Collection, doc interface{}) (string, error) {
	result, err := collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repositories.ErrOrderAlreadyExists
		}
		return "", fmt.Errorf("failed to insert into %s: %w", collection.Name(), err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprint(result.InsertedID), nil
	}
	return oid.Hex(), nil
}
