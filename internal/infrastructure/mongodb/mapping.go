package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/repositories"
)

func toProductEntity(doc *ProductDocument) (entities.Product, error) {
	product := entities.Product{
		ID:            doc.ID.Hex(),
		Name:          doc.Name,
		Price:         doc.Price,
		DiscountPrice: doc.DiscountPrice,
		StoreID:       doc.Store,
		Category:      doc.Category,
		Varieties:     make([]entities.Variety, len(doc.Varieties)),
		OptionGroups:  make([]entities.OptionGroup, len(doc.Options)),
	}

	for i, v := range doc.Varieties {
		product.Varieties[i] = entities.Variety{Name: v.Name, PriceDifference: v.PriceDifference}
	}

	for i, g := range doc.Options {
		group := entities.OptionGroup{
			Name:        g.Name,
			Required:    g.Required,
			Choices:     make([]entities.Choice, len(g.Choices)),
			ExtraPrices: g.ExtraPrices,
		}
		for j, raw := range g.Choices {
			choice, err := toChoice(raw)
			if err != nil {
				return entities.Product{}, fmt.Errorf("product %s option %q choice %d: %w", product.ID, g.Name, j, err)
			}
			group.Choices[j] = choice
		}
		product.OptionGroups[i] = group
	}

	return product, nil
}

func toChoice(raw bson.RawValue) (entities.Choice, error) {
	switch raw.Type {
	case bsontype.String:
		return entities.NewLabelChoice(raw.StringValue()), nil
	case bsontype.EmbeddedDocument:
		var doc ChoiceDocument
		if err := raw.Unmarshal(&doc); err != nil {
			return entities.Choice{}, err
		}
		id := doc.ID
		if id == "" && !doc.ObjectID.IsZero() {
			id = doc.ObjectID.Hex()
		}
		return entities.NewRichChoice(id, doc.Name, doc.AdditionalCost), nil
	default:
		return entities.Choice{}, fmt.Errorf("unsupported choice type %s", raw.Type)
	}
}

func toCategoryEntity(doc *CategoryDocument) entities.Category {
	return entities.Category{Name: doc.Name, Subcategory: doc.Subcategory}
}

// productQuery translates a filter into a query. Ids that are not valid
// object ids cannot match any document and are dropped.
func productQuery(filter repositories.ProductFilter) bson.M {
	query := bson.M{}

	if len(filter.IDs) > 0 {
		oids := make([]primitive.ObjectID, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				oids = append(oids, oid)
			}
		}
		query["_id"] = bson.M{"$in": oids}
	}

	if filter.StoreID != "" {
		stores := bson.A{filter.StoreID}
		if oid, err := primitive.ObjectIDFromHex(filter.StoreID); err == nil {
			stores = append(stores, oid)
		}
		query["store"] = bson.M{"$in": stores}
	}

	if filter.Category != "" {
		query["category"] = filter.Category
	}

	return query
}

func objectID(field, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %q", repositories.ErrInvalidReference, field, id)
	}
	return oid, nil
}

func optionalObjectID(field, id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := objectID(field, id)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

func toOrderDocument(order *entities.Order) (*OrderDocument, error) {
	user, err := objectID("user", order.User)
	if err != nil {
		return nil, err
	}
	rider, err := optionalObjectID("rider", order.Rider)
	if err != nil {
		return nil, err
	}

	products := make([]primitive.ObjectID, len(order.Products))
	for i, id := range order.Products {
		if products[i], err = objectID("product", id); err != nil {
			return nil, err
		}
	}

	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &OrderDocument{
		User:        user,
		Rider:       rider,
		Products:    products,
		TotalAmount: order.TotalAmount,
		Location: LocationDocument{
			Address:     order.Location.Address,
			Type:        "Point",
			Coordinates: []float64{order.Location.Lng, order.Location.Lat},
		},
		Status:    string(order.Status),
		Payment:   order.Payment,
		CreatedAt: createdAt,
	}, nil
}

func toOrderItemDocument(item *entities.OrderItem) (*OrderItemDocument, error) {
	refs := []struct {
		field string
		id    string
	}{
		{"order", item.Order},
		{"product", item.Product},
		{"store", item.Store},
		{"user", item.User},
	}
	oids := make([]primitive.ObjectID, len(refs))
	for i, ref := range refs {
		oid, err := objectID(ref.field, ref.id)
		if err != nil {
			return nil, err
		}
		oids[i] = oid
	}
	rider, err := optionalObjectID("rider", item.Rider)
	if err != nil {
		return nil, err
	}

	options := make([]OrderOptionDocument, len(item.OrderOptions))
	for i, o := range item.OrderOptions {
		values := make([]OrderOptionValueDocument, len(o.Options))
		for j, v := range o.Options {
			values[j] = OrderOptionValueDocument{OptionName: v.OptionName, Quantity: v.Quantity}
		}
		options[i] = OrderOptionDocument{Name: o.Name, Options: values}
	}

	return &OrderItemDocument{
		Order:        oids[0],
		Product:      oids[1],
		Store:        oids[2],
		User:         oids[3],
		Rider:        rider,
		Quantity:     item.Quantity,
		Status:       string(item.Status),
		Amount:       item.Amount,
		Preference:   item.Preference,
		Variety:      item.Variety,
		OrderOptions: options,
		CreatedAt:    time.Now(),
	}, nil
}
