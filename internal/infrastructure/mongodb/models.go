package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductDocument struct {
	ID            primitive.ObjectID    `bson:"_id,omitempty"`
	Name          string                `bson:"name"`
	Price         float64               `bson:"price"`
	DiscountPrice *float64              `bson:"discountPrice,omitempty"`
	Store         string                `bson:"store"`
	Category      string                `bson:"category,omitempty"`
	Varieties     []VarietyDocument     `bson:"varieties,omitempty"`
	Options       []OptionGroupDocument `bson:"options,omitempty"`
}

type VarietyDocument struct {
	Name            string  `bson:"name"`
	PriceDifference float64 `bson:"priceDifference"`
}

// OptionGroupDocument keeps choices raw: each one is either a string or an
// embedded ChoiceDocument.
type OptionGroupDocument struct {
	Name        string             `bson:"name"`
	Required    bool               `bson:"required"`
	Choices     []bson.RawValue    `bson:"choices"`
	ExtraPrices map[string]float64 `bson:"extraPrices,omitempty"`
}

type ChoiceDocument struct {
	ObjectID       primitive.ObjectID `bson:"_id,omitempty"`
	ID             string             `bson:"id,omitempty"`
	Name           string             `bson:"name"`
	AdditionalCost float64            `bson:"additionalCost"`
}

type CategoryDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Subcategory []string           `bson:"subcategory"`
}

type OrderDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	User        primitive.ObjectID   `bson:"user"`
	Rider       *primitive.ObjectID  `bson:"rider,omitempty"`
	Products    []primitive.ObjectID `bson:"products"`
	TotalAmount int64                `bson:"totalAmount"`
	Location    LocationDocument     `bson:"location"`
	Status      string               `bson:"status"`
	Payment     string               `bson:"payment"`
	CreatedAt   time.Time            `bson:"createdAt"`
}

// LocationDocument is a GeoJSON point; coordinates are [lng, lat].
type LocationDocument struct {
	Address     string    `bson:"address"`
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type OrderItemDocument struct {
	ID           primitive.ObjectID    `bson:"_id,omitempty"`
	Order        primitive.ObjectID    `bson:"order"`
	Product      primitive.ObjectID    `bson:"product"`
	Store        primitive.ObjectID    `bson:"store"`
	User         primitive.ObjectID    `bson:"user"`
	Rider        *primitive.ObjectID   `bson:"rider,omitempty"`
	Quantity     int                   `bson:"quantity"`
	Status       string                `bson:"status"`
	Amount       int64                 `bson:"amount"`
	Preference   string                `bson:"preference"`
	Variety      string                `bson:"variety"`
	OrderOptions []OrderOptionDocument `bson:"orderoptions"`
	CreatedAt    time.Time             `bson:"createdAt"`
}

type OrderOptionDocument struct {
	Name    string                     `bson:"name"`
	Options []OrderOptionValueDocument `bson:"options"`
}

type OrderOptionValueDocument struct {
	OptionName string `bson:"optionname"`
	Quantity   int    `bson:"quantity"`
}
