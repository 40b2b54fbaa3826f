package entities

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusFailed    OrderStatus = "FAILED"
)

func ValidStatus(status string) bool {
	validStatuses := map[OrderStatus]bool{
		StatusPending:   true,
		StatusPaid:      true,
		StatusCancelled: true,
		StatusFailed:    true,
	}
	return validStatuses[OrderStatus(status)]
}

type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Order is the order header. Line items are stored separately and reference
// the header by id.
type Order struct {
	ID          string      `json:"id"`
	User        string      `json:"user"`
	Rider       string      `json:"rider,omitempty"`
	Products    []string    `json:"products"`
	TotalAmount int64       `json:"totalAmount"`
	Location    Location    `json:"location"`
	Status      OrderStatus `json:"status"`
	Payment     string      `json:"payment"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ID           string        `json:"id"`
	Order        string        `json:"order"`
	Product      string        `json:"product"`
	Store        string        `json:"store"`
	User         string        `json:"user"`
	Rider        string        `json:"rider,omitempty"`
	Quantity     int           `json:"quantity"`
	Status       OrderStatus   `json:"status"`
	Amount       int64         `json:"amount"`
	Preference   string        `json:"preference,omitempty"`
	Variety      string        `json:"variety,omitempty"`
	OrderOptions []OrderOption `json:"orderoptions"`
}

// OrderOption records the choices taken from one option group.
type OrderOption struct {
	Name    string             `json:"name"`
	Options []OrderOptionValue `json:"options"`
}

type OrderOptionValue struct {
	OptionName string `json:"optionname"`
	Quantity   int    `json:"quantity"`
}
