package models

import (
	"database/sql/driver"
	"time"
)

// OrderItem is a snapshot of a dish taken when the order was placed. It is
// never re-read from the catalog.
type OrderItem struct {
	HotelID  string  `json:"hotel_id" bson:"hotel_id"`
	DishID   string  `json:"dish_id" bson:"dish_id"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"` // Price at the time of order
	Quantity int     `json:"quantity" bson:"quantity"`
}

// OrderItems is the ordered item list of an order.
type OrderItems []OrderItem

// Value implements driver.Valuer.
func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		o = OrderItems{}
	}
	return jsonValue(o)
}

// Scan implements sql.Scanner.
func (o *OrderItems) Scan(src interface{}) error {
	return scanJSON(src, o)
}

// Order represents a customer order.
//
// A non-empty IdempotencyKey is unique per user, so a retried checkout can
// find the order it already placed.
type Order struct {
	ID             string      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID         string      `json:"user_id" gorm:"index;uniqueIndex:idx_orders_user_idempotency,priority:1,where:idempotency_key <> '';type:varchar(36)" bson:"user_id"`
	Items          OrderItems  `json:"items" gorm:"type:text" bson:"items"`
	TotalPrice     float64     `json:"total_price" bson:"total_price"`
	Status         OrderStatus `json:"status" gorm:"type:varchar(20)" bson:"status"`
	IdempotencyKey string      `json:"-" gorm:"uniqueIndex:idx_orders_user_idempotency,priority:2,where:idempotency_key <> '';type:varchar(255)" bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time   `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" bson:"updated_at"`
}

// HotelIDs returns the distinct hotels referenced by the order, in item order.
func (o *Order) HotelIDs() []string {
	seen := make(map[string]bool, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if seen[item.HotelID] {
			continue
		}
		seen[item.HotelID] = true
		ids = append(ids, item.HotelID)
	}
	return ids
}

// HasHotel reports whether any item of the order belongs to hotelID.
func (o *Order) HasHotel(hotelID string) bool {
	for _, item := range o.Items {
		if item.HotelID == hotelID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = append(OrderItems{}, o.Items...)
	return &cp
}

// OrderHotel indexes which hotels appear in an order, so a hotel's orders can be
// found without scanning item documents.
type OrderHotel struct {
	OrderID string `gorm:"primaryKey;type:varchar(36)"`
	HotelID string `gorm:"primaryKey;type:varchar(36);index"`
}

// PlacedOrder is the result of a checkout.
type PlacedOrder struct {
	Order    *Order        `json:"order"`
	Skipped  []SkippedItem `json:"skipped,omitempty"`
	Replayed bool          `json:"replayed,omitempty"`
}

// HotelOrder is an order as seen by a hotel operator.
type HotelOrder struct {
	*Order
	Customer *Customer `json:"customer,omitempty"`
}
