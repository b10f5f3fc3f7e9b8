package models

import (
	"database/sql/driver"
	"errors"
	"time"
)

// MaxCartQuantity is the largest quantity a single cart line may hold.
const MaxCartQuantity = 999

// ErrQuantityLimit is returned when a line would go over MaxCartQuantity.
var ErrQuantityLimit = errors.New("cart line quantity limit exceeded")

// CartItem references a dish of a hotel. The price is not copied; it is
// resolved from the catalog whenever the cart is viewed or ordered.
type CartItem struct {
	HotelID  string `json:"hotel_id" bson:"hotel_id"`
	DishID   string `json:"dish_id" bson:"dish_id"`
	Quantity int    `json:"quantity" bson:"quantity"`
}

// CartItems is the ordered item list of a cart.
type CartItems []CartItem

// Value implements driver.Valuer.
func (c CartItems) Value() (driver.Value, error) {
	if c == nil {
		c = CartItems{}
	}
	return jsonValue(c)
}

// Scan implements sql.Scanner.
func (c *CartItems) Scan(src interface{}) error {
	return scanJSON(src, c)
}

// Cart is the per-user scratch list of dishes to order.
//
// Invariant: at most one item per (HotelID, DishID) and every quantity is in
// [1, MaxCartQuantity].
// Version is bumped by the repository on every successful save and is used as a
// compare-and-swap token; a zero Version means the cart has never been stored.
type Cart struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;type:varchar(36)" bson:"user_id"`
	Items     CartItems `json:"items" gorm:"type:text" bson:"items"`
	Version   int       `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (c *Cart) find(hotelID, dishID string) int {
	for i, item := range c.Items {
		if item.HotelID == hotelID && item.DishID == dishID {
			return i
		}
	}
	return -1
}

// Add merges quantity into the line for (hotelID, dishID), appending it if absent.
// The cart is left unchanged when the line would exceed MaxCartQuantity.
func (c *Cart) Add(hotelID, dishID string, quantity int) error {
	if quantity < 1 || quantity > MaxCartQuantity {
		return ErrQuantityLimit
	}
	if i := c.find(hotelID, dishID); i >= 0 {
		if c.Items[i].Quantity > MaxCartQuantity-quantity {
			return ErrQuantityLimit
		}
		c.Items[i].Quantity += quantity
		return nil
	}
	c.Items = append(c.Items, CartItem{HotelID: hotelID, DishID: dishID, Quantity: quantity})
	return nil
}

// Remove drops every line for (hotelID, dishID). Removing an absent line is a no-op.
func (c *Cart) Remove(hotelID, dishID string) {
	kept := make(CartItems, 0, len(c.Items))
	for _, item := range c.Items {
		if item.HotelID == hotelID && item.DishID == dishID {
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
}

// Increment adds one to the line, creating it with quantity 1 when absent.
func (c *Cart) Increment(hotelID, dishID string) error {
	return c.Add(hotelID, dishID, 1)
}

// Decrement takes one from the line and removes it when it would reach zero.
func (c *Cart) Decrement(hotelID, dishID string) {
	i := c.find(hotelID, dishID)
	if i < 0 {
		return
	}
	if c.Items[i].Quantity > 1 {
		c.Items[i].Quantity--
		return
	}
	c.Remove(hotelID, dishID)
}

// Clear empties the cart but keeps it for reuse.
func (c *Cart) Clear() {
	c.Items = CartItems{}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = append(CartItems{}, c.Items...)
	return &cp
}

// CartLine is a cart item joined with the current catalog data.
type CartLine struct {
	HotelID   string  `json:"hotel_id"`
	HotelName string  `json:"hotel_name"`
	DishID    string  `json:"dish_id"`
	DishName  string  `json:"dish_name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Reasons a cart line could not be resolved against the catalog.
const (
	SkipHotelNotFound = "hotel_not_found"
	SkipDishNotFound  = "dish_not_found"
)

// SkippedItem reports a cart line that referenced a hotel or dish that no
// longer exists.
type SkippedItem struct {
	HotelID  string `json:"hotel_id"`
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// CartView is the display projection of a cart.
type CartView struct {
	Items      []CartLine    `json:"items"`
	Skipped    []SkippedItem `json:"skipped,omitempty"`
	TotalPrice float64       `json:"total_price"`
}
