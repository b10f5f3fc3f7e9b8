package models

import (
	"database/sql/driver"
	"time"
)

// Dish is a menu entry owned by a Hotel. Its ID is only unique within the hotel.
type Dish struct {
	ID          string  `json:"id" bson:"id"`
	Name        string  `json:"name" bson:"name"`
	Price       float64 `json:"price" bson:"price"`
	Description string  `json:"description" bson:"description"`
	Image       string  `json:"image" bson:"image"`
}

// Dishes is the ordered dish collection of a hotel.
type Dishes []Dish

// Value implements driver.Valuer.
func (d Dishes) Value() (driver.Value, error) {
	if d == nil {
		d = Dishes{}
	}
	return jsonValue(d)
}

// Scan implements sql.Scanner.
func (d *Dishes) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// Hotel is a restaurant. The hotel's email doubles as its owner's login.
type Hotel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name      string    `json:"name" gorm:"type:varchar(150)" bson:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email"`
	Password  string    `json:"-" gorm:"type:varchar(255)" bson:"password"`
	City      string    `json:"city" gorm:"index;type:varchar(100)" bson:"city"`
	Area      string    `json:"area" gorm:"type:varchar(100)" bson:"area"`
	Image     string    `json:"image" bson:"image"`
	Dishes    Dishes    `json:"dishes" gorm:"type:text" bson:"dishes"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// FindDish returns the dish with the given ID, if the hotel has it.
func (h *Hotel) FindDish(dishID string) (*Dish, bool) {
	for i := range h.Dishes {
		if h.Dishes[i].ID == dishID {
			return &h.Dishes[i], true
		}
	}
	return nil, false
}

// RemoveDish deletes a dish and reports whether it was present.
func (h *Hotel) RemoveDish(dishID string) bool {
	kept := h.Dishes[:0]
	removed := false
	for _, d := range h.Dishes {
		if d.ID == dishID {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	h.Dishes = kept
	return removed
}
