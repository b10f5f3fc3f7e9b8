package repositories

import (
	"context"

	"foodtue/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// PlaceFromCart stores the order and empties the cart as one atomic step.
	// The cart is only cleared if its stored version equals cartVersion;
	// otherwise nothing is written and ErrConflict is returned. An order whose
	// user already has an order with the same IdempotencyKey fails with
	// ErrDuplicate.
	PlaceFromCart(ctx context.Context, order *models.Order, cartID string, cartVersion int) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetByIdempotencyKey finds the order the user placed with key.
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error)
	// ListByUser and ListByHotel return orders newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListByHotel(ctx context.Context, hotelID string) ([]models.Order, error)
	// UpdateStatus moves the order from one status to another, failing with
	// ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}

// Set bundles one implementation of every repository.
type Set struct {
	Users  UserRepository
	Hotels HotelRepository
	Carts  CartRepository
	Orders OrderRepository
}
