package repositories

import (
	"context"

	"foodtue/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	// Save inserts the cart when its Version is zero and otherwise replaces
	// its items only if the stored version still equals cart.Version. On
	// success cart.Version is advanced; a lost race returns ErrConflict.
	Save(ctx context.Context, cart *models.Cart) error
}
