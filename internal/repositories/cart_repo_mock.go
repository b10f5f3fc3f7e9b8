package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodtue/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart // keyed by user ID
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetByUserID returns the cart of a user.
func (r *MockCartRepository) GetByUserID(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
	}
	return cart.Clone(), nil
}

// Save inserts or compare-and-swaps the cart.
func (r *MockCartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored, exists := r.carts[cart.UserID]
	switch {
	case cart.Version == 0 && exists:
		return fmt.Errorf("cart for user %s: %w", cart.UserID, ErrConflict)
	case cart.Version == 0:
		if cart.ID == "" {
			cart.ID = uuid.New().String()
		}
		cart.CreatedAt = now
	case !exists || stored.Version != cart.Version:
		return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrConflict)
	}

	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	cart.Version++
	cart.UpdatedAt = now
	r.carts[cart.UserID] = *cart.Clone()
	return nil
}

// clearLocked empties the cart with the given ID if it is still at version.
// The caller must hold r.mu.
func (r *MockCartRepository) clearLocked(cartID string, version int) error {
	for userID, cart := range r.carts {
		if cart.ID != cartID {
			continue
		}
		if cart.Version != version {
			break
		}
		cart.Clear()
		cart.Version++
		cart.UpdatedAt = time.Now()
		r.carts[userID] = cart
		return nil
	}
	return fmt.Errorf("cart %s at version %d: %w", cartID, version, ErrConflict)
}
