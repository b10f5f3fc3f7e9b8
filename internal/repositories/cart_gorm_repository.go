package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodtue/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID retrieves the cart owned by userID.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Save inserts a new cart or compare-and-swaps an existing one on its version.
func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}

	if cart.Version == 0 {
		if cart.ID == "" {
			cart.ID = uuid.New().String()
		}
		cart.Version = 1
		cart.CreatedAt = now
		cart.UpdatedAt = now
		if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
			cart.Version = 0
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Another request created the user's cart first.
				return fmt.Errorf("cart for user %s: %w", cart.UserID, ErrConflict)
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return nil
	}

	res := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]interface{}{
			"items":      cart.Items,
			"version":    cart.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update cart %s: %w", cart.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrConflict)
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}
