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

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// PlaceFromCart inserts the order, its hotel index rows and clears the cart in
// a single transaction.
func (r *GORMOrderRepository) PlaceFromCart(ctx context.Context, order *models.Order, cartID string, cartVersion int) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Cart{}).
			Where("id = ? AND version = ?", cartID, cartVersion).
			Updates(map[string]interface{}{
				"items":      models.CartItems{},
				"version":    cartVersion + 1,
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to clear cart %s: %w", cartID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("cart %s at version %d: %w", cartID, cartVersion, ErrConflict)
		}

		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("order with idempotency key %q: %w", order.IdempotencyKey, ErrDuplicate)
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		hotelIDs := order.HotelIDs()
		index := make([]models.OrderHotel, 0, len(hotelIDs))
		for _, hotelID := range hotelIDs {
			index = append(index, models.OrderHotel{OrderID: order.ID, HotelID: hotelID})
		}
		if len(index) > 0 {
			if err := tx.Create(&index).Error; err != nil {
				return fmt.Errorf("failed to index order %s by hotel: %w", order.ID, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByIdempotencyKey retrieves the order a user placed with key.
func (r *GORMOrderRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with idempotency key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by idempotency key: %w", err)
	}
	return &order, nil
}

// ListByUser retrieves the orders of a user, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// ListByHotel retrieves the orders containing at least one item of hotelID,
// newest first.
func (r *GORMOrderRepository) ListByHotel(ctx context.Context, hotelID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).
		Joins("JOIN order_hotels ON order_hotels.order_id = orders.id").
		Where("order_hotels.hotel_id = ?", hotelID).
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for hotel %s: %w", hotelID, err)
	}
	return orders, nil
}

// UpdateStatus updates the status of an order if it is still in status from.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("order %s is no longer %s: %w", id, from, ErrConflict)
}

// NewGORMRepositories wires every GORM repository around one connection.
func NewGORMRepositories(db *gorm.DB) Set {
	return Set{
		Users:  NewGORMUserRepository(db),
		Hotels: NewGORMHotelRepository(db),
		Carts:  NewGORMCartRepository(db),
		Orders: NewGORMOrderRepository(db),
	}
}
