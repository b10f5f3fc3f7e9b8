package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"foodtue/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository. It
// shares the cart store so that placing an order can clear the cart under the
// same critical section.
type MockOrderRepository struct {
	orders map[string]models.Order
	carts  *MockCartRepository
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(carts *MockCartRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		carts:  carts,
	}
}

// PlaceFromCart stores the order and clears the cart atomically. Locks are
// always taken carts first, then orders.
func (r *MockOrderRepository) PlaceFromCart(_ context.Context, order *models.Order, cartID string, cartVersion int) error {
	r.carts.mu.Lock()
	defer r.carts.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.IdempotencyKey != "" {
		if _, ok := r.findByKeyLocked(order.UserID, order.IdempotencyKey); ok {
			return fmt.Errorf("order with idempotency key %q: %w", order.IdempotencyKey, ErrDuplicate)
		}
	}
	if err := r.carts.clearLocked(cartID, cartVersion); err != nil {
		return err
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = *order.Clone()
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return order.Clone(), nil
}

// GetByIdempotencyKey returns the order a user placed with key.
func (r *MockOrderRepository) GetByIdempotencyKey(_ context.Context, userID, key string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.findByKeyLocked(userID, key)
	if !ok {
		return nil, fmt.Errorf("order with idempotency key %q: %w", key, ErrNotFound)
	}
	return order.Clone(), nil
}

func (r *MockOrderRepository) findByKeyLocked(userID, key string) (models.Order, bool) {
	for _, o := range r.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			return o, true
		}
	}
	return models.Order{}, false
}

func (r *MockOrderRepository) list(match func(*models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range r.orders {
		if match(&o) {
			orders = append(orders, *o.Clone())
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

// ListByUser returns the orders of a user, newest first.
func (r *MockOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.UserID == userID }), nil
}

// ListByHotel returns the orders containing an item of hotelID, newest first.
func (r *MockOrderRepository) ListByHotel(_ context.Context, hotelID string) ([]models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.HasHotel(hotelID) }), nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id string, from, to models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.Status != from {
		return fmt.Errorf("order %s is no longer %s: %w", id, from, ErrConflict)
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// NewMockRepositories wires a complete in-memory repository set.
func NewMockRepositories() Set {
	carts := NewMockCartRepository()
	return Set{
		Users:  NewMockUserRepository(),
		Hotels: NewMockHotelRepository(),
		Carts:  carts,
		Orders: NewMockOrderRepository(carts),
	}
}
