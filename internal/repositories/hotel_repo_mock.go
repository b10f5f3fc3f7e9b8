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

// MockHotelRepository is an in-memory implementation of HotelRepository.
type MockHotelRepository struct {
	hotels map[string]models.Hotel
	mu     sync.RWMutex
}

// NewMockHotelRepository creates a new instance of MockHotelRepository.
func NewMockHotelRepository() *MockHotelRepository {
	return &MockHotelRepository{
		hotels: make(map[string]models.Hotel),
	}
}

func copyHotel(h models.Hotel) models.Hotel {
	h.Dishes = append(models.Dishes{}, h.Dishes...)
	return h
}

// Create adds a new hotel.
func (r *MockHotelRepository) Create(_ context.Context, hotel *models.Hotel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.hotels {
		if h.Email == hotel.Email {
			return fmt.Errorf("hotel with email %s: %w", hotel.Email, ErrDuplicate)
		}
	}
	if hotel.ID == "" {
		hotel.ID = uuid.New().String()
	}
	if hotel.Dishes == nil {
		hotel.Dishes = models.Dishes{}
	}
	hotel.CreatedAt = time.Now()
	hotel.UpdatedAt = hotel.CreatedAt
	r.hotels[hotel.ID] = copyHotel(*hotel)
	return nil
}

// GetByID returns a hotel by its ID.
func (r *MockHotelRepository) GetByID(_ context.Context, id string) (*models.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hotel, ok := r.hotels[id]
	if !ok {
		return nil, fmt.Errorf("hotel with ID %s: %w", id, ErrNotFound)
	}
	hotel = copyHotel(hotel)
	return &hotel, nil
}

// GetByEmail returns a hotel by its owner email.
func (r *MockHotelRepository) GetByEmail(_ context.Context, email string) (*models.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hotels {
		if h.Email == email {
			hotel := copyHotel(h)
			return &hotel, nil
		}
	}
	return nil, fmt.Errorf("hotel with email %s: %w", email, ErrNotFound)
}

// List returns all hotels in creation order, optionally filtered by city.
func (r *MockHotelRepository) List(_ context.Context, city string) ([]models.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hotels := make([]models.Hotel, 0, len(r.hotels))
	for _, h := range r.hotels {
		if city != "" && h.City != city {
			continue
		}
		hotels = append(hotels, copyHotel(h))
	}
	sort.SliceStable(hotels, func(i, j int) bool {
		return hotels[i].CreatedAt.Before(hotels[j].CreatedAt)
	})
	return hotels, nil
}

// Update replaces an existing hotel.
func (r *MockHotelRepository) Update(_ context.Context, hotel *models.Hotel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.hotels[hotel.ID]
	if !ok {
		return fmt.Errorf("hotel with ID %s: %w", hotel.ID, ErrNotFound)
	}
	hotel.Email = stored.Email
	hotel.Password = stored.Password
	hotel.CreatedAt = stored.CreatedAt
	hotel.UpdatedAt = time.Now()
	r.hotels[hotel.ID] = copyHotel(*hotel)
	return nil
}
