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

// GORMHotelRepository is a GORM implementation of HotelRepository.
type GORMHotelRepository struct {
	db *gorm.DB
}

// NewGORMHotelRepository creates a new instance of GORMHotelRepository.
func NewGORMHotelRepository(db *gorm.DB) *GORMHotelRepository {
	return &GORMHotelRepository{
		db: db,
	}
}

// Create creates a new hotel in the database.
func (r *GORMHotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	if hotel.ID == "" {
		hotel.ID = uuid.New().String()
	}
	if hotel.Dishes == nil {
		hotel.Dishes = models.Dishes{}
	}
	if err := r.db.WithContext(ctx).Create(hotel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("hotel with email %s: %w", hotel.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

// GetByID retrieves a single hotel by its ID from the database.
func (r *GORMHotelRepository) GetByID(ctx context.Context, id string) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := r.db.WithContext(ctx).First(&hotel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("hotel with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get hotel by ID %s: %w", id, err)
	}
	return &hotel, nil
}

// GetByEmail retrieves a hotel by its owner email from the database.
func (r *GORMHotelRepository) GetByEmail(ctx context.Context, email string) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := r.db.WithContext(ctx).First(&hotel, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("hotel with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get hotel by email %s: %w", email, err)
	}
	return &hotel, nil
}

// List retrieves all hotels from the database, optionally filtered by city.
func (r *GORMHotelRepository) List(ctx context.Context, city string) ([]models.Hotel, error) {
	hotels := []models.Hotel{}
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if city != "" {
		q = q.Where("city = ?", city)
	}
	if err := q.Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

// Update writes back the hotel's profile and dish list.
func (r *GORMHotelRepository) Update(ctx context.Context, hotel *models.Hotel) error {
	hotel.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Hotel{}).Where("id = ?", hotel.ID).Updates(map[string]interface{}{
		"name":       hotel.Name,
		"city":       hotel.City,
		"area":       hotel.Area,
		"image":      hotel.Image,
		"dishes":     hotel.Dishes,
		"updated_at": hotel.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update hotel: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("hotel with ID %s: %w", hotel.ID, ErrNotFound)
	}
	return nil
}
