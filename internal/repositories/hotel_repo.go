package repositories

import (
	"context"

	"foodtue/internal/models"
)

// HotelRepository defines the interface for catalog data access. Dishes are
// stored inside their hotel and written back with Update.
type HotelRepository interface {
	Create(ctx context.Context, hotel *models.Hotel) error
	GetByID(ctx context.Context, id string) (*models.Hotel, error)
	GetByEmail(ctx context.Context, email string) (*models.Hotel, error)
	// List returns all hotels, filtered by city when city is not empty.
	List(ctx context.Context, city string) ([]models.Hotel, error)
	Update(ctx context.Context, hotel *models.Hotel) error
}
