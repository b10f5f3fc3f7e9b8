package services

import (
	"context"
	"errors"
	"fmt"

	"foodtue/internal/models"
	"foodtue/internal/repositories"
)

// catalogLookup resolves cart lines against the live catalog, loading each
// hotel at most once.
type catalogLookup struct {
	hotels repositories.HotelRepository
	cache  map[string]*models.Hotel // nil value: hotel is gone
}

func newCatalogLookup(hotels repositories.HotelRepository) *catalogLookup {
	return &catalogLookup{hotels: hotels, cache: make(map[string]*models.Hotel)}
}

// resolve returns the hotel and dish of item. When either no longer exists,
// reason names which one and the error is nil.
func (l *catalogLookup) resolve(ctx context.Context, item models.CartItem) (*models.Hotel, *models.Dish, string, error) {
	hotel, cached := l.cache[item.HotelID]
	if !cached {
		h, err := l.hotels.GetByID(ctx, item.HotelID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
		case err != nil:
			return nil, nil, "", fmt.Errorf("failed to load hotel %s: %w", item.HotelID, err)
		default:
			hotel = h
		}
		l.cache[item.HotelID] = hotel
	}
	if hotel == nil {
		return nil, nil, models.SkipHotelNotFound, nil
	}
	dish, ok := hotel.FindDish(item.DishID)
	if !ok {
		return hotel, nil, models.SkipDishNotFound, nil
	}
	return hotel, dish, "", nil
}

func skippedItem(item models.CartItem, reason string) models.SkippedItem {
	return models.SkippedItem{
		HotelID:  item.HotelID,
		DishID:   item.DishID,
		Quantity: item.Quantity,
		Reason:   reason,
	}
}
