package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"foodtue/internal/models"
	"foodtue/internal/repositories"
)

// maxCartAttempts bounds how often a mutation is re-applied after losing a
// compare-and-swap race.
const maxCartAttempts = 3

// CartService handles business logic related to carts.
type CartService struct {
	carts  repositories.CartRepository
	hotels repositories.HotelRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, hotels repositories.HotelRepository) *CartService {
	return &CartService{carts: carts, hotels: hotels}
}

// Add puts quantity units of a dish in the user's cart, creating the cart on
// first use. The hotel and the dish must exist.
func (s *CartService) Add(ctx context.Context, userID, hotelID, dishID string, quantity int) (*models.Cart, error) {
	if quantity < 1 || quantity > models.MaxCartQuantity {
		return nil, ErrInvalidQuantity
	}
	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	if _, ok := hotel.FindDish(dishID); !ok {
		return nil, ErrDishNotFound
	}

	return s.mutate(ctx, userID, true, func(c *models.Cart) error {
		return c.Add(hotelID, dishID, quantity)
	})
}

// Remove drops the line for (hotelID, dishID) from the cart.
func (s *CartService) Remove(ctx context.Context, userID, hotelID, dishID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, false, func(c *models.Cart) error {
		c.Remove(hotelID, dishID)
		return nil
	})
}

// Increment adds one unit of the dish, appending the line when absent.
func (s *CartService) Increment(ctx context.Context, userID, hotelID, dishID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, false, func(c *models.Cart) error {
		return c.Increment(hotelID, dishID)
	})
}

// Decrement takes one unit of the dish away, removing the line at zero.
func (s *CartService) Decrement(ctx context.Context, userID, hotelID, dishID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, false, func(c *models.Cart) error {
		c.Decrement(hotelID, dishID)
		return nil
	})
}

// mutate loads the cart, applies fn and saves it, re-reading and re-applying
// when a concurrent write won the race. A line pushed over the quantity limit
// fails with ErrInvalidQuantity and nothing is saved.
func (s *CartService) mutate(ctx context.Context, userID string, create bool, fn func(*models.Cart) error) (*models.Cart, error) {
	for attempt := 1; attempt <= maxCartAttempts; attempt++ {
		cart, err := s.carts.GetByUserID(ctx, userID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			if !create {
				return nil, ErrCartNotFound
			}
			cart = &models.Cart{
				ID:        uuid.New().String(),
				UserID:    userID,
				Items:     models.CartItems{},
				CreatedAt: time.Now(),
			}
		case err != nil:
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}

		if err := fn(cart); err != nil {
			if errors.Is(err, models.ErrQuantityLimit) {
				return nil, ErrInvalidQuantity
			}
			return nil, err
		}
		cart.UpdatedAt = time.Now()

		err = s.carts.Save(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("failed to save cart: %w", err)
		}
		log.Debug().Str("user_id", userID).Int("attempt", attempt).Msg("cart save conflict, retrying")
	}
	return nil, ErrCartConflict
}

// View projects the user's cart onto the current catalog. Lines whose hotel
// or dish no longer exists are left out of Items and listed in Skipped.
func (s *CartService) View(ctx context.Context, userID string) (*models.CartView, error) {
	view := &models.CartView{Items: []models.CartLine{}}

	cart, err := s.carts.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lookup := newCatalogLookup(s.hotels)
	total := decimal.Zero
	for _, item := range cart.Items {
		hotel, dish, reason, err := lookup.resolve(ctx, item)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			view.Skipped = append(view.Skipped, skippedItem(item, reason))
			continue
		}
		view.Items = append(view.Items, models.CartLine{
			HotelID:   hotel.ID,
			HotelName: hotel.Name,
			DishID:    dish.ID,
			DishName:  dish.Name,
			Price:     dish.Price,
			Quantity:  item.Quantity,
		})
		total = total.Add(lineTotal(dish.Price, item.Quantity))
	}
	view.TotalPrice = total.InexactFloat64()
	return view, nil
}

func lineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}
