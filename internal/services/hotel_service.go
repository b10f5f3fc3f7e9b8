package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"foodtue/internal/models"
	"foodtue/internal/repositories"
)

// HotelService handles hotel owner accounts and the dish catalog.
type HotelService struct {
	hotels repositories.HotelRepository
	tokens tokenIssuer
}

// NewHotelService creates a new HotelService. Owner tokens are signed with
// their own secret so customer tokens cannot be used on hotel routes.
func NewHotelService(hotels repositories.HotelRepository, jwtSecret string, tokenTTL time.Duration) *HotelService {
	return &HotelService{
		hotels: hotels,
		tokens: tokenIssuer{secret: []byte(jwtSecret), ttl: tokenTTL},
	}
}

// Signup registers a hotel. Its email becomes the owner's login.
func (s *HotelService) Signup(ctx context.Context, hotel *models.Hotel) error {
	hotel.Email = normalizeEmail(hotel.Email)
	if _, err := s.hotels.GetByEmail(ctx, hotel.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(hotel.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	hotel.Password = string(hashedPassword)
	if hotel.ID == "" {
		hotel.ID = uuid.New().String()
	}
	if hotel.Dishes == nil {
		hotel.Dishes = models.Dishes{}
	}

	err = s.hotels.Create(ctx, hotel)
	if errors.Is(err, repositories.ErrDuplicate) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to register hotel: %w", err)
	}
	return nil
}

// Login checks the owner's credentials and returns a signed hotel token.
func (s *HotelService) Login(ctx context.Context, email, password string) (string, *models.Hotel, error) {
	hotel, err := s.hotels.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hotel.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(hotel)
	if err != nil {
		return "", nil, err
	}
	return token, hotel, nil
}

// IssueToken signs an owner token for hotel.
func (s *HotelService) IssueToken(hotel *models.Hotel) (string, error) {
	return s.tokens.sign(jwt.MapClaims{
		"hotel_id": hotel.ID,
		"email":    hotel.Email,
	})
}

// ValidateToken parses and validates a hotel owner token.
func (s *HotelService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	return s.tokens.parse(tokenString)
}

// ListHotels returns the hotels of city, or every hotel when city is empty.
func (s *HotelService) ListHotels(ctx context.Context, city string) ([]models.Hotel, error) {
	hotels, err := s.hotels.List(ctx, strings.TrimSpace(city))
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

// GetHotel loads a hotel by ID.
func (s *HotelService) GetHotel(ctx context.Context, hotelID string) (*models.Hotel, error) {
	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	return hotel, nil
}

// ListDishes returns the dishes of a hotel.
func (s *HotelService) ListDishes(ctx context.Context, hotelID string) (models.Dishes, error) {
	hotel, err := s.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if hotel.Dishes == nil {
		return models.Dishes{}, nil
	}
	return hotel.Dishes, nil
}

// AddDish appends a dish to the hotel owned by ownerEmail.
func (s *HotelService) AddDish(ctx context.Context, ownerEmail, hotelID string, dish models.Dish) (*models.Dish, error) {
	if dish.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	hotel, err := s.ownedHotel(ctx, ownerEmail, hotelID)
	if err != nil {
		return nil, err
	}

	dish.ID = uuid.New().String()
	hotel.Dishes = append(hotel.Dishes, dish)
	if err := s.save(ctx, hotel); err != nil {
		return nil, err
	}
	return &dish, nil
}

// UpdateDish replaces the fields of an existing dish. Carts keep referring to
// it by ID and pick up the new price on their next view or checkout.
func (s *HotelService) UpdateDish(ctx context.Context, ownerEmail, hotelID string, dish models.Dish) (*models.Dish, error) {
	if dish.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	hotel, err := s.ownedHotel(ctx, ownerEmail, hotelID)
	if err != nil {
		return nil, err
	}

	existing, ok := hotel.FindDish(dish.ID)
	if !ok {
		return nil, ErrDishNotFound
	}
	*existing = dish
	if err := s.save(ctx, hotel); err != nil {
		return nil, err
	}
	return &dish, nil
}

// DeleteDish removes a dish from the hotel. Cart lines that reference it are
// skipped from then on.
func (s *HotelService) DeleteDish(ctx context.Context, ownerEmail, hotelID, dishID string) error {
	hotel, err := s.ownedHotel(ctx, ownerEmail, hotelID)
	if err != nil {
		return err
	}
	if !hotel.RemoveDish(dishID) {
		return ErrDishNotFound
	}
	return s.save(ctx, hotel)
}

func (s *HotelService) ownedHotel(ctx context.Context, ownerEmail, hotelID string) (*models.Hotel, error) {
	hotel, err := s.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if hotel.Email != normalizeEmail(ownerEmail) {
		return nil, ErrForbidden
	}
	return hotel, nil
}

func (s *HotelService) save(ctx context.Context, hotel *models.Hotel) error {
	hotel.UpdatedAt = time.Now()
	err := s.hotels.Update(ctx, hotel)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrHotelNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	return nil
}
