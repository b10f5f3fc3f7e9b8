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

// AuthService handles customer registration and authentication.
type AuthService struct {
	userRepo repositories.UserRepository
	tokens   tokenIssuer
}

// NewAuthService creates a new AuthService. Tokens are valid for tokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokenIssuer{secret: []byte(jwtSecret), ttl: tokenTTL},
	}
}

// Signup hashes the user's password and stores the user.
func (s *AuthService) Signup(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	err = s.userRepo.Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// Login checks the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs a customer token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	return s.tokens.sign(jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	return s.tokens.parse(tokenString)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
