package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"foodtue/internal/models"
	"foodtue/internal/repositories"
	"foodtue/internal/services"
)

const testJWTSecret = "test_jwt_secret"

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(mockUserRepo)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	user := &models.User{
		Username: "testuser",
		Email:    " Test@Example.com ",
		Password: "password123",
	}
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.Signup(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(&models.User{ID: "1"}, nil).Once()
	err = authService.Signup(ctx, &models.User{Email: "test@example.com", Password: "x"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	// Test email taken by a concurrent signup
	mockRepo.On("GetByEmail", ctx, "race@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicate).Once()
	err = authService.Signup(ctx, &models.User{Email: "race@example.com", Password: "x"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(mockUserRepo)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	// Test successful login
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	token, got, err := authService.Login(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	_, _, err = authService.Login(ctx, "test@example.com", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repositories.ErrNotFound).Once()
	_, _, err = authService.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(mockUserRepo)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Test token signed with another secret
	otherToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-123"})
	otherTokenString, _ := otherToken.SignedString([]byte("hotel_secret"))
	_, err = authService.ValidateToken(otherTokenString)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthService_GetUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(mockUserRepo)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	mockRepo.On("GetByID", ctx, "u1").Return(&models.User{ID: "u1"}, nil).Once()
	mockRepo.On("GetByID", ctx, "u2").Return(nil, fmt.Errorf("user u2: %w", repositories.ErrNotFound)).Once()

	user, err := authService.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = authService.GetUser(ctx, "u2")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	mockRepo.AssertExpectations(t)
}
