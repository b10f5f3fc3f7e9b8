package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodtue/internal/middleware"
)

type stubValidator map[string]jwt.MapClaims

func (s stubValidator) ValidateToken(token string) (jwt.MapClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func newApp() *fiber.App {
	validator := stubValidator{
		"user-token":  {"user_id": "u1", "username": "asha"},
		"hotel-token": {"email": "sagar@example.com", "hotel_id": "h1"},
	}
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Get("/user", middleware.AuthRequired(validator), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c))
	})
	app.Get("/hotel", middleware.HotelAuthRequired(validator), func(c *fiber.Ctx) error {
		return c.SendString(middleware.HotelEmail(c))
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := newApp()

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"no token", func(r *http.Request) {}, fiber.StatusUnauthorized, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer user-token") }, fiber.StatusOK, "u1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "jwt", Value: "user-token"}) }, fiber.StatusOK, "u1"},
		{"bad format", func(r *http.Request) { r.Header.Set("Authorization", "Token user-token") }, fiber.StatusUnauthorized, ""},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, fiber.StatusUnauthorized, ""},
		{"hotel token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer hotel-token") }, fiber.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user", nil)
			tt.setup(req)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}

func TestHotelAuthRequired(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest(http.MethodGet, "/hotel", nil)
	req.AddCookie(&http.Cookie{Name: "hotelJwt", Value: "hotel-token"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A customer cookie is not accepted on hotel routes.
	req = httptest.NewRequest(http.MethodGet, "/hotel", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "user-token"})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
