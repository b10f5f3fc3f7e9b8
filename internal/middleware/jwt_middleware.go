package middleware

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Cookie names carrying customer and hotel owner tokens.
const (
	UserCookie  = "jwt"
	HotelCookie = "hotelJwt"
)

// Locals keys set by the auth middlewares.
const (
	LocalUserID     = "user_id"
	LocalUsername   = "username"
	LocalHotelID    = "hotel_id"
	LocalHotelEmail = "hotel_email"
)

// TokenValidator verifies a token string and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

// AuthRequired is a Fiber middleware that accepts the customer token from the
// jwt cookie or a Bearer Authorization header.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := authenticate(c, validator, UserCookie)
		if !ok {
			return nil
		}
		userID, _ := claims["user_id"].(string)
		if userID == "" {
			return unauthorized(c, "Invalid or expired token")
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(LocalUserID, userID)
		c.Locals(LocalUsername, claims["username"])
		return c.Next()
	}
}

// HotelAuthRequired is AuthRequired for hotel owners, reading the hotelJwt cookie.
func HotelAuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := authenticate(c, validator, HotelCookie)
		if !ok {
			return nil
		}
		email, _ := claims["email"].(string)
		if email == "" {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalHotelEmail, email)
		c.Locals(LocalHotelID, claims["hotel_id"])
		return c.Next()
	}
}

// authenticate validates the request token. When it returns false the 401
// response has already been written.
func authenticate(c *fiber.Ctx, validator TokenValidator, cookie string) (jwt.MapClaims, bool) {
	tokenString, msg := extractToken(c, cookie)
	if tokenString == "" {
		_ = unauthorized(c, msg)
		return nil, false
	}

	claims, err := validator.ValidateToken(tokenString)
	if err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("JWT validation failed")
		_ = unauthorized(c, "Invalid or expired token")
		return nil, false
	}
	return claims, true
}

func extractToken(c *fiber.Ctx, cookie string) (string, string) {
	if token := c.Cookies(cookie); token != "" {
		return token, ""
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", "Unauthorized - No Token Provided"
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
		return "", "Authorization header format must be 'Bearer <token>'"
	}
	return parts[1], ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": msg,
	})
}

// UserID returns the authenticated customer's ID.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// HotelEmail returns the authenticated hotel owner's email.
func HotelEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalHotelEmail).(string)
	return email
}
