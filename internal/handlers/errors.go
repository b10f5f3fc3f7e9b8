package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"foodtue/internal/services"
)

// requestError is a client error whose response body is already known.
type requestError struct {
	status int
	body   fiber.Map
}

func (e *requestError) Error() string {
	return fmt.Sprintf("request error %d: %v", e.status, e.body["message"])
}

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrInvalidToken, fiber.StatusUnauthorized},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrUserNotFound, fiber.StatusNotFound},
	{services.ErrHotelNotFound, fiber.StatusNotFound},
	{services.ErrDishNotFound, fiber.StatusNotFound},
	{services.ErrCartNotFound, fiber.StatusNotFound},
	{services.ErrOrderNotFound, fiber.StatusNotFound},
	{services.ErrInvalidQuantity, fiber.StatusBadRequest},
	{services.ErrInvalidPrice, fiber.StatusBadRequest},
	{services.ErrEmptyCart, fiber.StatusBadRequest},
	{services.ErrNoValidItems, fiber.StatusBadRequest},
	{services.ErrInvalidStatus, fiber.StatusBadRequest},
	{services.ErrInvalidTransition, fiber.StatusBadRequest},
	{services.ErrEmailTaken, fiber.StatusConflict},
	{services.ErrCartConflict, fiber.StatusConflict},
	{services.ErrOrderConflict, fiber.StatusConflict},
	{services.ErrRequestInProgress, fiber.StatusConflict},
}

// writeError maps err to a JSON response. Unknown errors are logged and
// answered with a bare 500.
func writeError(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return c.Status(reqErr.status).JSON(reqErr.body)
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(fiber.Map{"message": err.Error()})
		}
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal Server Error",
	})
}

// parseBody binds the JSON body into req and validates its struct tags.
func parseBody(c *fiber.Ctx, validate *validator.Validate, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("error parsing request body")
		return &requestError{status: fiber.StatusBadRequest, body: fiber.Map{
			"message": "Invalid request body",
		}}
	}
	return validateStruct(validate, req)
}

func validateStruct(validate *validator.Validate, req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &requestError{status: fiber.StatusBadRequest, body: fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	}}
}

// CookieConfig controls the token cookies set on login.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

func (cc CookieConfig) set(c *fiber.Ctx, name, token string) {
	sameSite := fiber.CookieSameSiteLaxMode
	if cc.Secure {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cc.TTL.Seconds()),
		HTTPOnly: true,
		Secure:   cc.Secure,
		SameSite: sameSite,
	})
}

func (cc CookieConfig) clear(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   cc.Secure,
	})
}
