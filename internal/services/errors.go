package services

import "errors"

// Domain errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrHotelNotFound = errors.New("hotel not found")
	ErrDishNotFound  = errors.New("dish not found")
	ErrCartNotFound  = errors.New("cart not found")
	ErrOrderNotFound = errors.New("order not found")

	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 999")
	ErrInvalidPrice       = errors.New("price must be greater than 0")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNoValidItems       = errors.New("no valid items in cart")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("order status transition not allowed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")

	ErrCartConflict      = errors.New("cart was modified concurrently, retry")
	ErrOrderConflict     = errors.New("order was modified concurrently, retry")
	ErrRequestInProgress = errors.New("a request with this idempotency key is in progress")
)
