package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"foodtue/internal/middleware"
	"foodtue/internal/models"
	"foodtue/internal/services"
)

// CartHandler handles HTTP requests for the customer's cart.
type CartHandler struct {
	service  *services.CartService
	tokens   middleware.TokenValidator
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, tokens middleware.TokenValidator) *CartHandler {
	return &CartHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart", middleware.AuthRequired(h.tokens))
	cartRoutes.Post("/addtocart", h.HandleAdd)
	cartRoutes.Get("/getcart", h.HandleGet)
	cartRoutes.Post("/removecart", h.HandleRemove)
	cartRoutes.Post("/increment", h.HandleIncrement)
	cartRoutes.Post("/decrement", h.HandleDecrement)
}

// AddToCartRequest represents the request body for adding a dish to the cart.
// Quantity defaults to 1 when omitted.
type AddToCartRequest struct {
	HotelID  string `json:"hotel_id" validate:"required"`
	DishID   string `json:"dish_id" validate:"required"`
	Quantity *int   `json:"quantity"`
}

// CartItemRequest identifies a cart line.
type CartItemRequest struct {
	HotelID string `json:"hotel_id" validate:"required"`
	DishID  string `json:"dish_id" validate:"required"`
}

// HandleAdd adds a dish to the cart.
func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.service.Add(c.UserContext(), middleware.UserID(c), req.HotelID, req.DishID, quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart)
}

// HandleGet returns the cart joined with the current catalog.
func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	view, err := h.service.View(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// HandleRemove drops a line from the cart.
func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	return h.mutate(c, h.service.Remove)
}

// HandleIncrement adds one unit of a dish.
func (h *CartHandler) HandleIncrement(c *fiber.Ctx) error {
	return h.mutate(c, h.service.Increment)
}

// HandleDecrement takes one unit of a dish away.
func (h *CartHandler) HandleDecrement(c *fiber.Ctx) error {
	return h.mutate(c, h.service.Decrement)
}

func (h *CartHandler) mutate(c *fiber.Ctx, fn func(ctx context.Context, userID, hotelID, dishID string) (*models.Cart, error)) error {
	var req CartItemRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	cart, err := fn(c.UserContext(), middleware.UserID(c), req.HotelID, req.DishID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart)
}
