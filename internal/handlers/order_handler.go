package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"foodtue/internal/middleware"
	"foodtue/internal/services"
)

// IdempotencyHeader carries the client's key for safely retrying checkout.
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

// OrderHandler handles HTTP requests for customer orders.
type OrderHandler struct {
	service *services.OrderService
	tokens  middleware.TokenValidator
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, tokens middleware.TokenValidator) *OrderHandler {
	return &OrderHandler{
		service: service,
		tokens:  tokens,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.AuthRequired(h.tokens))
	orderRoutes.Post("/placeorder", h.HandlePlaceOrder)
	orderRoutes.Get("/myorders", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Get("/:id/qrcode", h.HandleGetQRCode)
}

// HandlePlaceOrder checks out the user's cart.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Get(IdempotencyHeader))
	if len(key) > maxIdempotencyKeyLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Idempotency-Key is too long",
		})
	}

	placed, err := h.service.PlaceOrder(c.UserContext(), middleware.UserID(c), key)
	if err != nil {
		return writeError(c, err)
	}

	status := fiber.StatusCreated
	if placed.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"message":  "Order placed successfully",
		"order":    placed.Order,
		"skipped":  placed.Skipped,
		"replayed": placed.Replayed,
	})
}

// HandleGetMyOrders lists the user's orders, newest first.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetUserOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrder retrieves a single order of the user.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(order)
}

// HandleGetQRCode returns the order's pickup QR code as PNG.
func (h *OrderHandler) HandleGetQRCode(c *fiber.Ctx) error {
	png, err := h.service.OrderQRCode(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
