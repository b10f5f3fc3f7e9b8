package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"foodtue/internal/middleware"
	"foodtue/internal/services"
)

// HotelOrderHandler serves the orders a hotel has to fulfil.
type HotelOrderHandler struct {
	service  *services.OrderService
	tokens   middleware.TokenValidator
	validate *validator.Validate
}

// NewHotelOrderHandler creates a new HotelOrderHandler. tokens validates hotel
// owner tokens.
func NewHotelOrderHandler(service *services.OrderService, tokens middleware.TokenValidator) *HotelOrderHandler {
	return &HotelOrderHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the hotel order routes with the Fiber app.
func (h *HotelOrderHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/hotelorders", middleware.HotelAuthRequired(h.tokens))
	routes.Get("/orders", h.HandleGetOrders)
	routes.Patch("/orders/:id/status", h.HandleUpdateStatus)
}

// HandleGetOrders lists orders containing the owner's dishes.
func (h *HotelOrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetHotelOrders(c.UserContext(), middleware.HotelEmail(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateStatus moves an order to the next status.
func (h *HotelOrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	order, err := h.service.UpdateStatus(c.UserContext(), middleware.HotelEmail(c), c.Params("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"order":   order,
	})
}
