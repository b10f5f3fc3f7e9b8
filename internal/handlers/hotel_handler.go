package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"foodtue/internal/middleware"
	"foodtue/internal/models"
	"foodtue/internal/services"
)

// HotelHandler handles hotel owner accounts and the public catalog.
type HotelHandler struct {
	service  *services.HotelService
	cookies  CookieConfig
	validate *validator.Validate
}

// NewHotelHandler creates a new HotelHandler.
func NewHotelHandler(service *services.HotelService, cookies CookieConfig) *HotelHandler {
	return &HotelHandler{
		service:  service,
		cookies:  cookies,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the hotel routes with the Fiber app.
func (h *HotelHandler) RegisterRoutes(router fiber.Router) {
	owner := middleware.HotelAuthRequired(h.service)

	hotelRoutes := router.Group("/hotels")
	hotelRoutes.Post("/signup", h.HandleSignup)
	hotelRoutes.Post("/login", h.HandleLogin)
	hotelRoutes.Post("/logout", h.HandleLogout)
	hotelRoutes.Get("/gethotel", h.HandleGetHotels) // static route first
	hotelRoutes.Get("/:hotelId/dishes", h.HandleGetDishes)
	hotelRoutes.Post("/:hotelId/dishes", owner, h.HandleAddDish)
	hotelRoutes.Put("/:hotelId/dishes/:dishId", owner, h.HandleUpdateDish)
	hotelRoutes.Delete("/:hotelId/dishes/:dishId", owner, h.HandleDeleteDish)
}

// HotelSignupRequest represents the request body for hotel signup.
type HotelSignupRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	City     string `json:"city" validate:"required,max=100"`
	Area     string `json:"area" validate:"max=100"`
	Image    string `json:"image"`
}

// HandleSignup registers a hotel and logs its owner in.
func (h *HotelHandler) HandleSignup(c *fiber.Ctx) error {
	var req HotelSignupRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	hotel := models.Hotel{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		City:     req.City,
		Area:     req.Area,
		Image:    req.Image,
	}
	if err := h.service.Signup(c.UserContext(), &hotel); err != nil {
		return writeError(c, err)
	}

	token, err := h.service.IssueToken(&hotel)
	if err != nil {
		return writeError(c, err)
	}
	h.cookies.set(c, middleware.HotelCookie, token)

	log.Info().Str("hotel_id", hotel.ID).Str("city", hotel.City).Msg("hotel registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Hotel registered successfully",
		"hotel":   hotel,
		"token":   token,
	})
}

// HandleLogin logs a hotel owner in.
func (h *HotelHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	token, hotel, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	h.cookies.set(c, middleware.HotelCookie, token)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"hotel":   hotel,
		"token":   token,
	})
}

// HandleLogout clears the hotel token cookie.
func (h *HotelHandler) HandleLogout(c *fiber.Ctx) error {
	h.cookies.clear(c, middleware.HotelCookie)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// HandleGetHotels lists hotels, optionally filtered by ?city=.
func (h *HotelHandler) HandleGetHotels(c *fiber.Ctx) error {
	hotels, err := h.service.ListHotels(c.UserContext(), c.Query("city"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(hotels)
}

// HandleGetDishes lists the dishes of a hotel.
func (h *HotelHandler) HandleGetDishes(c *fiber.Ctx) error {
	dishes, err := h.service.ListDishes(c.UserContext(), c.Params("hotelId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dishes)
}

// DishRequest represents the request body for adding or editing a dish.
type DishRequest struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=1000"`
	Image       string  `json:"image"`
}

func (r DishRequest) dish(id string) models.Dish {
	return models.Dish{
		ID:          id,
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Image:       r.Image,
	}
}

// HandleAddDish adds a dish to the owner's hotel.
func (h *HotelHandler) HandleAddDish(c *fiber.Ctx) error {
	var req DishRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	dish, err := h.service.AddDish(c.UserContext(), middleware.HotelEmail(c), c.Params("hotelId"), req.dish(""))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Dish added successfully",
		"dish":    dish,
	})
}

// HandleUpdateDish replaces a dish of the owner's hotel.
func (h *HotelHandler) HandleUpdateDish(c *fiber.Ctx) error {
	var req DishRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	dish, err := h.service.UpdateDish(c.UserContext(), middleware.HotelEmail(c), c.Params("hotelId"), req.dish(c.Params("dishId")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Dish updated successfully",
		"dish":    dish,
	})
}

// HandleDeleteDish removes a dish from the owner's hotel.
func (h *HotelHandler) HandleDeleteDish(c *fiber.Ctx) error {
	err := h.service.DeleteDish(c.UserContext(), middleware.HotelEmail(c), c.Params("hotelId"), c.Params("dishId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Dish deleted successfully"})
}
