package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"foodtue/internal/middleware"
	"foodtue/internal/models"
	"foodtue/internal/services"
)

// AuthHandler handles HTTP requests for customer authentication.
type AuthHandler struct {
	authService *services.AuthService
	cookies     CookieConfig
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", middleware.AuthRequired(h.authService), h.HandleMe)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Mobile   string `json:"mobile" validate:"required,min=7,max=32"`
}

// HandleSignup registers a customer and logs them in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	user := models.User{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Mobile:   req.Mobile,
	}
	if err := h.authService.Signup(c.UserContext(), &user); err != nil {
		return writeError(c, err)
	}

	token, err := h.authService.IssueToken(&user)
	if err != nil {
		return writeError(c, err)
	}
	h.cookies.set(c, middleware.UserCookie, token)

	log.Info().Str("user_id", user.ID).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	token, user, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	h.cookies.set(c, middleware.UserCookie, token)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// HandleLogout clears the token cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.cookies.clear(c, middleware.UserCookie)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}
