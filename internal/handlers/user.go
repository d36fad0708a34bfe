package handlers

import (
	"bvest/internal/models"
	"bvest/internal/services/user"
	"bvest/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterUser creates a new investor or business account.
func (h *UserHandler) RegisterUser(c *fiber.Ctx) error {
	var input models.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	created, err := h.userService.Create(&input)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	return response.Created(c, "Account created", fiber.Map{
		"id":      created.ID,
		"email":   created.Email,
		"name":    created.Name,
		"role":    created.Role,
		"country": created.Country,
	})
}

// GetMe returns the authenticated user's account.
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	u, err := h.userService.GetByID(claims.UserID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "OK", fiber.Map{
		"id":      u.ID,
		"email":   u.Email,
		"name":    u.Name,
		"role":    u.Role,
		"country": u.Country,
		"status":  u.Status,
	})
}
