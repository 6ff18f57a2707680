package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateSettingsRequest struct {
	Bio            string `json:"bio"`
	Avatar         string `json:"avatar"`
	PrivateProfile *bool  `json:"private_profile"`
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMySettings handles PUT /api/users/me/settings
func (s *Server) UpdateMySettings(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Absent private_profile keeps the current value.
	current, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	privateProfile := current.PrivateProfile
	if req.PrivateProfile != nil {
		privateProfile = *req.PrivateProfile
	}

	user, err := s.userService.UpdateSettings(ctx, service.UpdateSettingsInput{
		UserID:         userID,
		Bio:            req.Bio,
		Avatar:         req.Avatar,
		PrivateProfile: privateProfile,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	ctx := c.Context()
	p := parsePagination(c, 50)

	users, err := s.userService.ListUsers(ctx, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}
