package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/config"
	"quizhub/backend/middleware"
	"quizhub/backend/services"
	"quizhub/backend/utils"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{Auth: services.NewAuthService(db, cfg)}
}

// Register creates an account and signs the user in.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.HandleError(c, err)
	}

	user, token, err := ac.Auth.Register(input)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.HandleError(c, err)
	}

	user, token, err := ac.Auth.Login(input.Email, input.Password)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	current := middleware.UserFromContext(c)

	user, err := ac.Auth.Profile(current.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}
