package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "questdeck_backend/internals/features/users/auth/dto"
	"questdeck_backend/internals/features/users/auth/service"
	helper "questdeck_backend/internals/helpers"
)

type AuthController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validator: validator.New()}
}

// POST /auth/register
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var body dto.RegisterRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fieldErrors := map[string][]string{}
			for _, fe := range verrs {
				field := strings.ToLower(fe.Field())
				fieldErrors[field] = append(fieldErrors[field], fe.Tag())
			}
			return helper.JsonValidationError(c, fieldErrors)
		}
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := service.Register(ctrl.DB.WithContext(c.Context()), body.UserName, body.Email, body.Password)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Account created", fiber.Map{
		"user_id":   user.ID,
		"user_name": user.UserName,
		"email":     user.Email,
	})
}

// POST /auth/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var body dto.LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	user, pair, err := service.Login(ctrl.DB.WithContext(c.Context()), body.Email, body.Password)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Signed in", fiber.Map{
		"user_id":       user.ID,
		"user_name":     user.UserName,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// POST /auth/google
func (ctrl *AuthController) GoogleLogin(c *fiber.Ctx) error {
	var body dto.GoogleLoginRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	user, pair, err := service.LoginWithGoogle(ctrl.DB.WithContext(c.Context()), body.IDToken)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Signed in", fiber.Map{
		"user_id":       user.ID,
		"user_name":     user.UserName,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// POST /auth/refresh
func (ctrl *AuthController) Refresh(c *fiber.Ctx) error {
	var body dto.RefreshRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	pair, err := service.Refresh(ctrl.DB.WithContext(c.Context()), body.RefreshToken)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Token refreshed", pair)
}

// POST /auth/logout — blacklists the current access token and revokes the
// refresh token when the client sends it along.
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	var body dto.LogoutRequest
	_ = c.BodyParser(&body) // refresh token is optional

	rawAccess := ""
	if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		rawAccess = strings.TrimSpace(authz[7:])
	}

	if err := service.Logout(ctrl.DB.WithContext(c.Context()), rawAccess, body.RefreshToken); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "Signed out", nil)
}
