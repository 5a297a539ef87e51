package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "questdeck_backend/internals/features/users/auth/controller"
	rateLimiter "questdeck_backend/internals/middlewares"
)

func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := authController.NewAuthController(db)

	auth := app.Group("/api/auth")
	auth.Post("/register", rateLimiter.RegisterRateLimiter(), ctrl.Register)
	auth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
	auth.Post("/google", rateLimiter.LoginRateLimiter(), ctrl.GoogleLogin)
	auth.Post("/refresh", ctrl.Refresh)
	auth.Post("/logout", ctrl.Logout)
}
