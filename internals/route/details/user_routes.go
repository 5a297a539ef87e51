package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"questdeck_backend/internals/configs"
	notifController "questdeck_backend/internals/features/notifications/controller"
	badgeController "questdeck_backend/internals/features/progression/badges/controller"
	xpController "questdeck_backend/internals/features/progression/xp/controller"
	authService "questdeck_backend/internals/features/users/auth/service"
	userController "questdeck_backend/internals/features/users/user/controller"
	authMiddleware "questdeck_backend/internals/middlewares/auth"
)

// UserRoutes is the signed-in learner surface.
func UserRoutes(app *fiber.App, db *gorm.DB) {
	users := userController.NewUserController(db)
	badges := badgeController.NewBadgeController(db)
	xp := xpController.NewXPController(db)
	notifications := notifController.NewNotificationController(db)

	authMW := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              configs.JWTSecret,
		BlacklistChecker:    authService.IsBlacklisted(db),
		AllowCookieFallback: true,
	})

	user := app.Group("/api/user", authMW)
	user.Get("/stats", users.Stats)
	user.Post("/reset", users.Reset)
	user.Patch("/profile", users.UpdateProfile)

	u := app.Group("/api/u", authMW)
	u.Get("/badges", badges.Mine)
	u.Post("/help-events", badges.RecordHelpEvent)
	u.Get("/xp-transactions", xp.History)
	u.Get("/notifications", notifications.List)
	u.Post("/notifications/:id/read", notifications.MarkRead)
	u.Post("/notifications/read-all", notifications.MarkAllRead)
}
