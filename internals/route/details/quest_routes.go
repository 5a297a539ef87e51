package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"questdeck_backend/internals/configs"
	progressController "questdeck_backend/internals/features/quests/progress/controller"
	authService "questdeck_backend/internals/features/users/auth/service"
	authMiddleware "questdeck_backend/internals/middlewares/auth"
)

// QuestRoutes is the quest lifecycle surface.
func QuestRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := progressController.NewProgressController(db)

	quests := app.Group("/api/quests",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			BlacklistChecker:    authService.IsBlacklisted(db),
			AllowCookieFallback: true,
		}),
	)

	quests.Post("/accept", ctrl.Accept)
	quests.Post("/task/complete", ctrl.CompleteTask)
	quests.Post("/submit", ctrl.Submit)
	quests.Post("/abandon/:id", ctrl.Abandon)
	quests.Get("/progress", ctrl.List)
}
