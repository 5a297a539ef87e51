package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"questdeck_backend/internals/configs"
	"questdeck_backend/internals/constants"
	badgeController "questdeck_backend/internals/features/progression/badges/controller"
	questController "questdeck_backend/internals/features/quests/quest/controller"
	treeController "questdeck_backend/internals/features/quests/tree/controller"
	authService "questdeck_backend/internals/features/users/auth/service"
	authMiddleware "questdeck_backend/internals/middlewares/auth"
)

// AdminRoutes is the content-management surface (admin and owner roles).
func AdminRoutes(app *fiber.App, db *gorm.DB) {
	trees := treeController.NewTreeAdminController(db)
	quests := questController.NewQuestAdminController(db)
	badges := badgeController.NewBadgeAdminController(db)

	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			BlacklistChecker:    authService.IsBlacklisted(db),
			AllowCookieFallback: true,
		}),
		authMiddleware.RequireRoles(constants.AdminAndAbove...),
	)

	admin.Get("/quest-trees", trees.List)
	admin.Post("/quest-trees", trees.Create)
	admin.Patch("/quest-trees/:id", trees.Update)
	admin.Delete("/quest-trees/:id", trees.Delete)

	admin.Get("/quests", quests.List)
	admin.Post("/quests", quests.Create)
	admin.Patch("/quests/:id", quests.Update)
	admin.Delete("/quests/:id", quests.Delete)

	admin.Get("/badges", badges.List)
	admin.Post("/badges", badges.Create)
	admin.Patch("/badges/:id", badges.Update)
	admin.Post("/badges/:id/icon", badges.UploadIcon)
	admin.Delete("/badges/:id", badges.Delete)
}
