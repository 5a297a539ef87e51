package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	badgeController "questdeck_backend/internals/features/progression/badges/controller"
	questController "questdeck_backend/internals/features/quests/quest/controller"
	treeController "questdeck_backend/internals/features/quests/tree/controller"
	userController "questdeck_backend/internals/features/users/user/controller"
)

// PublicRoutes is the unauthenticated catalog: published trees and quests,
// the badge list and the leaderboard.
func PublicRoutes(app *fiber.App, db *gorm.DB) {
	trees := treeController.NewTreeController(db)
	quests := questController.NewQuestController(db)
	badges := badgeController.NewBadgeController(db)
	leaderboard := userController.NewLeaderboardController(db)

	public := app.Group("/api/public")

	public.Get("/quest-trees", trees.List)
	public.Get("/quest-trees/:id", trees.GetByID)
	public.Get("/quests", quests.List)
	public.Get("/quests/:id", quests.GetByID)
	public.Get("/badges", badges.List)
	public.Get("/leaderboard", leaderboard.Top)
}
