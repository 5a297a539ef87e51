package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	routeDetails "questdeck_backend/internals/route/details"
)

// SetupRoutes mounts every route group:
//
//	/api/auth    sign-in surface (public, rate limited)
//	/api/public  unauthenticated catalog and leaderboard
//	/api/quests  quest lifecycle (JWT)
//	/api/user    stats, reset, profile (JWT)
//	/api/u       the rest of the learner surface (JWT)
//	/api/a       admin content management (JWT + role)
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// badge icons are served straight off disk
	app.Static("/uploads", "./uploads")

	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	log.Println("[INFO] Setting up PublicRoutes...")
	routeDetails.PublicRoutes(app, db)

	log.Println("[INFO] Setting up QuestRoutes...")
	routeDetails.QuestRoutes(app, db)

	log.Println("[INFO] Setting up UserRoutes...")
	routeDetails.UserRoutes(app, db)

	log.Println("[INFO] Setting up AdminRoutes...")
	routeDetails.AdminRoutes(app, db)
}
