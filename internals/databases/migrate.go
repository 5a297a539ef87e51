package database

import (
	"log"
	"os"
	"strconv"

	"gorm.io/gorm"

	notifModel "questdeck_backend/internals/features/notifications/model"
	badgeModel "questdeck_backend/internals/features/progression/badges/model"
	xpModel "questdeck_backend/internals/features/progression/xp/model"
	progressModel "questdeck_backend/internals/features/quests/progress/model"
	questModel "questdeck_backend/internals/features/quests/quest/model"
	treeModel "questdeck_backend/internals/features/quests/tree/model"
	authModel "questdeck_backend/internals/features/users/auth/model"
	userModel "questdeck_backend/internals/features/users/user/model"
)

// AllModels is the full schema, in FK-friendly creation order. Shared with
// the test helpers.
func AllModels() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.RefreshTokenModel{},
		&authModel.TokenBlacklistModel{},
		&treeModel.QuestTreeModel{},
		&questModel.QuestModel{},
		&progressModel.UserQuestProgressModel{},
		&progressModel.QuestArtifactModel{},
		&badgeModel.BadgeModel{},
		&badgeModel.UserBadgeModel{},
		&badgeModel.HelpEventModel{},
		&xpModel.XPTransactionModel{},
		&notifModel.NotificationModel{},
	}
}

// AutoMigrate runs the GORM schema sync when AUTO_MIGRATE=true. Production
// runs versioned SQL migrations instead and leaves this off.
func AutoMigrate(db *gorm.DB) {
	if v, _ := strconv.ParseBool(os.Getenv("AUTO_MIGRATE")); !v {
		return
	}
	log.Println("[DB] running auto-migration...")
	if err := db.AutoMigrate(AllModels()...); err != nil {
		log.Fatalf("❌ auto-migration failed: %v", err)
	}
	log.Println("✅ Auto-migration complete")
}
