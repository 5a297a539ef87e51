package service

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	notifModel "questdeck_backend/internals/features/notifications/model"
	badgeModel "questdeck_backend/internals/features/progression/badges/model"
	xpModel "questdeck_backend/internals/features/progression/xp/model"
	progressModel "questdeck_backend/internals/features/quests/progress/model"
	"questdeck_backend/internals/features/users/user/model"
)

// ResetProgress wipes every progression record of the user and zeroes the
// users row back to level 1. One transaction, so a failed wipe leaves the
// account untouched.
func ResetProgress(db *gorm.DB, userID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var user model.UserModel
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		if err := tx.Where("artifact_user_id = ?", userID).
			Delete(&progressModel.QuestArtifactModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("progress_user_id = ?", userID).
			Delete(&progressModel.UserQuestProgressModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_badge_user_id = ?", userID).
			Delete(&badgeModel.UserBadgeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("help_event_user_id = ?", userID).
			Delete(&badgeModel.HelpEventModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("xp_transaction_user_id = ?", userID).
			Delete(&xpModel.XPTransactionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notification_user_id = ?", userID).
			Delete(&notifModel.NotificationModel{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.UserModel{}).Where("id = ?", userID).
			Updates(map[string]any{
				"total_xp":       0,
				"current_level":  1,
				"streak_count":   0,
				"longest_streak": 0,
				"last_active_at": nil,
			}).Error; err != nil {
			return err
		}

		log.Printf("[USER] progress reset for user %s", userID)
		return nil
	})
}
