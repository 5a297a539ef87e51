package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"questdeck_backend/internals/features/users/auth/model"
)

// StartBlacklistCleanupScheduler purges expired rows from token_blacklist
// and refresh_tokens so the tables do not grow without bound.
// AUTH_CLEANUP_HOURS overrides the default 24h interval.
func StartBlacklistCleanupScheduler(db *gorm.DB) {
	intervalHours := 24
	if val := os.Getenv("AUTH_CLEANUP_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			intervalHours = parsed
		}
	}

	go func() {
		for {
			now := time.Now()

			res := db.Where("token_blacklist_expires_at < ?", now).
				Delete(&model.TokenBlacklistModel{})
			if res.Error != nil {
				log.Printf("[CLEANUP ERROR] token blacklist: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("[CLEANUP] %d expired blacklist entries removed", res.RowsAffected)
			}

			res = db.Where("refresh_token_expires_at < ?", now).
				Delete(&model.RefreshTokenModel{})
			if res.Error != nil {
				log.Printf("[CLEANUP ERROR] refresh tokens: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("[CLEANUP] %d expired refresh tokens removed", res.RowsAffected)
			}

			time.Sleep(time.Duration(intervalHours) * time.Hour)
		}
	}()
}
