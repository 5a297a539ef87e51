package service

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"questdeck_backend/internals/features/notifications/model"
)

// Emit inserts a notification row. Pass the surrounding tx handle when the
// notification must commit with the rest of the write, or the plain DB handle
// for best-effort emission.
func Emit(db *gorm.DB, userID uuid.UUID, ntype model.NotificationType, title, message string, data any) error {
	var payload datatypes.JSON
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Printf("[WARN] notification payload marshal failed: %v", err)
		} else {
			payload = datatypes.JSON(b)
		}
	}

	n := model.NotificationModel{
		NotificationUserID:  userID,
		NotificationType:    ntype,
		NotificationTitle:   title,
		NotificationMessage: message,
		NotificationData:    payload,
	}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("[ERROR] notification insert failed (type=%s user=%s): %v", ntype, userID, err)
		return err
	}
	return nil
}

// MarkRead flags a single notification owned by userID as read.
func MarkRead(db *gorm.DB, userID, notificationID uuid.UUID) (int64, error) {
	res := db.Model(&model.NotificationModel{}).
		Where("notification_id = ? AND notification_user_id = ?", notificationID, userID).
		Update("notification_is_read", true)
	return res.RowsAffected, res.Error
}

// MarkAllRead flags every unread notification of userID as read.
func MarkAllRead(db *gorm.DB, userID uuid.UUID) (int64, error) {
	res := db.Model(&model.NotificationModel{}).
		Where("notification_user_id = ? AND notification_is_read = ?", userID, false).
		Update("notification_is_read", true)
	return res.RowsAffected, res.Error
}
