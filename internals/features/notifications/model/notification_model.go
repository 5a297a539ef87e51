package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationQuestAccepted  NotificationType = "quest_accepted"
	NotificationQuestCompleted NotificationType = "quest_completed"
	NotificationQuestExpired   NotificationType = "quest_expired"
	NotificationLevelUp        NotificationType = "level_up"
	NotificationBadgeEarned    NotificationType = "badge_earned"
)

type NotificationModel struct {
	NotificationID      uuid.UUID        `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	NotificationUserID  uuid.UUID        `gorm:"column:notification_user_id;type:uuid;not null;index" json:"notification_user_id"`
	NotificationType    NotificationType `gorm:"column:notification_type;type:varchar(24);not null" json:"notification_type"`
	NotificationTitle   string           `gorm:"column:notification_title;size:160;not null" json:"notification_title"`
	NotificationMessage string           `gorm:"column:notification_message;not null" json:"notification_message"`
	NotificationData    datatypes.JSON   `gorm:"column:notification_data;type:jsonb" json:"notification_data,omitempty"`
	NotificationIsRead  bool             `gorm:"column:notification_is_read;not null;default:false" json:"notification_is_read"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func (m *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.NotificationID == uuid.Nil {
		m.NotificationID = uuid.New()
	}
	return nil
}
