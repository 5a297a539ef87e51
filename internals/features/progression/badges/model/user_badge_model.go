package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserBadgeModel records a single award. The composite unique index plus an
// ON CONFLICT DO NOTHING insert makes awarding idempotent.
type UserBadgeModel struct {
	UserBadgeID      uuid.UUID `gorm:"column:user_badge_id;type:uuid;primaryKey" json:"user_badge_id"`
	UserBadgeUserID  uuid.UUID `gorm:"column:user_badge_user_id;type:uuid;not null;uniqueIndex:uq_user_badge" json:"user_badge_user_id"`
	UserBadgeBadgeID uuid.UUID `gorm:"column:user_badge_badge_id;type:uuid;not null;uniqueIndex:uq_user_badge" json:"user_badge_badge_id"`
	AwardedAt        time.Time `gorm:"column:awarded_at;autoCreateTime" json:"awarded_at"`
}

func (UserBadgeModel) TableName() string {
	return "user_badges"
}

func (m *UserBadgeModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserBadgeID == uuid.Nil {
		m.UserBadgeID = uuid.New()
	}
	return nil
}
