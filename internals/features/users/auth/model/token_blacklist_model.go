package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenBlacklistModel holds access tokens revoked before their natural
// expiry (logout). Rows past expires_at are purged by the cleanup scheduler.
type TokenBlacklistModel struct {
	TokenBlacklistID        uuid.UUID `gorm:"column:token_blacklist_id;type:uuid;primaryKey" json:"token_blacklist_id"`
	TokenBlacklistHash      string    `gorm:"column:token_blacklist_hash;size:128;uniqueIndex;not null" json:"-"`
	TokenBlacklistExpiresAt time.Time `gorm:"column:token_blacklist_expires_at;not null;index" json:"token_blacklist_expires_at"`
	CreatedAt               time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TokenBlacklistModel) TableName() string {
	return "token_blacklist"
}

func (m *TokenBlacklistModel) BeforeCreate(tx *gorm.DB) error {
	if m.TokenBlacklistID == uuid.Nil {
		m.TokenBlacklistID = uuid.New()
	}
	return nil
}
