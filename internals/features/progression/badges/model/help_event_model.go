package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HelpEventModel tracks social-assistance events (answering a question,
// reviewing a peer's artifact). The cumulative count per user feeds
// help_others badge criteria.
type HelpEventModel struct {
	HelpEventID     uuid.UUID  `gorm:"column:help_event_id;type:uuid;primaryKey" json:"help_event_id"`
	HelpEventUserID uuid.UUID  `gorm:"column:help_event_user_id;type:uuid;not null;index" json:"help_event_user_id"`
	HelpedUserID    *uuid.UUID `gorm:"column:helped_user_id;type:uuid" json:"helped_user_id,omitempty"`
	HelpEventKind   string     `gorm:"column:help_event_kind;size:40;not null" json:"help_event_kind"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (HelpEventModel) TableName() string {
	return "help_events"
}

func (m *HelpEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.HelpEventID == uuid.Nil {
		m.HelpEventID = uuid.New()
	}
	return nil
}
