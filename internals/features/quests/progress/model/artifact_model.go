package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestArtifactModel records the URL a user attached when submitting a quest
// (repo link, document, deployed app).
type QuestArtifactModel struct {
	ArtifactID         uuid.UUID `gorm:"column:artifact_id;type:uuid;primaryKey" json:"artifact_id"`
	ArtifactProgressID uuid.UUID `gorm:"column:artifact_progress_id;type:uuid;not null;index" json:"artifact_progress_id"`
	ArtifactUserID     uuid.UUID `gorm:"column:artifact_user_id;type:uuid;not null;index" json:"artifact_user_id"`
	ArtifactURL        string    `gorm:"column:artifact_url;not null" json:"artifact_url"`
	ArtifactNotes      string    `gorm:"column:artifact_notes" json:"artifact_notes"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (QuestArtifactModel) TableName() string {
	return "quest_artifacts"
}

func (m *QuestArtifactModel) BeforeCreate(tx *gorm.DB) error {
	if m.ArtifactID == uuid.Nil {
		m.ArtifactID = uuid.New()
	}
	return nil
}
