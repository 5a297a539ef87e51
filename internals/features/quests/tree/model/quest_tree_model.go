package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestTreeModel struct {
	QuestTreeID          uuid.UUID `gorm:"column:quest_tree_id;type:uuid;primaryKey" json:"quest_tree_id"`
	QuestTreeName        string    `gorm:"column:quest_tree_name;size:120;not null" json:"quest_tree_name"`
	QuestTreeDescription string    `gorm:"column:quest_tree_description" json:"quest_tree_description"`
	QuestTreeTopic       string    `gorm:"column:quest_tree_topic;size:80" json:"quest_tree_topic"`
	QuestTreeSortOrder   int       `gorm:"column:quest_tree_sort_order;not null;default:0" json:"quest_tree_sort_order"`
	QuestTreeIsPublished bool      `gorm:"column:quest_tree_is_published;not null;default:false" json:"quest_tree_is_published"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (QuestTreeModel) TableName() string {
	return "quest_trees"
}

func (m *QuestTreeModel) BeforeCreate(tx *gorm.DB) error {
	if m.QuestTreeID == uuid.Nil {
		m.QuestTreeID = uuid.New()
	}
	return nil
}
