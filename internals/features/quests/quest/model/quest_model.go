package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"questdeck_backend/internals/features/progression/rules"
)

// QuestTask is one entry of the quests_tasks JSONB column. Task ids are
// stable strings chosen by the content admin ("read-docs", "build-api", ...).
type QuestTask struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
	Order int    `json:"order"`
}

// QuestModel is static content: immutable during a user's attempt, edited only
// by administrators.
type QuestModel struct {
	QuestID          uuid.UUID        `gorm:"column:quest_id;type:uuid;primaryKey" json:"quest_id"`
	QuestTreeID      uuid.UUID        `gorm:"column:quest_tree_id;type:uuid;not null;index" json:"quest_tree_id"`
	QuestTitle       string           `gorm:"column:quest_title;size:160;not null" json:"quest_title"`
	QuestDescription string           `gorm:"column:quest_description" json:"quest_description"`
	QuestXPReward    int              `gorm:"column:quest_xp_reward;not null;default:0" json:"quest_xp_reward"`
	QuestDifficulty  rules.Difficulty `gorm:"column:quest_difficulty;type:varchar(16);not null;default:'medium'" json:"quest_difficulty"`

	QuestDeadlineDays      int  `gorm:"column:quest_deadline_days;not null;default:7" json:"quest_deadline_days"`
	QuestEstimatedMinutes  int  `gorm:"column:quest_estimated_minutes;not null;default:0" json:"quest_estimated_minutes"`
	QuestIsCapstone        bool `gorm:"column:quest_is_capstone;not null;default:false" json:"quest_is_capstone"`
	QuestIsPublished       bool `gorm:"column:quest_is_published;not null;default:false" json:"quest_is_published"`
	QuestSortOrder         int  `gorm:"column:quest_sort_order;not null;default:0" json:"quest_sort_order"`

	// badge granted on first completion, optional
	QuestBadgeID *uuid.UUID `gorm:"column:quest_badge_id;type:uuid" json:"quest_badge_id,omitempty"`

	// JSONB: ordered []QuestTask
	QuestTasks datatypes.JSON `gorm:"column:quest_tasks;type:jsonb" json:"quest_tasks"`
	// JSONB: []uuid — quests that must be COMPLETED before this one
	QuestPrerequisiteIDs datatypes.JSON `gorm:"column:quest_prerequisite_ids;type:jsonb" json:"quest_prerequisite_ids"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (QuestModel) TableName() string {
	return "quests"
}

func (m *QuestModel) BeforeCreate(tx *gorm.DB) error {
	if m.QuestID == uuid.Nil {
		m.QuestID = uuid.New()
	}
	return nil
}

// Tasks decodes the quest_tasks column. An empty/null column is an empty list.
func (m *QuestModel) Tasks() ([]QuestTask, error) {
	if len(m.QuestTasks) == 0 {
		return nil, nil
	}
	var tasks []QuestTask
	if err := json.Unmarshal(m.QuestTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// HasTask reports whether id is one of the quest's task ids.
func (m *QuestModel) HasTask(id string) (bool, error) {
	tasks, err := m.Tasks()
	if err != nil {
		return false, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// PrerequisiteIDs decodes quest_prerequisite_ids.
func (m *QuestModel) PrerequisiteIDs() ([]uuid.UUID, error) {
	if len(m.QuestPrerequisiteIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(m.QuestPrerequisiteIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MarshalTasks encodes tasks for storage.
func MarshalTasks(tasks []QuestTask) (datatypes.JSON, error) {
	b, err := json.Marshal(tasks)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// MarshalPrerequisites encodes prerequisite ids for storage.
func MarshalPrerequisites(ids []uuid.UUID) (datatypes.JSON, error) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
