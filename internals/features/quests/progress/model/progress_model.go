package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressStatus string

const (
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
	ProgressStatusExpired    ProgressStatus = "expired"
	ProgressStatusAbandoned  ProgressStatus = "abandoned"
)

// UserQuestProgressModel is the per-(user, quest) attempt record. At most one
// row exists per pair; re-acceptance reuses the row and bumps the attempt
// counter. progress_version backs the optimistic read-modify-write check on
// task completion and submission.
type UserQuestProgressModel struct {
	ProgressID      uuid.UUID      `gorm:"column:progress_id;type:uuid;primaryKey" json:"progress_id"`
	ProgressUserID  uuid.UUID      `gorm:"column:progress_user_id;type:uuid;not null;uniqueIndex:uq_progress_user_quest" json:"progress_user_id"`
	ProgressQuestID uuid.UUID      `gorm:"column:progress_quest_id;type:uuid;not null;uniqueIndex:uq_progress_user_quest" json:"progress_quest_id"`
	ProgressStatus  ProgressStatus `gorm:"column:progress_status;type:varchar(16);not null" json:"progress_status"`

	// JSONB: []string of completed task ids, subset of the quest's task set
	ProgressTasksCompleted datatypes.JSON `gorm:"column:progress_tasks_completed;type:jsonb" json:"progress_tasks_completed"`
	ProgressPercent        int            `gorm:"column:progress_percent;not null;default:0" json:"progress_percent"`

	ProgressStartedAt   time.Time  `gorm:"column:progress_started_at;not null" json:"progress_started_at"`
	ProgressDeadlineAt  time.Time  `gorm:"column:progress_deadline_at;not null" json:"progress_deadline_at"`
	ProgressCompletedAt *time.Time `gorm:"column:progress_completed_at" json:"progress_completed_at,omitempty"`

	ProgressAttemptCount int `gorm:"column:progress_attempt_count;not null;default:1" json:"progress_attempt_count"`
	ProgressXPEarned     int `gorm:"column:progress_xp_earned;not null;default:0" json:"progress_xp_earned"`
	ProgressVersion      int `gorm:"column:progress_version;not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserQuestProgressModel) TableName() string {
	return "user_quest_progress"
}

func (m *UserQuestProgressModel) BeforeCreate(tx *gorm.DB) error {
	if m.ProgressID == uuid.Nil {
		m.ProgressID = uuid.New()
	}
	return nil
}

// TasksCompleted decodes progress_tasks_completed.
func (m *UserQuestProgressModel) TasksCompleted() ([]string, error) {
	if len(m.ProgressTasksCompleted) == 0 {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(m.ProgressTasksCompleted, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MarshalTaskIDs encodes completed task ids for storage.
func MarshalTaskIDs(ids []string) (datatypes.JSON, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
