package dto

import (
	"time"

	"github.com/google/uuid"

	"questdeck_backend/internals/features/quests/progress/model"
)

type AcceptQuestRequest struct {
	QuestID uuid.UUID `json:"quest_id" validate:"required"`
}

type CompleteTaskRequest struct {
	ProgressID uuid.UUID `json:"progress_id" validate:"required"`
	TaskID     string    `json:"task_id" validate:"required"`
}

type SubmitQuestRequest struct {
	ProgressID  uuid.UUID `json:"progress_id" validate:"required"`
	ArtifactURL string    `json:"artifact_url,omitempty" validate:"omitempty,url"`
	Notes       string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ProgressResponse struct {
	ProgressID     uuid.UUID            `json:"progress_id"`
	QuestID        uuid.UUID            `json:"quest_id"`
	Status         model.ProgressStatus `json:"status"`
	TasksCompleted []string             `json:"tasks_completed"`
	Percent        int                  `json:"progress_percent"`
	StartedAt      time.Time            `json:"started_at"`
	DeadlineAt     time.Time            `json:"deadline_at"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
	AttemptCount   int                  `json:"attempt_count"`
	XPEarned       int                  `json:"xp_earned"`
}

func FromModel(m *model.UserQuestProgressModel) ProgressResponse {
	done, _ := m.TasksCompleted()
	if done == nil {
		done = []string{}
	}
	return ProgressResponse{
		ProgressID:     m.ProgressID,
		QuestID:        m.ProgressQuestID,
		Status:         m.ProgressStatus,
		TasksCompleted: done,
		Percent:        m.ProgressPercent,
		StartedAt:      m.ProgressStartedAt,
		DeadlineAt:     m.ProgressDeadlineAt,
		CompletedAt:    m.ProgressCompletedAt,
		AttemptCount:   m.ProgressAttemptCount,
		XPEarned:       m.ProgressXPEarned,
	}
}
