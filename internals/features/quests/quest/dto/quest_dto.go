package dto

import (
	"time"

	"github.com/google/uuid"

	"questdeck_backend/internals/features/progression/rules"
	"questdeck_backend/internals/features/quests/quest/model"
)

type CreateQuestRequest struct {
	QuestTreeID      uuid.UUID         `json:"quest_tree_id" validate:"required"`
	Title            string            `json:"title" validate:"required,min=3,max=160"`
	Description      string            `json:"description"`
	XPReward         int               `json:"xp_reward" validate:"gte=0"`
	Difficulty       rules.Difficulty  `json:"difficulty" validate:"required"`
	DeadlineDays     int               `json:"deadline_days" validate:"gte=1,lte=90"`
	EstimatedMinutes int               `json:"estimated_minutes" validate:"gte=0"`
	IsCapstone       bool              `json:"is_capstone"`
	IsPublished      bool              `json:"is_published"`
	SortOrder        int               `json:"sort_order"`
	BadgeID          *uuid.UUID        `json:"badge_id,omitempty"`
	Tasks            []model.QuestTask `json:"tasks" validate:"required,min=1,dive"`
	PrerequisiteIDs  []uuid.UUID       `json:"prerequisite_ids"`
}

type UpdateQuestRequest struct {
	Title            *string           `json:"title,omitempty" validate:"omitempty,min=3,max=160"`
	Description      *string           `json:"description,omitempty"`
	XPReward         *int              `json:"xp_reward,omitempty" validate:"omitempty,gte=0"`
	Difficulty       *rules.Difficulty `json:"difficulty,omitempty"`
	DeadlineDays     *int              `json:"deadline_days,omitempty" validate:"omitempty,gte=1,lte=90"`
	EstimatedMinutes *int              `json:"estimated_minutes,omitempty" validate:"omitempty,gte=0"`
	IsCapstone       *bool             `json:"is_capstone,omitempty"`
	IsPublished      *bool             `json:"is_published,omitempty"`
	SortOrder        *int              `json:"sort_order,omitempty"`
	BadgeID          *uuid.UUID        `json:"badge_id,omitempty"`
	Tasks            []model.QuestTask `json:"tasks,omitempty" validate:"omitempty,min=1,dive"`
	PrerequisiteIDs  []uuid.UUID       `json:"prerequisite_ids,omitempty"`
}

type QuestResponse struct {
	QuestID          uuid.UUID         `json:"quest_id"`
	QuestTreeID      uuid.UUID         `json:"quest_tree_id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	XPReward         int               `json:"xp_reward"`
	Difficulty       rules.Difficulty  `json:"difficulty"`
	DeadlineDays     int               `json:"deadline_days"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	IsCapstone       bool              `json:"is_capstone"`
	IsPublished      bool              `json:"is_published"`
	SortOrder        int               `json:"sort_order"`
	BadgeID          *uuid.UUID        `json:"badge_id,omitempty"`
	Tasks            []model.QuestTask `json:"tasks"`
	PrerequisiteIDs  []uuid.UUID       `json:"prerequisite_ids"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func FromModel(m *model.QuestModel) QuestResponse {
	tasks, _ := m.Tasks()
	if tasks == nil {
		tasks = []model.QuestTask{}
	}
	prereqs, _ := m.PrerequisiteIDs()
	if prereqs == nil {
		prereqs = []uuid.UUID{}
	}
	return QuestResponse{
		QuestID:          m.QuestID,
		QuestTreeID:      m.QuestTreeID,
		Title:            m.QuestTitle,
		Description:      m.QuestDescription,
		XPReward:         m.QuestXPReward,
		Difficulty:       m.QuestDifficulty,
		DeadlineDays:     m.QuestDeadlineDays,
		EstimatedMinutes: m.QuestEstimatedMinutes,
		IsCapstone:       m.QuestIsCapstone,
		IsPublished:      m.QuestIsPublished,
		SortOrder:        m.QuestSortOrder,
		BadgeID:          m.QuestBadgeID,
		Tasks:            tasks,
		PrerequisiteIDs:  prereqs,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
