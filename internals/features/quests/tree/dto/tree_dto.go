package dto

import (
	"time"

	"github.com/google/uuid"

	"questdeck_backend/internals/features/quests/tree/model"
)

type CreateQuestTreeRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=120"`
	Description string `json:"description"`
	Topic       string `json:"topic" validate:"max=80"`
	SortOrder   int    `json:"sort_order"`
	IsPublished bool   `json:"is_published"`
}

type UpdateQuestTreeRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=120"`
	Description *string `json:"description,omitempty"`
	Topic       *string `json:"topic,omitempty" validate:"omitempty,max=80"`
	SortOrder   *int    `json:"sort_order,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

type QuestTreeResponse struct {
	QuestTreeID uuid.UUID `json:"quest_tree_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Topic       string    `json:"topic"`
	SortOrder   int       `json:"sort_order"`
	IsPublished bool      `json:"is_published"`
	QuestCount  int64     `json:"quest_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromModel(m *model.QuestTreeModel) QuestTreeResponse {
	return QuestTreeResponse{
		QuestTreeID: m.QuestTreeID,
		Name:        m.QuestTreeName,
		Description: m.QuestTreeDescription,
		Topic:       m.QuestTreeTopic,
		SortOrder:   m.QuestTreeSortOrder,
		IsPublished: m.QuestTreeIsPublished,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
