package dto

import (
	"time"

	"github.com/google/uuid"

	"questdeck_backend/internals/features/progression/badges/model"
)

type CreateBadgeRequest struct {
	Code        string              `json:"code" validate:"required,min=2,max=64"`
	Name        string              `json:"name" validate:"required,min=2,max=120"`
	Description string              `json:"description"`
	Rarity      string              `json:"rarity" validate:"omitempty,oneof=common uncommon rare epic legendary"`
	IsHidden    bool                `json:"is_hidden"`
	Criteria    model.BadgeCriteria `json:"criteria" validate:"required"`
}

type UpdateBadgeRequest struct {
	Name        *string              `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Description *string              `json:"description,omitempty"`
	Rarity      *string              `json:"rarity,omitempty" validate:"omitempty,oneof=common uncommon rare epic legendary"`
	IsHidden    *bool                `json:"is_hidden,omitempty"`
	Criteria    *model.BadgeCriteria `json:"criteria,omitempty"`
}

type RecordHelpEventRequest struct {
	HelpedUserID *uuid.UUID `json:"helped_user_id,omitempty"`
	Kind         string     `json:"kind" validate:"required,oneof=answered_question reviewed_artifact pair_session"`
}

// BadgeResponse is the public shape. Criteria is omitted for hidden badges
// so their unlock conditions stay secret.
type BadgeResponse struct {
	BadgeID     uuid.UUID            `json:"badge_id"`
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IconURL     string               `json:"icon_url,omitempty"`
	Rarity      string               `json:"rarity"`
	IsHidden    bool                 `json:"is_hidden"`
	Criteria    *model.BadgeCriteria `json:"criteria,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type UserBadgeResponse struct {
	Badge     BadgeResponse `json:"badge"`
	AwardedAt time.Time     `json:"awarded_at"`
}

// FromModel builds the public shape. Pass revealCriteria=false for
// learner-facing listings of hidden badges.
func FromModel(m *model.BadgeModel, revealCriteria bool) BadgeResponse {
	resp := BadgeResponse{
		BadgeID:     m.BadgeID,
		Code:        m.BadgeCode,
		Name:        m.BadgeName,
		Description: m.BadgeDescription,
		IconURL:     m.BadgeIconURL,
		Rarity:      m.BadgeRarity,
		IsHidden:    m.BadgeIsHidden,
		CreatedAt:   m.CreatedAt,
	}
	if revealCriteria || !m.BadgeIsHidden {
		if crit, err := m.Criteria(); err == nil {
			resp.Criteria = &crit
		}
	}
	return resp
}
