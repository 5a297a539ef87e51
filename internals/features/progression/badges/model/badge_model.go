package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CriteriaType string

const (
	CriteriaQuestComplete    CriteriaType = "quest_complete"
	CriteriaTreeComplete     CriteriaType = "tree_complete"
	CriteriaCapstoneComplete CriteriaType = "capstone_complete"
	CriteriaStreak           CriteriaType = "streak"
	CriteriaTimeComplete     CriteriaType = "time_complete"
	CriteriaSpeedComplete    CriteriaType = "speed_complete"
	CriteriaEarlyComplete    CriteriaType = "early_complete"
	CriteriaHelpOthers       CriteriaType = "help_others"
)

// HourWindow is the conditions payload of time_complete criteria:
// the completion hour-of-day must fall in [Gte, Lte].
type HourWindow struct {
	Gte int `json:"gte"`
	Lte int `json:"lte"`
}

type CriteriaConditions struct {
	Hour *HourWindow `json:"hour,omitempty"`
}

// BadgeCriteria is the tagged union stored in badges_criteria. Type is the
// tag; the evaluator switches on it exhaustively.
type BadgeCriteria struct {
	Type       CriteriaType        `json:"type"`
	Target     int                 `json:"target,omitempty"`
	QuestIDs   []uuid.UUID         `json:"quest_ids,omitempty"`
	TreeIDs    []uuid.UUID         `json:"tree_ids,omitempty"`
	Conditions *CriteriaConditions `json:"conditions,omitempty"`
}

type BadgeModel struct {
	BadgeID          uuid.UUID      `gorm:"column:badge_id;type:uuid;primaryKey" json:"badge_id"`
	BadgeCode        string         `gorm:"column:badge_code;size:64;uniqueIndex;not null" json:"badge_code"`
	BadgeName        string         `gorm:"column:badge_name;size:120;not null" json:"badge_name"`
	BadgeDescription string         `gorm:"column:badge_description" json:"badge_description"`
	BadgeIconURL     string         `gorm:"column:badge_icon_url" json:"badge_icon_url"`
	BadgeRarity      string         `gorm:"column:badge_rarity;type:varchar(16);not null;default:'common'" json:"badge_rarity"`
	BadgeIsHidden    bool           `gorm:"column:badge_is_hidden;not null;default:false" json:"badge_is_hidden"`
	BadgeCriteria    datatypes.JSON `gorm:"column:badge_criteria;type:jsonb;not null" json:"badge_criteria"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BadgeModel) TableName() string {
	return "badges"
}

func (m *BadgeModel) BeforeCreate(tx *gorm.DB) error {
	if m.BadgeID == uuid.Nil {
		m.BadgeID = uuid.New()
	}
	return nil
}

// Criteria decodes badge_criteria.
func (m *BadgeModel) Criteria() (BadgeCriteria, error) {
	var c BadgeCriteria
	if len(m.BadgeCriteria) == 0 {
		return c, nil
	}
	err := json.Unmarshal(m.BadgeCriteria, &c)
	return c, err
}

// MarshalCriteria encodes a criteria descriptor for storage.
func MarshalCriteria(c BadgeCriteria) (datatypes.JSON, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
