package seeds

import (
	"log"

	"gorm.io/gorm"

	"questdeck_backend/internals/features/progression/badges/model"
)

type badgeSeed struct {
	Code        string
	Name        string
	Description string
	Rarity      string
	IsHidden    bool
	Criteria    model.BadgeCriteria
}

var badgeSeeds = []badgeSeed{
	{
		Code:        "first-steps",
		Name:        "First Steps",
		Description: "Complete your first quest.",
		Rarity:      "common",
		Criteria:    model.BadgeCriteria{Type: model.CriteriaQuestComplete, Target: 1},
	},
	{
		Code:        "quest-veteran",
		Name:        "Quest Veteran",
		Description: "Complete 25 quests.",
		Rarity:      "rare",
		Criteria:    model.BadgeCriteria{Type: model.CriteriaQuestComplete, Target: 25},
	},
	{
		Code:        "on-a-roll",
		Name:        "On a Roll",
		Description: "Keep a 7 day completion streak.",
		Rarity:      "uncommon",
		Criteria:    model.BadgeCriteria{Type: model.CriteriaStreak, Target: 7},
	},
	{
		Code:        "unstoppable",
		Name:        "Unstoppable",
		Description: "Keep a 30 day completion streak.",
		Rarity:      "epic",
		Criteria:    model.BadgeCriteria{Type: model.CriteriaStreak, Target: 30},
	},
	{
		Code:        "ahead-of-schedule",
		Name:        "Ahead of Schedule",
		Description: "Finish 5 quests before their deadline.",
		Rarity:      "uncommon",
		Criteria:    model.BadgeCriteria{Type: model.CriteriaEarlyComplete, Target: 5},
	},
	{
		Code:        "night-owl",
		Name:        "Night Owl",
		Description: "Finish a quest between midnight and 4 AM.",
		Rarity:      "rare",
		IsHidden:    true,
		Criteria: model.BadgeCriteria{
			Type:       model.CriteriaTimeComplete,
			Conditions: &model.CriteriaConditions{Hour: &model.HourWindow{Gte: 0, Lte: 4}},
		},
	},
	{
		Code:        "helping-hand",
		Name:        "Helping Hand",
		Description: "Help other learners 10 times.",
		Rarity:      "uncommon",
		Criteria:    model.BadgeCriteria{Type: model.CriteriaHelpOthers, Target: 10},
	},
}

// SeedBadges upserts the core badge set keyed by badge_code.
func SeedBadges(db *gorm.DB) error {
	for _, s := range badgeSeeds {
		criteria, err := model.MarshalCriteria(s.Criteria)
		if err != nil {
			return err
		}
		badge := model.BadgeModel{
			BadgeCode:        s.Code,
			BadgeName:        s.Name,
			BadgeDescription: s.Description,
			BadgeRarity:      s.Rarity,
			BadgeIsHidden:    s.IsHidden,
			BadgeCriteria:    criteria,
		}
		if err := db.Where("badge_code = ?", s.Code).
			FirstOrCreate(&badge).Error; err != nil {
			return err
		}
	}
	log.Printf("[SEED] %d badges ensured", len(badgeSeeds))
	return nil
}
