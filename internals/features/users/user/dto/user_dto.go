package dto

import (
	"time"

	"github.com/google/uuid"

	"questdeck_backend/internals/features/progression/rules"
)

type UserStatsResponse struct {
	UserID        uuid.UUID           `json:"user_id"`
	UserName      string              `json:"user_name"`
	TotalXP       int                 `json:"total_xp"`
	Level         rules.LevelProgress `json:"level"`
	StreakCount   int                 `json:"streak_count"`
	LongestStreak int                 `json:"longest_streak"`
	LastActiveAt  *time.Time          `json:"last_active_at,omitempty"`

	CompletedQuests int64 `json:"completed_quests"`
	BadgeCount      int64 `json:"badge_count"`

	ActiveQuests []ActiveQuest   `json:"active_quests"`
	RecentBadges []RecentBadge   `json:"recent_badges"`
	XPHistory    []XPHistoryItem `json:"xp_history"`
}

type ActiveQuest struct {
	ProgressID uuid.UUID `json:"progress_id"`
	QuestID    uuid.UUID `json:"quest_id"`
	QuestTitle string    `json:"quest_title"`
	Percent    int       `json:"percent"`
	StartedAt  time.Time `json:"started_at"`
	DeadlineAt time.Time `json:"deadline_at"`
}

type XPHistoryItem struct {
	Amount       int       `json:"amount"`
	Type         string    `json:"type"`
	BalanceAfter int       `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

type RecentBadge struct {
	BadgeID   uuid.UUID `json:"badge_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IconURL   string    `json:"icon_url,omitempty"`
	Rarity    string    `json:"rarity"`
	AwardedAt time.Time `json:"awarded_at"`
}

type UpdateProfileRequest struct {
	UserName *string `json:"user_name,omitempty" validate:"omitempty,min=3,max=50"`
}

type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	UserID       uuid.UUID `json:"user_id"`
	UserName     string    `json:"user_name"`
	TotalXP      int       `json:"total_xp"`
	CurrentLevel int       `json:"current_level"`
	StreakCount  int       `json:"streak_count"`
}
