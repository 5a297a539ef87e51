package service

import (
	"log"
	"time"

	"github.com/google/uuid"

	"questdeck_backend/internals/features/progression/badges/model"
)

type EventKind string

const (
	EventQuestCompleted EventKind = "quest_completed"
	EventHelpRecorded   EventKind = "help_recorded"
)

// Event is the trigger being evaluated. Quest fields are only set for
// EventQuestCompleted.
type Event struct {
	Kind             EventKind
	QuestID          uuid.UUID
	TreeID           uuid.UUID
	QuestIsCapstone  bool
	AcceptedAt       time.Time
	CompletedAt      time.Time
	EstimatedMinutes int
}

// Snapshot carries the per-user aggregates the criteria read. The caller
// gathers it (inside its transaction) so evaluation stays side-effect free.
type Snapshot struct {
	StreakCount          int
	CompletedQuestCount  int
	CompletedQuestIDs    map[uuid.UUID]bool
	EarlyCompletionCount int
	HelpEventCount       int
	// published quests per tree the user has NOT completed yet; every tree
	// with at least one published quest has an entry
	RemainingByTree map[uuid.UUID]int
}

// Evaluate returns the ids of badges the user newly qualifies for. Badges in
// earned are never returned regardless of criteria. Unknown criteria types
// are treated as never satisfied.
func Evaluate(event Event, snap Snapshot, badges []model.BadgeModel, earned map[uuid.UUID]bool) []uuid.UUID {
	var award []uuid.UUID
	for i := range badges {
		b := &badges[i]
		if earned[b.BadgeID] {
			continue
		}
		crit, err := b.Criteria()
		if err != nil {
			log.Printf("[WARN] badge %s has malformed criteria: %v", b.BadgeCode, err)
			continue
		}
		if satisfied(event, snap, crit) {
			award = append(award, b.BadgeID)
		}
	}
	return award
}

func satisfied(event Event, snap Snapshot, c model.BadgeCriteria) bool {
	target := c.Target
	if target <= 0 {
		target = 1
	}

	switch c.Type {
	case model.CriteriaQuestComplete:
		count := snap.CompletedQuestCount
		if len(c.QuestIDs) > 0 {
			count = 0
			for _, id := range c.QuestIDs {
				if snap.CompletedQuestIDs[id] {
					count++
				}
			}
		}
		return count >= target

	case model.CriteriaTreeComplete:
		if len(c.TreeIDs) > 0 {
			for _, id := range c.TreeIDs {
				if remaining, ok := snap.RemainingByTree[id]; ok && remaining == 0 {
					return true
				}
			}
			return false
		}
		for _, remaining := range snap.RemainingByTree {
			if remaining == 0 {
				return true
			}
		}
		return false

	case model.CriteriaCapstoneComplete:
		if event.Kind != EventQuestCompleted || !event.QuestIsCapstone {
			return false
		}
		if len(c.TreeIDs) == 0 {
			return true
		}
		for _, id := range c.TreeIDs {
			if id == event.TreeID {
				return true
			}
		}
		return false

	case model.CriteriaStreak:
		return snap.StreakCount >= target

	case model.CriteriaTimeComplete:
		if event.Kind != EventQuestCompleted || c.Conditions == nil || c.Conditions.Hour == nil {
			return false
		}
		hour := event.CompletedAt.Hour()
		return hour >= c.Conditions.Hour.Gte && hour <= c.Conditions.Hour.Lte

	case model.CriteriaSpeedComplete:
		if event.Kind != EventQuestCompleted || event.EstimatedMinutes <= 0 {
			return false
		}
		elapsed := event.CompletedAt.Sub(event.AcceptedAt)
		allowed := time.Duration(event.EstimatedMinutes) * time.Minute * time.Duration(target) / 100
		return elapsed <= allowed

	case model.CriteriaEarlyComplete:
		return snap.EarlyCompletionCount >= target

	case model.CriteriaHelpOthers:
		return snap.HelpEventCount >= target

	default:
		// unknown badge types must never block quest completion
		log.Printf("[WARN] unknown badge criteria type %q, treating as never satisfied", c.Type)
		return false
	}
}
