package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"questdeck_backend/internals/features/progression/badges/model"
)

func makeBadge(t *testing.T, code string, crit model.BadgeCriteria) model.BadgeModel {
	t.Helper()
	encoded, err := model.MarshalCriteria(crit)
	require.NoError(t, err)
	return model.BadgeModel{
		BadgeID:       uuid.New(),
		BadgeCode:     code,
		BadgeName:     code,
		BadgeCriteria: encoded,
	}
}

func questEvent() Event {
	return Event{
		Kind:        EventQuestCompleted,
		QuestID:     uuid.New(),
		TreeID:      uuid.New(),
		CompletedAt: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		AcceptedAt:  time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC),
	}
}

func TestEvaluateSkipsAlreadyEarned(t *testing.T) {
	badge := makeBadge(t, "first-quest", model.BadgeCriteria{Type: model.CriteriaQuestComplete, Target: 1})
	snap := Snapshot{CompletedQuestCount: 5}

	got := Evaluate(questEvent(), snap, []model.BadgeModel{badge}, map[uuid.UUID]bool{badge.BadgeID: true})
	assert.Empty(t, got)

	got = Evaluate(questEvent(), snap, []model.BadgeModel{badge}, map[uuid.UUID]bool{})
	assert.Equal(t, []uuid.UUID{badge.BadgeID}, got)
}

func TestQuestCompleteCriteria(t *testing.T) {
	badge := makeBadge(t, "ten-quests", model.BadgeCriteria{Type: model.CriteriaQuestComplete, Target: 10})

	got := Evaluate(questEvent(), Snapshot{CompletedQuestCount: 9}, []model.BadgeModel{badge}, nil)
	assert.Empty(t, got)
	got = Evaluate(questEvent(), Snapshot{CompletedQuestCount: 10}, []model.BadgeModel{badge}, nil)
	assert.Len(t, got, 1)
}

func TestQuestCompleteSpecificQuests(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	badge := makeBadge(t, "the-pair", model.BadgeCriteria{
		Type: model.CriteriaQuestComplete, Target: 2, QuestIDs: []uuid.UUID{q1, q2},
	})

	snap := Snapshot{CompletedQuestIDs: map[uuid.UUID]bool{q1: true}}
	assert.Empty(t, Evaluate(questEvent(), snap, []model.BadgeModel{badge}, nil))

	snap.CompletedQuestIDs[q2] = true
	assert.Len(t, Evaluate(questEvent(), snap, []model.BadgeModel{badge}, nil), 1)
}

func TestTreeCompleteCriteria(t *testing.T) {
	treeID := uuid.New()
	badge := makeBadge(t, "tree-done", model.BadgeCriteria{
		Type: model.CriteriaTreeComplete, TreeIDs: []uuid.UUID{treeID},
	})

	snap := Snapshot{RemainingByTree: map[uuid.UUID]int{treeID: 2}}
	assert.Empty(t, Evaluate(questEvent(), snap, []model.BadgeModel{badge}, nil))

	snap.RemainingByTree[treeID] = 0
	assert.Len(t, Evaluate(questEvent(), snap, []model.BadgeModel{badge}, nil), 1)
}

func TestCapstoneCriteria(t *testing.T) {
	badge := makeBadge(t, "capstone", model.BadgeCriteria{Type: model.CriteriaCapstoneComplete})

	ev := questEvent()
	assert.Empty(t, Evaluate(ev, Snapshot{}, []model.BadgeModel{badge}, nil))

	ev.QuestIsCapstone = true
	assert.Len(t, Evaluate(ev, Snapshot{}, []model.BadgeModel{badge}, nil), 1)

	// scoped to a different tree
	scoped := makeBadge(t, "capstone-scoped", model.BadgeCriteria{
		Type: model.CriteriaCapstoneComplete, TreeIDs: []uuid.UUID{uuid.New()},
	})
	assert.Empty(t, Evaluate(ev, Snapshot{}, []model.BadgeModel{scoped}, nil))
}

func TestStreakCriteria(t *testing.T) {
	badge := makeBadge(t, "week-streak", model.BadgeCriteria{Type: model.CriteriaStreak, Target: 7})

	assert.Empty(t, Evaluate(questEvent(), Snapshot{StreakCount: 6}, []model.BadgeModel{badge}, nil))
	assert.Len(t, Evaluate(questEvent(), Snapshot{StreakCount: 7}, []model.BadgeModel{badge}, nil), 1)
}

func TestTimeCompleteCriteria(t *testing.T) {
	badge := makeBadge(t, "night-owl", model.BadgeCriteria{
		Type:       model.CriteriaTimeComplete,
		Conditions: &model.CriteriaConditions{Hour: &model.HourWindow{Gte: 0, Lte: 4}},
	})

	ev := questEvent()
	ev.CompletedAt = time.Date(2026, 3, 10, 3, 30, 0, 0, time.UTC)
	assert.Len(t, Evaluate(ev, Snapshot{}, []model.BadgeModel{badge}, nil), 1)

	ev.CompletedAt = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	assert.Empty(t, Evaluate(ev, Snapshot{}, []model.BadgeModel{badge}, nil))
}

func TestSpeedCompleteCriteria(t *testing.T) {
	// target 50 means within half the estimated time
	badge := makeBadge(t, "speedrun", model.BadgeCriteria{Type: model.CriteriaSpeedComplete, Target: 50})

	ev := questEvent()
	ev.EstimatedMinutes = 120
	ev.AcceptedAt = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	ev.CompletedAt = ev.AcceptedAt.Add(45 * time.Minute)
	assert.Len(t, Evaluate(ev, Snapshot{}, []model.BadgeModel{badge}, nil), 1)

	ev.CompletedAt = ev.AcceptedAt.Add(90 * time.Minute)
	assert.Empty(t, Evaluate(ev, Snapshot{}, []model.BadgeModel{badge}, nil))

	// no estimate means the criteria cannot fire
	ev.EstimatedMinutes = 0
	ev.CompletedAt = ev.AcceptedAt.Add(time.Minute)
	assert.Empty(t, Evaluate(ev, Snapshot{}, []model.BadgeModel{badge}, nil))
}

func TestEarlyAndHelpCriteria(t *testing.T) {
	early := makeBadge(t, "early-five", model.BadgeCriteria{Type: model.CriteriaEarlyComplete, Target: 5})
	help := makeBadge(t, "helper-ten", model.BadgeCriteria{Type: model.CriteriaHelpOthers, Target: 10})
	badges := []model.BadgeModel{early, help}

	got := Evaluate(Event{Kind: EventHelpRecorded}, Snapshot{EarlyCompletionCount: 5, HelpEventCount: 9}, badges, nil)
	assert.Equal(t, []uuid.UUID{early.BadgeID}, got)

	got = Evaluate(Event{Kind: EventHelpRecorded}, Snapshot{EarlyCompletionCount: 4, HelpEventCount: 10}, badges, nil)
	assert.Equal(t, []uuid.UUID{help.BadgeID}, got)
}

func TestUnknownCriteriaNeverSatisfied(t *testing.T) {
	badge := makeBadge(t, "future-thing", model.BadgeCriteria{Type: "subscription_complete", Target: 1})

	got := Evaluate(questEvent(), Snapshot{CompletedQuestCount: 100, StreakCount: 100}, []model.BadgeModel{badge}, nil)
	assert.Empty(t, got)
}

func TestMalformedCriteriaSkipped(t *testing.T) {
	badge := model.BadgeModel{
		BadgeID:       uuid.New(),
		BadgeCode:     "broken",
		BadgeCriteria: datatypes.JSON([]byte(`{not json`)),
	}
	ok := makeBadge(t, "fine", model.BadgeCriteria{Type: model.CriteriaQuestComplete, Target: 1})

	got := Evaluate(questEvent(), Snapshot{CompletedQuestCount: 1}, []model.BadgeModel{badge, ok}, nil)
	assert.Equal(t, []uuid.UUID{ok.BadgeID}, got)
}
