package service

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	notifModel "questdeck_backend/internals/features/notifications/model"
	badgeModel "questdeck_backend/internals/features/progression/badges/model"
	"questdeck_backend/internals/features/progression/rules"
	xpModel "questdeck_backend/internals/features/progression/xp/model"
	"questdeck_backend/internals/features/quests/progress/model"
	questModel "questdeck_backend/internals/features/quests/quest/model"
	treeModel "questdeck_backend/internals/features/quests/tree/model"
	userModel "questdeck_backend/internals/features/users/user/model"
	"questdeck_backend/internals/testutil"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestUser(t *testing.T, db *gorm.DB) *userModel.UserModel {
	t.Helper()
	user := userModel.UserModel{
		UserName: "testlearner",
		Email:    uuid.NewString() + "@example.com",
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func newTestTree(t *testing.T, db *gorm.DB) *treeModel.QuestTreeModel {
	t.Helper()
	tree := treeModel.QuestTreeModel{
		QuestTreeName:        "Test Tree",
		QuestTreeIsPublished: true,
	}
	require.NoError(t, db.Create(&tree).Error)
	return &tree
}

type questOpts struct {
	xp        int
	diff      rules.Difficulty
	days      int
	tasks     []string
	prereqs   []uuid.UUID
	badgeID   *uuid.UUID
	published bool
}

func newTestQuest(t *testing.T, db *gorm.DB, treeID uuid.UUID, o questOpts) *questModel.QuestModel {
	t.Helper()
	if o.xp == 0 {
		o.xp = 100
	}
	if o.diff == "" {
		o.diff = rules.DifficultyMedium
	}
	if o.days == 0 {
		o.days = 7
	}
	if o.tasks == nil {
		o.tasks = []string{"t1", "t2"}
	}

	tasks := make([]questModel.QuestTask, 0, len(o.tasks))
	for i, id := range o.tasks {
		tasks = append(tasks, questModel.QuestTask{ID: id, Title: id, Order: i + 1})
	}
	encodedTasks, err := questModel.MarshalTasks(tasks)
	require.NoError(t, err)
	encodedPrereqs, err := questModel.MarshalPrerequisites(o.prereqs)
	require.NoError(t, err)

	quest := questModel.QuestModel{
		QuestTreeID:          treeID,
		QuestTitle:           "Quest " + uuid.NewString()[:8],
		QuestXPReward:        o.xp,
		QuestDifficulty:      o.diff,
		QuestDeadlineDays:    o.days,
		QuestIsPublished:     o.published,
		QuestBadgeID:         o.badgeID,
		QuestTasks:           encodedTasks,
		QuestPrerequisiteIDs: encodedPrereqs,
	}
	require.NoError(t, db.Create(&quest).Error)
	return &quest
}

func requireFiberStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok, "expected *fiber.Error, got %T: %v", err, err)
	assert.Equal(t, status, fe.Code)
}

func TestAcceptCreatesProgress(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	sm.Now = fixedClock(now)

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})

	res, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressStatusInProgress, res.Status)
	assert.Equal(t, 1, res.AttemptCount)
	assert.Equal(t, 2, res.TotalTasks)
	assert.Empty(t, res.TasksCompleted)
	assert.Equal(t, now.Add(7*24*time.Hour), res.DeadlineAt)

	var notif notifModel.NotificationModel
	require.NoError(t, db.First(&notif, "notification_user_id = ?", user.ID).Error)
	assert.Equal(t, notifModel.NotificationQuestAccepted, notif.NotificationType)
}

func TestAcceptRejectsUnpublishedQuest(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: false})

	_, err := sm.Accept(db, user.ID, quest.QuestID)
	requireFiberStatus(t, err, fiber.StatusNotFound)
}

func TestAcceptRejectsDuplicate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})

	_, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)

	_, err = sm.Accept(db, user.ID, quest.QuestID)
	requireFiberStatus(t, err, fiber.StatusConflict)
}

func TestAcceptEnforcesActiveCap(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	for i := 0; i < MaxActiveQuests; i++ {
		quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})
		_, err := sm.Accept(db, user.ID, quest.QuestID)
		require.NoError(t, err)
	}

	extra := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})
	_, err := sm.Accept(db, user.ID, extra.QuestID)
	requireFiberStatus(t, err, fiber.StatusConflict)
}

func TestAcceptRequiresPrerequisites(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	first := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true, tasks: []string{"only"}})
	gated := newTestQuest(t, db, tree.QuestTreeID, questOpts{
		published: true,
		prereqs:   []uuid.UUID{first.QuestID},
	})

	_, err := sm.Accept(db, user.ID, gated.QuestID)
	requireFiberStatus(t, err, fiber.StatusConflict)

	// complete the prerequisite, then the gated quest opens up
	res, err := sm.Accept(db, user.ID, first.QuestID)
	require.NoError(t, err)
	_, err = sm.CompleteTask(db, user.ID, res.ProgressID, "only")
	require.NoError(t, err)
	_, err = sm.Submit(db, user.ID, res.ProgressID, "", "")
	require.NoError(t, err)

	_, err = sm.Accept(db, user.ID, gated.QuestID)
	require.NoError(t, err)
}

func TestAcceptRevivesExpiredAttempt(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sm.Now = fixedClock(start)

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true, days: 3})

	res, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)
	_, err = sm.CompleteTask(db, user.ID, res.ProgressID, "t1")
	require.NoError(t, err)

	// past the deadline, re-accept lazily expires and revives the same row
	sm.Now = fixedClock(start.Add(4 * 24 * time.Hour))
	revived, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)
	assert.Equal(t, res.ProgressID, revived.ProgressID)
	assert.Equal(t, 2, revived.AttemptCount)
	assert.Empty(t, revived.TasksCompleted)

	var row model.UserQuestProgressModel
	require.NoError(t, db.First(&row, "progress_id = ?", res.ProgressID).Error)
	assert.Equal(t, model.ProgressStatusInProgress, row.ProgressStatus)
	assert.Equal(t, 0, row.ProgressPercent)
}

func TestCompleteTaskProgression(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})

	res, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)

	one, err := sm.CompleteTask(db, user.ID, res.ProgressID, "t1")
	require.NoError(t, err)
	assert.Equal(t, 50, one.ProgressPercent)
	assert.False(t, one.IsQuestComplete)

	// the same task again is rejected, percent unchanged
	_, err = sm.CompleteTask(db, user.ID, res.ProgressID, "t1")
	requireFiberStatus(t, err, fiber.StatusConflict)

	// a task the quest does not have
	_, err = sm.CompleteTask(db, user.ID, res.ProgressID, "nope")
	requireFiberStatus(t, err, fiber.StatusNotFound)

	two, err := sm.CompleteTask(db, user.ID, res.ProgressID, "t2")
	require.NoError(t, err)
	assert.Equal(t, 100, two.ProgressPercent)
	assert.True(t, two.IsQuestComplete)
}

func TestCompleteTaskOwnershipEnforced(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	owner := newTestUser(t, db)
	other := newTestUser(t, db)
	tree := newTestTree(t, db)
	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})

	res, err := sm.Accept(db, owner.ID, quest.QuestID)
	require.NoError(t, err)

	_, err = sm.CompleteTask(db, other.ID, res.ProgressID, "t1")
	requireFiberStatus(t, err, fiber.StatusForbidden)
}

func TestSubmitRequiresAllTasks(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})

	res, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)
	_, err = sm.CompleteTask(db, user.ID, res.ProgressID, "t1")
	require.NoError(t, err)

	_, err = sm.Submit(db, user.ID, res.ProgressID, "", "")
	requireFiberStatus(t, err, fiber.StatusConflict)

	// nothing mutated: no XP, no ledger entry, still in progress
	var fresh userModel.UserModel
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 0, fresh.TotalXP)
	assert.Equal(t, 0, fresh.StreakCount)

	var ledger int64
	require.NoError(t, db.Model(&xpModel.XPTransactionModel{}).Count(&ledger).Error)
	assert.Zero(t, ledger)

	var row model.UserQuestProgressModel
	require.NoError(t, db.First(&row, "progress_id = ?", res.ProgressID).Error)
	assert.Equal(t, model.ProgressStatusInProgress, row.ProgressStatus)
}

func TestSubmitAwardsXPAndLevels(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	sm.Now = fixedClock(now)

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})

	res, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)
	_, err = sm.CompleteTask(db, user.ID, res.ProgressID, "t1")
	require.NoError(t, err)
	_, err = sm.CompleteTask(db, user.ID, res.ProgressID, "t2")
	require.NoError(t, err)

	out, err := sm.Submit(db, user.ID, res.ProgressID, "https://example.com/repo", "done")
	require.NoError(t, err)

	// 100 base + 10 early + 15 first try (medium factor 1.0, no streak yet)
	assert.Equal(t, 125, out.XPEarned)
	assert.Equal(t, 100, out.XPBreakdown.Base)
	assert.Equal(t, 10, out.XPBreakdown.EarlyBonus)
	assert.Equal(t, 15, out.XPBreakdown.FirstTryBonus)
	assert.Equal(t, 0, out.XPBreakdown.StreakBonus)
	assert.Equal(t, 125, out.NewTotalXP)
	assert.Equal(t, 2, out.NewLevel)
	assert.True(t, out.LeveledUp)

	var fresh userModel.UserModel
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 125, fresh.TotalXP)
	assert.Equal(t, 2, fresh.CurrentLevel)
	assert.Equal(t, 1, fresh.StreakCount)
	assert.Equal(t, 1, fresh.LongestStreak)
	require.NotNil(t, fresh.LastActiveAt)

	var entry xpModel.XPTransactionModel
	require.NoError(t, db.First(&entry, "xp_transaction_user_id = ?", user.ID).Error)
	assert.Equal(t, 125, entry.XPTransactionAmount)
	assert.Equal(t, 0, entry.XPTransactionBalanceBefore)
	assert.Equal(t, 125, entry.XPTransactionBalanceAfter)
	assert.Equal(t, xpModel.XPTransactionQuestComplete, entry.XPTransactionType)

	var row model.UserQuestProgressModel
	require.NoError(t, db.First(&row, "progress_id = ?", res.ProgressID).Error)
	assert.Equal(t, model.ProgressStatusCompleted, row.ProgressStatus)
	assert.Equal(t, 125, row.ProgressXPEarned)
	require.NotNil(t, row.ProgressCompletedAt)

	var artifact model.QuestArtifactModel
	require.NoError(t, db.First(&artifact, "artifact_progress_id = ?", res.ProgressID).Error)
	assert.Equal(t, "https://example.com/repo", artifact.ArtifactURL)

	// completed quests cannot be submitted twice
	_, err = sm.Submit(db, user.ID, res.ProgressID, "", "")
	requireFiberStatus(t, err, fiber.StatusConflict)
}

func TestSubmitQuestBadgeIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	user := newTestUser(t, db)
	tree := newTestTree(t, db)

	criteria, err := badgeModel.MarshalCriteria(badgeModel.BadgeCriteria{
		Type: badgeModel.CriteriaQuestComplete, Target: 99,
	})
	require.NoError(t, err)
	badge := badgeModel.BadgeModel{
		BadgeCode:     "completion-badge",
		BadgeName:     "Completion Badge",
		BadgeRarity:   "common",
		BadgeCriteria: criteria,
	}
	require.NoError(t, db.Create(&badge).Error)

	// the user already holds the badge, a second award stays silent
	require.NoError(t, db.Create(&badgeModel.UserBadgeModel{
		UserBadgeUserID:  user.ID,
		UserBadgeBadgeID: badge.BadgeID,
	}).Error)

	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{
		published: true,
		tasks:     []string{"only"},
		badgeID:   &badge.BadgeID,
	})
	res, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)
	_, err = sm.CompleteTask(db, user.ID, res.ProgressID, "only")
	require.NoError(t, err)

	out, err := sm.Submit(db, user.ID, res.ProgressID, "", "")
	require.NoError(t, err)
	assert.Nil(t, out.BadgeAwarded)

	var awards int64
	require.NoError(t, db.Model(&badgeModel.UserBadgeModel{}).
		Where("user_badge_user_id = ? AND user_badge_badge_id = ?", user.ID, badge.BadgeID).
		Count(&awards).Error)
	assert.Equal(t, int64(1), awards)
}

func TestAbandonFreesActiveSlot(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()

	user := newTestUser(t, db)
	tree := newTestTree(t, db)

	var firstProgress uuid.UUID
	for i := 0; i < MaxActiveQuests; i++ {
		quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})
		res, err := sm.Accept(db, user.ID, quest.QuestID)
		require.NoError(t, err)
		if i == 0 {
			firstProgress = res.ProgressID
		}
	}

	require.NoError(t, sm.Abandon(db, user.ID, firstProgress))

	quest := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true})
	_, err := sm.Accept(db, user.ID, quest.QuestID)
	require.NoError(t, err)
}

func TestSweepExpiredMarksOverdueRows(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sm := NewStateMachine()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sm.Now = fixedClock(start)

	user := newTestUser(t, db)
	tree := newTestTree(t, db)
	overdue := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true, days: 2})
	fine := newTestQuest(t, db, tree.QuestTreeID, questOpts{published: true, days: 30})

	resOverdue, err := sm.Accept(db, user.ID, overdue.QuestID)
	require.NoError(t, err)
	resFine, err := sm.Accept(db, user.ID, fine.QuestID)
	require.NoError(t, err)

	sm.Now = fixedClock(start.Add(3 * 24 * time.Hour))
	n, err := sm.SweepExpired(db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var row model.UserQuestProgressModel
	require.NoError(t, db.First(&row, "progress_id = ?", resOverdue.ProgressID).Error)
	assert.Equal(t, model.ProgressStatusExpired, row.ProgressStatus)

	var fineRow model.UserQuestProgressModel
	require.NoError(t, db.First(&fineRow, "progress_id = ?", resFine.ProgressID).Error)
	assert.Equal(t, model.ProgressStatusInProgress, fineRow.ProgressStatus)
}
