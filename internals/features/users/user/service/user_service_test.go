package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	notifModel "questdeck_backend/internals/features/notifications/model"
	badgeModel "questdeck_backend/internals/features/progression/badges/model"
	xpModel "questdeck_backend/internals/features/progression/xp/model"
	progressModel "questdeck_backend/internals/features/quests/progress/model"
	"questdeck_backend/internals/features/users/user/model"
	"questdeck_backend/internals/testutil"
)

func seedProgressedUser(t *testing.T, db *gorm.DB) *model.UserModel {
	t.Helper()
	now := time.Now()
	user := model.UserModel{
		UserName:      "resetme",
		Email:         uuid.NewString() + "@example.com",
		Password:      "x",
		TotalXP:       850,
		CurrentLevel:  4,
		StreakCount:   12,
		LongestStreak: 20,
		LastActiveAt:  &now,
	}
	require.NoError(t, db.Create(&user).Error)

	progress := progressModel.UserQuestProgressModel{
		ProgressUserID:     user.ID,
		ProgressQuestID:    uuid.New(),
		ProgressStatus:     progressModel.ProgressStatusCompleted,
		ProgressStartedAt:  now.Add(-48 * time.Hour),
		ProgressDeadlineAt: now.Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(&progress).Error)
	require.NoError(t, db.Create(&progressModel.QuestArtifactModel{
		ArtifactProgressID: progress.ProgressID,
		ArtifactUserID:     user.ID,
		ArtifactURL:        "https://example.com/x",
	}).Error)
	require.NoError(t, db.Create(&badgeModel.UserBadgeModel{
		UserBadgeUserID:  user.ID,
		UserBadgeBadgeID: uuid.New(),
	}).Error)
	require.NoError(t, db.Create(&badgeModel.HelpEventModel{
		HelpEventUserID: user.ID,
		HelpEventKind:   "answered_question",
	}).Error)
	require.NoError(t, db.Create(&xpModel.XPTransactionModel{
		XPTransactionUserID:       user.ID,
		XPTransactionAmount:       850,
		XPTransactionType:         xpModel.XPTransactionQuestComplete,
		XPTransactionBalanceAfter: 850,
	}).Error)
	require.NoError(t, db.Create(&notifModel.NotificationModel{
		NotificationUserID:  user.ID,
		NotificationType:    notifModel.NotificationQuestCompleted,
		NotificationTitle:   "Quest completed",
		NotificationMessage: "x",
	}).Error)
	return &user
}

func TestResetProgressWipesEverything(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := seedProgressedUser(t, db)

	require.NoError(t, ResetProgress(db, user.ID))

	var fresh model.UserModel
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 0, fresh.TotalXP)
	assert.Equal(t, 1, fresh.CurrentLevel)
	assert.Equal(t, 0, fresh.StreakCount)
	assert.Equal(t, 0, fresh.LongestStreak)
	assert.Nil(t, fresh.LastActiveAt)
	// the account itself survives
	assert.Equal(t, user.Email, fresh.Email)

	counts := map[string]int64{}
	for name, q := range map[string]*gorm.DB{
		"progress":  db.Model(&progressModel.UserQuestProgressModel{}).Where("progress_user_id = ?", user.ID),
		"artifacts": db.Model(&progressModel.QuestArtifactModel{}).Where("artifact_user_id = ?", user.ID),
		"badges":    db.Model(&badgeModel.UserBadgeModel{}).Where("user_badge_user_id = ?", user.ID),
		"help":      db.Model(&badgeModel.HelpEventModel{}).Where("help_event_user_id = ?", user.ID),
		"xp":        db.Model(&xpModel.XPTransactionModel{}).Where("xp_transaction_user_id = ?", user.ID),
		"notifs":    db.Model(&notifModel.NotificationModel{}).Where("notification_user_id = ?", user.ID),
	} {
		var n int64
		require.NoError(t, q.Count(&n).Error)
		counts[name] = n
	}
	for name, n := range counts {
		assert.Zerof(t, n, "%s rows should be wiped", name)
	}
}

func TestResetProgressUnknownUser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	err := ResetProgress(db, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResetProgressLeavesOtherUsersAlone(t *testing.T) {
	db := testutil.OpenTestDB(t)
	victim := seedProgressedUser(t, db)
	bystander := seedProgressedUser(t, db)

	require.NoError(t, ResetProgress(db, victim.ID))

	var fresh model.UserModel
	require.NoError(t, db.First(&fresh, "id = ?", bystander.ID).Error)
	assert.Equal(t, 850, fresh.TotalXP)

	var n int64
	require.NoError(t, db.Model(&badgeModel.UserBadgeModel{}).
		Where("user_badge_user_id = ?", bystander.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
