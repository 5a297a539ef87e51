package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"questdeck_backend/internals/features/progression/badges/model"
	userModel "questdeck_backend/internals/features/users/user/model"
	"questdeck_backend/internals/testutil"
)

func createUser(t *testing.T, db *gorm.DB) *userModel.UserModel {
	t.Helper()
	user := userModel.UserModel{
		UserName: "badgetester",
		Email:    uuid.NewString() + "@example.com",
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createBadge(t *testing.T, db *gorm.DB, code string, crit model.BadgeCriteria) *model.BadgeModel {
	t.Helper()
	encoded, err := model.MarshalCriteria(crit)
	require.NoError(t, err)
	badge := model.BadgeModel{
		BadgeCode:     code,
		BadgeName:     code,
		BadgeCriteria: encoded,
	}
	require.NoError(t, db.Create(&badge).Error)
	return &badge
}

func TestAwardBadgeIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := createUser(t, db)
	badge := createBadge(t, db, "dupe-check", model.BadgeCriteria{Type: model.CriteriaStreak, Target: 1})

	isNew, err := AwardBadge(db, user.ID, badge.BadgeID)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = AwardBadge(db, user.ID, badge.BadgeID)
	require.NoError(t, err)
	assert.False(t, isNew)

	var n int64
	require.NoError(t, db.Model(&model.UserBadgeModel{}).
		Where("user_badge_user_id = ?", user.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRunEvaluationAwardsAndNotifies(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := createUser(t, db)
	user.StreakCount = 7
	require.NoError(t, db.Save(user).Error)

	earned := createBadge(t, db, "streak-seven", model.BadgeCriteria{Type: model.CriteriaStreak, Target: 7})
	_ = createBadge(t, db, "streak-thirty", model.BadgeCriteria{Type: model.CriteriaStreak, Target: 30})

	awarded, err := RunEvaluation(db, user.ID, Event{Kind: EventQuestCompleted})
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, earned.BadgeID, awarded[0].BadgeID)

	// a second run changes nothing
	awarded, err = RunEvaluation(db, user.ID, Event{Kind: EventQuestCompleted})
	require.NoError(t, err)
	assert.Empty(t, awarded)
}
