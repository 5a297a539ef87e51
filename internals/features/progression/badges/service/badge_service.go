package service

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	notifModel "questdeck_backend/internals/features/notifications/model"
	notifService "questdeck_backend/internals/features/notifications/service"
	"questdeck_backend/internals/features/progression/badges/model"
	progressModel "questdeck_backend/internals/features/quests/progress/model"
	questModel "questdeck_backend/internals/features/quests/quest/model"
	userModel "questdeck_backend/internals/features/users/user/model"
)

// BuildSnapshot gathers the per-user aggregates the evaluator reads. Run it
// on the same handle (tx) as the write that triggered the evaluation.
func BuildSnapshot(db *gorm.DB, userID uuid.UUID) (Snapshot, error) {
	snap := Snapshot{
		CompletedQuestIDs: map[uuid.UUID]bool{},
		RemainingByTree:   map[uuid.UUID]int{},
	}

	var user userModel.UserModel
	if err := db.Select("streak_count").First(&user, "id = ?", userID).Error; err != nil {
		return snap, fmt.Errorf("load user: %w", err)
	}
	snap.StreakCount = user.StreakCount

	var completed []progressModel.UserQuestProgressModel
	if err := db.Select("progress_quest_id, progress_completed_at, progress_deadline_at").
		Where("progress_user_id = ? AND progress_status = ?", userID, progressModel.ProgressStatusCompleted).
		Find(&completed).Error; err != nil {
		return snap, fmt.Errorf("load completed progress: %w", err)
	}
	for _, p := range completed {
		snap.CompletedQuestIDs[p.ProgressQuestID] = true
		if p.ProgressCompletedAt != nil && p.ProgressCompletedAt.Before(p.ProgressDeadlineAt) {
			snap.EarlyCompletionCount++
		}
	}
	snap.CompletedQuestCount = len(completed)

	// remaining published quests per tree
	var quests []questModel.QuestModel
	if err := db.Select("quest_id, quest_tree_id").
		Where("quest_is_published = ?", true).
		Find(&quests).Error; err != nil {
		return snap, fmt.Errorf("load quests: %w", err)
	}
	for _, q := range quests {
		if _, ok := snap.RemainingByTree[q.QuestTreeID]; !ok {
			snap.RemainingByTree[q.QuestTreeID] = 0
		}
		if !snap.CompletedQuestIDs[q.QuestID] {
			snap.RemainingByTree[q.QuestTreeID]++
		}
	}

	var helpCount int64
	if err := db.Model(&model.HelpEventModel{}).
		Where("help_event_user_id = ?", userID).
		Count(&helpCount).Error; err != nil {
		return snap, fmt.Errorf("count help events: %w", err)
	}
	snap.HelpEventCount = int(helpCount)

	return snap, nil
}

// EarnedBadgeIDs returns the set of badge ids already awarded to userID.
func EarnedBadgeIDs(db *gorm.DB, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var rows []model.UserBadgeModel
	if err := db.Select("user_badge_badge_id").
		Where("user_badge_user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	earned := make(map[uuid.UUID]bool, len(rows))
	for _, r := range rows {
		earned[r.UserBadgeBadgeID] = true
	}
	return earned, nil
}

// AwardBadge creates the (user, badge) join row. Idempotent: a duplicate
// award is swallowed by ON CONFLICT DO NOTHING and reported as not-new.
func AwardBadge(db *gorm.DB, userID, badgeID uuid.UUID) (bool, error) {
	row := model.UserBadgeModel{
		UserBadgeUserID:  userID,
		UserBadgeBadgeID: badgeID,
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_badge_user_id"}, {Name: "user_badge_badge_id"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RunEvaluation evaluates every badge definition against event and awards the
// newly satisfied ones, emitting one badge_earned notification per award.
// Returns the badges actually awarded (empty when nothing new).
func RunEvaluation(db *gorm.DB, userID uuid.UUID, event Event) ([]model.BadgeModel, error) {
	var badges []model.BadgeModel
	if err := db.Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	if len(badges) == 0 {
		return nil, nil
	}

	earned, err := EarnedBadgeIDs(db, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}

	snap, err := BuildSnapshot(db, userID)
	if err != nil {
		return nil, err
	}

	ids := Evaluate(event, snap, badges, earned)
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[uuid.UUID]*model.BadgeModel, len(badges))
	for i := range badges {
		byID[badges[i].BadgeID] = &badges[i]
	}

	var awarded []model.BadgeModel
	for _, id := range ids {
		isNew, err := AwardBadge(db, userID, id)
		if err != nil {
			return awarded, fmt.Errorf("award badge %s: %w", id, err)
		}
		if !isNew {
			continue
		}
		b := byID[id]
		awarded = append(awarded, *b)
		_ = notifService.Emit(db, userID, notifModel.NotificationBadgeEarned,
			"Badge earned!",
			fmt.Sprintf("You earned the %q badge.", b.BadgeName),
			map[string]any{"badge_id": b.BadgeID, "badge_code": b.BadgeCode},
		)
	}
	return awarded, nil
}
