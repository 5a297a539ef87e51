package service

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	notifModel "questdeck_backend/internals/features/notifications/model"
	notifService "questdeck_backend/internals/features/notifications/service"
	badgeModel "questdeck_backend/internals/features/progression/badges/model"
	badgeService "questdeck_backend/internals/features/progression/badges/service"
	"questdeck_backend/internals/features/progression/rules"
	xpModel "questdeck_backend/internals/features/progression/xp/model"
	xpService "questdeck_backend/internals/features/progression/xp/service"
	"questdeck_backend/internals/features/quests/progress/model"
	questModel "questdeck_backend/internals/features/quests/quest/model"
	userModel "questdeck_backend/internals/features/users/user/model"
)

// MaxActiveQuests caps concurrent IN_PROGRESS rows per user. The cap exists
// to force focus, not to protect the database.
const MaxActiveQuests = 3

// StateMachine drives the per-(user, quest) progress lifecycle:
// none -> in_progress -> completed | expired | abandoned, with re-acceptance
// from expired/abandoned bumping the attempt counter.
type StateMachine struct {
	Curve  rules.LevelCurve
	Policy rules.XPPolicy
	Now    func() time.Time
}

func NewStateMachine() *StateMachine {
	return &StateMachine{
		Curve:  rules.DefaultCurve(),
		Policy: rules.DefaultXPPolicy(),
		Now:    time.Now,
	}
}

type AcceptResult struct {
	ProgressID     uuid.UUID            `json:"progress_id"`
	Status         model.ProgressStatus `json:"status"`
	DeadlineAt     time.Time            `json:"deadline_at"`
	AttemptCount   int                  `json:"attempt_count"`
	TasksCompleted []string             `json:"tasks_completed"`
	TotalTasks     int                  `json:"total_tasks"`
}

type TaskResult struct {
	TasksCompleted  []string `json:"tasks_completed"`
	ProgressPercent int      `json:"progress_percent"`
	IsQuestComplete bool     `json:"is_quest_complete"`
}

type SubmitResult struct {
	XPEarned     int                    `json:"xp_earned"`
	XPBreakdown  rules.XPBreakdown      `json:"xp_breakdown"`
	NewTotalXP   int                    `json:"new_total_xp"`
	NewLevel     int                    `json:"new_level"`
	LeveledUp    bool                   `json:"leveled_up"`
	BadgeAwarded *badgeModel.BadgeModel `json:"badge_awarded,omitempty"`
}

// Accept creates (or revives) the progress row for (userID, questID).
// Preconditions are checked before any write; a violation aborts with no
// state change.
func (sm *StateMachine) Accept(db *gorm.DB, userID, questID uuid.UUID) (*AcceptResult, error) {
	now := sm.Now()
	var result *AcceptResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var quest questModel.QuestModel
		if err := tx.First(&quest, "quest_id = ? AND quest_is_published = ?", questID, true).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Quest not found")
			}
			return err
		}
		tasks, err := quest.Tasks()
		if err != nil {
			return fmt.Errorf("decode quest tasks: %w", err)
		}

		// existing row for this pair (one row max, re-acceptance reuses it)
		var existing model.UserQuestProgressModel
		hasExisting := true
		if err := tx.First(&existing,
			"progress_user_id = ? AND progress_quest_id = ?", userID, questID).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			hasExisting = false
		}

		if hasExisting && existing.ProgressStatus == model.ProgressStatusInProgress {
			// lazy expiry: an overdue in_progress row counts as expired
			if now.After(existing.ProgressDeadlineAt) {
				if err := sm.expire(tx, &existing, now); err != nil {
					return err
				}
				existing.ProgressStatus = model.ProgressStatusExpired
			} else {
				return fiber.NewError(fiber.StatusConflict, "You already accepted this quest.")
			}
		}
		if hasExisting && existing.ProgressStatus == model.ProgressStatusCompleted {
			return fiber.NewError(fiber.StatusConflict, "You already completed this quest.")
		}

		var active int64
		if err := tx.Model(&model.UserQuestProgressModel{}).
			Where("progress_user_id = ? AND progress_status = ?", userID, model.ProgressStatusInProgress).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= MaxActiveQuests {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("You already have %d active quests. Complete or abandon one first.", MaxActiveQuests))
		}

		prereqs, err := quest.PrerequisiteIDs()
		if err != nil {
			return fmt.Errorf("decode prerequisites: %w", err)
		}
		if len(prereqs) > 0 {
			var done int64
			if err := tx.Model(&model.UserQuestProgressModel{}).
				Where("progress_user_id = ? AND progress_status = ? AND progress_quest_id IN ?",
					userID, model.ProgressStatusCompleted, prereqs).
				Count(&done).Error; err != nil {
				return err
			}
			if done < int64(len(prereqs)) {
				return fiber.NewError(fiber.StatusConflict,
					"Prerequisites not met. Complete the required quests first.")
			}
		}

		emptyTasks, _ := model.MarshalTaskIDs(nil)
		deadline := now.Add(time.Duration(quest.QuestDeadlineDays) * 24 * time.Hour)

		row := existing
		if hasExisting {
			row.ProgressStatus = model.ProgressStatusInProgress
			row.ProgressStartedAt = now
			row.ProgressDeadlineAt = deadline
			row.ProgressTasksCompleted = emptyTasks
			row.ProgressPercent = 0
			row.ProgressCompletedAt = nil
			row.ProgressXPEarned = 0
			row.ProgressAttemptCount++
			row.ProgressVersion++
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		} else {
			row = model.UserQuestProgressModel{
				ProgressUserID:         userID,
				ProgressQuestID:        questID,
				ProgressStatus:         model.ProgressStatusInProgress,
				ProgressTasksCompleted: emptyTasks,
				ProgressStartedAt:      now,
				ProgressDeadlineAt:     deadline,
				ProgressAttemptCount:   1,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		_ = notifService.Emit(tx, userID, notifModel.NotificationQuestAccepted,
			"Quest accepted",
			fmt.Sprintf("You accepted %q. Deadline: %s.", quest.QuestTitle, deadline.Format("Jan 2, 15:04")),
			map[string]any{"quest_id": quest.QuestID, "progress_id": row.ProgressID},
		)

		result = &AcceptResult{
			ProgressID:     row.ProgressID,
			Status:         row.ProgressStatus,
			DeadlineAt:     row.ProgressDeadlineAt,
			AttemptCount:   row.ProgressAttemptCount,
			TasksCompleted: []string{},
			TotalTasks:     len(tasks),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteTask appends taskID to the completed set and recomputes the
// percentage. Reaching 100% never auto-completes the quest.
func (sm *StateMachine) CompleteTask(db *gorm.DB, userID, progressID uuid.UUID, taskID string) (*TaskResult, error) {
	var result *TaskResult

	err := db.Transaction(func(tx *gorm.DB) error {
		row, quest, err := sm.loadOwnedProgress(tx, userID, progressID)
		if err != nil {
			return err
		}
		if row.ProgressStatus != model.ProgressStatusInProgress {
			return fiber.NewError(fiber.StatusConflict, "Quest is not in progress.")
		}

		ok, err := quest.HasTask(taskID)
		if err != nil {
			return fmt.Errorf("decode quest tasks: %w", err)
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Task not found in this quest.")
		}

		done, err := row.TasksCompleted()
		if err != nil {
			return fmt.Errorf("decode completed tasks: %w", err)
		}
		for _, id := range done {
			if id == taskID {
				return fiber.NewError(fiber.StatusConflict, "Task already completed.")
			}
		}
		done = append(done, taskID)

		tasks, err := quest.Tasks()
		if err != nil {
			return fmt.Errorf("decode quest tasks: %w", err)
		}
		percent := 0
		if len(tasks) > 0 {
			percent = (len(done)*100 + len(tasks)/2) / len(tasks)
		}

		encoded, err := model.MarshalTaskIDs(done)
		if err != nil {
			return err
		}

		// optimistic check: a concurrent writer bumps progress_version and
		// this update then matches zero rows instead of dropping their task
		res := tx.Model(&model.UserQuestProgressModel{}).
			Where("progress_id = ? AND progress_version = ?", row.ProgressID, row.ProgressVersion).
			Updates(map[string]any{
				"progress_tasks_completed": encoded,
				"progress_percent":         percent,
				"progress_version":         row.ProgressVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Progress was modified concurrently. Retry.")
		}

		result = &TaskResult{
			TasksCompleted:  done,
			ProgressPercent: percent,
			IsQuestComplete: percent >= 100,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Submit finalizes a fully-tasked quest: completes the row, awards XP through
// the ledger, bumps streak/level, runs badge evaluation and emits the
// notifications — all inside one transaction so the user row, progress row
// and ledger entry mutate together or not at all.
func (sm *StateMachine) Submit(db *gorm.DB, userID, progressID uuid.UUID, artifactURL, notes string) (*SubmitResult, error) {
	now := sm.Now()
	var result *SubmitResult

	err := db.Transaction(func(tx *gorm.DB) error {
		row, quest, err := sm.loadOwnedProgress(tx, userID, progressID)
		if err != nil {
			return err
		}
		if row.ProgressStatus != model.ProgressStatusInProgress {
			return fiber.NewError(fiber.StatusConflict, "Quest is not in progress.")
		}
		if row.ProgressPercent < 100 {
			return fiber.NewError(fiber.StatusConflict, "Complete all tasks before submitting.")
		}

		var user userModel.UserModel
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		completedEarly := now.Before(row.ProgressDeadlineAt)
		firstTry := row.ProgressAttemptCount == 1
		breakdown := sm.Policy.CalculateQuestXP(
			quest.QuestXPReward, quest.QuestDifficulty, completedEarly, user.StreakCount, firstTry)

		// 1) progress row, guarded by the version check
		res := tx.Model(&model.UserQuestProgressModel{}).
			Where("progress_id = ? AND progress_version = ?", row.ProgressID, row.ProgressVersion).
			Updates(map[string]any{
				"progress_status":       model.ProgressStatusCompleted,
				"progress_completed_at": now,
				"progress_xp_earned":    breakdown.Total,
				"progress_version":      row.ProgressVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Progress was modified concurrently. Retry.")
		}

		// 2) user row: total_xp is an additive SQL update, never
		// read-then-write-absolute, so concurrent submits cannot lose XP
		oldLevel := user.CurrentLevel
		newTotal := user.TotalXP + breakdown.Total
		newLevel := sm.Curve.LevelFromXP(newTotal)
		newStreak := user.StreakCount + 1
		longest := user.LongestStreak
		if newStreak > longest {
			longest = newStreak
		}
		if err := tx.Model(&userModel.UserModel{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"total_xp":       gorm.Expr("total_xp + ?", breakdown.Total),
				"current_level":  newLevel,
				"streak_count":   newStreak,
				"longest_streak": longest,
				"last_active_at": now,
			}).Error; err != nil {
			return err
		}

		// 3) ledger entry, consistent with the update above
		refID := row.ProgressID
		if _, err := xpService.Append(tx, userID, breakdown.Total,
			xpModel.XPTransactionQuestComplete, &refID, &breakdown, user.TotalXP); err != nil {
			return err
		}

		result = &SubmitResult{
			XPEarned:    breakdown.Total,
			XPBreakdown: breakdown,
			NewTotalXP:  newTotal,
			NewLevel:    newLevel,
			LeveledUp:   newLevel > oldLevel,
		}

		// 4) quest badge (idempotent create)
		if quest.QuestBadgeID != nil {
			isNew, err := badgeService.AwardBadge(tx, userID, *quest.QuestBadgeID)
			if err != nil {
				return err
			}
			if isNew {
				var badge badgeModel.BadgeModel
				if err := tx.First(&badge, "badge_id = ?", *quest.QuestBadgeID).Error; err == nil {
					result.BadgeAwarded = &badge
					_ = notifService.Emit(tx, userID, notifModel.NotificationBadgeEarned,
						"Badge earned!",
						fmt.Sprintf("You earned the %q badge.", badge.BadgeName),
						map[string]any{"badge_id": badge.BadgeID, "badge_code": badge.BadgeCode},
					)
				}
			}
		}

		// 5) criteria-driven badges
		event := badgeService.Event{
			Kind:             badgeService.EventQuestCompleted,
			QuestID:          quest.QuestID,
			TreeID:           quest.QuestTreeID,
			QuestIsCapstone:  quest.QuestIsCapstone,
			AcceptedAt:       row.ProgressStartedAt,
			CompletedAt:      now,
			EstimatedMinutes: quest.QuestEstimatedMinutes,
		}
		if _, err := badgeService.RunEvaluation(tx, userID, event); err != nil {
			// badge evaluation must never block quest completion
			log.Printf("[WARN] badge evaluation failed for user %s: %v", userID, err)
		}

		// 6) artifact
		if artifactURL != "" {
			artifact := model.QuestArtifactModel{
				ArtifactProgressID: row.ProgressID,
				ArtifactUserID:     userID,
				ArtifactURL:        artifactURL,
				ArtifactNotes:      notes,
			}
			if err := tx.Create(&artifact).Error; err != nil {
				return err
			}
		}

		// 7) notifications
		if result.LeveledUp {
			_ = notifService.Emit(tx, userID, notifModel.NotificationLevelUp,
				"Level up!",
				fmt.Sprintf("You reached level %d.", newLevel),
				map[string]any{"level": newLevel},
			)
		}
		_ = notifService.Emit(tx, userID, notifModel.NotificationQuestCompleted,
			"Quest completed",
			fmt.Sprintf("You completed %q and earned %d XP.", quest.QuestTitle, breakdown.Total),
			map[string]any{"quest_id": quest.QuestID, "xp_earned": breakdown.Total},
		)

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Abandon moves an in_progress row to abandoned, freeing an active slot.
func (sm *StateMachine) Abandon(db *gorm.DB, userID, progressID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		row, _, err := sm.loadOwnedProgress(tx, userID, progressID)
		if err != nil {
			return err
		}
		if row.ProgressStatus != model.ProgressStatusInProgress {
			return fiber.NewError(fiber.StatusConflict, "Quest is not in progress.")
		}
		res := tx.Model(&model.UserQuestProgressModel{}).
			Where("progress_id = ? AND progress_version = ?", row.ProgressID, row.ProgressVersion).
			Updates(map[string]any{
				"progress_status":  model.ProgressStatusAbandoned,
				"progress_version": row.ProgressVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Progress was modified concurrently. Retry.")
		}
		return nil
	})
}

// SweepExpired marks overdue in_progress rows as expired, batched. Deadlines
// stay advisory: the sweep is optional and the accept path also expires
// lazily.
func (sm *StateMachine) SweepExpired(db *gorm.DB) (int, error) {
	now := sm.Now()
	var overdue []model.UserQuestProgressModel
	if err := db.
		Where("progress_status = ? AND progress_deadline_at < ?", model.ProgressStatusInProgress, now).
		Limit(100).
		Find(&overdue).Error; err != nil {
		return 0, err
	}
	expired := 0
	for i := range overdue {
		if err := sm.expire(db, &overdue[i], now); err != nil {
			log.Printf("[CLEANUP ERROR] expire progress %s: %v", overdue[i].ProgressID, err)
			continue
		}
		expired++
	}
	return expired, nil
}

func (sm *StateMachine) expire(db *gorm.DB, row *model.UserQuestProgressModel, now time.Time) error {
	res := db.Model(&model.UserQuestProgressModel{}).
		Where("progress_id = ? AND progress_version = ?", row.ProgressID, row.ProgressVersion).
		Updates(map[string]any{
			"progress_status":  model.ProgressStatusExpired,
			"progress_version": row.ProgressVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		row.ProgressVersion++
		_ = notifService.Emit(db, row.ProgressUserID, notifModel.NotificationQuestExpired,
			"Quest expired",
			"A quest passed its deadline and was marked expired. You can accept it again.",
			map[string]any{"progress_id": row.ProgressID, "quest_id": row.ProgressQuestID},
		)
	}
	return nil
}

// loadOwnedProgress fetches the progress row plus its quest and enforces
// ownership. Not-found and not-owned both abort before any write.
func (sm *StateMachine) loadOwnedProgress(tx *gorm.DB, userID, progressID uuid.UUID) (*model.UserQuestProgressModel, *questModel.QuestModel, error) {
	var row model.UserQuestProgressModel
	if err := tx.First(&row, "progress_id = ?", progressID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fiber.NewError(fiber.StatusNotFound, "Progress not found")
		}
		return nil, nil, err
	}
	if row.ProgressUserID != userID {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "This quest progress is not yours")
	}
	var quest questModel.QuestModel
	if err := tx.First(&quest, "quest_id = ?", row.ProgressQuestID).Error; err != nil {
		return nil, nil, err
	}
	return &row, &quest, nil
}
