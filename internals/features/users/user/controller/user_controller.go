package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	badgeModel "questdeck_backend/internals/features/progression/badges/model"
	"questdeck_backend/internals/features/progression/rules"
	xpService "questdeck_backend/internals/features/progression/xp/service"
	progressModel "questdeck_backend/internals/features/quests/progress/model"
	questModel "questdeck_backend/internals/features/quests/quest/model"
	dto "questdeck_backend/internals/features/users/user/dto"
	"questdeck_backend/internals/features/users/user/model"
	userService "questdeck_backend/internals/features/users/user/service"
	helper "questdeck_backend/internals/helpers"
)

type UserController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Curve     rules.LevelCurve
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db, Validator: validator.New(), Curve: rules.DefaultCurve()}
}

// GET /user/stats — the learner dashboard payload
func (ctrl *UserController) Stats(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var user model.UserModel
	if err := ctrl.DB.WithContext(c.Context()).First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "User not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var completedQuests, badgeCount int64
	if err := ctrl.DB.WithContext(c.Context()).
		Model(&progressModel.UserQuestProgressModel{}).
		Where("progress_user_id = ? AND progress_status = ?", userID, progressModel.ProgressStatusCompleted).
		Count(&completedQuests).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if err := ctrl.DB.WithContext(c.Context()).
		Model(&badgeModel.UserBadgeModel{}).
		Where("user_badge_user_id = ?", userID).
		Count(&badgeCount).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	recent, err := ctrl.recentBadges(c, userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	active, err := ctrl.activeQuests(c, userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	history, err := ctrl.xpHistory(c, userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	stats := dto.UserStatsResponse{
		UserID:          user.ID,
		UserName:        user.UserName,
		TotalXP:         user.TotalXP,
		Level:           ctrl.Curve.Progress(user.TotalXP),
		StreakCount:     user.StreakCount,
		LongestStreak:   user.LongestStreak,
		LastActiveAt:    user.LastActiveAt,
		CompletedQuests: completedQuests,
		BadgeCount:      badgeCount,
		ActiveQuests:    active,
		RecentBadges:    recent,
		XPHistory:       history,
	}
	return helper.JsonOK(c, "", stats)
}

// POST /user/reset — wipes all progression. Destructive, so the client must
// confirm with ?confirm=true.
func (ctrl *UserController) Reset(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	if c.Query("confirm") != "true" {
		return helper.JsonError(c, fiber.StatusBadRequest,
			"Reset deletes all progress permanently. Repeat the request with ?confirm=true.")
	}

	if err := userService.ResetProgress(ctrl.DB.WithContext(c.Context()), userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "User not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "Progress reset", fiber.Map{
		"user_id":       userID,
		"total_xp":      0,
		"current_level": 1,
		"streak_count":  0,
	})
}

// PATCH /user/profile
func (ctrl *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var body dto.UpdateProfileRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if body.UserName == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}

	if err := ctrl.DB.WithContext(c.Context()).Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("user_name", *body.UserName).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Profile updated", fiber.Map{"user_name": *body.UserName})
}

func (ctrl *UserController) recentBadges(c *fiber.Ctx, userID uuid.UUID) ([]dto.RecentBadge, error) {
	var awards []badgeModel.UserBadgeModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("user_badge_user_id = ?", userID).
		Order("awarded_at DESC").
		Limit(5).
		Find(&awards).Error; err != nil {
		return nil, err
	}

	recent := make([]dto.RecentBadge, 0, len(awards))
	for _, a := range awards {
		var b badgeModel.BadgeModel
		if err := ctrl.DB.WithContext(c.Context()).
			First(&b, "badge_id = ?", a.UserBadgeBadgeID).Error; err != nil {
			continue
		}
		recent = append(recent, dto.RecentBadge{
			BadgeID:   b.BadgeID,
			Code:      b.BadgeCode,
			Name:      b.BadgeName,
			IconURL:   b.BadgeIconURL,
			Rarity:    b.BadgeRarity,
			AwardedAt: a.AwardedAt,
		})
	}
	return recent, nil
}

func (ctrl *UserController) activeQuests(c *fiber.Ctx, userID uuid.UUID) ([]dto.ActiveQuest, error) {
	var rows []progressModel.UserQuestProgressModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("progress_user_id = ? AND progress_status = ?", userID, progressModel.ProgressStatusInProgress).
		Order("progress_started_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	active := make([]dto.ActiveQuest, 0, len(rows))
	for _, p := range rows {
		var q questModel.QuestModel
		if err := ctrl.DB.WithContext(c.Context()).
			First(&q, "quest_id = ?", p.ProgressQuestID).Error; err != nil {
			continue
		}
		active = append(active, dto.ActiveQuest{
			ProgressID: p.ProgressID,
			QuestID:    p.ProgressQuestID,
			QuestTitle: q.QuestTitle,
			Percent:    p.ProgressPercent,
			StartedAt:  p.ProgressStartedAt,
			DeadlineAt: p.ProgressDeadlineAt,
		})
	}
	return active, nil
}

func (ctrl *UserController) xpHistory(c *fiber.Ctx, userID uuid.UUID) ([]dto.XPHistoryItem, error) {
	entries, _, err := xpService.History(ctrl.DB.WithContext(c.Context()), userID, 10, 0)
	if err != nil {
		return nil, err
	}

	history := make([]dto.XPHistoryItem, 0, len(entries))
	for _, e := range entries {
		history = append(history, dto.XPHistoryItem{
			Amount:       e.XPTransactionAmount,
			Type:         string(e.XPTransactionType),
			BalanceAfter: e.XPTransactionBalanceAfter,
			CreatedAt:    e.CreatedAt,
		})
	}
	return history, nil
}
