package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "questdeck_backend/internals/features/users/user/dto"
	"questdeck_backend/internals/features/users/user/model"
	helper "questdeck_backend/internals/helpers"
)

// LeaderboardController is public and unauthenticated. Only user_name and
// progression numbers leave the server.
type LeaderboardController struct {
	DB *gorm.DB
}

func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	return &LeaderboardController{DB: db}
}

// GET /leaderboard — active users ranked by total XP. Ties break on the
// earlier account so ranks stay stable between requests.
func (ctrl *LeaderboardController) Top(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 25, 100)

	q := ctrl.DB.WithContext(c.Context()).
		Model(&model.UserModel{}).
		Where("is_active = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var users []model.UserModel
	if err := q.Order("total_xp DESC, created_at ASC").
		Limit(paging.Limit).Offset(paging.Offset).
		Find(&users).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, dto.LeaderboardEntry{
			Rank:         paging.Offset + i + 1,
			UserID:       u.ID,
			UserName:     u.UserName,
			TotalXP:      u.TotalXP,
			CurrentLevel: u.CurrentLevel,
			StreakCount:  u.StreakCount,
		})
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(paging, total))
}
