package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"questdeck_backend/internals/features/progression/xp/service"
	helper "questdeck_backend/internals/helpers"
)

// XPController exposes the caller's XP ledger.
type XPController struct {
	DB *gorm.DB
}

func NewXPController(db *gorm.DB) *XPController {
	return &XPController{DB: db}
}

// GET /xp-transactions — newest first, with the stored per-award breakdown
func (ctrl *XPController) History(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := service.History(ctrl.DB.WithContext(c.Context()), userID, paging.Limit, paging.Offset)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(paging, total))
}
