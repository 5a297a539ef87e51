package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "questdeck_backend/internals/features/quests/quest/dto"
	"questdeck_backend/internals/features/quests/quest/model"
	helper "questdeck_backend/internals/helpers"
)

// QuestController serves the read-only catalog endpoints (learner-facing).
type QuestController struct {
	DB *gorm.DB
}

func NewQuestController(db *gorm.DB) *QuestController {
	return &QuestController{DB: db}
}

// GET /quests?tree_id=
func (ctrl *QuestController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.WithContext(c.Context()).
		Model(&model.QuestModel{}).
		Where("quest_is_published = ?", true)
	if treeID := strings.TrimSpace(c.Query("tree_id")); treeID != "" {
		id, err := uuid.Parse(treeID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid tree_id")
		}
		q = q.Where("quest_tree_id = ?", id)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.QuestModel
	if err := q.Order("quest_sort_order ASC, created_at ASC").
		Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.QuestResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i]))
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(paging, total))
}

// GET /quests/:id
func (ctrl *QuestController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid quest id")
	}

	var quest model.QuestModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&quest, "quest_id = ? AND quest_is_published = ?", id, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Quest not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "", dto.FromModel(&quest))
}
