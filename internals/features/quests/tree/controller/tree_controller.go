package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	questModel "questdeck_backend/internals/features/quests/quest/model"
	dto "questdeck_backend/internals/features/quests/tree/dto"
	"questdeck_backend/internals/features/quests/tree/model"
	helper "questdeck_backend/internals/helpers"
)

// TreeController serves the public (learner-facing) quest tree catalog.
type TreeController struct {
	DB *gorm.DB
}

func NewTreeController(db *gorm.DB) *TreeController {
	return &TreeController{DB: db}
}

// GET /quest-trees
func (ctrl *TreeController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.WithContext(c.Context()).
		Model(&model.QuestTreeModel{}).
		Where("quest_tree_is_published = ?", true)
	if topic := strings.TrimSpace(c.Query("topic")); topic != "" {
		q = q.Where("quest_tree_topic = ?", topic)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	var rows []model.QuestTreeModel
	if err := q.Order("quest_tree_sort_order ASC, created_at ASC").
		Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.QuestTreeResponse, 0, len(rows))
	for i := range rows {
		resp := dto.FromModel(&rows[i])
		resp.QuestCount = ctrl.countPublishedQuests(c, rows[i].QuestTreeID)
		out = append(out, resp)
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(paging, total))
}

// GET /quest-trees/:id — tree detail together with its published quests
func (ctrl *TreeController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid tree id")
	}

	var tree model.QuestTreeModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&tree, "quest_tree_id = ? AND quest_tree_is_published = ?", id, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Quest tree not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var quests []questModel.QuestModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("quest_tree_id = ? AND quest_is_published = ?", id, true).
		Order("quest_sort_order ASC, created_at ASC").
		Find(&quests).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := dto.FromModel(&tree)
	resp.QuestCount = int64(len(quests))
	return helper.JsonOK(c, "", fiber.Map{
		"tree":   resp,
		"quests": quests,
	})
}

func (ctrl *TreeController) countPublishedQuests(c *fiber.Ctx, treeID uuid.UUID) int64 {
	var n int64
	_ = ctrl.DB.WithContext(c.Context()).
		Model(&questModel.QuestModel{}).
		Where("quest_tree_id = ? AND quest_is_published = ?", treeID, true).
		Count(&n).Error
	return n
}
