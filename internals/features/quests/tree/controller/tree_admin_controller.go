package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	questModel "questdeck_backend/internals/features/quests/quest/model"
	dto "questdeck_backend/internals/features/quests/tree/dto"
	"questdeck_backend/internals/features/quests/tree/model"
	helper "questdeck_backend/internals/helpers"
)

type TreeAdminController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewTreeAdminController(db *gorm.DB) *TreeAdminController {
	return &TreeAdminController{DB: db, Validator: validator.New()}
}

// POST /quest-trees
func (ctrl *TreeAdminController) Create(c *fiber.Ctx) error {
	var body dto.CreateQuestTreeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	tree := model.QuestTreeModel{
		QuestTreeName:        body.Name,
		QuestTreeDescription: body.Description,
		QuestTreeTopic:       body.Topic,
		QuestTreeSortOrder:   body.SortOrder,
		QuestTreeIsPublished: body.IsPublished,
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(&tree).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "Quest tree created", dto.FromModel(&tree))
}

// PATCH /quest-trees/:id
func (ctrl *TreeAdminController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid tree id")
	}

	var tree model.QuestTreeModel
	if err := ctrl.DB.WithContext(c.Context()).First(&tree, "quest_tree_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Quest tree not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var body dto.UpdateQuestTreeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	updates := map[string]any{}
	if body.Name != nil {
		updates["quest_tree_name"] = *body.Name
	}
	if body.Description != nil {
		updates["quest_tree_description"] = *body.Description
	}
	if body.Topic != nil {
		updates["quest_tree_topic"] = *body.Topic
	}
	if body.SortOrder != nil {
		updates["quest_tree_sort_order"] = *body.SortOrder
	}
	if body.IsPublished != nil {
		updates["quest_tree_is_published"] = *body.IsPublished
	}

	if len(updates) > 0 {
		if err := ctrl.DB.WithContext(c.Context()).Model(&tree).Updates(updates).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	if err := ctrl.DB.WithContext(c.Context()).First(&tree, "quest_tree_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Quest tree updated", dto.FromModel(&tree))
}

// DELETE /quest-trees/:id — refused while the tree still holds quests
func (ctrl *TreeAdminController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid tree id")
	}

	var questCount int64
	if err := ctrl.DB.WithContext(c.Context()).
		Model(&questModel.QuestModel{}).
		Where("quest_tree_id = ?", id).
		Count(&questCount).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if questCount > 0 {
		return helper.JsonError(c, fiber.StatusConflict,
			"Quest tree still has quests. Delete or move them first.")
	}

	res := ctrl.DB.WithContext(c.Context()).Delete(&model.QuestTreeModel{}, "quest_tree_id = ?", id)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Quest tree not found")
	}
	return helper.JsonDeleted(c, "Quest tree deleted", fiber.Map{"quest_tree_id": id})
}

// GET /quest-trees (admin view, includes unpublished)
func (ctrl *TreeAdminController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 200)

	q := ctrl.DB.WithContext(c.Context()).Model(&model.QuestTreeModel{})

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
		out = append(out, dto.FromModel(&rows[i]))
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(paging, total))
}
