package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	progressModel "questdeck_backend/internals/features/quests/progress/model"
	dto "questdeck_backend/internals/features/quests/quest/dto"
	"questdeck_backend/internals/features/quests/quest/model"
	helper "questdeck_backend/internals/helpers"
)

// QuestAdminController is the content-management surface (admin only; the
// route group enforces the role).
type QuestAdminController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewQuestAdminController(db *gorm.DB) *QuestAdminController {
	return &QuestAdminController{DB: db, Validator: validator.New()}
}

// POST /quests
func (ctrl *QuestAdminController) Create(c *fiber.Ctx) error {
	var body dto.CreateQuestRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if !body.Difficulty.Valid() {
		return helper.JsonError(c, fiber.StatusBadRequest, "difficulty must be easy|medium|hard|epic")
	}
	if err := validateTaskIDs(body.Tasks); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	tasks, err := model.MarshalTasks(body.Tasks)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid tasks")
	}
	prereqs, err := model.MarshalPrerequisites(body.PrerequisiteIDs)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid prerequisite ids")
	}

	quest := model.QuestModel{
		QuestTreeID:           body.QuestTreeID,
		QuestTitle:            body.Title,
		QuestDescription:      body.Description,
		QuestXPReward:         body.XPReward,
		QuestDifficulty:       body.Difficulty,
		QuestDeadlineDays:     body.DeadlineDays,
		QuestEstimatedMinutes: body.EstimatedMinutes,
		QuestIsCapstone:       body.IsCapstone,
		QuestIsPublished:      body.IsPublished,
		QuestSortOrder:        body.SortOrder,
		QuestBadgeID:          body.BadgeID,
		QuestTasks:            tasks,
		QuestPrerequisiteIDs:  prereqs,
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(&quest).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "Quest created", dto.FromModel(&quest))
}

// PATCH /quests/:id — quests are immutable while anyone has them in progress
func (ctrl *QuestAdminController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid quest id")
	}

	var quest model.QuestModel
	if err := ctrl.DB.WithContext(c.Context()).First(&quest, "quest_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Quest not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var active int64
	if err := ctrl.DB.WithContext(c.Context()).
		Model(&progressModel.UserQuestProgressModel{}).
		Where("progress_quest_id = ? AND progress_status = ?", id, progressModel.ProgressStatusInProgress).
		Count(&active).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if active > 0 {
		return helper.JsonError(c, fiber.StatusConflict,
			"Quest has attempts in progress and cannot be edited right now.")
	}

	var body dto.UpdateQuestRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	updates := map[string]any{}
	if body.Title != nil {
		updates["quest_title"] = *body.Title
	}
	if body.Description != nil {
		updates["quest_description"] = *body.Description
	}
	if body.XPReward != nil {
		updates["quest_xp_reward"] = *body.XPReward
	}
	if body.Difficulty != nil {
		if !body.Difficulty.Valid() {
			return helper.JsonError(c, fiber.StatusBadRequest, "difficulty must be easy|medium|hard|epic")
		}
		updates["quest_difficulty"] = *body.Difficulty
	}
	if body.DeadlineDays != nil {
		updates["quest_deadline_days"] = *body.DeadlineDays
	}
	if body.EstimatedMinutes != nil {
		updates["quest_estimated_minutes"] = *body.EstimatedMinutes
	}
	if body.IsCapstone != nil {
		updates["quest_is_capstone"] = *body.IsCapstone
	}
	if body.IsPublished != nil {
		updates["quest_is_published"] = *body.IsPublished
	}
	if body.SortOrder != nil {
		updates["quest_sort_order"] = *body.SortOrder
	}
	if body.BadgeID != nil {
		updates["quest_badge_id"] = *body.BadgeID
	}
	if body.Tasks != nil {
		if err := validateTaskIDs(body.Tasks); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		tasks, err := model.MarshalTasks(body.Tasks)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid tasks")
		}
		updates["quest_tasks"] = tasks
	}
	if body.PrerequisiteIDs != nil {
		prereqs, err := model.MarshalPrerequisites(body.PrerequisiteIDs)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid prerequisite ids")
		}
		updates["quest_prerequisite_ids"] = prereqs
	}

	if len(updates) > 0 {
		if err := ctrl.DB.WithContext(c.Context()).Model(&quest).Updates(updates).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	if err := ctrl.DB.WithContext(c.Context()).First(&quest, "quest_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Quest updated", dto.FromModel(&quest))
}

// DELETE /quests/:id — cascades the progress rows (spec: delete on quest
// deletion)
func (ctrl *QuestAdminController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid quest id")
	}

	err = ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("progress_quest_id = ?", id).
			Delete(&progressModel.UserQuestProgressModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.QuestModel{}, "quest_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Quest not found")
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Quest deleted", fiber.Map{"quest_id": id})
}

// GET /quests (admin view, includes unpublished)
func (ctrl *QuestAdminController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 200)

	q := ctrl.DB.WithContext(c.Context()).Model(&model.QuestModel{})
	if treeID := strings.TrimSpace(c.Query("tree_id")); treeID != "" {
		tid, err := uuid.Parse(treeID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid tree_id")
		}
		q = q.Where("quest_tree_id = ?", tid)
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

func validateTaskIDs(tasks []model.QuestTask) error {
	seen := map[string]bool{}
	for _, t := range tasks {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return fiber.NewError(fiber.StatusBadRequest, "task id must not be empty")
		}
		if seen[id] {
			return fiber.NewError(fiber.StatusBadRequest, "duplicate task id: "+id)
		}
		seen[id] = true
	}
	return nil
}
