package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"questdeck_backend/internals/constants"
	dto "questdeck_backend/internals/features/quests/progress/dto"
	"questdeck_backend/internals/features/quests/progress/model"
	"questdeck_backend/internals/features/quests/progress/service"
	helper "questdeck_backend/internals/helpers"
)

type ProgressController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	SM        *service.StateMachine
}

func NewProgressController(db *gorm.DB) *ProgressController {
	return &ProgressController{
		DB:        db,
		Validator: validator.New(),
		SM:        service.NewStateMachine(),
	}
}

// POST /api/quests/accept
func (ctrl *ProgressController) Accept(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var body dto.AcceptQuestRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := ctrl.SM.Accept(ctrl.DB.WithContext(c.Context()), userID, body.QuestID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Quest accepted", res)
}

// POST /api/quests/task/complete
func (ctrl *ProgressController) CompleteTask(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var body dto.CompleteTaskRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := ctrl.SM.CompleteTask(ctrl.DB.WithContext(c.Context()), userID, body.ProgressID, strings.TrimSpace(body.TaskID))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Task completed", res)
}

// POST /api/quests/submit
func (ctrl *ProgressController) Submit(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var body dto.SubmitQuestRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := ctrl.SM.Submit(ctrl.DB.WithContext(c.Context()), userID, body.ProgressID,
		strings.TrimSpace(body.ArtifactURL), strings.TrimSpace(body.Notes))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Quest submitted", res)
}

// POST /api/quests/abandon/:id
func (ctrl *ProgressController) Abandon(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	progressID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid progress id")
	}

	if err := ctrl.SM.Abandon(ctrl.DB.WithContext(c.Context()), userID, progressID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Quest abandoned", fiber.Map{"progress_id": progressID})
}

// GET /api/quests/progress — the caller's progress rows, newest first
func (ctrl *ProgressController) List(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	// admins may inspect another user's progress with ?user_id=
	if override := strings.TrimSpace(c.Query("user_id")); override != "" {
		role := helper.GetUserRoleFromToken(c)
		if role != constants.RoleAdmin && role != constants.RoleOwner {
			return helper.JsonError(c, fiber.StatusForbidden, "Only admins may view other users' progress")
		}
		parsed, err := uuid.Parse(override)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid user_id")
		}
		userID = parsed
	}

	paging := helper.ResolvePaging(c, 20, 100)
	q := ctrl.DB.WithContext(c.Context()).
		Model(&model.UserQuestProgressModel{}).
		Where("progress_user_id = ?", userID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("progress_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.UserQuestProgressModel
	if err := q.Order("updated_at DESC").Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.ProgressResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i]))
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(paging, total))
}
