package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "questdeck_backend/internals/features/progression/badges/dto"
	"questdeck_backend/internals/features/progression/badges/model"
	helper "questdeck_backend/internals/helpers"
)

const badgeIconUploadDir = "./uploads/badges"

type BadgeAdminController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewBadgeAdminController(db *gorm.DB) *BadgeAdminController {
	return &BadgeAdminController{DB: db, Validator: validator.New()}
}

// POST /badges
func (ctrl *BadgeAdminController) Create(c *fiber.Ctx) error {
	var body dto.CreateBadgeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if body.Criteria.Type == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "criteria.type is required")
	}

	criteria, err := model.MarshalCriteria(body.Criteria)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid criteria")
	}
	rarity := body.Rarity
	if rarity == "" {
		rarity = "common"
	}

	badge := model.BadgeModel{
		BadgeCode:        strings.ToLower(strings.TrimSpace(body.Code)),
		BadgeName:        body.Name,
		BadgeDescription: body.Description,
		BadgeRarity:      rarity,
		BadgeIsHidden:    body.IsHidden,
		BadgeCriteria:    criteria,
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(&badge).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Badge code already in use")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "Badge created", dto.FromModel(&badge, true))
}

// PATCH /badges/:id
func (ctrl *BadgeAdminController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid badge id")
	}

	var badge model.BadgeModel
	if err := ctrl.DB.WithContext(c.Context()).First(&badge, "badge_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Badge not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var body dto.UpdateBadgeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	updates := map[string]any{}
	if body.Name != nil {
		updates["badge_name"] = *body.Name
	}
	if body.Description != nil {
		updates["badge_description"] = *body.Description
	}
	if body.Rarity != nil {
		updates["badge_rarity"] = *body.Rarity
	}
	if body.IsHidden != nil {
		updates["badge_is_hidden"] = *body.IsHidden
	}
	if body.Criteria != nil {
		if body.Criteria.Type == "" {
			return helper.JsonError(c, fiber.StatusBadRequest, "criteria.type is required")
		}
		criteria, err := model.MarshalCriteria(*body.Criteria)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid criteria")
		}
		updates["badge_criteria"] = criteria
	}

	if len(updates) > 0 {
		if err := ctrl.DB.WithContext(c.Context()).Model(&badge).Updates(updates).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	if err := ctrl.DB.WithContext(c.Context()).First(&badge, "badge_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Badge updated", dto.FromModel(&badge, true))
}

// POST /badges/:id/icon — multipart upload, re-encoded to webp before storage
func (ctrl *BadgeAdminController) UploadIcon(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid badge id")
	}

	var badge model.BadgeModel
	if err := ctrl.DB.WithContext(c.Context()).First(&badge, "badge_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Badge not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	fileHeader, err := c.FormFile("icon")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "icon file is required")
	}
	iconURL, err := helper.SaveBadgeIcon(badgeIconUploadDir, fileHeader)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := ctrl.DB.WithContext(c.Context()).Model(&badge).
		Update("badge_icon_url", iconURL).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	badge.BadgeIconURL = iconURL
	return helper.JsonUpdated(c, "Badge icon updated", dto.FromModel(&badge, true))
}

// DELETE /badges/:id — awards already granted are kept (spec: awards are
// permanent), so deletion is refused while any user holds the badge.
func (ctrl *BadgeAdminController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid badge id")
	}

	var held int64
	if err := ctrl.DB.WithContext(c.Context()).
		Model(&model.UserBadgeModel{}).
		Where("user_badge_badge_id = ?", id).
		Count(&held).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if held > 0 {
		return helper.JsonError(c, fiber.StatusConflict,
			"Badge has been awarded and cannot be deleted. Hide it instead.")
	}

	res := ctrl.DB.WithContext(c.Context()).Delete(&model.BadgeModel{}, "badge_id = ?", id)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Badge not found")
	}
	return helper.JsonDeleted(c, "Badge deleted", fiber.Map{"badge_id": id})
}

// GET /badges (admin view, criteria always revealed)
func (ctrl *BadgeAdminController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 50, 200)

	q := ctrl.DB.WithContext(c.Context()).Model(&model.BadgeModel{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	var rows []model.BadgeModel
	if err := q.Order("badge_code ASC").
		Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.BadgeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i], true))
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(paging, total))
}
