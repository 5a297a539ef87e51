package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "questdeck_backend/internals/features/progression/badges/dto"
	"questdeck_backend/internals/features/progression/badges/model"
	"questdeck_backend/internals/features/progression/badges/service"
	helper "questdeck_backend/internals/helpers"
)

// BadgeController serves the catalog and the learner-side badge endpoints.
type BadgeController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewBadgeController(db *gorm.DB) *BadgeController {
	return &BadgeController{DB: db, Validator: validator.New()}
}

// GET /badges — public catalog. Hidden badges are listed (name and icon) but
// their criteria stay secret.
func (ctrl *BadgeController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 50, 200)

	q := ctrl.DB.WithContext(c.Context()).Model(&model.BadgeModel{})
	if rarity := strings.TrimSpace(c.Query("rarity")); rarity != "" {
		q = q.Where("badge_rarity = ?", rarity)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	var rows []model.BadgeModel
	if err := q.Order("badge_rarity ASC, badge_code ASC").
		Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.BadgeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i], false))
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(paging, total))
}

// GET /badges/mine — the caller's earned badges, newest first
func (ctrl *BadgeController) Mine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var awards []model.UserBadgeModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("user_badge_user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&awards).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if len(awards) == 0 {
		return helper.JsonOK(c, "", []dto.UserBadgeResponse{})
	}

	badgeIDs := make([]any, 0, len(awards))
	for _, a := range awards {
		badgeIDs = append(badgeIDs, a.UserBadgeBadgeID)
	}
	var badges []model.BadgeModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("badge_id IN ?", badgeIDs).
		Find(&badges).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	byID := make(map[string]*model.BadgeModel, len(badges))
	for i := range badges {
		byID[badges[i].BadgeID.String()] = &badges[i]
	}

	out := make([]dto.UserBadgeResponse, 0, len(awards))
	for _, a := range awards {
		b, ok := byID[a.UserBadgeBadgeID.String()]
		if !ok {
			continue
		}
		// earning a hidden badge reveals its criteria to the owner
		out = append(out, dto.UserBadgeResponse{
			Badge:     dto.FromModel(b, true),
			AwardedAt: a.AwardedAt,
		})
	}
	return helper.JsonOK(c, "", out)
}

// POST /help-events — records a social-assistance event and re-runs badge
// evaluation for help_others criteria.
func (ctrl *BadgeController) RecordHelpEvent(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var body dto.RecordHelpEventRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if body.HelpedUserID != nil && *body.HelpedUserID == userID {
		return helper.JsonError(c, fiber.StatusBadRequest, "You cannot record helping yourself.")
	}

	event := model.HelpEventModel{
		HelpEventUserID: userID,
		HelpedUserID:    body.HelpedUserID,
		HelpEventKind:   body.Kind,
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(&event).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	awarded, err := service.RunEvaluation(ctrl.DB.WithContext(c.Context()), userID, service.Event{
		Kind: service.EventHelpRecorded,
	})
	if err != nil {
		// the event itself is recorded; evaluation can catch up next time
		awarded = nil
	}

	newBadges := make([]dto.BadgeResponse, 0, len(awarded))
	for i := range awarded {
		newBadges = append(newBadges, dto.FromModel(&awarded[i], true))
	}
	return helper.JsonCreated(c, "Help event recorded", fiber.Map{
		"help_event": event,
		"new_badges": newBadges,
	})
}
