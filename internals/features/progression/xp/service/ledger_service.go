package service

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"questdeck_backend/internals/features/progression/rules"
	"questdeck_backend/internals/features/progression/xp/model"
)

// Append writes one ledger entry. balanceBefore must be the user's total_xp
// as read inside the same transaction that applies the XP update, so the
// running sum of the ledger always matches users.total_xp.
func Append(db *gorm.DB, userID uuid.UUID, amount int, ttype model.XPTransactionType, referenceID *uuid.UUID, breakdown *rules.XPBreakdown, balanceBefore int) (*model.XPTransactionModel, error) {
	entry := model.XPTransactionModel{
		XPTransactionUserID:        userID,
		XPTransactionAmount:        amount,
		XPTransactionType:          ttype,
		XPTransactionBalanceBefore: balanceBefore,
		XPTransactionBalanceAfter:  balanceBefore + amount,
		XPTransactionReferenceID:   referenceID,
	}
	if breakdown != nil {
		if b, err := json.Marshal(breakdown); err == nil {
			entry.XPTransactionBreakdown = datatypes.JSON(b)
		}
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// History returns the most recent entries for a user, newest first.
func History(db *gorm.DB, userID uuid.UUID, limit, offset int) ([]model.XPTransactionModel, int64, error) {
	var total int64
	q := db.Model(&model.XPTransactionModel{}).Where("xp_transaction_user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.XPTransactionModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
