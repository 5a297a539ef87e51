package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type XPTransactionType string

const (
	XPTransactionQuestComplete XPTransactionType = "quest_complete"
	XPTransactionAdjustment    XPTransactionType = "adjustment"
)

// XPTransactionModel is an append-only ledger entry. Invariant:
// balance_after == balance_before + amount, and the chronological running sum
// for a user equals users.total_xp.
type XPTransactionModel struct {
	XPTransactionID     uuid.UUID         `gorm:"column:xp_transaction_id;type:uuid;primaryKey" json:"xp_transaction_id"`
	XPTransactionUserID uuid.UUID         `gorm:"column:xp_transaction_user_id;type:uuid;not null;index" json:"xp_transaction_user_id"`
	XPTransactionAmount int               `gorm:"column:xp_transaction_amount;not null" json:"xp_transaction_amount"`
	XPTransactionType   XPTransactionType `gorm:"column:xp_transaction_type;type:varchar(24);not null" json:"xp_transaction_type"`

	XPTransactionBalanceBefore int `gorm:"column:xp_transaction_balance_before;not null" json:"xp_transaction_balance_before"`
	XPTransactionBalanceAfter  int `gorm:"column:xp_transaction_balance_after;not null" json:"xp_transaction_balance_after"`

	// the progress row (or other source) that granted the XP
	XPTransactionReferenceID *uuid.UUID `gorm:"column:xp_transaction_reference_id;type:uuid" json:"xp_transaction_reference_id,omitempty"`

	// JSONB copy of the rules.XPBreakdown shown to the user
	XPTransactionBreakdown datatypes.JSON `gorm:"column:xp_transaction_breakdown;type:jsonb" json:"xp_transaction_breakdown,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (XPTransactionModel) TableName() string {
	return "xp_transactions"
}

func (m *XPTransactionModel) BeforeCreate(tx *gorm.DB) error {
	if m.XPTransactionID == uuid.Nil {
		m.XPTransactionID = uuid.New()
	}
	return nil
}
