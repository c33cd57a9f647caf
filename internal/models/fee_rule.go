package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeRule defines how the transfer fee is computed for a currency and
// amount band. Rules are managed by admins and consumed read-only by
// the fee resolver. A nil MaxAmount or MaxFee means unbounded.
type FeeRule struct {
	ID            uint             `gorm:"primarykey" json:"id"`
	Currency      string           `gorm:"size:3;not null;index" json:"currency"`
	MinAmount     decimal.Decimal  `gorm:"type:numeric(19,2);not null" json:"min_amount"`
	MaxAmount     *decimal.Decimal `gorm:"type:numeric(19,2)" json:"max_amount,omitempty"`
	FeePercentage decimal.Decimal  `gorm:"type:numeric(5,2);not null" json:"fee_percentage"`
	FixedFee      decimal.Decimal  `gorm:"type:numeric(19,2);not null" json:"fixed_fee"`
	MinFee        decimal.Decimal  `gorm:"type:numeric(19,2);not null" json:"min_fee"`
	MaxFee        *decimal.Decimal `gorm:"type:numeric(19,2)" json:"max_fee,omitempty"`
	Active        bool             `gorm:"not null;default:true" json:"active"`
	Priority      int              `gorm:"not null;default:0" json:"priority"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
