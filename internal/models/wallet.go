package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a single-currency balance for one owner.
// Exactly one wallet exists per (owner, currency) pair and its balance
// never goes below zero.
type Wallet struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OwnerID   uint            `gorm:"uniqueIndex:idx_owner_currency;not null" json:"owner_id"`
	Currency  string          `gorm:"uniqueIndex:idx_owner_currency;size:3;not null" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:numeric(19,2);not null;default:0" json:"balance"`
	Active    bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Wallets always open empty regardless of what the caller set.
	w.Balance = decimal.Zero
	return nil
}
