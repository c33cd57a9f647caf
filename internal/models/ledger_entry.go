package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry types
const (
	EntryTypeDeposit     = "DEPOSIT"
	EntryTypeWithdraw    = "WITHDRAW"
	EntryTypeTransferIn  = "TRANSFER_IN"
	EntryTypeTransferOut = "TRANSFER_OUT"
)

// LedgerEntry is an immutable record of one balance-changing event.
// Entries are append-only; a completed transfer produces exactly two
// entries sharing one reference id (TRANSFER_OUT on the sender for
// amount+fee, TRANSFER_IN on the receiver for the amount alone).
type LedgerEntry struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	WalletID       uint            `gorm:"index;not null" json:"wallet_id"`
	OwnerID        uint            `gorm:"index;not null" json:"owner_id"`
	Type           string          `gorm:"size:20;not null" json:"type"`
	Amount         decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"amount"`
	BalanceBefore  decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"balance_before"`
	BalanceAfter   decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"balance_after"`
	Currency       string          `gorm:"size:3;not null" json:"currency"`
	ReferenceID    string          `gorm:"size:100;index" json:"reference_id"`
	RelatedOwnerID *uint           `json:"related_owner_id,omitempty"`
	Description    string          `gorm:"size:500" json:"description"`
	CreatedAt      time.Time       `json:"created_at"`
}
