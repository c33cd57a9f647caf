package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer statuses. A transfer moves monotonically forward except for
// the compensation branch entered when a post-debit step fails.
const (
	TransferStatusInitiated      = "INITIATED"
	TransferStatusFeeComputed    = "FEE_COMPUTED"
	TransferStatusDebited        = "DEBITED"
	TransferStatusCredited       = "CREDITED"
	TransferStatusLedgerRecorded = "LEDGER_RECORDED"
	TransferStatusCompleted      = "COMPLETED"
	TransferStatusFailed         = "FAILED"
	TransferStatusCompensating   = "COMPENSATING"
	TransferStatusCompensated    = "COMPENSATED"
	TransferStatusInconsistent   = "INCONSISTENT"
)

// Transfer is the persisted orchestration state of one funds transfer.
// It survives the multi-step debit/credit/record sequence so that a
// crash mid-transfer leaves enough evidence for reconciliation.
type Transfer struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	ReferenceID      string          `gorm:"size:100;uniqueIndex;not null" json:"reference_id"`
	SenderWalletID   uint            `gorm:"index;not null" json:"sender_wallet_id"`
	ReceiverWalletID uint            `gorm:"index;not null" json:"receiver_wallet_id"`
	SenderOwnerID    uint            `gorm:"not null" json:"sender_owner_id"`
	ReceiverOwnerID  uint            `gorm:"not null" json:"receiver_owner_id"`
	Amount           decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"amount"`
	FeeAmount        decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"fee_amount"`
	TotalDebit       decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"total_debit"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Status           string          `gorm:"size:20;not null" json:"status"`
	Description      string          `gorm:"size:500" json:"description"`
	FailureReason    string          `gorm:"size:500" json:"failure_reason,omitempty"`
	SenderLegID      *uint           `json:"sender_leg_id,omitempty"`
	ReceiverLegID    *uint           `json:"receiver_leg_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Terminal reports whether the transfer reached a final state.
func (t *Transfer) Terminal() bool {
	switch t.Status {
	case TransferStatusCompleted, TransferStatusFailed,
		TransferStatusCompensated, TransferStatusInconsistent:
		return true
	}
	return false
}
