package transfer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request is one transfer order. CallerOwnerID is the verified identity
// of the caller; the coordinator rejects transfers from wallets the
// caller does not own. IdempotencyKey is optional; when present,
// retries with the same key replay the original result.
type Request struct {
	SenderWalletID   uint
	ReceiverWalletID uint
	Amount           decimal.Decimal
	Currency         string
	CallerOwnerID    uint
	Description      string
	IdempotencyKey   string
}

// Result is the outcome of a completed transfer.
type Result struct {
	TransferID       string          `json:"transfer_id"`
	SenderWalletID   uint            `json:"sender_wallet_id"`
	ReceiverWalletID uint            `json:"receiver_wallet_id"`
	Amount           decimal.Decimal `json:"amount"`
	Fee              decimal.Decimal `json:"fee"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
	SenderLegID      uint            `json:"sender_leg_id"`
	ReceiverLegID    uint            `json:"receiver_leg_id"`
	Timestamp        time.Time       `json:"timestamp"`
}

// Config bounds the coordinator's retry behavior. Compensation retries
// protect the invariant that a transfer never takes effect on only one
// side; the attempt cap is the escalation threshold beyond which the
// transfer is marked inconsistent for manual reconciliation.
type Config struct {
	StepTimeout             time.Duration
	CompensationMaxAttempts int
	CompensationBaseDelay   time.Duration
	CompensationMaxDelay    time.Duration
	RecordMaxAttempts       int
}

// Defaults applied by NewService when fields are zero.
const (
	DefaultStepTimeout             = 10 * time.Second
	DefaultCompensationMaxAttempts = 5
	DefaultCompensationBaseDelay   = 100 * time.Millisecond
	DefaultCompensationMaxDelay    = 5 * time.Second
	DefaultRecordMaxAttempts       = 5
)

func (c *Config) applyDefaults() {
	if c.StepTimeout == 0 {
		c.StepTimeout = DefaultStepTimeout
	}
	if c.CompensationMaxAttempts == 0 {
		c.CompensationMaxAttempts = DefaultCompensationMaxAttempts
	}
	if c.CompensationBaseDelay == 0 {
		c.CompensationBaseDelay = DefaultCompensationBaseDelay
	}
	if c.CompensationMaxDelay == 0 {
		c.CompensationMaxDelay = DefaultCompensationMaxDelay
	}
	if c.RecordMaxAttempts == 0 {
		c.RecordMaxAttempts = DefaultRecordMaxAttempts
	}
}
