package fee

import (
	"github.com/shopspring/decimal"
)

// Calculation is the result of resolving the fee for one transfer.
type Calculation struct {
	OriginalAmount decimal.Decimal `json:"original_amount"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
	RuleID         uint            `json:"fee_rule_id"`
	Details        string          `json:"fee_details"`
}

// RuleRequest carries the admin-managed fields of a fee rule.
type RuleRequest struct {
	Currency      string           `json:"currency" validate:"required,currency_code"`
	MinAmount     decimal.Decimal  `json:"min_amount"`
	MaxAmount     *decimal.Decimal `json:"max_amount"`
	FeePercentage decimal.Decimal  `json:"fee_percentage"`
	FixedFee      decimal.Decimal  `json:"fixed_fee"`
	MinFee        decimal.Decimal  `json:"min_fee"`
	MaxFee        *decimal.Decimal `json:"max_fee"`
	Active        bool             `json:"active"`
	Priority      int              `json:"priority"`
}
