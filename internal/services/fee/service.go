// Package fee resolves the transfer fee for an amount and currency
// against a prioritized rule table, and manages that table.
package fee

import (
	"context"
	"errors"
	"fmt"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/repositories"
	"github.com/taqume/toycell-be/internal/validation"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service calculates transfer fees and manages fee rules.
type Service interface {
	// CalculateFee is pure and deterministic given the active rule set:
	// same amount, currency and rules always yield the same fee.
	CalculateFee(ctx context.Context, amount decimal.Decimal, currency string) (*Calculation, error)

	CreateRule(ctx context.Context, req RuleRequest) (*models.FeeRule, error)
	UpdateRule(ctx context.Context, id uint, req RuleRequest) (*models.FeeRule, error)
	DeleteRule(ctx context.Context, id uint) error
	GetRule(ctx context.Context, id uint) (*models.FeeRule, error)
	ListRules(ctx context.Context, currency string, activeOnly bool) ([]models.FeeRule, error)
}

type service struct {
	rules  repositories.FeeRuleRepository
	logger zerolog.Logger
}

func NewService(rules repositories.FeeRuleRepository, logger zerolog.Logger) Service {
	if rules == nil {
		panic("fee rule repository is required")
	}
	return &service{
		rules:  rules,
		logger: logger.With().Str("component", "fee").Logger(),
	}
}

var oneHundred = decimal.NewFromInt(100)

func (s *service) CalculateFee(ctx context.Context, amount decimal.Decimal, currency string) (*Calculation, error) {
	if amount.Sign() <= 0 {
		return nil, domainerr.ErrInvalidAmount
	}

	rule, err := s.rules.FindApplicable(ctx, currency, amount)
	if err != nil {
		if !errors.Is(err, domainerr.ErrFeeRuleNotFound) {
			return nil, fmt.Errorf("fee rule lookup: %w", err)
		}
		// No configured rule matched. The fallback keeps transfers
		// working on an unconfigured system, but an operator should
		// treat this warning as a missing rule, not a feature.
		s.logger.Warn().
			Str("currency", currency).
			Str("amount", amount.String()).
			Msg("no fee rule matched, applying default fallback rule")
		rule = defaultRule(currency)
	}

	feeAmount := computeFee(amount, rule)

	return &Calculation{
		OriginalAmount: amount,
		FeeAmount:      feeAmount,
		TotalAmount:    amount.Add(feeAmount),
		Currency:       currency,
		RuleID:         rule.ID,
		Details:        ruleDetails(rule, currency),
	}, nil
}

// computeFee applies one rule: percentage of the amount (rounded to 2
// decimals, half up) plus the fixed fee, clamped into [minFee, maxFee].
func computeFee(amount decimal.Decimal, rule *models.FeeRule) decimal.Decimal {
	percentageFee := amount.Mul(rule.FeePercentage).DivRound(oneHundred, 2)
	total := percentageFee.Add(rule.FixedFee)

	if total.LessThan(rule.MinFee) {
		total = rule.MinFee
	}
	if rule.MaxFee != nil && total.GreaterThan(*rule.MaxFee) {
		total = *rule.MaxFee
	}
	return total.Round(2)
}

// defaultRule is the fallback applied when no rule matches: 1% + 1
// fixed, min fee 1, no cap. Rule id 0 marks the fallback in responses.
func defaultRule(currency string) *models.FeeRule {
	one := decimal.NewFromInt(1)
	return &models.FeeRule{
		ID:            0,
		Currency:      currency,
		MinAmount:     decimal.Zero,
		MaxAmount:     nil,
		FeePercentage: one,
		FixedFee:      one,
		MinFee:        one,
		MaxFee:        nil,
		Active:        true,
		Priority:      0,
	}
}

func ruleDetails(rule *models.FeeRule, currency string) string {
	maxFee := "unlimited"
	if rule.MaxFee != nil {
		maxFee = rule.MaxFee.StringFixed(2)
	}
	return fmt.Sprintf("Fee: %s%% + %s %s (min: %s, max: %s)",
		rule.FeePercentage.String(), rule.FixedFee.StringFixed(2), currency,
		rule.MinFee.StringFixed(2), maxFee)
}

func validateRule(req RuleRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if req.MaxAmount != nil && req.MaxAmount.LessThan(req.MinAmount) {
		return domainerr.ErrValidation
	}
	if req.MaxFee != nil && req.MaxFee.LessThan(req.MinFee) {
		return domainerr.ErrValidation
	}
	return nil
}

func applyRequest(rule *models.FeeRule, req RuleRequest) {
	rule.Currency = req.Currency
	rule.MinAmount = req.MinAmount
	rule.MaxAmount = req.MaxAmount
	rule.FeePercentage = req.FeePercentage
	rule.FixedFee = req.FixedFee
	rule.MinFee = req.MinFee
	rule.MaxFee = req.MaxFee
	rule.Active = req.Active
	rule.Priority = req.Priority
}

func (s *service) CreateRule(ctx context.Context, req RuleRequest) (*models.FeeRule, error) {
	if err := validateRule(req); err != nil {
		return nil, err
	}

	rule := &models.FeeRule{}
	applyRequest(rule, req)
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("rule_id", rule.ID).Str("currency", rule.Currency).Msg("fee rule created")
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, id uint, req RuleRequest) (*models.FeeRule, error) {
	if err := validateRule(req); err != nil {
		return nil, err
	}

	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyRequest(rule, req)
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("rule_id", rule.ID).Msg("fee rule updated")
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, id uint) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Uint("rule_id", id).Msg("fee rule deleted")
	return nil
}

func (s *service) GetRule(ctx context.Context, id uint) (*models.FeeRule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *service) ListRules(ctx context.Context, currency string, activeOnly bool) ([]models.FeeRule, error) {
	if currency != "" {
		return s.rules.ListByCurrency(ctx, currency, activeOnly)
	}
	return s.rules.ListAll(ctx)
}
