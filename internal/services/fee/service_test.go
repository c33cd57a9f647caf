package fee

import (
	"context"
	"testing"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuleRepo struct {
	rules []models.FeeRule
}

func (f *fakeRuleRepo) FindApplicable(_ context.Context, currency string, amount decimal.Decimal) (*models.FeeRule, error) {
	var best *models.FeeRule
	for i := range f.rules {
		r := &f.rules[i]
		if r.Currency != currency || !r.Active {
			continue
		}
		if amount.LessThan(r.MinAmount) {
			continue
		}
		if r.MaxAmount != nil && amount.GreaterThan(*r.MaxAmount) {
			continue
		}
		if best == nil ||
			r.Priority > best.Priority ||
			(r.Priority == best.Priority && r.MinAmount.GreaterThan(best.MinAmount)) {
			best = r
		}
	}
	if best == nil {
		return nil, domainerr.ErrFeeRuleNotFound
	}
	return best, nil
}

func (f *fakeRuleRepo) Create(_ context.Context, rule *models.FeeRule) error {
	rule.ID = uint(len(f.rules) + 1)
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeRuleRepo) Update(_ context.Context, rule *models.FeeRule) error {
	for i := range f.rules {
		if f.rules[i].ID == rule.ID {
			f.rules[i] = *rule
			return nil
		}
	}
	return domainerr.ErrFeeRuleNotFound
}

func (f *fakeRuleRepo) Delete(_ context.Context, id uint) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return domainerr.ErrFeeRuleNotFound
}

func (f *fakeRuleRepo) GetByID(_ context.Context, id uint) (*models.FeeRule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			rule := f.rules[i]
			return &rule, nil
		}
	}
	return nil, domainerr.ErrFeeRuleNotFound
}

func (f *fakeRuleRepo) ListByCurrency(_ context.Context, currency string, activeOnly bool) ([]models.FeeRule, error) {
	var out []models.FeeRule
	for _, r := range f.rules {
		if r.Currency == currency && (!activeOnly || r.Active) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) ListAll(_ context.Context) ([]models.FeeRule, error) {
	return f.rules, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestService(rules ...models.FeeRule) Service {
	return NewService(&fakeRuleRepo{rules: rules}, zerolog.Nop())
}

func standardTRYRule() models.FeeRule {
	return models.FeeRule{
		ID:            1,
		Currency:      "TRY",
		MinAmount:     decimal.Zero,
		FeePercentage: dec("1"),
		FixedFee:      decimal.Zero,
		MinFee:        dec("1"),
		Active:        true,
	}
}

func TestCalculateFee(t *testing.T) {
	tests := []struct {
		name    string
		rule    models.FeeRule
		amount  string
		wantFee string
	}{
		{
			name:    "one percent of round amount",
			rule:    standardTRYRule(),
			amount:  "200.00",
			wantFee: "2.00",
		},
		{
			name:    "rounds half up to two decimals",
			rule:    standardTRYRule(),
			amount:  "100.50", // 1% = 1.005 -> 1.01
			wantFee: "1.01",
		},
		{
			name:    "min fee floor applies",
			rule:    standardTRYRule(),
			amount:  "50.00", // 1% = 0.50, floored to 1.00
			wantFee: "1.00",
		},
		{
			name: "fixed fee added to percentage",
			rule: models.FeeRule{
				ID:            2,
				Currency:      "TRY",
				MinAmount:     decimal.Zero,
				FeePercentage: dec("2"),
				FixedFee:      dec("0.25"),
				MinFee:        decimal.Zero,
				Active:        true,
			},
			amount:  "100.00", // 2.00 + 0.25
			wantFee: "2.25",
		},
		{
			name: "max fee cap applies",
			rule: models.FeeRule{
				ID:            3,
				Currency:      "TRY",
				MinAmount:     decimal.Zero,
				FeePercentage: dec("1"),
				FixedFee:      decimal.Zero,
				MinFee:        decimal.Zero,
				MaxFee:        decPtr("5.00"),
				Active:        true,
			},
			amount:  "10000.00", // 100.00 capped to 5.00
			wantFee: "5.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.rule)

			calc, err := svc.CalculateFee(context.Background(), dec(tt.amount), "TRY")
			require.NoError(t, err)

			assert.True(t, calc.FeeAmount.Equal(dec(tt.wantFee)),
				"fee = %s, want %s", calc.FeeAmount, tt.wantFee)
			assert.True(t, calc.TotalAmount.Equal(dec(tt.amount).Add(dec(tt.wantFee))))
			assert.Equal(t, tt.rule.ID, calc.RuleID)
		})
	}
}

func TestCalculateFee_RuleSelection(t *testing.T) {
	lowBand := models.FeeRule{
		ID:            1,
		Currency:      "TRY",
		MinAmount:     decimal.Zero,
		MaxAmount:     decPtr("100.00"),
		FeePercentage: dec("2"),
		FixedFee:      decimal.Zero,
		MinFee:        decimal.Zero,
		Active:        true,
		Priority:      0,
	}
	highBand := models.FeeRule{
		ID:            2,
		Currency:      "TRY",
		MinAmount:     dec("100.01"),
		FeePercentage: dec("1"),
		FixedFee:      decimal.Zero,
		MinFee:        decimal.Zero,
		Active:        true,
		Priority:      0,
	}
	priority := models.FeeRule{
		ID:            3,
		Currency:      "TRY",
		MinAmount:     decimal.Zero,
		FeePercentage: dec("0.5"),
		FixedFee:      decimal.Zero,
		MinFee:        decimal.Zero,
		Active:        true,
		Priority:      10,
	}

	t.Run("amount band selects rule", func(t *testing.T) {
		svc := newTestService(lowBand, highBand)

		calc, err := svc.CalculateFee(context.Background(), dec("50.00"), "TRY")
		require.NoError(t, err)
		assert.Equal(t, uint(1), calc.RuleID)

		calc, err = svc.CalculateFee(context.Background(), dec("500.00"), "TRY")
		require.NoError(t, err)
		assert.Equal(t, uint(2), calc.RuleID)
	})

	t.Run("higher priority wins within band", func(t *testing.T) {
		svc := newTestService(lowBand, priority)

		calc, err := svc.CalculateFee(context.Background(), dec("50.00"), "TRY")
		require.NoError(t, err)
		assert.Equal(t, uint(3), calc.RuleID)
	})
}

func TestCalculateFee_Fallback(t *testing.T) {
	svc := newTestService() // no rules configured

	calc, err := svc.CalculateFee(context.Background(), dec("50.00"), "TRY")
	require.NoError(t, err)

	// 1% + 1 fixed = 1.50, above the min fee of 1.
	assert.True(t, calc.FeeAmount.Equal(dec("1.50")), "fee = %s", calc.FeeAmount)
	assert.Equal(t, uint(0), calc.RuleID)
}

func TestCalculateFee_InvalidAmount(t *testing.T) {
	svc := newTestService(standardTRYRule())

	_, err := svc.CalculateFee(context.Background(), decimal.Zero, "TRY")
	assert.ErrorIs(t, err, domainerr.ErrInvalidAmount)

	_, err = svc.CalculateFee(context.Background(), dec("-10.00"), "TRY")
	assert.ErrorIs(t, err, domainerr.ErrInvalidAmount)
}

func TestRuleValidation(t *testing.T) {
	svc := newTestService()

	t.Run("unsupported currency rejected", func(t *testing.T) {
		_, err := svc.CreateRule(context.Background(), RuleRequest{
			Currency:      "XXX",
			FeePercentage: dec("1"),
		})
		assert.ErrorIs(t, err, domainerr.ErrValidation)
	})

	t.Run("missing currency rejected", func(t *testing.T) {
		_, err := svc.CreateRule(context.Background(), RuleRequest{
			FeePercentage: dec("1"),
		})
		assert.ErrorIs(t, err, domainerr.ErrValidation)
	})

	t.Run("max amount below min amount rejected", func(t *testing.T) {
		_, err := svc.CreateRule(context.Background(), RuleRequest{
			Currency:      "TRY",
			MinAmount:     dec("100.00"),
			MaxAmount:     decPtr("50.00"),
			FeePercentage: dec("1"),
		})
		assert.ErrorIs(t, err, domainerr.ErrValidation)
	})

	t.Run("max fee below min fee rejected", func(t *testing.T) {
		_, err := svc.CreateRule(context.Background(), RuleRequest{
			Currency:      "TRY",
			FeePercentage: dec("1"),
			MinFee:        dec("5.00"),
			MaxFee:        decPtr("1.00"),
		})
		assert.ErrorIs(t, err, domainerr.ErrValidation)
	})

	t.Run("valid rule created", func(t *testing.T) {
		rule, err := svc.CreateRule(context.Background(), RuleRequest{
			Currency:      "TRY",
			FeePercentage: dec("1"),
			MinFee:        dec("1.00"),
			Active:        true,
		})
		require.NoError(t, err)
		assert.NotZero(t, rule.ID)
	})
}
