package repositories

import (
	"context"
	"errors"
	"fmt"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeRuleRepository stores the prioritized fee rule table. The resolver
// consumes it read-only; admins manage rules through the CRUD methods.
type FeeRuleRepository interface {
	// FindApplicable returns the best matching active rule for the
	// currency and amount: highest priority first, ties broken by the
	// tightest applicable lower bound. Returns ErrFeeRuleNotFound when
	// no rule matches.
	FindApplicable(ctx context.Context, currency string, amount decimal.Decimal) (*models.FeeRule, error)
	Create(ctx context.Context, rule *models.FeeRule) error
	Update(ctx context.Context, rule *models.FeeRule) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.FeeRule, error)
	ListByCurrency(ctx context.Context, currency string, activeOnly bool) ([]models.FeeRule, error)
	ListAll(ctx context.Context) ([]models.FeeRule, error)
}

type feeRuleRepository struct {
	db *gorm.DB
}

func NewFeeRuleRepository(db *gorm.DB) FeeRuleRepository {
	return &feeRuleRepository{db: db}
}

func (r *feeRuleRepository) FindApplicable(ctx context.Context, currency string, amount decimal.Decimal) (*models.FeeRule, error) {
	var rule models.FeeRule
	err := r.db.WithContext(ctx).
		Where("currency = ? AND active = ?", currency, true).
		Where("min_amount <= ?", amount).
		Where("max_amount IS NULL OR max_amount >= ?", amount).
		Order("priority DESC, min_amount DESC").
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.ErrFeeRuleNotFound
		}
		return nil, fmt.Errorf("failed to find fee rule: %w", err)
	}
	return &rule, nil
}

func (r *feeRuleRepository) Create(ctx context.Context, rule *models.FeeRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create fee rule: %w", err)
	}
	return nil
}

func (r *feeRuleRepository) Update(ctx context.Context, rule *models.FeeRule) error {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to update fee rule: %w", err)
	}
	return nil
}

func (r *feeRuleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.FeeRule{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete fee rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerr.ErrFeeRuleNotFound
	}
	return nil
}

func (r *feeRuleRepository) GetByID(ctx context.Context, id uint) (*models.FeeRule, error) {
	var rule models.FeeRule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.ErrFeeRuleNotFound
		}
		return nil, fmt.Errorf("failed to get fee rule: %w", err)
	}
	return &rule, nil
}

func (r *feeRuleRepository) ListByCurrency(ctx context.Context, currency string, activeOnly bool) ([]models.FeeRule, error) {
	var rules []models.FeeRule
	q := r.db.WithContext(ctx).Where("currency = ?", currency)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Order("priority DESC, min_amount ASC").Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list fee rules: %w", err)
	}
	return rules, nil
}

func (r *feeRuleRepository) ListAll(ctx context.Context) ([]models.FeeRule, error) {
	var rules []models.FeeRule
	err := r.db.WithContext(ctx).
		Order("currency ASC, priority DESC, min_amount ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list fee rules: %w", err)
	}
	return rules, nil
}
