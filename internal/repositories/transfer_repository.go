package repositories

import (
	"context"
	"errors"
	"fmt"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"

	"gorm.io/gorm"
)

// TransferRepository persists transfer orchestration state. Every
// status transition is written through Update so a crash mid-transfer
// leaves a reconcilable trail.
type TransferRepository interface {
	Create(ctx context.Context, transfer *models.Transfer) error
	Update(ctx context.Context, transfer *models.Transfer) error
	GetByReference(ctx context.Context, referenceID string) (*models.Transfer, error)
	ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]models.Transfer, int64, error)
	// ListNonTerminal returns transfers stuck in an intermediate state,
	// for startup recovery and operator tooling.
	ListNonTerminal(ctx context.Context) ([]models.Transfer, error)
}

type transferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *transferRepository) Update(ctx context.Context, transfer *models.Transfer) error {
	if err := r.db.WithContext(ctx).Save(transfer).Error; err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	return nil
}

func (r *transferRepository) GetByReference(ctx context.Context, referenceID string) (*models.Transfer, error) {
	var transfer models.Transfer
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		First(&transfer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &transfer, nil
}

func (r *transferRepository) ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]models.Transfer, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Transfer{}).
		Where("sender_owner_id = ? OR receiver_owner_id = ?", ownerID, ownerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	var transfers []models.Transfer
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&transfers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, total, nil
}

func (r *transferRepository) ListNonTerminal(ctx context.Context) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{
			models.TransferStatusCompleted,
			models.TransferStatusFailed,
			models.TransferStatusCompensated,
			models.TransferStatusInconsistent,
		}).
		Order("created_at ASC").
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list non-terminal transfers: %w", err)
	}
	return transfers, nil
}
