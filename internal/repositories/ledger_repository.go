package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/taqume/toycell-be/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryFilter narrows ledger entry listings. Zero values mean "no filter".
type EntryFilter struct {
	Type     string
	Currency string
	From     time.Time
	To       time.Time
}

// LedgerEntryRepository is the read side of the ledger: paginated
// history and aggregate statistics. Entries are only ever written
// through WalletRepository.CreateEntry.
type LedgerEntryRepository interface {
	ListByWallet(ctx context.Context, walletID uint, filter EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error)
	ListByOwner(ctx context.Context, ownerID uint, filter EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error)
	FindByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error)
	CountByOwnerAndType(ctx context.Context, ownerID uint, entryType string, filter EntryFilter) (int64, error)
	SumByOwnerAndType(ctx context.Context, ownerID uint, entryType string, filter EntryFilter) (decimal.Decimal, error)
}

type ledgerEntryRepository struct {
	db *gorm.DB
}

func NewLedgerEntryRepository(db *gorm.DB) LedgerEntryRepository {
	return &ledgerEntryRepository{db: db}
}

func (r *ledgerEntryRepository) applyFilter(q *gorm.DB, filter EntryFilter) *gorm.DB {
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Currency != "" {
		q = q.Where("currency = ?", filter.Currency)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at <= ?", filter.To)
	}
	return q
}

func (r *ledgerEntryRepository) list(ctx context.Context, cond string, id uint, filter EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error) {
	q := r.applyFilter(r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where(cond, id), filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	var entries []models.LedgerEntry
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, total, nil
}

func (r *ledgerEntryRepository) ListByWallet(ctx context.Context, walletID uint, filter EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error) {
	return r.list(ctx, "wallet_id = ?", walletID, filter, limit, offset)
}

func (r *ledgerEntryRepository) ListByOwner(ctx context.Context, ownerID uint, filter EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error) {
	return r.list(ctx, "owner_id = ?", ownerID, filter, limit, offset)
}

func (r *ledgerEntryRepository) FindByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find entries by reference: %w", err)
	}
	return entries, nil
}

func (r *ledgerEntryRepository) CountByOwnerAndType(ctx context.Context, ownerID uint, entryType string, filter EntryFilter) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("owner_id = ?", ownerID)
	if entryType != "" {
		q = q.Where("type = ?", entryType)
	}
	if err := r.applyFilter(q, filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

func (r *ledgerEntryRepository) SumByOwnerAndType(ctx context.Context, ownerID uint, entryType string, filter EntryFilter) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("owner_id = ? AND type = ?", ownerID, entryType)
	err := r.applyFilter(q, filter).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum entries: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
