package ledger

import (
	"context"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/repositories"
)

func (s *service) WalletHistory(ctx context.Context, ownerID, walletID uint, filter repositories.EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, 0, err
	}
	if wallet.OwnerID != ownerID {
		return nil, 0, domainerr.ErrUnauthorized
	}
	return s.entries.ListByWallet(ctx, walletID, filter, limit, offset)
}

func (s *service) OwnerHistory(ctx context.Context, ownerID uint, filter repositories.EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error) {
	return s.entries.ListByOwner(ctx, ownerID, filter, limit, offset)
}

func (s *service) EntriesByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error) {
	return s.entries.FindByReference(ctx, referenceID)
}

// OwnerStatistics computes per-type counts and sums plus the net
// balance (deposits + transfers in − withdrawals − transfers out).
func (s *service) OwnerStatistics(ctx context.Context, ownerID uint, filter repositories.EntryFilter) (*Statistics, error) {
	stats := &Statistics{}

	var err error
	if stats.TotalTransactions, err = s.entries.CountByOwnerAndType(ctx, ownerID, "", filter); err != nil {
		return nil, err
	}

	counts := []struct {
		entryType string
		count     *int64
	}{
		{models.EntryTypeDeposit, &stats.DepositCount},
		{models.EntryTypeWithdraw, &stats.WithdrawCount},
		{models.EntryTypeTransferIn, &stats.TransferInCount},
		{models.EntryTypeTransferOut, &stats.TransferOutCount},
	}
	for _, c := range counts {
		if *c.count, err = s.entries.CountByOwnerAndType(ctx, ownerID, c.entryType, filter); err != nil {
			return nil, err
		}
	}

	if stats.TotalDeposits, err = s.entries.SumByOwnerAndType(ctx, ownerID, models.EntryTypeDeposit, filter); err != nil {
		return nil, err
	}
	if stats.TotalWithdrawals, err = s.entries.SumByOwnerAndType(ctx, ownerID, models.EntryTypeWithdraw, filter); err != nil {
		return nil, err
	}
	if stats.TotalTransfersIn, err = s.entries.SumByOwnerAndType(ctx, ownerID, models.EntryTypeTransferIn, filter); err != nil {
		return nil, err
	}
	if stats.TotalTransfersOut, err = s.entries.SumByOwnerAndType(ctx, ownerID, models.EntryTypeTransferOut, filter); err != nil {
		return nil, err
	}

	stats.NetBalance = stats.TotalDeposits.
		Add(stats.TotalTransfersIn).
		Sub(stats.TotalWithdrawals).
		Sub(stats.TotalTransfersOut)

	return stats, nil
}
