package ledger

import (
	"context"

	"github.com/taqume/toycell-be/internal/models"

	"github.com/shopspring/decimal"
)

// Mutation describes one balance change together with the ledger entry
// metadata recorded alongside it.
type Mutation struct {
	WalletID       uint
	Amount         decimal.Decimal
	Currency       string
	EntryType      string
	ReferenceID    string
	RelatedOwnerID *uint
	Description    string
}

// MutationResult is the committed outcome of a debit or credit.
type MutationResult struct {
	WalletID     uint
	OwnerID      uint
	EntryID      uint
	BalanceAfter decimal.Decimal
}

// Statistics aggregates an owner's ledger activity per entry type.
type Statistics struct {
	TotalTransactions  int64           `json:"total_transactions"`
	DepositCount       int64           `json:"deposit_count"`
	WithdrawCount      int64           `json:"withdraw_count"`
	TransferInCount    int64           `json:"transfer_in_count"`
	TransferOutCount   int64           `json:"transfer_out_count"`
	TotalDeposits      decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals   decimal.Decimal `json:"total_withdrawals"`
	TotalTransfersIn   decimal.Decimal `json:"total_transfers_in"`
	TotalTransfersOut  decimal.Decimal `json:"total_transfers_out"`
	NetBalance         decimal.Decimal `json:"net_balance"`
}

// WalletCache is the optional read cache in front of wallet lookups.
type WalletCache interface {
	Get(ctx context.Context, walletID uint) (*models.Wallet, error)
	Set(ctx context.Context, wallet *models.Wallet) error
	Invalidate(ctx context.Context, walletID uint) error
}

// NoopWalletCache satisfies WalletCache when no cache is configured.
type NoopWalletCache struct{}

func (NoopWalletCache) Get(context.Context, uint) (*models.Wallet, error) { return nil, nil }
func (NoopWalletCache) Set(context.Context, *models.Wallet) error         { return nil }
func (NoopWalletCache) Invalidate(context.Context, uint) error            { return nil }
