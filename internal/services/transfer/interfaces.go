package transfer

import (
	"context"

	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/services/fee"
	"github.com/taqume/toycell-be/internal/services/ledger"

	"github.com/shopspring/decimal"
)

// WalletLedger is the slice of the ledger service the coordinator
// drives. Debit and Credit atomically append the matching ledger entry.
type WalletLedger interface {
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	Debit(ctx context.Context, m ledger.Mutation) (*ledger.MutationResult, error)
	Credit(ctx context.Context, m ledger.Mutation) (*ledger.MutationResult, error)
	EntriesByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error)
}

// FeeCalculator resolves the fee for a transfer amount and currency.
type FeeCalculator interface {
	CalculateFee(ctx context.Context, amount decimal.Decimal, currency string) (*fee.Calculation, error)
}

// IdempotencyStore deduplicates transfer requests by caller key.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string, result interface{}) (claimed bool, inFlight bool, err error)
	Complete(ctx context.Context, key string, result interface{}) error
	Release(ctx context.Context, key string) error
}

// Service orchestrates funds transfers end to end.
type Service interface {
	Transfer(ctx context.Context, req Request) (*Result, error)
	GetTransfer(ctx context.Context, referenceID string) (*models.Transfer, error)
	ListTransfers(ctx context.Context, ownerID uint, limit, offset int) ([]models.Transfer, int64, error)
	// Recover resolves transfers left in a non-terminal state by a
	// crash: it completes those whose credit already landed and
	// compensates the rest.
	Recover(ctx context.Context) error
}
