// Package ledger owns wallet balance state and the append-only entry
// log. Debit and Credit are the only ways a balance changes, and each
// commits the mutation and its entry as one database transaction.
package ledger

import (
	"context"
	"strings"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service is the wallet ledger: balance mutations, wallet lifecycle
// and ledger reads.
type Service interface {
	CreateWallet(ctx context.Context, ownerID uint, currency string) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	GetOwnerWallets(ctx context.Context, ownerID uint) ([]models.Wallet, error)
	SetWalletActive(ctx context.Context, walletID uint, active bool) error

	// Debit subtracts from the wallet balance and appends the matching
	// entry atomically. Concurrent mutations of the same wallet
	// serialize on a row lock.
	Debit(ctx context.Context, m Mutation) (*MutationResult, error)
	// Credit adds to the wallet balance; no upper bound is enforced.
	Credit(ctx context.Context, m Mutation) (*MutationResult, error)

	// Deposit and Withdraw are the owner-facing operations; both verify
	// ownership before mutating.
	Deposit(ctx context.Context, ownerID, walletID uint, amount decimal.Decimal, description string) (*MutationResult, error)
	Withdraw(ctx context.Context, ownerID, walletID uint, amount decimal.Decimal, description string) (*MutationResult, error)

	WalletHistory(ctx context.Context, ownerID, walletID uint, filter repositories.EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error)
	OwnerHistory(ctx context.Context, ownerID uint, filter repositories.EntryFilter, limit, offset int) ([]models.LedgerEntry, int64, error)
	EntriesByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error)
	OwnerStatistics(ctx context.Context, ownerID uint, filter repositories.EntryFilter) (*Statistics, error)
}

type service struct {
	wallets repositories.WalletRepository
	entries repositories.LedgerEntryRepository
	cache   WalletCache
	logger  zerolog.Logger
}

func NewService(
	wallets repositories.WalletRepository,
	entries repositories.LedgerEntryRepository,
	cache WalletCache,
	logger zerolog.Logger,
) Service {
	if wallets == nil {
		panic("wallet repository is required")
	}
	if entries == nil {
		panic("ledger entry repository is required")
	}
	if cache == nil {
		cache = NoopWalletCache{}
	}
	return &service{
		wallets: wallets,
		entries: entries,
		cache:   cache,
		logger:  logger.With().Str("component", "ledger").Logger(),
	}
}

func (s *service) CreateWallet(ctx context.Context, ownerID uint, currency string) (*models.Wallet, error) {
	if _, err := s.wallets.GetByOwnerAndCurrency(ctx, ownerID, currency); err == nil {
		return nil, domainerr.ErrWalletAlreadyExists
	}

	wallet := &models.Wallet{
		OwnerID:  ownerID,
		Currency: currency,
		Balance:  decimal.Zero,
		Active:   true,
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("wallet_id", wallet.ID).
		Uint("owner_id", ownerID).
		Str("currency", currency).
		Msg("wallet created")
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	if wallet, err := s.cache.Get(ctx, walletID); err == nil && wallet != nil {
		return wallet, nil
	}

	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, wallet)
	return wallet, nil
}

func (s *service) GetOwnerWallets(ctx context.Context, ownerID uint) ([]models.Wallet, error) {
	return s.wallets.GetByOwnerID(ctx, ownerID)
}

func (s *service) SetWalletActive(ctx context.Context, walletID uint, active bool) error {
	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return err
	}
	wallet.Active = active
	if err := s.wallets.Update(ctx, wallet); err != nil {
		return err
	}
	_ = s.cache.Invalidate(ctx, walletID)
	return nil
}

func (s *service) Debit(ctx context.Context, m Mutation) (*MutationResult, error) {
	return s.mutate(ctx, m, true)
}

func (s *service) Credit(ctx context.Context, m Mutation) (*MutationResult, error) {
	return s.mutate(ctx, m, false)
}

// mutate holds the atomicity contract: the row lock serializes
// concurrent mutations of one wallet, and the balance update plus its
// entry either both commit or both roll back.
func (s *service) mutate(ctx context.Context, m Mutation, debit bool) (*MutationResult, error) {
	if m.Amount.Sign() <= 0 || m.Amount.Exponent() < -2 {
		return nil, domainerr.ErrInvalidAmount
	}

	var result *MutationResult
	err := s.wallets.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		wallet, err := tx.GetByIDForUpdate(ctx, m.WalletID)
		if err != nil {
			return err
		}
		if wallet.Currency != m.Currency {
			return domainerr.ErrCurrencyMismatch
		}
		if !wallet.Active {
			return domainerr.ErrWalletInactive
		}

		balanceBefore := wallet.Balance
		if debit {
			if balanceBefore.LessThan(m.Amount) {
				return domainerr.ErrInsufficientBalance
			}
			wallet.Balance = balanceBefore.Sub(m.Amount)
		} else {
			wallet.Balance = balanceBefore.Add(m.Amount)
		}

		if err := tx.Update(ctx, wallet); err != nil {
			return err
		}

		entry := &models.LedgerEntry{
			WalletID:       wallet.ID,
			OwnerID:        wallet.OwnerID,
			Type:           m.EntryType,
			Amount:         m.Amount,
			BalanceBefore:  balanceBefore,
			BalanceAfter:   wallet.Balance,
			Currency:       wallet.Currency,
			ReferenceID:    m.ReferenceID,
			RelatedOwnerID: m.RelatedOwnerID,
			Description:    m.Description,
		}
		if err := tx.CreateEntry(ctx, entry); err != nil {
			return err
		}

		result = &MutationResult{
			WalletID:     wallet.ID,
			OwnerID:      wallet.OwnerID,
			EntryID:      entry.ID,
			BalanceAfter: wallet.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, m.WalletID)

	s.logger.Debug().
		Uint("wallet_id", result.WalletID).
		Str("type", m.EntryType).
		Str("amount", m.Amount.String()).
		Str("balance_after", result.BalanceAfter.String()).
		Str("reference_id", m.ReferenceID).
		Msg("ledger entry recorded")
	return result, nil
}

func (s *service) Deposit(ctx context.Context, ownerID, walletID uint, amount decimal.Decimal, description string) (*MutationResult, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.OwnerID != ownerID {
		return nil, domainerr.ErrUnauthorized
	}

	return s.Credit(ctx, Mutation{
		WalletID:    walletID,
		Amount:      amount,
		Currency:    wallet.Currency,
		EntryType:   models.EntryTypeDeposit,
		ReferenceID: newReferenceID(),
		Description: description,
	})
}

func (s *service) Withdraw(ctx context.Context, ownerID, walletID uint, amount decimal.Decimal, description string) (*MutationResult, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.OwnerID != ownerID {
		return nil, domainerr.ErrUnauthorized
	}

	return s.Debit(ctx, Mutation{
		WalletID:    walletID,
		Amount:      amount,
		Currency:    wallet.Currency,
		EntryType:   models.EntryTypeWithdraw,
		ReferenceID: newReferenceID(),
		Description: description,
	})
}

func newReferenceID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString()[:8])
}
