// Package transfer orchestrates one funds transfer end to end:
// validation, fee computation, the debit/credit pair and the audit
// trail. The debit is the irreversibility boundary; once it commits,
// the transfer must reach COMPLETED, COMPENSATED or INCONSISTENT, and
// compensation retries protect the invariant that a transfer never has
// an effect on only one side.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/repositories"
	"github.com/taqume/toycell-be/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type service struct {
	ledger    WalletLedger
	fees      FeeCalculator
	transfers repositories.TransferRepository
	idem      IdempotencyStore
	cfg       Config
	logger    zerolog.Logger
	sleep     func(time.Duration)
}

// NewService creates the transfer coordinator. idem may be nil, in
// which case requests are not deduplicated.
func NewService(
	walletLedger WalletLedger,
	fees FeeCalculator,
	transfers repositories.TransferRepository,
	idem IdempotencyStore,
	cfg Config,
	logger zerolog.Logger,
) Service {
	if walletLedger == nil {
		panic("wallet ledger is required")
	}
	if fees == nil {
		panic("fee calculator is required")
	}
	if transfers == nil {
		panic("transfer repository is required")
	}
	cfg.applyDefaults()

	return &service{
		ledger:    walletLedger,
		fees:      fees,
		transfers: transfers,
		idem:      idem,
		cfg:       cfg,
		logger:    logger.With().Str("component", "transfer").Logger(),
		sleep:     time.Sleep,
	}
}

func (s *service) Transfer(ctx context.Context, req Request) (*Result, error) {
	// Amounts live in two fractional digits end to end; anything finer
	// would round differently on each persisted leg.
	if req.Amount.Sign() <= 0 || req.Amount.Exponent() < -2 {
		return nil, domainerr.ErrInvalidAmount
	}

	useKey := req.IdempotencyKey != "" && s.idem != nil
	if useKey {
		var cached Result
		claimed, inFlight, err := s.idem.Begin(ctx, req.IdempotencyKey, &cached)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if inFlight {
			return nil, domainerr.ErrDuplicateTransfer
		}
		if !claimed {
			s.logger.Info().
				Str("idempotency_key", req.IdempotencyKey).
				Str("transfer_id", cached.TransferID).
				Msg("replaying completed transfer for idempotency key")
			return &cached, nil
		}
	}

	result, err := s.execute(ctx, req)

	if useKey {
		bg := context.WithoutCancel(ctx)
		switch {
		case err == nil:
			if cErr := s.idem.Complete(bg, req.IdempotencyKey, result); cErr != nil {
				s.logger.Error().Err(cErr).Msg("failed to store idempotency result")
			}
		case errors.Is(err, domainerr.ErrTransferInconsistent):
			// Keep the claim: re-executing an unresolved transfer could
			// double-move funds. The key unblocks when the claim expires
			// or an operator reconciles.
		default:
			if rErr := s.idem.Release(bg, req.IdempotencyKey); rErr != nil {
				s.logger.Error().Err(rErr).Msg("failed to release idempotency key")
			}
		}
	}

	return result, err
}

// execute runs the transfer state machine. Failures before the debit
// abort cleanly; failures after it run the compensation branch.
func (s *service) execute(ctx context.Context, req Request) (*Result, error) {
	// INITIATED: pure validation, nothing mutated yet.
	sender, err := s.getWallet(ctx, req.SenderWalletID)
	if err != nil {
		return nil, err
	}
	if sender.OwnerID != req.CallerOwnerID {
		return nil, domainerr.ErrUnauthorized
	}
	receiver, err := s.getWallet(ctx, req.ReceiverWalletID)
	if err != nil {
		return nil, err
	}
	if sender.Currency != receiver.Currency {
		return nil, domainerr.ErrCurrencyMismatch
	}
	if req.Currency != "" && req.Currency != sender.Currency {
		return nil, domainerr.ErrCurrencyMismatch
	}
	if req.SenderWalletID == req.ReceiverWalletID {
		return nil, domainerr.ErrSameWalletTransfer
	}

	// FEE_COMPUTED: still abortable.
	stepCtx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
	calc, err := s.fees.CalculateFee(stepCtx, req.Amount, sender.Currency)
	cancel()
	if err != nil {
		return nil, err
	}
	totalDebit := req.Amount.Add(calc.FeeAmount)
	if sender.Balance.LessThan(totalDebit) {
		return nil, domainerr.ErrInsufficientBalance
	}

	t := &models.Transfer{
		ReferenceID:      newTransferReference(),
		SenderWalletID:   sender.ID,
		ReceiverWalletID: receiver.ID,
		SenderOwnerID:    sender.OwnerID,
		ReceiverOwnerID:  receiver.OwnerID,
		Amount:           req.Amount,
		FeeAmount:        calc.FeeAmount,
		TotalDebit:       totalDebit,
		Currency:         sender.Currency,
		Status:           models.TransferStatusFeeComputed,
		Description:      req.Description,
	}
	if err := s.transfers.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to record transfer intent: %w", err)
	}

	s.logger.Info().
		Str("transfer_id", t.ReferenceID).
		Uint("sender_wallet_id", sender.ID).
		Uint("receiver_wallet_id", receiver.ID).
		Str("amount", req.Amount.String()).
		Str("fee", calc.FeeAmount.String()).
		Msg("transfer started")

	// DEBITED: the irreversibility boundary. The sender is always
	// debited before the receiver is credited so the worst intermediate
	// state is money withdrawn but not yet delivered.
	stepCtx, cancel = context.WithTimeout(ctx, s.cfg.StepTimeout)
	debitRes, err := s.ledger.Debit(stepCtx, ledger.Mutation{
		WalletID:       sender.ID,
		Amount:         totalDebit,
		Currency:       sender.Currency,
		EntryType:      models.EntryTypeTransferOut,
		ReferenceID:    t.ReferenceID,
		RelatedOwnerID: &receiver.OwnerID,
		Description:    fmt.Sprintf("Transfer to wallet %d (Fee: %s)", receiver.ID, calc.FeeAmount.StringFixed(2)),
	})
	cancel()
	if err != nil {
		s.fail(ctx, t, err)
		return nil, err
	}
	t.Status = models.TransferStatusDebited
	t.SenderLegID = &debitRes.EntryID
	s.persist(ctx, t)

	// The caller can no longer cancel: every step from here runs on a
	// context detached from the request.
	bg := context.WithoutCancel(ctx)

	// CREDITED: the fee is withheld, only the amount moves on.
	stepCtx, cancel = context.WithTimeout(bg, s.cfg.StepTimeout)
	creditRes, err := s.ledger.Credit(stepCtx, ledger.Mutation{
		WalletID:       receiver.ID,
		Amount:         req.Amount,
		Currency:       sender.Currency,
		EntryType:      models.EntryTypeTransferIn,
		ReferenceID:    t.ReferenceID,
		RelatedOwnerID: &sender.OwnerID,
		Description:    fmt.Sprintf("Transfer from wallet %d", sender.ID),
	})
	cancel()
	if err != nil {
		return nil, s.compensate(bg, t, err)
	}
	t.Status = models.TransferStatusCredited
	t.ReceiverLegID = &creditRes.EntryID
	s.persist(bg, t)

	// LEDGER_RECORDED: the two entries were appended by the debit and
	// credit above; what remains is the correlated transfer record.
	// The record is evidence, not a precondition, so it is retried and
	// never compensated.
	t.Status = models.TransferStatusLedgerRecorded
	if err := s.persistWithRetry(bg, t); err != nil {
		s.logger.Error().Err(err).
			Str("transfer_id", t.ReferenceID).
			Msg("transfer completed but record could not be written, escalating")
	}

	t.Status = models.TransferStatusCompleted
	if err := s.persistWithRetry(bg, t); err != nil {
		s.logger.Error().Err(err).
			Str("transfer_id", t.ReferenceID).
			Msg("failed to mark transfer completed")
	}

	s.logger.Info().
		Str("transfer_id", t.ReferenceID).
		Str("sender_balance_after", debitRes.BalanceAfter.String()).
		Str("receiver_balance_after", creditRes.BalanceAfter.String()).
		Msg("transfer completed")

	return &Result{
		TransferID:       t.ReferenceID,
		SenderWalletID:   sender.ID,
		ReceiverWalletID: receiver.ID,
		Amount:           req.Amount,
		Fee:              calc.FeeAmount,
		Total:            totalDebit,
		Currency:         sender.Currency,
		SenderLegID:      debitRes.EntryID,
		ReceiverLegID:    creditRes.EntryID,
		Timestamp:        time.Now().UTC(),
	}, nil
}

// compensate credits the sender back the full debited amount. It is
// the only retried-until-it-succeeds step; exhausting the attempt cap
// marks the transfer INCONSISTENT for manual reconciliation instead of
// silently dropping the discrepancy.
func (s *service) compensate(ctx context.Context, t *models.Transfer, cause error) error {
	s.logger.Error().Err(cause).
		Str("transfer_id", t.ReferenceID).
		Msg("post-debit step failed, compensating sender")

	t.Status = models.TransferStatusCompensating
	t.FailureReason = cause.Error()
	s.persist(ctx, t)

	for attempt := 1; attempt <= s.cfg.CompensationMaxAttempts; attempt++ {
		if attempt > 1 {
			s.sleep(s.backoffDelay(attempt - 1))
		}

		stepCtx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
		_, err := s.ledger.Credit(stepCtx, ledger.Mutation{
			WalletID:       t.SenderWalletID,
			Amount:         t.TotalDebit,
			Currency:       t.Currency,
			EntryType:      models.EntryTypeTransferIn,
			ReferenceID:    t.ReferenceID,
			RelatedOwnerID: &t.ReceiverOwnerID,
			Description:    fmt.Sprintf("Compensation for failed transfer to wallet %d", t.ReceiverWalletID),
		})
		cancel()
		if err == nil {
			t.Status = models.TransferStatusCompensated
			if pErr := s.persistWithRetry(ctx, t); pErr != nil {
				s.logger.Error().Err(pErr).
					Str("transfer_id", t.ReferenceID).
					Msg("failed to record compensation")
			}
			s.logger.Warn().
				Str("transfer_id", t.ReferenceID).
				Int("attempts", attempt).
				Msg("sender compensated, transfer failed cleanly")
			return domainerr.ErrTransferCompensated
		}

		s.logger.Warn().Err(err).
			Str("transfer_id", t.ReferenceID).
			Int("attempt", attempt).
			Msg("compensation attempt failed")
	}

	t.Status = models.TransferStatusInconsistent
	if pErr := s.persistWithRetry(ctx, t); pErr != nil {
		s.logger.Error().Err(pErr).
			Str("transfer_id", t.ReferenceID).
			Msg("failed to record inconsistent state")
	}
	s.logger.Error().
		Str("transfer_id", t.ReferenceID).
		Str("total_debit", t.TotalDebit.String()).
		Msg("compensation exhausted, transfer requires manual reconciliation")
	return domainerr.ErrTransferInconsistent
}

func (s *service) getWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
	defer cancel()
	return s.ledger.GetWallet(stepCtx, walletID)
}

func (s *service) fail(ctx context.Context, t *models.Transfer, cause error) {
	t.Status = models.TransferStatusFailed
	t.FailureReason = cause.Error()
	s.persist(ctx, t)
}

func (s *service) persist(ctx context.Context, t *models.Transfer) {
	if err := s.transfers.Update(ctx, t); err != nil {
		s.logger.Error().Err(err).
			Str("transfer_id", t.ReferenceID).
			Str("status", t.Status).
			Msg("failed to persist transfer status")
	}
}

func (s *service) persistWithRetry(ctx context.Context, t *models.Transfer) error {
	var err error
	for attempt := 1; attempt <= s.cfg.RecordMaxAttempts; attempt++ {
		if attempt > 1 {
			s.sleep(s.backoffDelay(attempt - 1))
		}
		if err = s.transfers.Update(ctx, t); err == nil {
			return nil
		}
	}
	return err
}

func (s *service) backoffDelay(attempt int) time.Duration {
	d := s.cfg.CompensationBaseDelay << uint(attempt-1)
	if d <= 0 || d > s.cfg.CompensationMaxDelay {
		return s.cfg.CompensationMaxDelay
	}
	return d
}

func (s *service) GetTransfer(ctx context.Context, referenceID string) (*models.Transfer, error) {
	return s.transfers.GetByReference(ctx, referenceID)
}

func (s *service) ListTransfers(ctx context.Context, ownerID uint, limit, offset int) ([]models.Transfer, int64, error) {
	return s.transfers.ListByOwner(ctx, ownerID, limit, offset)
}

func newTransferReference() string {
	return "TRF-" + uuid.NewString()
}
