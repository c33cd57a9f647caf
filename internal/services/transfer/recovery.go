package transfer

import (
	"context"

	"github.com/taqume/toycell-be/internal/models"
)

// Recover resolves transfers stranded in a non-terminal state, typically
// after a crash between the debit and the final record. The ledger
// entries for the transfer reference are the source of truth: a missing
// debit leg means nothing moved, a present credit leg means the transfer
// finished, and a debit with no credit gets compensated.
func (s *service) Recover(ctx context.Context) error {
	stranded, err := s.transfers.ListNonTerminal(ctx)
	if err != nil {
		return err
	}
	if len(stranded) == 0 {
		return nil
	}

	s.logger.Warn().
		Int("count", len(stranded)).
		Msg("recovering stranded transfers")

	for i := range stranded {
		t := &stranded[i]
		if err := s.recoverOne(ctx, t); err != nil {
			s.logger.Error().Err(err).
				Str("transfer_id", t.ReferenceID).
				Msg("failed to recover transfer")
		}
	}
	return nil
}

func (s *service) recoverOne(ctx context.Context, t *models.Transfer) error {
	entries, err := s.ledger.EntriesByReference(ctx, t.ReferenceID)
	if err != nil {
		return err
	}

	var senderLegID, receiverLegID uint
	compensated := false
	for i := range entries {
		e := &entries[i]
		switch {
		case e.Type == models.EntryTypeTransferOut && e.WalletID == t.SenderWalletID:
			senderLegID = e.ID
		case e.Type == models.EntryTypeTransferIn && e.WalletID == t.ReceiverWalletID:
			receiverLegID = e.ID
		case e.Type == models.EntryTypeTransferIn && e.WalletID == t.SenderWalletID:
			compensated = true
		}
	}

	switch {
	case senderLegID == 0:
		// The debit never committed, so nothing moved.
		t.Status = models.TransferStatusFailed
		t.FailureReason = "interrupted before debit"
		s.logger.Info().
			Str("transfer_id", t.ReferenceID).
			Msg("recovery: no debit recorded, marking failed")
		return s.persistWithRetry(ctx, t)

	case compensated:
		// A credit back to the sender already landed; only the record
		// was lost.
		t.Status = models.TransferStatusCompensated
		t.SenderLegID = &senderLegID
		s.logger.Info().
			Str("transfer_id", t.ReferenceID).
			Msg("recovery: compensation already recorded, marking compensated")
		return s.persistWithRetry(ctx, t)

	case receiverLegID != 0:
		// Both legs landed; only the final record was lost.
		t.Status = models.TransferStatusCompleted
		t.SenderLegID = &senderLegID
		t.ReceiverLegID = &receiverLegID
		s.logger.Info().
			Str("transfer_id", t.ReferenceID).
			Msg("recovery: both legs recorded, marking completed")
		return s.persistWithRetry(ctx, t)

	default:
		// Debited but never credited: the sender is out of pocket, so
		// run the normal compensation branch.
		t.SenderLegID = &senderLegID
		err := s.compensate(ctx, t, errInterruptedAfterDebit)
		if t.Terminal() {
			return nil
		}
		return err
	}
}

type recoveryError string

func (e recoveryError) Error() string { return string(e) }

const errInterruptedAfterDebit = recoveryError("interrupted after debit")
