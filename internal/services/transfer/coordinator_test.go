package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/services/fee"
	"github.com/taqume/toycell-be/internal/services/ledger"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger applies debits and credits in memory and records the
// matching ledger entries, with per-call fault injection.
type fakeLedger struct {
	wallets     map[uint]*models.Wallet
	entries     []models.LedgerEntry
	nextEntryID uint

	failDebit       error
	failCreditTimes int // fail the next N credit calls
	creditCalls     int
}

func newFakeLedger(wallets ...*models.Wallet) *fakeLedger {
	l := &fakeLedger{
		wallets:     make(map[uint]*models.Wallet),
		nextEntryID: 1,
	}
	for _, w := range wallets {
		l.wallets[w.ID] = w
	}
	return l
}

func (l *fakeLedger) GetWallet(_ context.Context, walletID uint) (*models.Wallet, error) {
	w, ok := l.wallets[walletID]
	if !ok {
		return nil, domainerr.ErrWalletNotFound
	}
	copied := *w
	return &copied, nil
}

func (l *fakeLedger) Debit(_ context.Context, m ledger.Mutation) (*ledger.MutationResult, error) {
	if l.failDebit != nil {
		return nil, l.failDebit
	}
	w := l.wallets[m.WalletID]
	if w.Balance.LessThan(m.Amount) {
		return nil, domainerr.ErrInsufficientBalance
	}
	before := w.Balance
	w.Balance = before.Sub(m.Amount)
	return l.record(w, m, before), nil
}

func (l *fakeLedger) Credit(_ context.Context, m ledger.Mutation) (*ledger.MutationResult, error) {
	l.creditCalls++
	if l.failCreditTimes > 0 {
		l.failCreditTimes--
		return nil, errors.New("credit unavailable")
	}
	w := l.wallets[m.WalletID]
	before := w.Balance
	w.Balance = before.Add(m.Amount)
	return l.record(w, m, before), nil
}

func (l *fakeLedger) record(w *models.Wallet, m ledger.Mutation, before decimal.Decimal) *ledger.MutationResult {
	entry := models.LedgerEntry{
		ID:             l.nextEntryID,
		WalletID:       w.ID,
		OwnerID:        w.OwnerID,
		Type:           m.EntryType,
		Amount:         m.Amount,
		BalanceBefore:  before,
		BalanceAfter:   w.Balance,
		Currency:       w.Currency,
		ReferenceID:    m.ReferenceID,
		RelatedOwnerID: m.RelatedOwnerID,
		Description:    m.Description,
	}
	l.nextEntryID++
	l.entries = append(l.entries, entry)
	return &ledger.MutationResult{
		WalletID:     w.ID,
		OwnerID:      w.OwnerID,
		EntryID:      entry.ID,
		BalanceAfter: w.Balance,
	}
}

func (l *fakeLedger) EntriesByReference(_ context.Context, referenceID string) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range l.entries {
		if e.ReferenceID == referenceID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeFees charges one percent with a floor of 1.
type fakeFees struct{}

func (fakeFees) CalculateFee(_ context.Context, amount decimal.Decimal, currency string) (*fee.Calculation, error) {
	feeAmount := amount.Div(decimal.NewFromInt(100)).Round(2)
	one := decimal.NewFromInt(1)
	if feeAmount.LessThan(one) {
		feeAmount = one
	}
	return &fee.Calculation{
		OriginalAmount: amount,
		FeeAmount:      feeAmount,
		TotalAmount:    amount.Add(feeAmount),
		Currency:       currency,
		RuleID:         1,
	}, nil
}

type fakeTransferRepo struct {
	transfers map[string]*models.Transfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[string]*models.Transfer)}
}

func (r *fakeTransferRepo) Create(_ context.Context, t *models.Transfer) error {
	t.ID = uint(len(r.transfers) + 1)
	copied := *t
	r.transfers[t.ReferenceID] = &copied
	return nil
}

func (r *fakeTransferRepo) Update(_ context.Context, t *models.Transfer) error {
	copied := *t
	r.transfers[t.ReferenceID] = &copied
	return nil
}

func (r *fakeTransferRepo) GetByReference(_ context.Context, referenceID string) (*models.Transfer, error) {
	t, ok := r.transfers[referenceID]
	if !ok {
		return nil, domainerr.ErrTransferNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTransferRepo) ListByOwner(_ context.Context, ownerID uint, limit, offset int) ([]models.Transfer, int64, error) {
	var out []models.Transfer
	for _, t := range r.transfers {
		if t.SenderOwnerID == ownerID || t.ReceiverOwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransferRepo) ListNonTerminal(_ context.Context) ([]models.Transfer, error) {
	var out []models.Transfer
	for _, t := range r.transfers {
		if !t.Terminal() {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeIdemStore struct {
	results  map[string][]byte
	inFlight map[string]bool
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{
		results:  make(map[string][]byte),
		inFlight: make(map[string]bool),
	}
}

func (s *fakeIdemStore) Begin(_ context.Context, key string, result interface{}) (bool, bool, error) {
	if data, ok := s.results[key]; ok {
		return false, false, json.Unmarshal(data, result)
	}
	if s.inFlight[key] {
		return false, true, nil
	}
	s.inFlight[key] = true
	return true, false, nil
}

func (s *fakeIdemStore) Complete(_ context.Context, key string, result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	s.results[key] = data
	delete(s.inFlight, key)
	return nil
}

func (s *fakeIdemStore) Release(_ context.Context, key string) error {
	delete(s.inFlight, key)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tryWallet(id, ownerID uint, balance string) *models.Wallet {
	return &models.Wallet{
		ID:       id,
		OwnerID:  ownerID,
		Currency: "TRY",
		Balance:  dec(balance),
		Active:   true,
	}
}

type harness struct {
	svc       *service
	ledger    *fakeLedger
	transfers *fakeTransferRepo
	idem      *fakeIdemStore
}

func newHarness(t *testing.T, wallets ...*models.Wallet) *harness {
	t.Helper()
	l := newFakeLedger(wallets...)
	repo := newFakeTransferRepo()
	idem := newFakeIdemStore()

	svc := NewService(l, fakeFees{}, repo, idem, Config{
		StepTimeout:             time.Second,
		CompensationMaxAttempts: 3,
		CompensationBaseDelay:   time.Millisecond,
		CompensationMaxDelay:    time.Millisecond,
		RecordMaxAttempts:       2,
	}, zerolog.Nop()).(*service)
	svc.sleep = func(time.Duration) {}

	return &harness{svc: svc, ledger: l, transfers: repo, idem: idem}
}

func TestTransfer_Success(t *testing.T) {
	h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))

	result, err := h.svc.Transfer(context.Background(), Request{
		SenderWalletID:   1,
		ReceiverWalletID: 2,
		Amount:           dec("50.00"),
		CallerOwnerID:    10,
	})
	require.NoError(t, err)

	// 1% of 50.00 = 0.50, floored to 1.00.
	assert.True(t, result.Fee.Equal(dec("1.00")), "fee = %s", result.Fee)
	assert.True(t, result.Total.Equal(dec("51.00")))
	assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("49.00")), "sender = %s", h.ledger.wallets[1].Balance)
	assert.True(t, h.ledger.wallets[2].Balance.Equal(dec("50.00")), "receiver = %s", h.ledger.wallets[2].Balance)

	// Two legs under one reference, debit for amount plus fee, credit
	// for the amount only.
	entries, err := h.ledger.EntriesByReference(context.Background(), result.TransferID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EntryTypeTransferOut, entries[0].Type)
	assert.True(t, entries[0].Amount.Equal(dec("51.00")))
	require.NotNil(t, entries[0].RelatedOwnerID)
	assert.Equal(t, uint(20), *entries[0].RelatedOwnerID)
	assert.Equal(t, models.EntryTypeTransferIn, entries[1].Type)
	assert.True(t, entries[1].Amount.Equal(dec("50.00")))

	stored, err := h.transfers.GetByReference(context.Background(), result.TransferID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCompleted, stored.Status)
	assert.NotNil(t, stored.SenderLegID)
	assert.NotNil(t, stored.ReceiverLegID)
}

func TestTransfer_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name: "insufficient balance including fee",
			req: Request{
				SenderWalletID:   1,
				ReceiverWalletID: 2,
				Amount:           dec("100.00"), // fee 1.00 pushes total past 100.00
				CallerOwnerID:    10,
			},
			wantErr: domainerr.ErrInsufficientBalance,
		},
		{
			name: "one cent short of amount plus fee",
			req: Request{
				SenderWalletID:   1,
				ReceiverWalletID: 2,
				Amount:           dec("99.01"), // fee 1.00, total 100.01 vs balance 100.00
				CallerOwnerID:    10,
			},
			wantErr: domainerr.ErrInsufficientBalance,
		},
		{
			name: "caller does not own sender wallet",
			req: Request{
				SenderWalletID:   1,
				ReceiverWalletID: 2,
				Amount:           dec("10.00"),
				CallerOwnerID:    99,
			},
			wantErr: domainerr.ErrUnauthorized,
		},
		{
			name: "currency mismatch with request currency",
			req: Request{
				SenderWalletID:   1,
				ReceiverWalletID: 2,
				Amount:           dec("10.00"),
				Currency:         "USD",
				CallerOwnerID:    10,
			},
			wantErr: domainerr.ErrCurrencyMismatch,
		},
		{
			name: "same wallet transfer",
			req: Request{
				SenderWalletID:   1,
				ReceiverWalletID: 1,
				Amount:           dec("10.00"),
				CallerOwnerID:    10,
			},
			wantErr: domainerr.ErrSameWalletTransfer,
		},
		{
			name: "zero amount",
			req: Request{
				SenderWalletID:   1,
				ReceiverWalletID: 2,
				Amount:           decimal.Zero,
				CallerOwnerID:    10,
			},
			wantErr: domainerr.ErrInvalidAmount,
		},
		{
			name: "amount with sub-cent precision",
			req: Request{
				SenderWalletID:   1,
				ReceiverWalletID: 2,
				Amount:           dec("50.005"),
				CallerOwnerID:    10,
			},
			wantErr: domainerr.ErrInvalidAmount,
		},
		{
			name: "unknown sender wallet",
			req: Request{
				SenderWalletID:   77,
				ReceiverWalletID: 2,
				Amount:           dec("10.00"),
				CallerOwnerID:    10,
			},
			wantErr: domainerr.ErrWalletNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))

			_, err := h.svc.Transfer(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)

			// No money moved, no ledger entries written.
			assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("100.00")))
			assert.True(t, h.ledger.wallets[2].Balance.Equal(dec("0.00")))
			assert.Empty(t, h.ledger.entries)
		})
	}
}

func TestTransfer_CurrencyMismatchBetweenWallets(t *testing.T) {
	usd := &models.Wallet{ID: 2, OwnerID: 20, Currency: "USD", Balance: dec("0.00"), Active: true}
	h := newHarness(t, tryWallet(1, 10, "100.00"), usd)

	_, err := h.svc.Transfer(context.Background(), Request{
		SenderWalletID:   1,
		ReceiverWalletID: 2,
		Amount:           dec("10.00"),
		CallerOwnerID:    10,
	})
	assert.ErrorIs(t, err, domainerr.ErrCurrencyMismatch)
}

func TestTransfer_ExactBalanceBoundary(t *testing.T) {
	// 99.00 + 1.00 fee consumes the balance exactly.
	h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))

	result, err := h.svc.Transfer(context.Background(), Request{
		SenderWalletID:   1,
		ReceiverWalletID: 2,
		Amount:           dec("99.00"),
		CallerOwnerID:    10,
	})
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(dec("100.00")))
	assert.True(t, h.ledger.wallets[1].Balance.IsZero())
}

func TestTransfer_CompensationRestoresSender(t *testing.T) {
	h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))
	h.ledger.failCreditTimes = 1 // receiver credit fails, compensation credit succeeds

	_, err := h.svc.Transfer(context.Background(), Request{
		SenderWalletID:   1,
		ReceiverWalletID: 2,
		Amount:           dec("50.00"),
		CallerOwnerID:    10,
	})
	assert.ErrorIs(t, err, domainerr.ErrTransferCompensated)

	// The full debit (amount plus fee) came back.
	assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("100.00")), "sender = %s", h.ledger.wallets[1].Balance)
	assert.True(t, h.ledger.wallets[2].Balance.IsZero())

	nonTerminal, err := h.transfers.ListNonTerminal(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nonTerminal)

	for _, stored := range h.transfers.transfers {
		assert.Equal(t, models.TransferStatusCompensated, stored.Status)
		assert.NotEmpty(t, stored.FailureReason)
	}
}

func TestTransfer_CompensationRetriesWithBackoff(t *testing.T) {
	h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))
	h.ledger.failCreditTimes = 3 // receiver credit plus first two compensation attempts

	var slept int
	h.svc.sleep = func(time.Duration) { slept++ }

	_, err := h.svc.Transfer(context.Background(), Request{
		SenderWalletID:   1,
		ReceiverWalletID: 2,
		Amount:           dec("50.00"),
		CallerOwnerID:    10,
	})
	assert.ErrorIs(t, err, domainerr.ErrTransferCompensated)
	assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("100.00")))
	assert.Equal(t, 2, slept, "two backoff sleeps before the third attempt")
}

func TestTransfer_InconsistentAfterExhaustedCompensation(t *testing.T) {
	h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))
	h.ledger.failCreditTimes = 4 // receiver credit plus all three compensation attempts

	_, err := h.svc.Transfer(context.Background(), Request{
		SenderWalletID:   1,
		ReceiverWalletID: 2,
		Amount:           dec("50.00"),
		CallerOwnerID:    10,
	})
	assert.ErrorIs(t, err, domainerr.ErrTransferInconsistent)

	// The discrepancy is visible, not silently absorbed.
	assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("49.00")))
	for _, stored := range h.transfers.transfers {
		assert.Equal(t, models.TransferStatusInconsistent, stored.Status)
	}
}

func TestTransfer_DebitFailureMarksFailed(t *testing.T) {
	h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))
	h.ledger.failDebit = errors.New("database down")

	_, err := h.svc.Transfer(context.Background(), Request{
		SenderWalletID:   1,
		ReceiverWalletID: 2,
		Amount:           dec("50.00"),
		CallerOwnerID:    10,
	})
	require.Error(t, err)

	assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("100.00")))
	for _, stored := range h.transfers.transfers {
		assert.Equal(t, models.TransferStatusFailed, stored.Status)
	}
}

func TestTransfer_Idempotency(t *testing.T) {
	t.Run("replay returns stored result without moving funds again", func(t *testing.T) {
		h := newHarness(t, tryWallet(1, 10, "200.00"), tryWallet(2, 20, "0.00"))

		req := Request{
			SenderWalletID:   1,
			ReceiverWalletID: 2,
			Amount:           dec("50.00"),
			CallerOwnerID:    10,
			IdempotencyKey:   "key-1",
		}

		first, err := h.svc.Transfer(context.Background(), req)
		require.NoError(t, err)

		second, err := h.svc.Transfer(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first.TransferID, second.TransferID)

		// Executed once.
		assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("149.00")))
		assert.True(t, h.ledger.wallets[2].Balance.Equal(dec("50.00")))
		assert.Len(t, h.ledger.entries, 2)
	})

	t.Run("in-flight key is rejected", func(t *testing.T) {
		h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))
		h.idem.inFlight["key-2"] = true

		_, err := h.svc.Transfer(context.Background(), Request{
			SenderWalletID:   1,
			ReceiverWalletID: 2,
			Amount:           dec("10.00"),
			CallerOwnerID:    10,
			IdempotencyKey:   "key-2",
		})
		assert.ErrorIs(t, err, domainerr.ErrDuplicateTransfer)
	})

	t.Run("key released after pre-debit failure allows retry", func(t *testing.T) {
		h := newHarness(t, tryWallet(1, 10, "5.00"), tryWallet(2, 20, "0.00"))

		req := Request{
			SenderWalletID:   1,
			ReceiverWalletID: 2,
			Amount:           dec("50.00"),
			CallerOwnerID:    10,
			IdempotencyKey:   "key-3",
		}
		_, err := h.svc.Transfer(context.Background(), req)
		assert.ErrorIs(t, err, domainerr.ErrInsufficientBalance)
		assert.False(t, h.idem.inFlight["key-3"])

		// Top up and retry with the same key.
		h.ledger.wallets[1].Balance = dec("100.00")
		_, err = h.svc.Transfer(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("key stays claimed after inconsistent outcome", func(t *testing.T) {
		h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))
		h.ledger.failCreditTimes = 4

		req := Request{
			SenderWalletID:   1,
			ReceiverWalletID: 2,
			Amount:           dec("50.00"),
			CallerOwnerID:    10,
			IdempotencyKey:   "key-4",
		}
		_, err := h.svc.Transfer(context.Background(), req)
		assert.ErrorIs(t, err, domainerr.ErrTransferInconsistent)

		_, err = h.svc.Transfer(context.Background(), req)
		assert.ErrorIs(t, err, domainerr.ErrDuplicateTransfer)
	})
}

func TestRecover(t *testing.T) {
	t.Run("no debit recorded marks failed", func(t *testing.T) {
		h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))
		require.NoError(t, h.transfers.Create(context.Background(), &models.Transfer{
			ReferenceID:      "TRF-stuck-1",
			SenderWalletID:   1,
			ReceiverWalletID: 2,
			SenderOwnerID:    10,
			ReceiverOwnerID:  20,
			Amount:           dec("50.00"),
			FeeAmount:        dec("1.00"),
			TotalDebit:       dec("51.00"),
			Currency:         "TRY",
			Status:           models.TransferStatusFeeComputed,
		}))

		require.NoError(t, h.svc.Recover(context.Background()))

		stored, err := h.transfers.GetByReference(context.Background(), "TRF-stuck-1")
		require.NoError(t, err)
		assert.Equal(t, models.TransferStatusFailed, stored.Status)
		assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("100.00")))
	})

	t.Run("both legs present marks completed", func(t *testing.T) {
		h := newHarness(t, tryWallet(1, 10, "49.00"), tryWallet(2, 20, "50.00"))
		receiverOwner, senderOwner := uint(20), uint(10)
		h.ledger.entries = []models.LedgerEntry{
			{ID: 1, WalletID: 1, OwnerID: 10, Type: models.EntryTypeTransferOut, Amount: dec("51.00"), Currency: "TRY", ReferenceID: "TRF-stuck-2", RelatedOwnerID: &receiverOwner},
			{ID: 2, WalletID: 2, OwnerID: 20, Type: models.EntryTypeTransferIn, Amount: dec("50.00"), Currency: "TRY", ReferenceID: "TRF-stuck-2", RelatedOwnerID: &senderOwner},
		}
		require.NoError(t, h.transfers.Create(context.Background(), &models.Transfer{
			ReferenceID:      "TRF-stuck-2",
			SenderWalletID:   1,
			ReceiverWalletID: 2,
			SenderOwnerID:    10,
			ReceiverOwnerID:  20,
			Amount:           dec("50.00"),
			FeeAmount:        dec("1.00"),
			TotalDebit:       dec("51.00"),
			Currency:         "TRY",
			Status:           models.TransferStatusCredited,
		}))

		require.NoError(t, h.svc.Recover(context.Background()))

		stored, err := h.transfers.GetByReference(context.Background(), "TRF-stuck-2")
		require.NoError(t, err)
		assert.Equal(t, models.TransferStatusCompleted, stored.Status)
		require.NotNil(t, stored.SenderLegID)
		require.NotNil(t, stored.ReceiverLegID)
		// Balances untouched by recovery.
		assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("49.00")))
		assert.True(t, h.ledger.wallets[2].Balance.Equal(dec("50.00")))
	})

	t.Run("debit without credit is compensated", func(t *testing.T) {
		h := newHarness(t, tryWallet(1, 10, "49.00"), tryWallet(2, 20, "0.00"))
		receiverOwner := uint(20)
		h.ledger.entries = []models.LedgerEntry{
			{ID: 1, WalletID: 1, OwnerID: 10, Type: models.EntryTypeTransferOut, Amount: dec("51.00"), Currency: "TRY", ReferenceID: "TRF-stuck-3", RelatedOwnerID: &receiverOwner},
		}
		h.ledger.nextEntryID = 2
		require.NoError(t, h.transfers.Create(context.Background(), &models.Transfer{
			ReferenceID:      "TRF-stuck-3",
			SenderWalletID:   1,
			ReceiverWalletID: 2,
			SenderOwnerID:    10,
			ReceiverOwnerID:  20,
			Amount:           dec("50.00"),
			FeeAmount:        dec("1.00"),
			TotalDebit:       dec("51.00"),
			Currency:         "TRY",
			Status:           models.TransferStatusDebited,
		}))

		require.NoError(t, h.svc.Recover(context.Background()))

		stored, err := h.transfers.GetByReference(context.Background(), "TRF-stuck-3")
		require.NoError(t, err)
		assert.Equal(t, models.TransferStatusCompensated, stored.Status)
		assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("100.00")), "sender = %s", h.ledger.wallets[1].Balance)
		assert.True(t, h.ledger.wallets[2].Balance.IsZero())
	})

	t.Run("compensation already recorded marks compensated", func(t *testing.T) {
		h := newHarness(t, tryWallet(1, 10, "100.00"), tryWallet(2, 20, "0.00"))
		receiverOwner := uint(20)
		h.ledger.entries = []models.LedgerEntry{
			{ID: 1, WalletID: 1, OwnerID: 10, Type: models.EntryTypeTransferOut, Amount: dec("51.00"), Currency: "TRY", ReferenceID: "TRF-stuck-4", RelatedOwnerID: &receiverOwner},
			{ID: 2, WalletID: 1, OwnerID: 10, Type: models.EntryTypeTransferIn, Amount: dec("51.00"), Currency: "TRY", ReferenceID: "TRF-stuck-4", RelatedOwnerID: &receiverOwner},
		}
		require.NoError(t, h.transfers.Create(context.Background(), &models.Transfer{
			ReferenceID:      "TRF-stuck-4",
			SenderWalletID:   1,
			ReceiverWalletID: 2,
			SenderOwnerID:    10,
			ReceiverOwnerID:  20,
			TotalDebit:       dec("51.00"),
			Currency:         "TRY",
			Status:           models.TransferStatusCompensating,
		}))

		require.NoError(t, h.svc.Recover(context.Background()))

		stored, err := h.transfers.GetByReference(context.Background(), "TRF-stuck-4")
		require.NoError(t, err)
		assert.Equal(t, models.TransferStatusCompensated, stored.Status)
		// No extra credit issued.
		assert.True(t, h.ledger.wallets[1].Balance.Equal(dec("100.00")))
	})
}
