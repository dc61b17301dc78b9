package wallet

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/creatorden/backend/internal/ledger"
	"github.com/creatorden/backend/pkg/db/models"
	apperrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeAccountStore keeps balances in memory. AdjustBalance holds the lock
// across the check and the write, mirroring the conditional UPDATE the real
// repository issues.
type fakeAccountStore struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	ids      map[uuid.UUID]uuid.UUID
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		balances: make(map[uuid.UUID]int64),
		ids:      make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeAccountStore) seed(userID uuid.UUID, balance int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] = balance
	f.ids[userID] = uuid.New()
}

func (f *fakeAccountStore) balance(userID uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

func (f *fakeAccountStore) snapshot() map[uuid.UUID]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make(map[uuid.UUID]int64, len(f.balances))
	for k, v := range f.balances {
		copied[k] = v
	}
	return copied
}

func (f *fakeAccountStore) restore(snap map[uuid.UUID]int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances = snap
}

func (f *fakeAccountStore) WithTx(tx *gorm.DB) AccountRepository { return f }

func (f *fakeAccountStore) Create(ctx context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	f.balances[account.UserID] = account.Balance
	f.ids[account.UserID] = account.ID
	return nil
}

func (f *fakeAccountStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, ok := f.balances[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Account{ID: f.ids[userID], UserID: userID, Balance: balance}, nil
}

func (f *fakeAccountStore) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64, floor int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, ok := f.balances[userID]
	if !ok {
		return false, nil
	}
	if balance+delta < floor {
		return false, nil
	}
	f.balances[userID] = balance + delta
	return true, nil
}

// rollbackTxRunner snapshots account state before the callback and restores
// it when the callback fails, standing in for a real database rollback.
// Transactions run one at a time, the way row locks serialize writers that
// touch the same accounts.
type rollbackTxRunner struct {
	mu    sync.Mutex
	store *fakeAccountStore
}

func (r *rollbackTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []ledger.Entry
	records []*models.TokenTransaction
	failFn  func(entry ledger.Entry) error
}

func (f *fakeLedger) Record(ctx context.Context, entry ledger.Entry) (*models.TokenTransaction, error) {
	return f.RecordTx(ctx, nil, entry)
}

func (f *fakeLedger) RecordTx(ctx context.Context, tx *gorm.DB, entry ledger.Entry) (*models.TokenTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFn != nil {
		if err := f.failFn(entry); err != nil {
			return nil, err
		}
	}
	f.entries = append(f.entries, entry)
	record := &models.TokenTransaction{
		ID:            uuid.New(),
		FromAccountID: entry.FromAccountID,
		ToAccountID:   entry.ToAccountID,
		Amount:        entry.Amount,
		Kind:          entry.Kind,
		PostID:        entry.PostID,
		Note:          entry.Note,
	}
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeLedger) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.TokenTransaction, error) {
	return nil, nil
}

func (f *fakeLedger) SumTipsTo(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func newTestService(t *testing.T, store *fakeAccountStore, ledgerSvc ledger.Service, autoProvision bool) Service {
	t.Helper()
	svc, err := NewService(&rollbackTxRunner{store: store}, store, ledgerSvc, nil, autoProvision)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_Purchase(t *testing.T) {
	store := newFakeAccountStore()
	led := &fakeLedger{}
	userID := uuid.New()
	store.seed(userID, 10)

	svc := newTestService(t, store, led, false)

	account, err := svc.Purchase(context.Background(), userID, 90)
	if err != nil {
		t.Fatalf("Purchase error: %v", err)
	}
	if account.Balance != 100 {
		t.Fatalf("expected balance 100, got %d", account.Balance)
	}
	if store.balance(userID) != 100 {
		t.Fatalf("stored balance mismatch: %d", store.balance(userID))
	}
	if led.count() != 1 {
		t.Fatalf("expected one ledger entry, got %d", led.count())
	}
	entry := led.entries[0]
	if entry.FromAccountID != nil || entry.ToAccountID == nil {
		t.Fatalf("purchase entry should only name a destination: %+v", entry)
	}
}

// driftingStore lands one extra adjustment on a target account the first
// time AdjustBalance runs, standing in for a concurrent writer committing
// between the initial read and the balance update.
type driftingStore struct {
	*fakeAccountStore
	target uuid.UUID
	drift  int64
	once   sync.Once
}

func (d *driftingStore) WithTx(tx *gorm.DB) AccountRepository { return d }

func (d *driftingStore) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64, floor int64) (bool, error) {
	d.once.Do(func() {
		_, _ = d.fakeAccountStore.AdjustBalance(ctx, d.target, d.drift, 0)
	})
	return d.fakeAccountStore.AdjustBalance(ctx, userID, delta, floor)
}

func TestService_PurchaseReturnsCommittedBalance(t *testing.T) {
	base := newFakeAccountStore()
	userID := uuid.New()
	base.seed(userID, 10)
	store := &driftingStore{fakeAccountStore: base, target: userID, drift: 7}

	svc, err := NewService(&rollbackTxRunner{store: base}, store, &fakeLedger{}, nil, false)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	account, err := svc.Purchase(context.Background(), userID, 90)
	if err != nil {
		t.Fatalf("Purchase error: %v", err)
	}
	if base.balance(userID) != 107 {
		t.Fatalf("stored balance: got %d, want 107", base.balance(userID))
	}
	if account.Balance != 107 {
		t.Fatalf("returned balance must match the stored row, got %d", account.Balance)
	}
}

func TestService_TipReportsCurrentAvailableBalance(t *testing.T) {
	base := newFakeAccountStore()
	sender := uuid.New()
	recipient := uuid.New()
	base.seed(sender, 20)
	base.seed(recipient, 0)
	store := &driftingStore{fakeAccountStore: base, target: sender, drift: -5}

	svc, err := NewService(&rollbackTxRunner{store: base}, store, &fakeLedger{}, nil, false)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.Tip(context.Background(), TipInput{
		FromUserID: sender,
		ToUserID:   recipient,
		Amount:     21,
	})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected detail map, got %T", appErr.Details())
	}
	if got := details["available"]; got != int64(15) {
		t.Fatalf("available must reflect the current balance, got %v", got)
	}
}

func TestService_PurchaseTwiceRecordsEachSeparately(t *testing.T) {
	store := newFakeAccountStore()
	led := &fakeLedger{}
	userID := uuid.New()
	store.seed(userID, 0)

	svc := newTestService(t, store, led, false)

	for i := 0; i < 2; i++ {
		account, err := svc.Purchase(context.Background(), userID, 50)
		if err != nil {
			t.Fatalf("purchase %d: %v", i+1, err)
		}
		want := int64(50 * (i + 1))
		if account.Balance != want {
			t.Fatalf("purchase %d: expected balance %d, got %d", i+1, want, account.Balance)
		}
	}

	if store.balance(userID) != 100 {
		t.Fatalf("two purchases of 50 must land exactly 100, got %d", store.balance(userID))
	}
	if led.count() != 2 {
		t.Fatalf("expected two ledger entries, got %d", led.count())
	}
	if led.records[0].ID == led.records[1].ID {
		t.Fatal("repeated purchases must produce distinct transaction records")
	}
}

func TestService_PurchaseUnknownAccount(t *testing.T) {
	store := newFakeAccountStore()
	led := &fakeLedger{}
	svc := newTestService(t, store, led, false)

	_, err := svc.Purchase(context.Background(), uuid.New(), 50)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if led.count() != 0 {
		t.Fatal("failed purchase must not reach the ledger")
	}
}

func TestService_PurchaseAutoProvision(t *testing.T) {
	store := newFakeAccountStore()
	led := &fakeLedger{}
	svc := newTestService(t, store, led, true)

	userID := uuid.New()
	account, err := svc.Purchase(context.Background(), userID, 50)
	if err != nil {
		t.Fatalf("Purchase error: %v", err)
	}
	if account.Balance != 50 {
		t.Fatalf("expected balance 50, got %d", account.Balance)
	}
	if store.balance(userID) != 50 {
		t.Fatalf("stored balance mismatch: %d", store.balance(userID))
	}
}

func TestService_PurchaseInvalidAmount(t *testing.T) {
	store := newFakeAccountStore()
	svc := newTestService(t, store, &fakeLedger{}, false)

	for _, amount := range []int64{0, -1, -100} {
		_, err := svc.Purchase(context.Background(), uuid.New(), amount)
		appErr := apperrors.As(err)
		if appErr == nil || appErr.Code() != apperrors.CodeValidation {
			t.Fatalf("amount %d: expected validation error, got %v", amount, err)
		}
	}
}

func TestService_Tip(t *testing.T) {
	store := newFakeAccountStore()
	led := &fakeLedger{}
	sender := uuid.New()
	recipient := uuid.New()
	store.seed(sender, 100)
	store.seed(recipient, 5)

	svc := newTestService(t, store, led, false)

	note := "keep it up"
	record, err := svc.Tip(context.Background(), TipInput{
		FromUserID: sender,
		ToUserID:   recipient,
		Amount:     30,
		Note:       &note,
	})
	if err != nil {
		t.Fatalf("Tip error: %v", err)
	}
	if record.Amount != 30 || record.Kind != "tip" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if store.balance(sender) != 70 {
		t.Fatalf("sender balance: got %d, want 70", store.balance(sender))
	}
	if store.balance(recipient) != 35 {
		t.Fatalf("recipient balance: got %d, want 35", store.balance(recipient))
	}
	if led.count() != 1 {
		t.Fatalf("expected one ledger entry, got %d", led.count())
	}
}

func TestService_TipInsufficientBalance(t *testing.T) {
	store := newFakeAccountStore()
	led := &fakeLedger{}
	sender := uuid.New()
	recipient := uuid.New()
	store.seed(sender, 20)
	store.seed(recipient, 0)

	svc := newTestService(t, store, led, false)

	_, err := svc.Tip(context.Background(), TipInput{
		FromUserID: sender,
		ToUserID:   recipient,
		Amount:     21,
	})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if store.balance(sender) != 20 || store.balance(recipient) != 0 {
		t.Fatalf("balances changed on rejected tip: sender=%d recipient=%d",
			store.balance(sender), store.balance(recipient))
	}
	if led.count() != 0 {
		t.Fatal("rejected tip must not reach the ledger")
	}
}

func TestService_TipExactBalance(t *testing.T) {
	store := newFakeAccountStore()
	sender := uuid.New()
	recipient := uuid.New()
	store.seed(sender, 50)
	store.seed(recipient, 0)

	svc := newTestService(t, store, &fakeLedger{}, false)

	if _, err := svc.Tip(context.Background(), TipInput{
		FromUserID: sender,
		ToUserID:   recipient,
		Amount:     50,
	}); err != nil {
		t.Fatalf("tip for the full balance should succeed: %v", err)
	}
	if store.balance(sender) != 0 {
		t.Fatalf("sender should be drained to zero, got %d", store.balance(sender))
	}
}

func TestService_TipSelf(t *testing.T) {
	store := newFakeAccountStore()
	userID := uuid.New()
	store.seed(userID, 100)

	svc := newTestService(t, store, &fakeLedger{}, false)

	_, err := svc.Tip(context.Background(), TipInput{
		FromUserID: userID,
		ToUserID:   userID,
		Amount:     10,
	})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_TipUnknownRecipient(t *testing.T) {
	store := newFakeAccountStore()
	sender := uuid.New()
	store.seed(sender, 100)

	svc := newTestService(t, store, &fakeLedger{}, false)

	_, err := svc.Tip(context.Background(), TipInput{
		FromUserID: sender,
		ToUserID:   uuid.New(),
		Amount:     10,
	})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if store.balance(sender) != 100 {
		t.Fatalf("sender balance changed: %d", store.balance(sender))
	}
}

func TestService_TipUnknownSender(t *testing.T) {
	store := newFakeAccountStore()
	led := &fakeLedger{}
	recipient := uuid.New()
	store.seed(recipient, 40)

	svc := newTestService(t, store, led, false)

	_, err := svc.Tip(context.Background(), TipInput{
		FromUserID: uuid.New(),
		ToUserID:   recipient,
		Amount:     5,
	})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if store.balance(recipient) != 40 {
		t.Fatalf("recipient balance changed: %d", store.balance(recipient))
	}
	if led.count() != 0 {
		t.Fatal("failed tip must not reach the ledger")
	}
}

func TestService_TipRollsBackOnLedgerFailure(t *testing.T) {
	store := newFakeAccountStore()
	sender := uuid.New()
	recipient := uuid.New()
	store.seed(sender, 100)
	store.seed(recipient, 0)

	ledgerErr := stderrors.New("ledger down")
	led := &fakeLedger{failFn: func(ledger.Entry) error { return ledgerErr }}

	svc := newTestService(t, store, led, false)

	_, err := svc.Tip(context.Background(), TipInput{
		FromUserID: sender,
		ToUserID:   recipient,
		Amount:     40,
	})
	if !stderrors.Is(err, ledgerErr) {
		t.Fatalf("expected ledger error, got %v", err)
	}
	if store.balance(sender) != 100 || store.balance(recipient) != 0 {
		t.Fatalf("balances must roll back with the ledger write: sender=%d recipient=%d",
			store.balance(sender), store.balance(recipient))
	}
}

func TestService_ConcurrentTipsConserveTotal(t *testing.T) {
	store := newFakeAccountStore()
	led := &fakeLedger{}
	sender := uuid.New()
	recipient := uuid.New()
	store.seed(sender, 100)
	store.seed(recipient, 0)

	svc := newTestService(t, store, led, false)

	const workers = 20
	var wg sync.WaitGroup
	var successes int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Tip(context.Background(), TipInput{
				FromUserID: sender,
				ToUserID:   recipient,
				Amount:     10,
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			appErr := apperrors.As(err)
			if appErr == nil || appErr.Code() != apperrors.CodeInsufficientBalance {
				t.Errorf("unexpected tip error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 10 {
		t.Fatalf("expected exactly 10 tips to land, got %d", successes)
	}
	if store.balance(sender) != 0 {
		t.Fatalf("sender must never go negative, got %d", store.balance(sender))
	}
	if store.balance(recipient) != 100 {
		t.Fatalf("total tokens not conserved: recipient=%d", store.balance(recipient))
	}
	if led.count() != 10 {
		t.Fatalf("ledger entries should match landed tips, got %d", led.count())
	}
}
