package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"custodial-wallet-ledger/internal/core/domain"
	"custodial-wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the PostgreSQL layer. Its
// transactor serializes transactions behind one mutex, mirroring the
// row-lock guarantee the real store provides per balance key: a
// sufficiency check and the following debit are never interleaved with
// another transaction's.
type memStore struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	wallets     map[string]*domain.Wallet
	currencies  map[string]*domain.Currency
	balances    map[string]decimal.Decimal
	movements   []domain.Movement
	conversions []domain.Conversion
	transfers   []domain.Transfer
	nextWallet  int64
	nextRecord  int64
}

func newMemStore() *memStore {
	s := &memStore{
		wallets:    make(map[string]*domain.Wallet),
		currencies: make(map[string]*domain.Currency),
		balances:   make(map[string]decimal.Decimal),
	}
	for i, code := range []string{"USD", "EUR", "BTC"} {
		s.currencies[code] = &domain.Currency{ID: int32(i + 1), Code: code}
	}
	return s
}

func balanceKey(address string, currencyID int32) string {
	return fmt.Sprintf("%s/%d", address, currencyID)
}

// memWallets and memCurrencies expose the store through the two
// repository interfaces whose List signatures differ.
type memWallets struct{ *memStore }
type memCurrencies struct{ *memStore }

// --- WalletRepository ---

func (s memWallets) Create(_ context.Context, w *domain.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[w.Address]; ok {
		return ports.ErrDuplicateAddress
	}
	s.nextWallet++
	w.ID = s.nextWallet
	w.Status = domain.WalletStatusActive
	w.CreatedAt = time.Now().UTC()
	cp := *w
	s.wallets[w.Address] = &cp
	return nil
}

func (s memWallets) GetByAddress(_ context.Context, address string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[address]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s memWallets) List(_ context.Context) ([]domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, *w)
	}
	return out, nil
}

func (s memWallets) UpdateStatus(_ context.Context, address string, status domain.WalletStatus) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[address]
	if !ok {
		return nil, nil
	}
	w.Status = status
	cp := *w
	return &cp, nil
}

// --- CurrencyRepository ---

func (s memCurrencies) GetByCode(_ context.Context, code string) (*domain.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.currencies[code]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s memCurrencies) List(_ context.Context) ([]domain.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Currency, 0, len(s.currencies))
	for _, c := range s.currencies {
		out = append(out, *c)
	}
	return out, nil
}

// --- BalanceRepository ---

func (s *memStore) GetAmount(_ context.Context, address string, currencyID int32) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[balanceKey(address, currencyID)], nil
}

func (s *memStore) ListByWallet(_ context.Context, address string) ([]domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Balance, 0, len(s.currencies))
	for _, code := range []string{"USD", "EUR", "BTC"} {
		c := s.currencies[code]
		out = append(out, domain.Balance{
			Currency: c.Code,
			Amount:   s.balances[balanceKey(address, c.ID)],
		})
	}
	return out, nil
}

func (s *memStore) GetForUpdate(_ context.Context, _ pgx.Tx, address string, currencyID int32) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[balanceKey(address, currencyID)], nil
}

func (s *memStore) Credit(_ context.Context, _ pgx.Tx, address string, currencyID int32, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey(address, currencyID)
	s.balances[key] = s.balances[key].Add(amount)
	return nil
}

func (s *memStore) Debit(_ context.Context, _ pgx.Tx, address string, currencyID int32, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey(address, currencyID)
	remaining := s.balances[key].Sub(amount)
	if remaining.IsNegative() {
		return ports.ErrBalanceConstraint
	}
	s.balances[key] = remaining
	return nil
}

// --- LedgerRepository ---

func (s *memStore) InsertMovement(_ context.Context, _ pgx.Tx, m *domain.Movement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRecord++
	m.ID = s.nextRecord
	m.CreatedAt = time.Now().UTC()
	s.movements = append(s.movements, *m)
	return m.ID, nil
}

func (s *memStore) InsertConversion(_ context.Context, _ pgx.Tx, cv *domain.Conversion) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRecord++
	cv.ID = s.nextRecord
	cv.CreatedAt = time.Now().UTC()
	s.conversions = append(s.conversions, *cv)
	return cv.ID, nil
}

func (s *memStore) InsertTransfer(_ context.Context, _ pgx.Tx, tr *domain.Transfer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRecord++
	tr.ID = s.nextRecord
	tr.CreatedAt = time.Now().UTC()
	s.transfers = append(s.transfers, *tr)
	return tr.ID, nil
}

// --- DBTransactor ---

// Begin takes the store-wide transaction lock, released on Commit or
// Rollback. The service's deferred Rollback after Commit is a no-op.
func (s *memStore) Begin(_ context.Context) (pgx.Tx, error) {
	s.txMu.Lock()
	return &lockTx{store: s}, nil
}

type lockTx struct {
	noopTx
	store *memStore
	once  sync.Once
}

func (t *lockTx) Commit(_ context.Context) error {
	t.once.Do(t.store.txMu.Unlock)
	return nil
}

func (t *lockTx) Rollback(_ context.Context) error {
	t.once.Do(t.store.txMu.Unlock)
	return nil
}

// noopTx fills out the rest of the pgx.Tx surface.
type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return nil, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) Conn() *pgx.Conn                                         { return nil }
