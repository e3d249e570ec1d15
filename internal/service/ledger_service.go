package service

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet-ledger/internal/core/domain"
	"custodial-wallet-ledger/internal/core/ports"
	"custodial-wallet-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FeeRates holds the percentage rates applied to the principal of each
// debiting operation. Deposits are always fee-free.
type FeeRates struct {
	Withdrawal decimal.Decimal
	Conversion decimal.Decimal
	Transfer   decimal.Decimal
}

// NewFeeRates builds FeeRates from configured float rates.
func NewFeeRates(withdrawal, conversion, transfer float64) FeeRates {
	return FeeRates{
		Withdrawal: decimal.NewFromFloat(withdrawal),
		Conversion: decimal.NewFromFloat(conversion),
		Transfer:   decimal.NewFromFloat(transfer),
	}
}

// LedgerServiceImpl implements ports.LedgerService with pessimistic
// per-(wallet, currency) locking: the sufficiency check and the debit
// run inside one transaction holding the balance row lock.
type LedgerServiceImpl struct {
	walletRepo   ports.WalletRepository
	currencyRepo ports.CurrencyRepository
	balanceRepo  ports.BalanceRepository
	ledgerRepo   ports.LedgerRepository
	transactor   ports.DBTransactor
	keys         ports.KeyManager
	quotes       ports.QuoteProvider
	fees         FeeRates
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	currencyRepo ports.CurrencyRepository,
	balanceRepo ports.BalanceRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	keys ports.KeyManager,
	quotes ports.QuoteProvider,
	fees FeeRates,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo:   walletRepo,
		currencyRepo: currencyRepo,
		balanceRepo:  balanceRepo,
		ledgerRepo:   ledgerRepo,
		transactor:   transactor,
		keys:         keys,
		quotes:       quotes,
		fees:         fees,
		log:          log,
	}
}

// Deposit credits a wallet. No key proof is required and blocked
// wallets may still receive funds. An unknown address surfaces as a
// storage error from the foreign key, not a lookup round trip.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*ports.MovementReceipt, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	currency, err := s.resolveCurrency(ctx, req.Currency)
	if err != nil {
		return nil, err
	}

	var receipt *ports.MovementReceipt
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		balance, err := s.balanceRepo.GetForUpdate(ctx, tx, req.Address, currency.ID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		movement := &domain.Movement{
			WalletAddress: req.Address,
			CurrencyID:    currency.ID,
			Type:          domain.MovementTypeDeposit,
			Amount:        req.Amount,
			Fee:           decimal.Zero,
		}
		id, err := s.ledgerRepo.InsertMovement(ctx, tx, movement)
		if err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		if err := s.balanceRepo.Credit(ctx, tx, req.Address, currency.ID, req.Amount); err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}

		receipt = &ports.MovementReceipt{
			MovementID: id,
			Type:       domain.MovementTypeDeposit,
			Amount:     req.Amount,
			Fee:        decimal.Zero,
			NewBalance: balance.Add(req.Amount),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("movement_id", receipt.MovementID).
		Str("address", req.Address).
		Str("currency", currency.Code).
		Str("amount", req.Amount.String()).
		Msg("deposit applied")

	return receipt, nil
}

// Withdraw debits amount plus fee from the wallet after proving key
// possession. The check and the debit hold the same row lock.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*ports.MovementReceipt, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	if _, err := s.authorizeSource(ctx, req.Address, req.PrivateKey); err != nil {
		return nil, err
	}

	currency, err := s.resolveCurrency(ctx, req.Currency)
	if err != nil {
		return nil, err
	}

	fee := req.Amount.Mul(s.fees.Withdrawal)
	required := req.Amount.Add(fee)

	var receipt *ports.MovementReceipt
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		balance, err := s.balanceRepo.GetForUpdate(ctx, tx, req.Address, currency.ID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}
		if balance.LessThan(required) {
			return apperror.ErrInsufficientFunds(currency.Code)
		}

		movement := &domain.Movement{
			WalletAddress: req.Address,
			CurrencyID:    currency.ID,
			Type:          domain.MovementTypeWithdrawal,
			Amount:        req.Amount,
			Fee:           fee,
		}
		id, err := s.ledgerRepo.InsertMovement(ctx, tx, movement)
		if err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		if err := s.balanceRepo.Debit(ctx, tx, req.Address, currency.ID, required); err != nil {
			if errors.Is(err, ports.ErrBalanceConstraint) {
				return apperror.ErrInsufficientFunds(currency.Code)
			}
			return fmt.Errorf("debit balance: %w", err)
		}

		receipt = &ports.MovementReceipt{
			MovementID: id,
			Type:       domain.MovementTypeWithdrawal,
			Amount:     req.Amount,
			Fee:        fee,
			NewBalance: balance.Sub(required),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("movement_id", receipt.MovementID).
		Str("address", req.Address).
		Str("currency", currency.Code).
		Str("amount", req.Amount.String()).
		Str("fee", fee.String()).
		Msg("withdrawal applied")

	return receipt, nil
}

// Convert exchanges between two currencies within one wallet at the
// provider's spot rate. The quote is fetched before the transaction
// opens so the balance lock is never held across a network call.
func (s *LedgerServiceImpl) Convert(ctx context.Context, req ports.ConvertRequest) (*ports.ConversionReceipt, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	if _, err := s.authorizeSource(ctx, req.Address, req.PrivateKey); err != nil {
		return nil, err
	}

	from, err := s.resolveCurrency(ctx, req.FromCurrency)
	if err != nil {
		return nil, err
	}
	to, err := s.resolveCurrency(ctx, req.ToCurrency)
	if err != nil {
		return nil, err
	}

	rate, err := s.quotes.SpotRate(ctx, from.Code, to.Code)
	if err != nil {
		return nil, apperror.ErrQuoteUnavailable(err)
	}

	fee := req.Amount.Mul(s.fees.Conversion)
	required := req.Amount.Add(fee)
	toAmount := req.Amount.Mul(rate)

	var receipt *ports.ConversionReceipt
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		balance, err := s.balanceRepo.GetForUpdate(ctx, tx, req.Address, from.ID)
		if err != nil {
			return fmt.Errorf("lock source balance: %w", err)
		}
		if balance.LessThan(required) {
			return apperror.ErrInsufficientFunds(from.Code)
		}

		conversion := &domain.Conversion{
			WalletAddress:  req.Address,
			FromCurrencyID: from.ID,
			ToCurrencyID:   to.ID,
			FromAmount:     req.Amount,
			ToAmount:       toAmount,
			FeeAmount:      fee,
			FeeRate:        s.fees.Conversion,
			Rate:           rate,
		}
		id, err := s.ledgerRepo.InsertConversion(ctx, tx, conversion)
		if err != nil {
			return fmt.Errorf("insert conversion: %w", err)
		}

		if err := s.balanceRepo.Debit(ctx, tx, req.Address, from.ID, required); err != nil {
			if errors.Is(err, ports.ErrBalanceConstraint) {
				return apperror.ErrInsufficientFunds(from.Code)
			}
			return fmt.Errorf("debit source balance: %w", err)
		}
		if err := s.balanceRepo.Credit(ctx, tx, req.Address, to.ID, toAmount); err != nil {
			return fmt.Errorf("credit destination balance: %w", err)
		}

		receipt = &ports.ConversionReceipt{
			ConversionID: id,
			FromCurrency: from.Code,
			ToCurrency:   to.Code,
			FromAmount:   req.Amount,
			ToAmount:     toAmount,
			FeeAmount:    fee,
			Rate:         rate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("conversion_id", receipt.ConversionID).
		Str("address", req.Address).
		Str("pair", from.Code+"-"+to.Code).
		Str("rate", rate.String()).
		Str("from_amount", req.Amount.String()).
		Msg("conversion applied")

	return receipt, nil
}

// Transfer moves funds between two wallets. The destination must exist
// and be ACTIVE; the source pays the fee.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferReceipt, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.FromAddress == req.ToAddress {
		return nil, apperror.ErrSelfTransfer()
	}

	if _, err := s.authorizeSource(ctx, req.FromAddress, req.PrivateKey); err != nil {
		return nil, err
	}

	dest, err := s.walletRepo.GetByAddress(ctx, req.ToAddress)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get destination wallet: %w", err))
	}
	if dest == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !dest.IsActive() {
		return nil, apperror.ErrDestinationBlocked()
	}

	currency, err := s.resolveCurrency(ctx, req.Currency)
	if err != nil {
		return nil, err
	}

	fee := req.Amount.Mul(s.fees.Transfer)
	required := req.Amount.Add(fee)

	var receipt *ports.TransferReceipt
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		balance, err := s.balanceRepo.GetForUpdate(ctx, tx, req.FromAddress, currency.ID)
		if err != nil {
			return fmt.Errorf("lock source balance: %w", err)
		}
		if balance.LessThan(required) {
			return apperror.ErrInsufficientFunds(currency.Code)
		}

		transfer := &domain.Transfer{
			FromAddress: req.FromAddress,
			ToAddress:   req.ToAddress,
			CurrencyID:  currency.ID,
			Amount:      req.Amount,
			Fee:         fee,
		}
		id, err := s.ledgerRepo.InsertTransfer(ctx, tx, transfer)
		if err != nil {
			return fmt.Errorf("insert transfer: %w", err)
		}

		if err := s.balanceRepo.Debit(ctx, tx, req.FromAddress, currency.ID, required); err != nil {
			if errors.Is(err, ports.ErrBalanceConstraint) {
				return apperror.ErrInsufficientFunds(currency.Code)
			}
			return fmt.Errorf("debit source balance: %w", err)
		}
		if err := s.balanceRepo.Credit(ctx, tx, req.ToAddress, currency.ID, req.Amount); err != nil {
			return fmt.Errorf("credit destination balance: %w", err)
		}

		receipt = &ports.TransferReceipt{
			TransferID:  id,
			FromAddress: req.FromAddress,
			ToAddress:   req.ToAddress,
			Currency:    currency.Code,
			Amount:      req.Amount,
			Fee:         fee,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("transfer_id", receipt.TransferID).
		Str("from", req.FromAddress).
		Str("to", req.ToAddress).
		Str("currency", currency.Code).
		Str("amount", req.Amount.String()).
		Msg("transfer applied")

	return receipt, nil
}

// authorizeSource resolves the source wallet, rejects blocked wallets
// as debit sources, and verifies key possession.
func (s *LedgerServiceImpl) authorizeSource(ctx context.Context, address, privateKey string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !wallet.IsActive() {
		return nil, apperror.ErrWalletBlocked()
	}
	if !s.keys.Verify(privateKey, wallet.PrivateKeyHash) {
		return nil, apperror.ErrInvalidPrivateKey()
	}
	return wallet, nil
}

func (s *LedgerServiceImpl) resolveCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("resolve currency: %w", err))
	}
	if currency == nil {
		return nil, apperror.ErrInvalidCurrency(code)
	}
	return currency, nil
}

// withTx runs fn inside a database transaction, committing on success.
// A transient serialization or deadlock failure is retried exactly
// once; business failures (AppError) surface untouched, everything
// else wraps as a storage error.
func (s *LedgerServiceImpl) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	const attempts = 2

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		if !isTransientTxError(err) {
			return apperror.ErrStorage(err)
		}
		lastErr = err
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("transient tx failure, retrying")
	}
	return apperror.ErrStorage(lastErr)
}

func (s *LedgerServiceImpl) runTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := fn(dbTx); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isTransientTxError reports whether err is a serialization failure or
// deadlock that a single retry may resolve.
func isTransientTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
