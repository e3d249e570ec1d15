package service

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet-ledger/internal/core/domain"
	"custodial-wallet-ledger/internal/core/ports"
	"custodial-wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// maxKeypairAttempts bounds regeneration on address collision. With
// 20 random bytes a collision is effectively impossible, so hitting
// the bound indicates a broken entropy source rather than bad luck.
const maxKeypairAttempts = 5

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo  ports.WalletRepository
	balanceRepo ports.BalanceRepository
	keys        ports.KeyManager
	log         zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	balanceRepo ports.BalanceRepository,
	keys ports.KeyManager,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:  walletRepo,
		balanceRepo: balanceRepo,
		keys:        keys,
		log:         log,
	}
}

// Create generates a keypair, persists the wallet with the key digest,
// and returns the plaintext private key exactly once. An address
// collision regenerates the keypair.
func (s *WalletServiceImpl) Create(ctx context.Context) (*domain.CreatedWallet, error) {
	for attempt := 1; attempt <= maxKeypairAttempts; attempt++ {
		kp, err := s.keys.Generate()
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate keypair: %w", err))
		}

		wallet := &domain.Wallet{
			Address:        kp.Address,
			PrivateKeyHash: kp.PrivateKeyHash,
		}
		err = s.walletRepo.Create(ctx, wallet)
		if err == nil {
			s.log.Info().
				Str("address", wallet.Address).
				Int64("wallet_id", wallet.ID).
				Msg("wallet created")
			return &domain.CreatedWallet{
				Wallet:     *wallet,
				PrivateKey: kp.PrivateKey,
			}, nil
		}
		if errors.Is(err, ports.ErrDuplicateAddress) {
			s.log.Warn().Int("attempt", attempt).Msg("address collision, regenerating keypair")
			continue
		}
		return nil, apperror.ErrStorage(fmt.Errorf("create wallet: %w", err))
	}
	return nil, apperror.InternalError(errors.New("exhausted keypair generation attempts"))
}

// Get returns the wallet for the address.
func (s *WalletServiceImpl) Get(ctx context.Context, address string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return wallet, nil
}

// List returns all wallets in insertion order.
func (s *WalletServiceImpl) List(ctx context.Context) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// Block transitions the wallet to BLOCKED unconditionally. Blocking an
// already blocked wallet is a no-op that still succeeds.
func (s *WalletServiceImpl) Block(ctx context.Context, address string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.UpdateStatus(ctx, address, domain.WalletStatusBlocked)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("block wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	s.log.Info().Str("address", address).Msg("wallet blocked")
	return wallet, nil
}

// ListBalances returns one balance row per known currency, zero for
// currencies the wallet never touched.
func (s *WalletServiceImpl) ListBalances(ctx context.Context, address string) ([]domain.Balance, error) {
	wallet, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	balances, err := s.balanceRepo.ListByWallet(ctx, address)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list balances: %w", err))
	}
	return balances, nil
}
