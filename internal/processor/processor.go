// Package processor implements the swap program's instruction handlers.
//
// A Processor receives the raw instruction data and the ordered account
// references of one call, decodes the command and runs the matching handler.
// Handlers validate signers and the pool record before any arithmetic, compute
// the converted amount, and only then request collaborator calls. They perform
// no rollback of their own: when a later step fails, undoing earlier effects is
// the host's job.
package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/internal/authority"
	"github.com/lugondev/go-fixedswap/internal/common"
	swaperrors "github.com/lugondev/go-fixedswap/internal/errors"
	"github.com/lugondev/go-fixedswap/internal/exchange"
	"github.com/lugondev/go-fixedswap/internal/instruction"
	"github.com/lugondev/go-fixedswap/internal/ledger"
	"github.com/lugondev/go-fixedswap/internal/metrics"
	"github.com/lugondev/go-fixedswap/internal/state"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

// Number of accounts each instruction expects.
const (
	InitializeAccountCount       = 8
	SwapBaseForTokenAccountCount = 8
	SwapTokenForBaseAccountCount = 7
	UpdateRateAccountCount       = 2
)

// Processor dispatches instructions for one deployed program id.
type Processor struct {
	common.LoggerMixin

	programID types.Pubkey
	host      ledger.Host
	metrics   *metrics.Collection
}

// NewProcessor creates a Processor for programID calling into host.
func NewProcessor(programID types.Pubkey, host ledger.Host) *Processor {
	return &Processor{
		LoggerMixin: common.NewLoggerMixin(),
		programID:   programID,
		host:        host,
		metrics:     metrics.NewCollection(),
	}
}

// WithLogger sets a custom logger.
func (p *Processor) WithLogger(logger *slog.Logger) *Processor {
	p.SetLogger(logger)
	return p
}

// WithMetrics sets the metrics collection.
func (p *Processor) WithMetrics(m *metrics.Collection) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// ProgramID returns the program id this processor serves.
func (p *Processor) ProgramID() types.Pubkey {
	return p.programID
}

// Process decodes data and runs the matching handler against accounts.
func (p *Processor) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte) error {
	start := time.Now()
	p.count(ctx, metrics.MetricInstructionsReceived, 1)

	err := p.process(ctx, accounts, data)

	_ = p.metrics.RecordHistogram(ctx, metrics.MetricProcessTimeNanos, float64(time.Since(start).Nanoseconds()))
	if err != nil {
		code := swaperrors.Code(err)
		p.count(ctx, metrics.MetricInstructionsFailed, 1)
		p.count(ctx, metrics.FailureMetric(code), 1)
		p.GetLogger().Debug("instruction failed", "code", code, "error", err)
		return err
	}
	p.count(ctx, metrics.MetricInstructionsSucceeded, 1)
	return nil
}

func (p *Processor) process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte) error {
	ix, err := instruction.Decode(data)
	if err != nil {
		return err
	}

	switch ix := ix.(type) {
	case *instruction.Initialize:
		return p.Initialize(ctx, accounts, ix.AuthorityBump, ix.Rate)
	case *instruction.SwapBaseForToken:
		return p.SwapBaseForToken(ctx, accounts, ix.AmountIn, ix.MinOut)
	case *instruction.SwapTokenForBase:
		return p.SwapTokenForBase(ctx, accounts, ix.AmountIn, ix.MinOut)
	case *instruction.UpdateRate:
		return p.UpdateRate(ctx, accounts, ix.Rate)
	default:
		return swaperrors.MalformedInstruction("unhandled instruction "+ix.Tag().String(), nil)
	}
}

// Initialize creates the pool account and writes its first record.
//
// Accounts: initializer (signer), pool (new, signer), authority, mint, vault,
// system program, token program, rent sysvar.
func (p *Processor) Initialize(ctx context.Context, accounts []*ledger.AccountInfo, bump uint8, rate uint64) error {
	if len(accounts) < InitializeAccountCount {
		return swaperrors.NotEnoughAccounts(InitializeAccountCount, len(accounts))
	}
	initializer := accounts[0]
	pool := accounts[1]
	mint := accounts[3]
	vault := accounts[4]

	if !initializer.IsSigner {
		return swaperrors.ErrMissingSignature
	}
	if err := checkHandles(accounts[5], accounts[6], accounts[7]); err != nil {
		return err
	}

	lamports := p.host.MinimumBalance(state.Size)
	if err := p.host.CreateAccount(ctx, initializer, pool, lamports, state.Size, p.programID); err != nil {
		return swaperrors.CollaboratorFailure("create pool account", err)
	}

	record := &state.PoolState{
		Initialized:   true,
		AuthorityBump: bump,
		TokenMint:     mint.Key,
		TokenVault:    vault.Key,
		Rate:          rate,
	}
	if err := state.Store(pool, record); err != nil {
		return err
	}

	p.count(ctx, metrics.MetricPoolsInitialized, 1)
	p.GetLogger().Info("swap pool initialized",
		"pool", pool.Key.String(),
		"mint", mint.Key.String(),
		"vault", vault.Key.String(),
		"rate", exchange.FormatRate(rate),
	)
	return nil
}

// SwapBaseForToken takes amountIn base units from the user into the pool
// authority and mints the converted token amount to the user.
//
// Accounts: user (signer), user token account, pool, authority, mint, vault,
// system program, token program.
func (p *Processor) SwapBaseForToken(ctx context.Context, accounts []*ledger.AccountInfo, amountIn, minOut uint64) error {
	if len(accounts) < SwapBaseForTokenAccountCount {
		return swaperrors.NotEnoughAccounts(SwapBaseForTokenAccountCount, len(accounts))
	}
	user := accounts[0]
	userToken := accounts[1]
	pool := accounts[2]
	poolAuthority := accounts[3]
	mint := accounts[4]
	vault := accounts[5]

	if !user.IsSigner {
		return swaperrors.ErrMissingSignature
	}
	if err := checkHandles(accounts[6], accounts[7], nil); err != nil {
		return err
	}

	record, err := p.loadPool(pool)
	if err != nil {
		return err
	}
	if !record.TokenMint.Equals(mint.Key) {
		return swaperrors.AccountMismatch("mint", record.TokenMint, mint.Key)
	}
	if !record.TokenVault.Equals(vault.Key) {
		return swaperrors.AccountMismatch("vault", record.TokenVault, vault.Key)
	}

	tokenOut, err := exchange.ToToken(amountIn, record.Rate)
	if err != nil {
		return err
	}
	if err := exchange.CheckSlippage(tokenOut, minOut); err != nil {
		return err
	}

	if err := p.host.Transfer(ctx, ledger.SignedBy(user), poolAuthority, amountIn); err != nil {
		return swaperrors.CollaboratorFailure("transfer base to pool", err)
	}
	proof := authority.NewProof(p.programID, record.AuthorityBump)
	if err := p.host.MintTo(ctx, mint, userToken, ledger.ProvenBy(poolAuthority, proof), tokenOut); err != nil {
		return swaperrors.CollaboratorFailure("mint tokens", err)
	}

	p.count(ctx, metrics.MetricSwapsBaseForToken, 1)
	p.count(ctx, metrics.MetricBaseVolumeIn, amountIn)
	p.count(ctx, metrics.MetricTokensMinted, tokenOut)
	p.GetLogger().Info("swapped base for token",
		"pool", pool.Key.String(),
		"user", user.Key.String(),
		"base_in", amountIn,
		"token_out", tokenOut,
	)
	return nil
}

// SwapTokenForBase burns amountIn tokens from the user and pays the converted
// base amount out of the pool authority.
//
// The vault is neither passed nor checked on this path, unlike
// SwapBaseForToken.
//
// Accounts: user (signer), user token account, pool, authority, mint, system
// program, token program.
func (p *Processor) SwapTokenForBase(ctx context.Context, accounts []*ledger.AccountInfo, amountIn, minOut uint64) error {
	if len(accounts) < SwapTokenForBaseAccountCount {
		return swaperrors.NotEnoughAccounts(SwapTokenForBaseAccountCount, len(accounts))
	}
	user := accounts[0]
	userToken := accounts[1]
	pool := accounts[2]
	poolAuthority := accounts[3]
	mint := accounts[4]

	if !user.IsSigner {
		return swaperrors.ErrMissingSignature
	}
	if err := checkHandles(accounts[5], accounts[6], nil); err != nil {
		return err
	}

	record, err := p.loadPool(pool)
	if err != nil {
		return err
	}
	if !record.TokenMint.Equals(mint.Key) {
		return swaperrors.AccountMismatch("mint", record.TokenMint, mint.Key)
	}

	baseOut, err := exchange.ToBase(amountIn, record.Rate)
	if err != nil {
		return err
	}
	if err := exchange.CheckSlippage(baseOut, minOut); err != nil {
		return err
	}

	if err := p.host.Burn(ctx, userToken, mint, ledger.SignedBy(user), amountIn); err != nil {
		return swaperrors.CollaboratorFailure("burn tokens", err)
	}
	proof := authority.NewProof(p.programID, record.AuthorityBump)
	if err := p.host.Transfer(ctx, ledger.ProvenBy(poolAuthority, proof), user, baseOut); err != nil {
		return swaperrors.CollaboratorFailure("transfer base to user", err)
	}

	p.count(ctx, metrics.MetricSwapsTokenForBase, 1)
	p.count(ctx, metrics.MetricTokensBurned, amountIn)
	p.count(ctx, metrics.MetricBaseVolumeOut, baseOut)
	p.GetLogger().Info("swapped token for base",
		"pool", pool.Key.String(),
		"user", user.Key.String(),
		"token_in", amountIn,
		"base_out", baseOut,
	)
	return nil
}

// UpdateRate overwrites the pool's rate.
//
// Any signer is accepted: the record stores no administrator to compare
// against, so whoever signs may change the rate.
//
// Accounts: signer, pool.
func (p *Processor) UpdateRate(ctx context.Context, accounts []*ledger.AccountInfo, rate uint64) error {
	if len(accounts) < UpdateRateAccountCount {
		return swaperrors.NotEnoughAccounts(UpdateRateAccountCount, len(accounts))
	}
	signer := accounts[0]
	pool := accounts[1]

	if !signer.IsSigner {
		return swaperrors.ErrMissingSignature
	}

	record, err := p.loadPool(pool)
	if err != nil {
		return err
	}
	previous := record.Rate
	record.Rate = rate
	if err := state.Store(pool, record); err != nil {
		return err
	}

	p.count(ctx, metrics.MetricRateUpdates, 1)
	p.GetLogger().Info("exchange rate updated",
		"pool", pool.Key.String(),
		"signer", signer.Key.String(),
		"previous", exchange.FormatRate(previous),
		"rate", exchange.FormatRate(rate),
	)
	return nil
}

// loadPool reads the record and requires it to be initialized.
func (p *Processor) loadPool(pool *ledger.AccountInfo) (*state.PoolState, error) {
	record, err := state.Load(pool, p.programID)
	if err != nil {
		return nil, err
	}
	if !record.Initialized {
		return nil, swaperrors.ErrUninitializedPool
	}
	return record, nil
}

// checkHandles verifies the service handles in the account list. A nil rent
// handle is skipped.
func checkHandles(system, token, rent *ledger.AccountInfo) error {
	if !system.Key.Equals(solana.SystemProgramID) {
		return swaperrors.AccountMismatch("system program", solana.SystemProgramID, system.Key)
	}
	if !token.Key.Equals(solana.TokenProgramID) {
		return swaperrors.AccountMismatch("token program", solana.TokenProgramID, token.Key)
	}
	if rent != nil && !rent.Key.Equals(solana.SysVarRentPubkey) {
		return swaperrors.AccountMismatch("rent sysvar", solana.SysVarRentPubkey, rent.Key)
	}
	return nil
}

func (p *Processor) count(ctx context.Context, name string, value uint64) {
	if err := p.metrics.IncrementCounter(ctx, name, value); err != nil {
		p.GetLogger().Warn("failed to record metric", "name", name, "error", err)
	}
}
