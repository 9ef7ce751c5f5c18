package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/internal/authority"
	"github.com/lugondev/go-fixedswap/internal/common"
	swaperrors "github.com/lugondev/go-fixedswap/internal/errors"
	"github.com/lugondev/go-fixedswap/internal/exchange"
	"github.com/lugondev/go-fixedswap/internal/instruction"
	"github.com/lugondev/go-fixedswap/internal/ledger/memory"
	"github.com/lugondev/go-fixedswap/internal/metrics"
	"github.com/lugondev/go-fixedswap/internal/processor"
	"github.com/lugondev/go-fixedswap/internal/state"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int
	Step   Step
	Code   string
	Err    error
	Passed bool
}

// Balance is a user's holdings after the run.
type Balance struct {
	User     string
	Lamports uint64
	Tokens   uint64
}

// Report summarizes a run.
type Report struct {
	Scenario  string
	Pool      types.Pubkey
	Authority types.Pubkey
	FinalRate uint64
	Results   []StepResult
	Balances  []Balance
	PoolFunds uint64
	Supply    uint64
	Counters  map[string]uint64
}

// Failed returns the number of steps whose outcome did not match Expect.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

type participant struct {
	key   types.Pubkey
	token types.Pubkey
}

// Runner executes scenarios.
type Runner struct {
	common.LoggerMixin
}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{LoggerMixin: common.NewLoggerMixin()}
}

// WithLogger sets a custom logger.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	r.SetLogger(logger)
	return r
}

// Run sets up a fresh ledger with one pool, then executes every step of sc in
// order. Step failures are recorded in the report, not returned.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	rate, _ := exchange.ParseRate(sc.Rate)
	logger := r.GetLogger().With("scenario", sc.Name)

	programID := solana.NewWallet().PublicKey()
	poolAuthority, bump, err := authority.Find(programID)
	if err != nil {
		return nil, fmt.Errorf("derive authority: %w", err)
	}

	host := memory.New().WithLogger(logger)
	sink := metrics.NewCounterSink(logger)
	proc := processor.NewProcessor(programID, host).
		WithLogger(logger).
		WithMetrics(metrics.NewCollection(sink))
	host.Register(proc)

	initializer := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	vault := solana.NewWallet().PublicKey()

	host.Fund(initializer, host.MinimumBalance(state.Size))
	if err := host.CreateMint(mint, poolAuthority, sc.Decimals); err != nil {
		return nil, err
	}

	users := make(map[string]participant, len(sc.Users))
	for _, u := range sc.Users {
		p := participant{key: solana.NewWallet().PublicKey(), token: solana.NewWallet().PublicKey()}
		host.Fund(p.key, u.Lamports)
		if err := host.CreateTokenAccount(p.token, mint, p.key); err != nil {
			return nil, err
		}
		users[u.Name] = p
	}

	initIx, err := instruction.NewInitialize(programID, instruction.InitializeAccounts{
		Initializer: initializer,
		Pool:        pool,
		Mint:        mint,
		Vault:       vault,
	}, bump, rate)
	if err != nil {
		return nil, err
	}
	if err := run(ctx, host, initIx, initializer, pool); err != nil {
		return nil, fmt.Errorf("initialize pool: %w", err)
	}

	report := &Report{Scenario: sc.Name, Pool: pool, Authority: poolAuthority}
	for i, step := range sc.Steps {
		p := users[step.User]
		accts := instruction.SwapAccounts{
			User:          p.key,
			UserToken:     p.token,
			Pool:          pool,
			Mint:          mint,
			Vault:         vault,
			AuthorityBump: bump,
		}

		var stepErr error
		switch step.Action {
		case ActionBuy:
			stepErr = build(ctx, host, p.key, func() (solana.Instruction, error) {
				return instruction.NewSwapBaseForToken(programID, accts, step.Amount, step.MinOut)
			})
		case ActionSell:
			stepErr = build(ctx, host, p.key, func() (solana.Instruction, error) {
				return instruction.NewSwapTokenForBase(programID, accts, step.Amount, step.MinOut)
			})
		case ActionSetRate:
			newRate, _ := exchange.ParseRate(step.Rate)
			stepErr = build(ctx, host, p.key, func() (solana.Instruction, error) {
				return instruction.NewUpdateRate(programID, p.key, pool, newRate)
			})
		case ActionFreeze:
			stepErr = host.SetFrozen(p.token, true)
		case ActionThaw:
			stepErr = host.SetFrozen(p.token, false)
		}

		res := StepResult{Index: i + 1, Step: step, Err: stepErr, Code: swaperrors.Code(stepErr)}
		if step.Expect == "" {
			res.Passed = stepErr == nil
		} else {
			res.Passed = stepErr != nil && res.Code == step.Expect
		}
		logger.Debug("scenario step", "index", res.Index, "step", step.String(), "code", res.Code, "passed", res.Passed)
		report.Results = append(report.Results, res)
	}

	acct, ok := host.Account(pool)
	if !ok {
		return nil, fmt.Errorf("pool account %s missing after run", pool)
	}
	record, err := state.Decode(acct.Data)
	if err != nil {
		return nil, err
	}
	report.FinalRate = record.Rate
	report.PoolFunds = host.Balance(poolAuthority)
	report.Supply = host.Supply(mint)
	report.Counters = sink.Snapshot()

	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := users[name]
		report.Balances = append(report.Balances, Balance{
			User:     name,
			Lamports: host.Balance(p.key),
			Tokens:   host.TokenBalance(p.token),
		})
	}

	if err := sink.Flush(ctx); err != nil {
		logger.Warn("failed to flush metrics", "error", err)
	}
	return report, nil
}

func build(ctx context.Context, host *memory.Ledger, signer types.Pubkey, fn func() (solana.Instruction, error)) error {
	ix, err := fn()
	if err != nil {
		return err
	}
	return run(ctx, host, ix, signer)
}

func run(ctx context.Context, host *memory.Ledger, ix solana.Instruction, signers ...types.Pubkey) error {
	converted, err := types.FromSolanaInstruction(ix)
	if err != nil {
		return err
	}
	return host.Process(ctx, converted, signers...)
}
