package processor

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/internal/authority"
	"github.com/lugondev/go-fixedswap/internal/common"
	"github.com/lugondev/go-fixedswap/internal/instruction"
	"github.com/lugondev/go-fixedswap/internal/ledger"
	"github.com/lugondev/go-fixedswap/internal/ledger/memory"
	"github.com/lugondev/go-fixedswap/internal/metrics"
	"github.com/lugondev/go-fixedswap/internal/state"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

func BenchmarkDecodeAndUpdateRate(b *testing.B) {
	ctx := context.Background()
	programID := solana.NewWallet().PublicKey()
	host := memory.New().WithLogger(common.Discard())
	proc := NewProcessor(programID, host).WithLogger(common.Discard())

	record := &state.PoolState{Initialized: true, Rate: 1}
	data, err := record.Encode()
	if err != nil {
		b.Fatal(err)
	}
	accounts := []*ledger.AccountInfo{
		{Key: solana.NewWallet().PublicKey(), IsSigner: true},
		{Key: solana.NewWallet().PublicKey(), IsWritable: true, Owner: programID, Data: data},
	}
	ixData, err := instruction.Encode(&instruction.UpdateRate{Rate: 2_000_000_000})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := proc.Process(ctx, accounts, ixData); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSwapRoundTrip(b *testing.B) {
	ctx := context.Background()
	programID := solana.NewWallet().PublicKey()
	poolAuthority, bump, err := authority.Find(programID)
	if err != nil {
		b.Fatal(err)
	}

	host := memory.New().WithLogger(common.Discard())
	proc := NewProcessor(programID, host).
		WithLogger(common.Discard()).
		WithMetrics(metrics.NewCollection(metrics.NewCounterSink(nil)))
	host.Register(proc)

	initializer := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	accts := instruction.SwapAccounts{
		User:          user,
		UserToken:     solana.NewWallet().PublicKey(),
		Pool:          solana.NewWallet().PublicKey(),
		Mint:          solana.NewWallet().PublicKey(),
		Vault:         solana.NewWallet().PublicKey(),
		AuthorityBump: bump,
	}
	host.Fund(initializer, host.MinimumBalance(state.Size))
	host.Fund(user, 1_000_000)
	if err := host.CreateMint(accts.Mint, poolAuthority, 9); err != nil {
		b.Fatal(err)
	}
	if err := host.CreateTokenAccount(accts.UserToken, accts.Mint, user); err != nil {
		b.Fatal(err)
	}

	mustRun := func(ix solana.Instruction, signers ...types.Pubkey) {
		converted, err := types.FromSolanaInstruction(ix)
		if err != nil {
			b.Fatal(err)
		}
		if err := host.Process(ctx, converted, signers...); err != nil {
			b.Fatal(err)
		}
	}

	initIx, err := instruction.NewInitialize(programID, instruction.InitializeAccounts{
		Initializer: initializer,
		Pool:        accts.Pool,
		Mint:        accts.Mint,
		Vault:       accts.Vault,
	}, bump, 2_000_000_000)
	if err != nil {
		b.Fatal(err)
	}
	mustRun(initIx, initializer, accts.Pool)

	buy, err := instruction.NewSwapBaseForToken(programID, accts, 500, 1000)
	if err != nil {
		b.Fatal(err)
	}
	sell, err := instruction.NewSwapTokenForBase(programID, accts, 1000, 500)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		mustRun(buy, user)
		mustRun(sell, user)
	}
}
