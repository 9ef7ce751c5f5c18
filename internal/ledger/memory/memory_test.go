package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lugondev/go-fixedswap/internal/authority"
	"github.com/lugondev/go-fixedswap/internal/ledger"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

// scriptedProgram runs fn for every call.
type scriptedProgram struct {
	id types.Pubkey
	fn func(ctx context.Context, accounts []*ledger.AccountInfo) error
}

func (p *scriptedProgram) ProgramID() types.Pubkey { return p.id }

func (p *scriptedProgram) Process(ctx context.Context, accounts []*ledger.AccountInfo, _ []byte) error {
	return p.fn(ctx, accounts)
}

func TestMinimumBalance(t *testing.T) {
	l := New()
	assert.Equal(t, uint64(890_880), l.MinimumBalance(0))
	assert.Equal(t, uint64(1_405_920), l.MinimumBalance(74))
}

func TestProcessUnknownProgram(t *testing.T) {
	l := New()
	err := l.Process(context.Background(), &types.Instruction{ProgramID: solana.NewWallet().PublicKey()})
	require.ErrorIs(t, err, ErrUnknownProgram)
}

func TestProcessSignersAndSharedViews(t *testing.T) {
	l := New()
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	var seen []*ledger.AccountInfo
	prog := &scriptedProgram{id: solana.NewWallet().PublicKey(), fn: func(_ context.Context, accounts []*ledger.AccountInfo) error {
		seen = accounts
		return nil
	}}
	l.Register(prog)

	ix := &types.Instruction{
		ProgramID: prog.id,
		Accounts: []types.AccountMeta{
			{Pubkey: a, IsSigner: true},
			{Pubkey: b, IsSigner: true},
			{Pubkey: a, IsWritable: true},
		},
	}
	require.NoError(t, l.Process(context.Background(), ix, a))

	require.Len(t, seen, 3)
	assert.True(t, seen[0].IsSigner)
	assert.False(t, seen[1].IsSigner, "flagged signer without a signature must not count")
	assert.Same(t, seen[0], seen[2])
	assert.True(t, seen[0].IsWritable)
}

func TestProcessRollsBackOnError(t *testing.T) {
	l := New()
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()
	l.Fund(from, 100)

	boom := errors.New("boom")
	prog := &scriptedProgram{id: solana.NewWallet().PublicKey(), fn: func(ctx context.Context, accounts []*ledger.AccountInfo) error {
		if err := l.Transfer(ctx, ledger.SignedBy(accounts[0]), accounts[1], 40); err != nil {
			return err
		}
		return boom
	}}
	l.Register(prog)

	ix := &types.Instruction{
		ProgramID: prog.id,
		Accounts:  []types.AccountMeta{{Pubkey: from, IsSigner: true, IsWritable: true}, {Pubkey: to, IsWritable: true}},
	}
	require.ErrorIs(t, l.Process(context.Background(), ix, from), boom)

	assert.Equal(t, uint64(100), l.Balance(from))
	assert.Equal(t, uint64(0), l.Balance(to))
	_, exists := l.Account(to)
	assert.False(t, exists)
	assert.Empty(t, l.Calls())
	assert.Equal(t, 1, l.Attempts())
}

func TestProofOnlyValidInsideItsProgram(t *testing.T) {
	l := New()
	programID := solana.NewWallet().PublicKey()
	pda, bump, err := authority.Find(programID)
	require.NoError(t, err)
	l.Fund(pda, 50)
	dest := &ledger.AccountInfo{Key: solana.NewWallet().PublicKey()}
	proof := authority.NewProof(programID, bump)

	err = l.Transfer(context.Background(), ledger.ProvenBy(&ledger.AccountInfo{Key: pda}, proof), dest, 10)
	require.ErrorIs(t, err, ledger.ErrInvalidAuthority)

	other := &scriptedProgram{id: solana.NewWallet().PublicKey(), fn: func(ctx context.Context, accounts []*ledger.AccountInfo) error {
		return l.Transfer(ctx, ledger.ProvenBy(accounts[0], proof), accounts[1], 10)
	}}
	owner := &scriptedProgram{id: programID, fn: other.fn}
	l.Register(other)
	l.Register(owner)

	metas := []types.AccountMeta{{Pubkey: pda, IsWritable: true}, {Pubkey: dest.Key, IsWritable: true}}
	err = l.Process(context.Background(), &types.Instruction{ProgramID: other.id, Accounts: metas})
	require.ErrorIs(t, err, ledger.ErrInvalidAuthority)

	require.NoError(t, l.Process(context.Background(), &types.Instruction{ProgramID: programID, Accounts: metas}))
	assert.Equal(t, uint64(40), l.Balance(pda))
	assert.Equal(t, uint64(10), l.Balance(dest.Key))
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	l := New()
	payerKey := solana.NewWallet().PublicKey()
	l.Fund(payerKey, 1_000)
	owner := solana.NewWallet().PublicKey()

	payer := &ledger.AccountInfo{Key: payerKey, IsSigner: true}
	unsigned := &ledger.AccountInfo{Key: solana.NewWallet().PublicKey()}
	require.ErrorIs(t, l.CreateAccount(ctx, payer, unsigned, 10, 8, owner), ledger.ErrInvalidAuthority)

	fresh := &ledger.AccountInfo{Key: solana.NewWallet().PublicKey(), IsSigner: true}
	require.ErrorIs(t, l.CreateAccount(ctx, payer, fresh, 5_000, 8, owner), ledger.ErrInsufficientFunds)

	require.NoError(t, l.CreateAccount(ctx, payer, fresh, 600, 8, owner))
	assert.Equal(t, owner, fresh.Owner)
	assert.Len(t, fresh.Data, 8)
	assert.Equal(t, uint64(400), payer.Lamports)

	fresh.Data[0] = 0xaa
	stored, ok := l.Account(fresh.Key)
	require.True(t, ok)
	assert.Equal(t, byte(0xaa), stored.Data[0], "account view must alias storage")

	require.ErrorIs(t, l.CreateAccount(ctx, payer, fresh, 1, 8, owner), ledger.ErrAccountInUse)
}

func TestTokenServices(t *testing.T) {
	ctx := context.Background()
	l := New()
	mintAuth := solana.NewWallet().PublicKey()
	holder := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	otherMint := solana.NewWallet().PublicKey()
	tokenAcct := solana.NewWallet().PublicKey()

	require.NoError(t, l.CreateMint(mint, mintAuth, 6))
	require.NoError(t, l.CreateMint(otherMint, mintAuth, 6))
	require.Error(t, l.CreateMint(mint, mintAuth, 6))
	require.NoError(t, l.CreateTokenAccount(tokenAcct, mint, holder))

	mintInfo := &ledger.AccountInfo{Key: mint}
	dest := &ledger.AccountInfo{Key: tokenAcct}
	signedAuth := &ledger.AccountInfo{Key: mintAuth, IsSigner: true}
	signedHolder := &ledger.AccountInfo{Key: holder, IsSigner: true}

	require.ErrorIs(t, l.MintTo(ctx, mintInfo, dest, ledger.SignedBy(signedHolder), 5), ledger.ErrInvalidAuthority)
	require.ErrorIs(t, l.MintTo(ctx, &ledger.AccountInfo{Key: otherMint}, dest, ledger.SignedBy(signedAuth), 5), ledger.ErrMintMismatch)
	require.NoError(t, l.MintTo(ctx, mintInfo, dest, ledger.SignedBy(signedAuth), 25))
	assert.Equal(t, uint64(25), l.TokenBalance(tokenAcct))
	assert.Equal(t, uint64(25), l.Supply(mint))

	require.ErrorIs(t, l.Burn(ctx, dest, mintInfo, ledger.SignedBy(signedAuth), 5), ledger.ErrInvalidAuthority)
	require.ErrorIs(t, l.Burn(ctx, dest, mintInfo, ledger.SignedBy(&ledger.AccountInfo{Key: holder}), 5), ledger.ErrInvalidAuthority)
	require.ErrorIs(t, l.Burn(ctx, dest, mintInfo, ledger.SignedBy(signedHolder), 26), ledger.ErrInsufficientFunds)
	require.NoError(t, l.Burn(ctx, dest, mintInfo, ledger.SignedBy(signedHolder), 20))
	assert.Equal(t, uint64(5), l.TokenBalance(tokenAcct))
	assert.Equal(t, uint64(5), l.Supply(mint))

	require.NoError(t, l.SetFrozen(tokenAcct, true))
	require.ErrorIs(t, l.Burn(ctx, dest, mintInfo, ledger.SignedBy(signedHolder), 1), ledger.ErrAccountFrozen)

	kinds := make([]CallKind, 0, 2)
	for _, c := range l.Calls() {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []CallKind{CallMintTo, CallBurn}, kinds)
}
