package solana

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lugondev/go-fixedswap/internal/authority"
	"github.com/lugondev/go-fixedswap/internal/instruction"
)

func TestWalletFileRoundTrip(t *testing.T) {
	w := NewWallet()
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, w.SaveToFile(path))

	loaded, err := WalletFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), loaded.PublicKey())

	fromB58, err := WalletFromBase58(w.Base58())
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), fromB58.PublicKey())
}

func TestWalletFromFileRejectsBadContent(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "short.json")
	require.NoError(t, os.WriteFile(short, []byte("[1,2,3]"), 0o600))
	_, err := WalletFromFile(short)
	assert.Error(t, err)

	_, err = WalletFromBase58("0OIl")
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.config/solana/id.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/solana/id.json"), got)

	got, err = ExpandHome("/tmp/key.json")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/key.json", got)
}

func TestSignTransaction(t *testing.T) {
	payer := NewWallet()
	pool := NewWallet()
	programID := solana.NewWallet().PublicKey()

	ix, err := instruction.NewUpdateRate(programID, payer.PublicKey(), pool.PublicKey(), 5)
	require.NoError(t, err)

	tx, err := SignTransaction([]solana.Instruction{ix}, solana.Hash{1}, payer)
	require.NoError(t, err)
	require.Len(t, tx.Signatures, 1)
	require.NoError(t, tx.VerifySignatures())
	assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])

	_, bump, err := authority.Find(programID)
	require.NoError(t, err)
	initIx, err := instruction.NewInitialize(programID, instruction.InitializeAccounts{
		Initializer: payer.PublicKey(),
		Pool:        NewWallet().PublicKey(),
		Mint:        solana.NewWallet().PublicKey(),
		Vault:       solana.NewWallet().PublicKey(),
	}, bump, 1)
	require.NoError(t, err)
	_, err = SignTransaction([]solana.Instruction{initIx}, solana.Hash{1}, payer)
	assert.Error(t, err, "unsigned pool account must fail signing")
}
