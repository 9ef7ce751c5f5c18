package cmd

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-fixedswap/internal/authority"
	fsolana "github.com/lugondev/go-fixedswap/internal/solana"
)

func newClient() *fsolana.Client {
	return fsolana.NewClient(cfg.Solana.GetRPCEndpoint(), cfg.Solana.RequestsPerSecond)
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.Solana.RequestTimeout())
}

// keypairPath returns the --keypair flag if set, else the configured keypair.
func keypairPath(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("keypair"); v != "" {
		return v
	}
	return cfg.Solana.Keypair
}

func loadWallet(cmd *cobra.Command) (*fsolana.Wallet, error) {
	return fsolana.WalletFromFile(keypairPath(cmd))
}

// pubkeyArg parses value, falling back to the configured fallback when value is
// empty.
func pubkeyArg(name, value, fallback string) (solana.PublicKey, error) {
	if value == "" {
		value = fallback
	}
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return key, nil
}

// resolveBump returns the configured authority bump, or the canonical one when
// none is configured.
func resolveBump(programID solana.PublicKey) (uint8, error) {
	if cfg.Pool.AuthorityBump >= 0 {
		return uint8(cfg.Pool.AuthorityBump), nil
	}
	_, bump, err := authority.Find(programID)
	if err != nil {
		return 0, fmt.Errorf("derive authority: %w", err)
	}
	return bump, nil
}
