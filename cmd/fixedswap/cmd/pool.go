package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-fixedswap/internal/authority"
	"github.com/lugondev/go-fixedswap/internal/exchange"
	"github.com/lugondev/go-fixedswap/internal/instruction"
	fsolana "github.com/lugondev/go-fixedswap/internal/solana"
	"github.com/lugondev/go-fixedswap/internal/state"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Read and operate deployed pools over RPC",
}

var poolShowCmd = &cobra.Command{
	Use:   "show [address]",
	Short: "Fetch and decode a pool record",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := cfg.ProgramID()
		if err != nil {
			return err
		}
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		address, err := pubkeyArg("pool address", arg, cfg.Pool.Address)
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		pool, err := newClient().GetPool(ctx, programID, address)
		if err != nil {
			return err
		}
		printPool(programID, address, pool)
		return nil
	},
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List initialized pools owned by the program",
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := cfg.ProgramID()
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		pools, err := newClient().ListPools(ctx, programID)
		if err != nil {
			return err
		}
		if len(pools) == 0 {
			fmt.Println("No pools found.")
			return nil
		}
		for _, p := range pools {
			fmt.Printf("%s  mint=%s  rate=%s\n", p.Address, p.Pool.TokenMint, exchange.FormatRate(p.Pool.Rate))
		}
		return nil
	},
}

var poolInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create and initialize a new pool",
	Long: `Create a pool account and write its record. The mint's authority must already
be the pool authority printed by "fixedswap authority derive", otherwise swaps
will fail to mint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := cfg.ProgramID()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		mintStr, _ := flags.GetString("mint")
		vaultStr, _ := flags.GetString("vault")
		rateStr, _ := flags.GetString("rate")
		poolKeypair, _ := flags.GetString("pool-keypair")

		mint, err := pubkeyArg("mint", mintStr, cfg.Pool.Mint)
		if err != nil {
			return err
		}
		vault, err := pubkeyArg("vault", vaultStr, cfg.Pool.Vault)
		if err != nil {
			return err
		}
		rate, err := exchange.ParseRate(rateStr)
		if err != nil {
			return err
		}
		bump, err := resolveBump(programID)
		if err != nil {
			return err
		}

		payer, err := loadWallet(cmd)
		if err != nil {
			return err
		}
		pool := fsolana.NewWallet()
		if poolKeypair != "" {
			if pool, err = fsolana.WalletFromFile(poolKeypair); err != nil {
				return err
			}
		}

		ix, err := instruction.NewInitialize(programID, instruction.InitializeAccounts{
			Initializer: payer.PublicKey(),
			Pool:        pool.PublicKey(),
			Mint:        mint,
			Vault:       vault,
		}, bump, rate)
		if err != nil {
			return err
		}

		fmt.Printf("Pool: %s\n", pool.PublicKey())
		return submit(cmd, ix, payer, pool)
	},
}

var poolBuyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Swap base currency for tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwap(cmd, true)
	},
}

var poolSellCmd = &cobra.Command{
	Use:   "sell",
	Short: "Swap tokens for base currency",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwap(cmd, false)
	},
}

var poolSetRateCmd = &cobra.Command{
	Use:   "set-rate",
	Short: "Update the pool's exchange rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := cfg.ProgramID()
		if err != nil {
			return err
		}
		poolStr, _ := cmd.Flags().GetString("pool")
		rateStr, _ := cmd.Flags().GetString("rate")

		address, err := pubkeyArg("pool address", poolStr, cfg.Pool.Address)
		if err != nil {
			return err
		}
		rate, err := exchange.ParseRate(rateStr)
		if err != nil {
			return err
		}
		signer, err := loadWallet(cmd)
		if err != nil {
			return err
		}

		ix, err := instruction.NewUpdateRate(programID, signer.PublicKey(), address, rate)
		if err != nil {
			return err
		}
		return submit(cmd, ix, signer)
	},
}

func runSwap(cmd *cobra.Command, buy bool) error {
	programID, err := cfg.ProgramID()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	poolStr, _ := flags.GetString("pool")
	userTokenStr, _ := flags.GetString("user-token")
	amount, _ := flags.GetUint64("amount")
	minOut, _ := flags.GetUint64("min-out")

	address, err := pubkeyArg("pool address", poolStr, cfg.Pool.Address)
	if err != nil {
		return err
	}
	userToken, err := pubkeyArg("user token account", userTokenStr, "")
	if err != nil {
		return err
	}
	user, err := loadWallet(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()
	pool, err := newClient().GetPool(ctx, programID, address)
	if err != nil {
		return err
	}
	if !pool.Initialized {
		return fmt.Errorf("pool %s is not initialized", address)
	}

	accts := instruction.SwapAccounts{
		User:          user.PublicKey(),
		UserToken:     userToken,
		Pool:          address,
		Mint:          pool.TokenMint,
		Vault:         pool.TokenVault,
		AuthorityBump: pool.AuthorityBump,
	}

	var (
		ix       solana.Instruction
		expected uint64
	)
	if buy {
		if expected, err = exchange.ToToken(amount, pool.Rate); err != nil {
			return err
		}
		ix, err = instruction.NewSwapBaseForToken(programID, accts, amount, minOut)
	} else {
		if expected, err = exchange.ToBase(amount, pool.Rate); err != nil {
			return err
		}
		ix, err = instruction.NewSwapTokenForBase(programID, accts, amount, minOut)
	}
	if err != nil {
		return err
	}
	if err := exchange.CheckSlippage(expected, minOut); err != nil {
		return err
	}

	fmt.Printf("Expected output: %d at rate %s\n", expected, exchange.FormatRate(pool.Rate))
	return submit(cmd, ix, user)
}

// submit signs ix with payer and any extra signers, then sends it, or prints it
// when --dry-run is set.
func submit(cmd *cobra.Command, ix solana.Instruction, payer *fsolana.Wallet, signers ...*fsolana.Wallet) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx, cancel := requestContext(cmd)
	defer cancel()
	client := newClient()
	defer client.Close()

	tx, err := client.BuildTransaction(ctx, []solana.Instruction{ix}, payer, signers...)
	if err != nil {
		return err
	}
	if dryRun {
		encoded, err := tx.ToBase64()
		if err != nil {
			return err
		}
		fmt.Println(encoded)
		return nil
	}

	sig, err := client.SendTransaction(ctx, tx)
	if err != nil {
		return err
	}
	logger.Info("transaction sent", "signature", sig.String())
	fmt.Printf("Signature: %s\n", sig)
	return nil
}

func printPool(programID, address solana.PublicKey, p *state.PoolState) {
	fmt.Printf("Pool:        %s\n", address)
	fmt.Printf("Initialized: %t\n", p.Initialized)
	fmt.Printf("Mint:        %s\n", p.TokenMint)
	fmt.Printf("Vault:       %s\n", p.TokenVault)
	fmt.Printf("Rate:        %s (%d fixed-point)\n", exchange.FormatRate(p.Rate), p.Rate)
	fmt.Printf("Bump:        %d\n", p.AuthorityBump)
	if addr, err := authority.NewProof(programID, p.AuthorityBump).Address(); err == nil {
		fmt.Printf("Authority:   %s\n", addr)
	} else {
		fmt.Printf("Authority:   invalid bump (%v)\n", err)
	}
}

func init() {
	rootCmd.AddCommand(poolCmd)
	poolCmd.AddCommand(poolShowCmd)
	poolCmd.AddCommand(poolListCmd)
	poolCmd.AddCommand(poolInitCmd)
	poolCmd.AddCommand(poolBuyCmd)
	poolCmd.AddCommand(poolSellCmd)
	poolCmd.AddCommand(poolSetRateCmd)

	poolCmd.PersistentFlags().String("keypair", "", "signer keypair file (default from config)")
	poolCmd.PersistentFlags().Bool("dry-run", false, "print the signed transaction instead of sending it")

	poolInitCmd.Flags().String("mint", "", "token mint (default from config)")
	poolInitCmd.Flags().String("vault", "", "token vault (default from config)")
	poolInitCmd.Flags().String("rate", "1", "tokens per base unit")
	poolInitCmd.Flags().String("pool-keypair", "", "keypair for the new pool account (generated if empty)")

	for _, c := range []*cobra.Command{poolBuyCmd, poolSellCmd} {
		c.Flags().String("pool", "", "pool address (default from config)")
		c.Flags().String("user-token", "", "your token account for the pool's mint")
		c.Flags().Uint64("amount", 0, "amount in")
		c.Flags().Uint64("min-out", 0, "minimum acceptable output")
	}
	poolSetRateCmd.Flags().String("pool", "", "pool address (default from config)")
	poolSetRateCmd.Flags().String("rate", "", "new tokens per base unit")
}
