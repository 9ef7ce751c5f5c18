package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-fixedswap/internal/common"
	"github.com/lugondev/go-fixedswap/internal/config"
)

var (
	cfgFile string
	cfg     = config.DefaultConfig()
	logger  = slog.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fixedswap",
	Short: "Fixed-rate swap pool CLI",
	Long: `fixedswap is a CLI for the fixed-rate base/token swap program.

It provides commands for:
- Quoting swaps and encoding or decoding instruction data
- Deriving and verifying the pool authority
- Simulating scenarios against an in-memory ledger
- Reading and operating deployed pools over RPC`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fixedswap.yaml)")
	rootCmd.PersistentFlags().String("rpc", "", "Solana RPC endpoint (overrides network)")
	rootCmd.PersistentFlags().String("network", "", "Solana network (mainnet, devnet, testnet, localnet)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("program", "", "swap program id")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("rpc"); v != "" {
		loaded.Solana.RPC = v
	}
	if v, _ := flags.GetString("network"); v != "" {
		loaded.Solana.Network = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		loaded.Log.Level = v
	}
	if v, _ := flags.GetString("program"); v != "" {
		loaded.Program.ID = v
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	logger = common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return nil
}
