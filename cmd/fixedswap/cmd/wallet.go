package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	fsolana "github.com/lugondev/go-fixedswap/internal/solana"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet management commands",
	Long:  `Commands for managing Solana keypairs used to sign pool transactions.`,
}

var walletNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new wallet",
	Long:  `Generate a new Solana wallet keypair, optionally saving it as a keypair file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := fsolana.NewWallet()
		out, _ := cmd.Flags().GetString("out")

		fmt.Println("New wallet generated!")
		fmt.Printf("  Public Key:  %s\n", w.PublicKey())
		if out != "" {
			if err := w.SaveToFile(out); err != nil {
				return err
			}
			fmt.Printf("  Saved to:    %s\n", out)
			return nil
		}
		fmt.Printf("  Private Key: %s\n", w.Base58())
		fmt.Println("\n⚠️  WARNING: Save your private key securely. Never share it with anyone!")
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the public key of a keypair file",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWallet(cmd)
		if err != nil {
			return err
		}
		fmt.Println(w.PublicKey())
		return nil
	},
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Check wallet balance",
	Long:  `Check the SOL balance of an address, or of the configured keypair.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pubKey solana.PublicKey
		if len(args) == 1 {
			key, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			pubKey = key
		} else {
			w, err := loadWallet(cmd)
			if err != nil {
				return err
			}
			pubKey = w.PublicKey()
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		lamports, err := newClient().GetBalance(ctx, pubKey)
		if err != nil {
			return err
		}

		fmt.Printf("Address:  %s\n", pubKey)
		fmt.Printf("Balance:  %.9f SOL (%d lamports)\n", types.LamportsToSOL(lamports), lamports)
		return nil
	},
}

var walletAirdropCmd = &cobra.Command{
	Use:   "airdrop [sol]",
	Short: "Request an airdrop to the configured keypair (devnet/testnet only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sol float64
		if _, err := fmt.Sscanf(args[0], "%g", &sol); err != nil || sol <= 0 {
			return fmt.Errorf("invalid amount %q", args[0])
		}
		w, err := loadWallet(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		sig, err := newClient().RequestAirdrop(ctx, w.PublicKey(), types.SOLToLamports(sol))
		if err != nil {
			return err
		}
		fmt.Printf("Airdrop requested: %s\n", sig)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletNewCmd)
	walletCmd.AddCommand(walletShowCmd)
	walletCmd.AddCommand(walletBalanceCmd)
	walletCmd.AddCommand(walletAirdropCmd)

	walletCmd.PersistentFlags().String("keypair", "", "keypair file (default from config)")
	walletNewCmd.Flags().String("out", "", "write the keypair to this file instead of printing it")
}
