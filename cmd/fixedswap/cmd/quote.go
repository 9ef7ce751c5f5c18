package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-fixedswap/internal/exchange"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute swap outputs at a fixed rate",
	Long: `Compute what a swap would return at a given rate, using the same floor
rounding and overflow checks as the program. The rate is tokens per base unit
as a decimal, for example 2.5.`,
}

var quoteBuyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Tokens received for --amount base units",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuote(cmd, exchange.ToToken, "base", "token")
	},
}

var quoteSellCmd = &cobra.Command{
	Use:   "sell",
	Short: "Base units received for --amount tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuote(cmd, exchange.ToBase, "token", "base")
	},
}

func runQuote(cmd *cobra.Command, convert func(uint64, uint64) (uint64, error), from, to string) error {
	amount, _ := cmd.Flags().GetUint64("amount")
	rateStr, _ := cmd.Flags().GetString("rate")
	rate, err := exchange.ParseRate(rateStr)
	if err != nil {
		return err
	}

	out, err := convert(amount, rate)
	if err != nil {
		return err
	}
	fmt.Printf("Rate:   %s (%d fixed-point)\n", exchange.FormatRate(rate), rate)
	fmt.Printf("In:     %d %s\n", amount, from)
	fmt.Printf("Out:    %d %s\n", out, to)
	return nil
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.AddCommand(quoteBuyCmd)
	quoteCmd.AddCommand(quoteSellCmd)

	quoteCmd.PersistentFlags().Uint64("amount", 0, "input amount in smallest units")
	quoteCmd.PersistentFlags().String("rate", "1", "tokens per base unit")
}
