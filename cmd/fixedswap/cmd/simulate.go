package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-fixedswap/internal/exchange"
	"github.com/lugondev/go-fixedswap/internal/simulation"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Run a scenario against an in-memory ledger",
	Long: `Run a YAML scenario against a pool hosted in an in-memory ledger. Every step
is executed as a separate instruction; failed steps are rolled back. The command
fails if any step's outcome differs from its expected error code.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := simulation.LoadFile(args[0])
		if err != nil {
			return err
		}

		report, err := simulation.NewRunner().WithLogger(logger).Run(cmd.Context(), sc)
		if err != nil {
			return err
		}
		printReport(report)

		if failed := report.Failed(); failed > 0 {
			return fmt.Errorf("%d of %d steps did not match expectations", failed, len(report.Results))
		}
		return nil
	},
}

func printReport(r *simulation.Report) {
	if r.Scenario != "" {
		fmt.Printf("Scenario:  %s\n", r.Scenario)
	}
	fmt.Printf("Pool:      %s\n", r.Pool)
	fmt.Printf("Authority: %s\n\n", r.Authority)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTEP\tEXPECT\tRESULT\tOK")
	for _, res := range r.Results {
		result := "ok"
		if res.Err != nil {
			result = res.Code
			if result == "" {
				result = res.Err.Error()
			}
		}
		expect := res.Step.Expect
		if expect == "" {
			expect = "ok"
		}
		mark := "✓"
		if !res.Passed {
			mark = "✗"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", res.Index, res.Step, expect, result, mark)
	}
	tw.Flush()

	fmt.Println()
	tw = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tLAMPORTS\tTOKENS")
	for _, b := range r.Balances {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", b.User, b.Lamports, b.Tokens)
	}
	fmt.Fprintf(tw, "(pool)\t%d\t-\n", r.PoolFunds)
	tw.Flush()

	fmt.Printf("\nToken supply: %d\n", r.Supply)
	fmt.Printf("Final rate:   %s\n", exchange.FormatRate(r.FinalRate))

	names := make([]string, 0, len(r.Counters))
	for name := range r.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nCounters:")
	for _, name := range names {
		fmt.Printf("  %-36s %d\n", name, r.Counters[name])
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}
