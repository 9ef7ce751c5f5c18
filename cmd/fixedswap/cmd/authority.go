package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-fixedswap/internal/authority"
)

var authorityCmd = &cobra.Command{
	Use:   "authority",
	Short: "Pool authority derivation",
	Long: `The pool authority is a program-derived address built from the fixed label
"authority" and a one-byte bump. It has no private key; the program signs for it
by presenting the derivation.`,
}

var authorityDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Find the canonical authority address and bump for the program",
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := cfg.ProgramID()
		if err != nil {
			return err
		}
		addr, bump, err := authority.Find(programID)
		if err != nil {
			return err
		}
		fmt.Printf("Program:    %s\n", programID)
		fmt.Printf("Authority:  %s\n", addr)
		fmt.Printf("Bump:       %d\n", bump)
		fmt.Printf("Off curve:  %t\n", authority.IsOffCurve(addr))
		return nil
	},
}

var authorityVerifyCmd = &cobra.Command{
	Use:   "verify <address>",
	Short: "Check that a bump derives the given authority address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := cfg.ProgramID()
		if err != nil {
			return err
		}
		addr, err := pubkeyArg("address", args[0], "")
		if err != nil {
			return err
		}
		bump, _ := cmd.Flags().GetUint8("bump")

		proof := authority.NewProof(programID, bump)
		if !proof.Authorizes(addr) {
			return fmt.Errorf("%s does not derive %s", proof, addr)
		}
		fmt.Printf("%s derives %s\n", proof, addr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authorityCmd)
	authorityCmd.AddCommand(authorityDeriveCmd)
	authorityCmd.AddCommand(authorityVerifyCmd)

	authorityVerifyCmd.Flags().Uint8("bump", 255, "authority bump to check")
}
