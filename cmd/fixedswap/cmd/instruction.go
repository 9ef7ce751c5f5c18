package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-fixedswap/internal/exchange"
	"github.com/lugondev/go-fixedswap/internal/instruction"
	"github.com/lugondev/go-fixedswap/pkg/view"
)

var instructionCmd = &cobra.Command{
	Use:   "instruction",
	Short: "Encode and decode swap instruction data",
}

var instructionEncodeCmd = &cobra.Command{
	Use:       "encode <initialize|buy|sell|set-rate>",
	Short:     "Encode instruction data",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"initialize", "buy", "sell", "set-rate"},
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		amount, _ := flags.GetUint64("amount")
		minOut, _ := flags.GetUint64("min-out")
		bump, _ := flags.GetUint8("bump")
		rateStr, _ := flags.GetString("rate")
		encoding, _ := flags.GetString("encoding")

		var ix instruction.Instruction
		switch args[0] {
		case "initialize", "set-rate":
			rate, err := exchange.ParseRate(rateStr)
			if err != nil {
				return err
			}
			if args[0] == "initialize" {
				ix = &instruction.Initialize{AuthorityBump: bump, Rate: rate}
			} else {
				ix = &instruction.UpdateRate{Rate: rate}
			}
		case "buy":
			ix = &instruction.SwapBaseForToken{AmountIn: amount, MinOut: minOut}
		case "sell":
			ix = &instruction.SwapTokenForBase{AmountIn: amount, MinOut: minOut}
		default:
			return fmt.Errorf("unknown instruction %q", args[0])
		}

		data, err := instruction.Encode(ix)
		if err != nil {
			return err
		}
		out, err := encodeBytes(data, encoding)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var instructionDecodeCmd = &cobra.Command{
	Use:   "decode <data>",
	Short: "Decode instruction data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encoding, _ := cmd.Flags().GetString("encoding")
		data, err := decodeBytes(args[0], encoding)
		if err != nil {
			return err
		}

		v, err := view.NewInstructionView(data)
		if err != nil {
			return fmt.Errorf("empty instruction data")
		}
		fmt.Printf("Tag:      %d (%s)\n", v.Tag(), instruction.Tag(v.Tag()))
		fmt.Printf("Payload:  %d bytes\n", len(v.Payload()))

		ix, err := instruction.Decode(data)
		if err != nil {
			return err
		}
		switch ix := ix.(type) {
		case *instruction.Initialize:
			fmt.Printf("Bump:     %d\n", ix.AuthorityBump)
			fmt.Printf("Rate:     %s\n", exchange.FormatRate(ix.Rate))
		case *instruction.SwapBaseForToken:
			fmt.Printf("AmountIn: %d\n", ix.AmountIn)
			fmt.Printf("MinOut:   %d\n", ix.MinOut)
		case *instruction.SwapTokenForBase:
			fmt.Printf("AmountIn: %d\n", ix.AmountIn)
			fmt.Printf("MinOut:   %d\n", ix.MinOut)
		case *instruction.UpdateRate:
			fmt.Printf("Rate:     %s\n", exchange.FormatRate(ix.Rate))
		}
		return nil
	},
}

func encodeBytes(data []byte, encoding string) (string, error) {
	switch strings.ToLower(encoding) {
	case "base58":
		return base58.Encode(data), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(data), nil
	case "hex":
		return hex.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("unknown encoding %q", encoding)
	}
}

func decodeBytes(s, encoding string) ([]byte, error) {
	s = strings.TrimSpace(s)
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(encoding) {
	case "base58":
		data, err = base58.Decode(s)
	case "base64":
		data, err = base64.StdEncoding.DecodeString(s)
	case "hex":
		data, err = hex.DecodeString(strings.TrimPrefix(s, "0x"))
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", encoding, err)
	}
	return data, nil
}

func init() {
	rootCmd.AddCommand(instructionCmd)
	instructionCmd.AddCommand(instructionEncodeCmd)
	instructionCmd.AddCommand(instructionDecodeCmd)

	instructionCmd.PersistentFlags().String("encoding", "base58", "data encoding (base58, base64, hex)")
	instructionEncodeCmd.Flags().Uint64("amount", 0, "amount in (buy, sell)")
	instructionEncodeCmd.Flags().Uint64("min-out", 0, "minimum output (buy, sell)")
	instructionEncodeCmd.Flags().Uint8("bump", 0, "authority bump (initialize)")
	instructionEncodeCmd.Flags().String("rate", "1", "tokens per base unit (initialize, set-rate)")
}
