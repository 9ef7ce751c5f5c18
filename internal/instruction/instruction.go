// Package instruction decodes and encodes the swap program's instruction data.
//
// Instruction data is a Borsh enum: one tag byte selecting the variant, followed
// by the variant's fields in little-endian order. Decoding is pure and rejects
// unknown tags, short payloads and trailing bytes.
package instruction

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"

	swaperrors "github.com/lugondev/go-fixedswap/internal/errors"
)

// Tag identifies an instruction variant.
type Tag uint8

const (
	TagInitialize Tag = iota
	TagSwapBaseForToken
	TagSwapTokenForBase
	TagUpdateRate
)

// String implements fmt.Stringer.
func (t Tag) String() string {
	switch t {
	case TagInitialize:
		return "Initialize"
	case TagSwapBaseForToken:
		return "SwapBaseForToken"
	case TagSwapTokenForBase:
		return "SwapTokenForBase"
	case TagUpdateRate:
		return "UpdateRate"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Instruction is one decoded program command.
type Instruction interface {
	Tag() Tag
	encode(enc *bin.Encoder) error
	decode(dec *bin.Decoder) error
}

// Initialize creates a pool.
type Initialize struct {
	AuthorityBump uint8
	Rate          uint64
}

// SwapBaseForToken sells base currency for freshly minted tokens.
type SwapBaseForToken struct {
	AmountIn uint64
	MinOut   uint64
}

// SwapTokenForBase burns tokens for base currency from the pool.
type SwapTokenForBase struct {
	AmountIn uint64
	MinOut   uint64
}

// UpdateRate replaces the pool's exchange rate.
type UpdateRate struct {
	Rate uint64
}

func (*Initialize) Tag() Tag       { return TagInitialize }
func (*SwapBaseForToken) Tag() Tag { return TagSwapBaseForToken }
func (*SwapTokenForBase) Tag() Tag { return TagSwapTokenForBase }
func (*UpdateRate) Tag() Tag       { return TagUpdateRate }

func (ix *Initialize) encode(enc *bin.Encoder) error {
	if err := enc.WriteUint8(ix.AuthorityBump); err != nil {
		return err
	}
	return enc.WriteUint64(ix.Rate, binary.LittleEndian)
}

func (ix *Initialize) decode(dec *bin.Decoder) (err error) {
	if ix.AuthorityBump, err = dec.ReadUint8(); err != nil {
		return err
	}
	ix.Rate, err = dec.ReadUint64(binary.LittleEndian)
	return err
}

func (ix *SwapBaseForToken) encode(enc *bin.Encoder) error {
	return encodeAmounts(enc, ix.AmountIn, ix.MinOut)
}

func (ix *SwapBaseForToken) decode(dec *bin.Decoder) (err error) {
	ix.AmountIn, ix.MinOut, err = decodeAmounts(dec)
	return err
}

func (ix *SwapTokenForBase) encode(enc *bin.Encoder) error {
	return encodeAmounts(enc, ix.AmountIn, ix.MinOut)
}

func (ix *SwapTokenForBase) decode(dec *bin.Decoder) (err error) {
	ix.AmountIn, ix.MinOut, err = decodeAmounts(dec)
	return err
}

func (ix *UpdateRate) encode(enc *bin.Encoder) error {
	return enc.WriteUint64(ix.Rate, binary.LittleEndian)
}

func (ix *UpdateRate) decode(dec *bin.Decoder) (err error) {
	ix.Rate, err = dec.ReadUint64(binary.LittleEndian)
	return err
}

func encodeAmounts(enc *bin.Encoder, amountIn, minOut uint64) error {
	if err := enc.WriteUint64(amountIn, binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteUint64(minOut, binary.LittleEndian)
}

func decodeAmounts(dec *bin.Decoder) (amountIn, minOut uint64, err error) {
	if amountIn, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return 0, 0, err
	}
	minOut, err = dec.ReadUint64(binary.LittleEndian)
	return amountIn, minOut, err
}

// Decode parses instruction data into exactly one Instruction.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, swaperrors.MalformedInstruction("empty data", nil)
	}

	var ix Instruction
	switch Tag(data[0]) {
	case TagInitialize:
		ix = &Initialize{}
	case TagSwapBaseForToken:
		ix = &SwapBaseForToken{}
	case TagSwapTokenForBase:
		ix = &SwapTokenForBase{}
	case TagUpdateRate:
		ix = &UpdateRate{}
	default:
		return nil, swaperrors.MalformedInstruction(fmt.Sprintf("unknown tag %d", data[0]), nil)
	}

	dec := bin.NewBorshDecoder(data[1:])
	if err := ix.decode(dec); err != nil {
		return nil, swaperrors.MalformedInstruction(ix.Tag().String()+" payload", err)
	}
	if dec.Remaining() != 0 {
		return nil, swaperrors.MalformedInstruction(fmt.Sprintf("%d trailing bytes", dec.Remaining()), nil)
	}
	return ix, nil
}

// Encode serializes an Instruction; it is the inverse of Decode.
func Encode(ix Instruction) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(uint8(ix.Tag())); err != nil {
		return nil, err
	}
	if err := ix.encode(enc); err != nil {
		return nil, fmt.Errorf("encode %s: %w", ix.Tag(), err)
	}
	return buf.Bytes(), nil
}
