// Package view reads pool records and instruction buffers in place, without
// decoding them into structs.
package view

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/internal/state"
)

var (
	ErrInvalidBuffer      = errors.New("invalid buffer size")
	ErrInvalidAccountData = errors.New("invalid account data")
)

type PoolView struct {
	buffer []byte
}

// NewPoolView wraps a stored pool record. The buffer must hold exactly one
// record.
func NewPoolView(buffer []byte) (*PoolView, error) {
	if len(buffer) != state.Size {
		return nil, ErrInvalidBuffer
	}
	if buffer[state.OffsetInitialized] > 1 {
		return nil, ErrInvalidAccountData
	}
	return &PoolView{
		buffer: buffer,
	}, nil
}

func (v *PoolView) Initialized() bool {
	return v.buffer[state.OffsetInitialized] == 1
}

func (v *PoolView) AuthorityBump() uint8 {
	return v.buffer[state.OffsetAuthorityBump]
}

func (v *PoolView) TokenMint() solana.PublicKey {
	return *(*solana.PublicKey)(unsafe.Pointer(&v.buffer[state.OffsetTokenMint]))
}

func (v *PoolView) TokenVault() solana.PublicKey {
	return *(*solana.PublicKey)(unsafe.Pointer(&v.buffer[state.OffsetTokenVault]))
}

func (v *PoolView) Rate() uint64 {
	return binary.LittleEndian.Uint64(v.buffer[state.OffsetRate : state.OffsetRate+8])
}

// SetRate overwrites the rate field in the underlying buffer.
func (v *PoolView) SetRate(rate uint64) {
	binary.LittleEndian.PutUint64(v.buffer[state.OffsetRate:state.OffsetRate+8], rate)
}

// Record copies the viewed fields into a PoolState.
func (v *PoolView) Record() *state.PoolState {
	return &state.PoolState{
		Initialized:   v.Initialized(),
		AuthorityBump: v.AuthorityBump(),
		TokenMint:     v.TokenMint(),
		TokenVault:    v.TokenVault(),
		Rate:          v.Rate(),
	}
}

type InstructionView struct {
	buffer []byte
}

func NewInstructionView(buffer []byte) (*InstructionView, error) {
	if len(buffer) < 1 {
		return nil, ErrInvalidBuffer
	}
	return &InstructionView{
		buffer: buffer,
	}, nil
}

// Tag returns the leading command byte.
func (v *InstructionView) Tag() uint8 {
	return v.buffer[0]
}

func (v *InstructionView) Payload() []byte {
	if len(v.buffer) <= 1 {
		return nil
	}
	return v.buffer[1:]
}

func (v *InstructionView) FullData() []byte {
	return v.buffer
}
