// Package state holds the persisted pool record and its storage layout.
//
// The record is Borsh-encoded in a fixed field order so that pools written by
// any compatible implementation can be read back:
//
//	offset  size  field
//	0       1     initialized (bool)
//	1       1     authority_bump (u8)
//	2       32    token_mint
//	34      32    token_vault
//	66      8     rate_fixed_point (u64, little endian)
package state

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"

	swaperrors "github.com/lugondev/go-fixedswap/internal/errors"
	"github.com/lugondev/go-fixedswap/internal/ledger"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

// Field offsets within the encoded record.
const (
	OffsetInitialized   = 0
	OffsetAuthorityBump = 1
	OffsetTokenMint     = 2
	OffsetTokenVault    = 34
	OffsetRate          = 66

	// Size is the encoded length of a PoolState.
	Size = 74
)

// PoolState is the configuration of one swap pool.
type PoolState struct {
	Initialized   bool
	AuthorityBump uint8
	TokenMint     types.Pubkey
	TokenVault    types.Pubkey
	Rate          uint64
}

// MarshalWithEncoder writes the record in storage order.
func (p PoolState) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBool(p.Initialized); err != nil {
		return err
	}
	if err := enc.WriteUint8(p.AuthorityBump); err != nil {
		return err
	}
	if err := enc.WriteBytes(p.TokenMint[:], false); err != nil {
		return err
	}
	if err := enc.WriteBytes(p.TokenVault[:], false); err != nil {
		return err
	}
	return enc.WriteUint64(p.Rate, binary.LittleEndian)
}

// UnmarshalWithDecoder reads the record in storage order.
func (p *PoolState) UnmarshalWithDecoder(dec *bin.Decoder) error {
	flag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if flag > 1 {
		return fmt.Errorf("invalid bool value %d", flag)
	}
	p.Initialized = flag == 1

	if p.AuthorityBump, err = dec.ReadUint8(); err != nil {
		return err
	}
	mint, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	p.TokenMint = types.Pubkey(mint)
	vault, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	p.TokenVault = types.Pubkey(vault)
	p.Rate, err = dec.ReadUint64(binary.LittleEndian)
	return err
}

// Encode returns the Size-byte storage form of the record.
func (p *PoolState) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := p.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, fmt.Errorf("encode pool state: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a record. The buffer must be exactly Size bytes.
func Decode(data []byte) (*PoolState, error) {
	if len(data) != Size {
		return nil, swaperrors.InvalidAccountData("pool state", fmt.Errorf("expected %d bytes, got %d", Size, len(data)))
	}
	p := &PoolState{}
	if err := p.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, swaperrors.InvalidAccountData("pool state", err)
	}
	return p, nil
}

// String implements fmt.Stringer.
func (p *PoolState) String() string {
	return fmt.Sprintf(
		"Pool{initialized=%t,authority_bump=%d,token_mint=%s,token_vault=%s,rate=%d}",
		p.Initialized,
		p.AuthorityBump,
		p.TokenMint,
		p.TokenVault,
		p.Rate,
	)
}

// Load reads the pool record held by acct. An account with no data has never
// been initialized; otherwise it must be owned by programID and its bytes must
// decode as a record.
func Load(acct *ledger.AccountInfo, programID types.Pubkey) (*PoolState, error) {
	if len(acct.Data) == 0 {
		return nil, swaperrors.ErrUninitializedPool
	}
	if !acct.Owner.Equals(programID) {
		return nil, swaperrors.AccountMismatch("pool owner", programID, acct.Owner)
	}
	return Decode(acct.Data)
}

// Store writes the record into acct's data in place.
func Store(acct *ledger.AccountInfo, p *PoolState) error {
	if len(acct.Data) < Size {
		return swaperrors.InvalidAccountData("pool state", fmt.Errorf("account holds %d bytes, need %d", len(acct.Data), Size))
	}
	data, err := p.Encode()
	if err != nil {
		return err
	}
	copy(acct.Data, data)
	return nil
}
