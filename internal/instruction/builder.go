package instruction

import (
	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/internal/authority"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

// InitializeAccounts are the caller-supplied accounts of an Initialize call.
type InitializeAccounts struct {
	Initializer types.Pubkey
	Pool        types.Pubkey
	Mint        types.Pubkey
	Vault       types.Pubkey
}

// SwapAccounts are the caller-supplied accounts of a swap call. Vault is only
// sent with SwapBaseForToken.
type SwapAccounts struct {
	User          types.Pubkey
	UserToken     types.Pubkey
	Pool          types.Pubkey
	Mint          types.Pubkey
	Vault         types.Pubkey
	AuthorityBump uint8
}

// NewInitialize builds an Initialize call. The new pool account must also sign
// the transaction, since it is created by the system program.
func NewInitialize(programID types.Pubkey, accts InitializeAccounts, bump uint8, rate uint64) (*solana.GenericInstruction, error) {
	poolAuthority, err := authority.NewProof(programID, bump).Address()
	if err != nil {
		return nil, err
	}
	data, err := Encode(&Initialize{AuthorityBump: bump, Rate: rate})
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accts.Initializer).SIGNER().WRITE(),
		solana.Meta(accts.Pool).SIGNER().WRITE(),
		solana.Meta(poolAuthority),
		solana.Meta(accts.Mint),
		solana.Meta(accts.Vault),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// NewSwapBaseForToken builds a SwapBaseForToken call.
func NewSwapBaseForToken(programID types.Pubkey, accts SwapAccounts, amountIn, minOut uint64) (*solana.GenericInstruction, error) {
	poolAuthority, err := authority.NewProof(programID, accts.AuthorityBump).Address()
	if err != nil {
		return nil, err
	}
	data, err := Encode(&SwapBaseForToken{AmountIn: amountIn, MinOut: minOut})
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accts.User).SIGNER().WRITE(),
		solana.Meta(accts.UserToken).WRITE(),
		solana.Meta(accts.Pool),
		solana.Meta(poolAuthority).WRITE(),
		solana.Meta(accts.Mint).WRITE(),
		solana.Meta(accts.Vault),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// NewSwapTokenForBase builds a SwapTokenForBase call.
func NewSwapTokenForBase(programID types.Pubkey, accts SwapAccounts, amountIn, minOut uint64) (*solana.GenericInstruction, error) {
	poolAuthority, err := authority.NewProof(programID, accts.AuthorityBump).Address()
	if err != nil {
		return nil, err
	}
	data, err := Encode(&SwapTokenForBase{AmountIn: amountIn, MinOut: minOut})
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accts.User).SIGNER().WRITE(),
		solana.Meta(accts.UserToken).WRITE(),
		solana.Meta(accts.Pool),
		solana.Meta(poolAuthority).WRITE(),
		solana.Meta(accts.Mint).WRITE(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// NewUpdateRate builds an UpdateRate call.
func NewUpdateRate(programID, signer, pool types.Pubkey, rate uint64) (*solana.GenericInstruction, error) {
	data, err := Encode(&UpdateRate{Rate: rate})
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(signer).SIGNER(),
		solana.Meta(pool).WRITE(),
	}
	return solana.NewInstruction(programID, metas, data), nil
}
