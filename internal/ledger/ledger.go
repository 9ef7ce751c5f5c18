// Package ledger defines the contracts between the swap program and the host it
// runs in: the account references handed to each call and the services the
// program invokes to create accounts, move base currency and mint or burn tokens.
//
// The program never owns these services. It validates references, decides what
// to request, and propagates whatever error a service returns.
package ledger

import (
	"context"
	"fmt"

	"github.com/lugondev/go-fixedswap/internal/authority"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

// AccountInfo is a reference to a ledger account as seen by one call.
//
// Data aliases the host's storage: writes to it are writes to the account.
type AccountInfo struct {
	Key        types.Pubkey
	IsSigner   bool
	IsWritable bool
	Lamports   uint64
	Owner      types.Pubkey
	Data       []byte
}

// String implements fmt.Stringer.
func (a *AccountInfo) String() string {
	return fmt.Sprintf("%s(signer=%t,writable=%t)", a.Key, a.IsSigner, a.IsWritable)
}

// Authority names the account whose permission a service call needs and how
// that permission is established: by the account's own signature on the call,
// or, when Proof is set, by a derivation proof standing in for it.
type Authority struct {
	Account *AccountInfo
	Proof   *authority.Proof
}

// SignedBy authorizes with the account's own signature.
func SignedBy(acct *AccountInfo) Authority {
	return Authority{Account: acct}
}

// ProvenBy authorizes with a derivation proof for acct.
func ProvenBy(acct *AccountInfo, proof authority.Proof) Authority {
	return Authority{Account: acct, Proof: &proof}
}

// Verify reports an error unless the authority is established.
func (a Authority) Verify() error {
	if a.Account == nil {
		return ErrMissingAuthority
	}
	if a.Proof != nil {
		if !a.Proof.Authorizes(a.Account.Key) {
			return fmt.Errorf("%w: proof %s does not derive %s", ErrInvalidAuthority, a.Proof, a.Account.Key)
		}
		return nil
	}
	if !a.Account.IsSigner {
		return fmt.Errorf("%w: %s did not sign", ErrInvalidAuthority, a.Account.Key)
	}
	return nil
}

// AccountCreator creates and funds new accounts.
type AccountCreator interface {
	// CreateAccount funds account with lamports from payer, allocates space
	// zeroed bytes and assigns it to owner. It fails if the payer cannot cover
	// lamports or the account already exists. On success account is refreshed.
	CreateAccount(ctx context.Context, payer, account *AccountInfo, lamports, space uint64, owner types.Pubkey) error
}

// Transferrer moves base currency between accounts.
type Transferrer interface {
	// Transfer moves lamports from the authority's account to to.
	Transfer(ctx context.Context, from Authority, to *AccountInfo, lamports uint64) error
}

// TokenService mints and burns the traded token.
type TokenService interface {
	// MintTo mints amount of mint into destination. auth must be the mint authority.
	MintTo(ctx context.Context, mint, destination *AccountInfo, auth Authority, amount uint64) error

	// Burn destroys amount from account. auth must be the account owner.
	Burn(ctx context.Context, account, mint *AccountInfo, auth Authority, amount uint64) error
}

// RentService sizes persistent storage funding.
type RentService interface {
	// MinimumBalance returns the lamports an account of size bytes needs to be
	// exempt from rent.
	MinimumBalance(size uint64) uint64
}

// Host bundles every service the program calls.
type Host interface {
	AccountCreator
	Transferrer
	TokenService
	RentService
}
