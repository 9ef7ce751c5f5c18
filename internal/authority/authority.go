// Package authority derives the identity that controls the pool's reserves and
// builds the proof the host accepts in place of that identity's signature.
//
// The identity is a program derived address: the hash of a fixed label, a single
// bump byte and the program id, chosen so that it falls off the ed25519 curve and
// therefore has no private key. Presenting the label and bump lets the host
// re-derive the address and treat the program as its signer for one call.
package authority

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/pkg/types"
)

// Label is the fixed seed from which the authority identity is derived.
const Label = "authority"

// Proof authorizes a call on behalf of the derived authority identity.
type Proof struct {
	ProgramID types.Pubkey
	Bump      uint8
}

// NewProof creates a Proof for the given program and bump.
func NewProof(programID types.Pubkey, bump uint8) Proof {
	return Proof{ProgramID: programID, Bump: bump}
}

// Seeds returns the derivation seeds: the label followed by the bump byte.
func (p Proof) Seeds() [][]byte {
	return [][]byte{[]byte(Label), {p.Bump}}
}

// Address re-derives the identity this proof speaks for. It fails when the
// label and bump hash to a point on the curve.
func (p Proof) Address() (types.Pubkey, error) {
	addr, err := solana.CreateProgramAddress(p.Seeds(), p.ProgramID)
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("derive authority with bump %d: %w", p.Bump, err)
	}
	return addr, nil
}

// Authorizes reports whether the proof derives exactly the given identity.
func (p Proof) Authorizes(key types.Pubkey) bool {
	addr, err := p.Address()
	if err != nil {
		return false
	}
	return addr.Equals(key)
}

// String implements fmt.Stringer.
func (p Proof) String() string {
	return fmt.Sprintf("%s[%q,%d]", p.ProgramID, Label, p.Bump)
}

// Find returns the canonical authority address for a program together with the
// highest bump that yields an off-curve address.
func Find(programID types.Pubkey) (types.Pubkey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{[]byte(Label)}, programID)
	if err != nil {
		return types.Pubkey{}, 0, fmt.Errorf("find authority address: %w", err)
	}
	return addr, bump, nil
}

// IsOffCurve reports whether key is not a valid ed25519 point, meaning no
// private key can exist for it.
func IsOffCurve(key types.Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(key[:])
	return err != nil
}
