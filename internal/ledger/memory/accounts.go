package memory

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/pkg/types"
)

// ErrUnknownProgram is returned by Process for an unregistered program id.
var ErrUnknownProgram = errors.New("unknown program")

// Fund adds lamports to a system-owned account, creating it if needed.
func (l *Ledger) Fund(key types.Pubkey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[key]
	if !ok {
		acct = &Account{Owner: solana.SystemProgramID}
		l.accounts[key] = acct
	}
	acct.Lamports += lamports
}

// SetAccount stores an account as given, replacing any existing one.
func (l *Ledger) SetAccount(key types.Pubkey, acct Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct.Data = append([]byte(nil), acct.Data...)
	l.accounts[key] = &acct
}

// CreateMint registers a mint controlled by authority.
func (l *Ledger) CreateMint(key, authority types.Pubkey, decimals uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.mints[key]; ok {
		return fmt.Errorf("mint %s already exists", key)
	}
	l.mints[key] = &Mint{Authority: authority, Decimals: decimals}
	return nil
}

// CreateTokenAccount registers an empty token account for owner.
func (l *Ledger) CreateTokenAccount(key, mint, owner types.Pubkey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.mints[mint]; !ok {
		return fmt.Errorf("mint %s does not exist", mint)
	}
	if _, ok := l.tokenAccounts[key]; ok {
		return fmt.Errorf("token account %s already exists", key)
	}
	l.tokenAccounts[key] = &TokenAccount{Mint: mint, Owner: owner}
	return nil
}

// SetFrozen freezes or thaws a token account.
func (l *Ledger) SetFrozen(key types.Pubkey, frozen bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ta, ok := l.tokenAccounts[key]
	if !ok {
		return fmt.Errorf("token account %s does not exist", key)
	}
	ta.Frozen = frozen
	return nil
}

// Balance returns the lamports held by key.
func (l *Ledger) Balance(key types.Pubkey) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if acct, ok := l.accounts[key]; ok {
		return acct.Lamports
	}
	return 0
}

// TokenBalance returns the token amount held by a token account.
func (l *Ledger) TokenBalance(key types.Pubkey) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if ta, ok := l.tokenAccounts[key]; ok {
		return ta.Amount
	}
	return 0
}

// Supply returns the total supply of a mint.
func (l *Ledger) Supply(mint types.Pubkey) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if m, ok := l.mints[mint]; ok {
		return m.Supply
	}
	return 0
}

// Account returns a copy of the stored account.
func (l *Ledger) Account(key types.Pubkey) (Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[key]
	if !ok {
		return Account{}, false
	}
	cp := *acct
	cp.Data = append([]byte(nil), acct.Data...)
	return cp, true
}

// Calls returns the committed collaborator calls in order.
func (l *Ledger) Calls() []Call {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Call(nil), l.calls...)
}

// Attempts returns how many collaborator calls were requested, including those
// that failed or were later rolled back.
func (l *Ledger) Attempts() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.attempts
}
