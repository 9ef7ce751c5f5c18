// Package memory is an in-process host for the swap program.
//
// Ledger keeps accounts, base-currency balances, token mints and token accounts
// in maps keyed by identity, implements every service contract from package
// ledger, and runs program calls one at a time. Each call runs against a
// snapshot: if the program returns an error, all effects of that call,
// including collaborator calls it already made, are discarded.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"math/bits"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/lugondev/go-fixedswap/internal/common"
	"github.com/lugondev/go-fixedswap/internal/ledger"
	"github.com/lugondev/go-fixedswap/pkg/buffer"
	"github.com/lugondev/go-fixedswap/pkg/types"
)

// Rent parameters matching the default cluster configuration.
const (
	AccountStorageOverhead uint64 = 128
	LamportsPerByteYear    uint64 = 3480
	ExemptionYears         uint64 = 2
)

// Program is a handler the ledger can dispatch instructions to.
type Program interface {
	ProgramID() types.Pubkey
	Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte) error
}

// Account is a stored ledger account.
type Account struct {
	Lamports uint64
	Owner    types.Pubkey
	Data     []byte
}

// Mint is a token mint.
type Mint struct {
	Authority types.Pubkey
	Supply    uint64
	Decimals  uint8
}

// TokenAccount holds a token balance for one owner and mint.
type TokenAccount struct {
	Mint   types.Pubkey
	Owner  types.Pubkey
	Amount uint64
	Frozen bool
}

// CallKind names a collaborator service call.
type CallKind string

const (
	CallCreateAccount CallKind = "create_account"
	CallTransfer      CallKind = "transfer"
	CallMintTo        CallKind = "mint_to"
	CallBurn          CallKind = "burn"
)

// Call is a completed collaborator call.
type Call struct {
	Kind   CallKind
	From   types.Pubkey
	To     types.Pubkey
	Amount uint64
}

type snapshot struct {
	accounts      map[types.Pubkey]*Account
	mints         map[types.Pubkey]*Mint
	tokenAccounts map[types.Pubkey]*TokenAccount
	calls         []Call
}

// Ledger is an in-memory host implementing ledger.Host.
type Ledger struct {
	common.LoggerMixin

	// exec serializes program calls; mu guards the maps below.
	exec sync.Mutex
	mu   sync.RWMutex

	accounts      map[types.Pubkey]*Account
	mints         map[types.Pubkey]*Mint
	tokenAccounts map[types.Pubkey]*TokenAccount
	programs      map[types.Pubkey]Program
	calls         []Call
	attempts      int

	// invoker is the program currently executing, if any.
	invoker *types.Pubkey
}

var _ ledger.Host = (*Ledger)(nil)

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{
		LoggerMixin:   common.NewLoggerMixin(),
		accounts:      make(map[types.Pubkey]*Account),
		mints:         make(map[types.Pubkey]*Mint),
		tokenAccounts: make(map[types.Pubkey]*TokenAccount),
		programs:      make(map[types.Pubkey]Program),
	}
}

// WithLogger sets a custom logger.
func (l *Ledger) WithLogger(logger *slog.Logger) *Ledger {
	l.SetLogger(logger)
	return l
}

// Register makes program reachable through Process.
func (l *Ledger) Register(program Program) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[program.ProgramID()] = program
}

// Process runs ix against the ledger. Accounts flagged as signers in ix only
// count as signed when their key is among signers. On error every effect of the
// call is rolled back.
func (l *Ledger) Process(ctx context.Context, ix *types.Instruction, signers ...types.Pubkey) error {
	l.exec.Lock()
	defer l.exec.Unlock()

	l.mu.RLock()
	program, ok := l.programs[ix.ProgramID]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: program %s", ErrUnknownProgram, ix.ProgramID)
	}

	logger := l.GetLogger().With("invocation", uuid.NewString(), "program", ix.ProgramID.String())

	snap := l.snapshot()
	accounts := l.accountInfos(ix.Accounts, signers)

	programID := ix.ProgramID
	l.setInvoker(&programID)
	err := program.Process(ctx, accounts, ix.Data)
	l.setInvoker(nil)

	if err != nil {
		l.restore(snap)
		logger.Debug("invocation rolled back", "error", err)
		return err
	}
	release(snap)
	logger.Debug("invocation committed")
	return nil
}

// accountInfos builds one view per distinct key; repeated keys share a view.
func (l *Ledger) accountInfos(metas []types.AccountMeta, signers []types.Pubkey) []*ledger.AccountInfo {
	signed := make(map[types.Pubkey]bool, len(signers))
	for _, s := range signers {
		signed[s] = true
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	byKey := make(map[types.Pubkey]*ledger.AccountInfo, len(metas))
	out := make([]*ledger.AccountInfo, 0, len(metas))
	for _, meta := range metas {
		info, ok := byKey[meta.Pubkey]
		if !ok {
			info = &ledger.AccountInfo{Key: meta.Pubkey, Owner: solana.SystemProgramID}
			if acct, exists := l.accounts[meta.Pubkey]; exists {
				info.Lamports = acct.Lamports
				info.Owner = acct.Owner
				info.Data = acct.Data
			}
			byKey[meta.Pubkey] = info
		}
		info.IsSigner = info.IsSigner || (meta.IsSigner && signed[meta.Pubkey])
		info.IsWritable = info.IsWritable || meta.IsWritable
		out = append(out, info)
	}
	return out
}

func (l *Ledger) setInvoker(id *types.Pubkey) {
	l.mu.Lock()
	l.invoker = id
	l.mu.Unlock()
}

func (l *Ledger) snapshot() snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := snapshot{
		accounts:      make(map[types.Pubkey]*Account, len(l.accounts)),
		mints:         make(map[types.Pubkey]*Mint, len(l.mints)),
		tokenAccounts: make(map[types.Pubkey]*TokenAccount, len(l.tokenAccounts)),
		calls:         append([]Call(nil), l.calls...),
	}
	for k, v := range l.accounts {
		cp := *v
		cp.Data = buffer.Clone(v.Data)
		s.accounts[k] = &cp
	}
	for k, v := range l.mints {
		cp := *v
		s.mints[k] = &cp
	}
	for k, v := range l.tokenAccounts {
		cp := *v
		s.tokenAccounts[k] = &cp
	}
	return s
}

// release returns a discarded snapshot's data copies to the buffer pool.
func release(s snapshot) {
	for _, acct := range s.accounts {
		buffer.PutBuffer(acct.Data)
	}
}

func (l *Ledger) restore(s snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts = s.accounts
	l.mints = s.mints
	l.tokenAccounts = s.tokenAccounts
	l.calls = s.calls
}

// verify checks an authority, requiring proofs to come from the running program.
func (l *Ledger) verify(auth ledger.Authority) error {
	if err := auth.Verify(); err != nil {
		return err
	}
	if auth.Proof != nil && (l.invoker == nil || !l.invoker.Equals(auth.Proof.ProgramID)) {
		return fmt.Errorf("%w: proof for %s presented outside its program", ledger.ErrInvalidAuthority, auth.Proof.ProgramID)
	}
	return nil
}

// CreateAccount implements ledger.AccountCreator.
func (l *Ledger) CreateAccount(ctx context.Context, payer, account *ledger.AccountInfo, lamports, space uint64, owner types.Pubkey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++

	if !payer.IsSigner {
		return fmt.Errorf("%w: payer %s did not sign", ledger.ErrInvalidAuthority, payer.Key)
	}
	if !account.IsSigner {
		return fmt.Errorf("%w: new account %s did not sign", ledger.ErrInvalidAuthority, account.Key)
	}
	if existing, ok := l.accounts[account.Key]; ok && (existing.Lamports > 0 || len(existing.Data) > 0 || !existing.Owner.Equals(solana.SystemProgramID)) {
		return fmt.Errorf("%w: %s", ledger.ErrAccountInUse, account.Key)
	}
	src, ok := l.accounts[payer.Key]
	if !ok || src.Lamports < lamports {
		return fmt.Errorf("%w: payer %s needs %d lamports", ledger.ErrInsufficientFunds, payer.Key, lamports)
	}

	src.Lamports -= lamports
	created := &Account{Lamports: lamports, Owner: owner, Data: make([]byte, space)}
	l.accounts[account.Key] = created

	payer.Lamports = src.Lamports
	account.Lamports = created.Lamports
	account.Owner = created.Owner
	account.Data = created.Data

	l.calls = append(l.calls, Call{Kind: CallCreateAccount, From: payer.Key, To: account.Key, Amount: lamports})
	return nil
}

// Transfer implements ledger.Transferrer.
func (l *Ledger) Transfer(ctx context.Context, from ledger.Authority, to *ledger.AccountInfo, lamports uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++

	if err := l.verify(from); err != nil {
		return err
	}
	src, ok := l.accounts[from.Account.Key]
	if !ok || src.Lamports < lamports {
		return fmt.Errorf("%w: %s cannot send %d lamports", ledger.ErrInsufficientFunds, from.Account.Key, lamports)
	}
	dst, ok := l.accounts[to.Key]
	if !ok {
		dst = &Account{Owner: solana.SystemProgramID}
		l.accounts[to.Key] = dst
	}
	if _, carry := bits.Add64(dst.Lamports, lamports, 0); carry != 0 {
		return fmt.Errorf("transfer to %s overflows balance", to.Key)
	}

	src.Lamports -= lamports
	dst.Lamports += lamports
	from.Account.Lamports = src.Lamports
	to.Lamports = dst.Lamports

	l.calls = append(l.calls, Call{Kind: CallTransfer, From: from.Account.Key, To: to.Key, Amount: lamports})
	return nil
}

// MintTo implements ledger.TokenService.
func (l *Ledger) MintTo(ctx context.Context, mint, destination *ledger.AccountInfo, auth ledger.Authority, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++

	if err := l.verify(auth); err != nil {
		return err
	}
	m, ok := l.mints[mint.Key]
	if !ok {
		return fmt.Errorf("%w: mint %s", ledger.ErrAccountNotFound, mint.Key)
	}
	if !m.Authority.Equals(auth.Account.Key) {
		return fmt.Errorf("%w: %s is not the mint authority of %s", ledger.ErrInvalidAuthority, auth.Account.Key, mint.Key)
	}
	ta, err := l.tokenAccount(destination.Key, mint.Key)
	if err != nil {
		return err
	}
	supply, carry := bits.Add64(m.Supply, amount, 0)
	if carry != 0 {
		return fmt.Errorf("mint %s supply overflow", mint.Key)
	}

	m.Supply = supply
	ta.Amount += amount

	l.calls = append(l.calls, Call{Kind: CallMintTo, From: mint.Key, To: destination.Key, Amount: amount})
	return nil
}

// Burn implements ledger.TokenService.
func (l *Ledger) Burn(ctx context.Context, account, mint *ledger.AccountInfo, auth ledger.Authority, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++

	if err := l.verify(auth); err != nil {
		return err
	}
	m, ok := l.mints[mint.Key]
	if !ok {
		return fmt.Errorf("%w: mint %s", ledger.ErrAccountNotFound, mint.Key)
	}
	ta, err := l.tokenAccount(account.Key, mint.Key)
	if err != nil {
		return err
	}
	if !ta.Owner.Equals(auth.Account.Key) {
		return fmt.Errorf("%w: %s does not own %s", ledger.ErrInvalidAuthority, auth.Account.Key, account.Key)
	}
	if ta.Amount < amount {
		return fmt.Errorf("%w: %s holds %d, burning %d", ledger.ErrInsufficientFunds, account.Key, ta.Amount, amount)
	}

	ta.Amount -= amount
	m.Supply -= amount

	l.calls = append(l.calls, Call{Kind: CallBurn, From: account.Key, To: mint.Key, Amount: amount})
	return nil
}

func (l *Ledger) tokenAccount(key, mint types.Pubkey) (*TokenAccount, error) {
	ta, ok := l.tokenAccounts[key]
	if !ok {
		return nil, fmt.Errorf("%w: token account %s", ledger.ErrAccountNotFound, key)
	}
	if !ta.Mint.Equals(mint) {
		return nil, fmt.Errorf("%w: %s holds %s, not %s", ledger.ErrMintMismatch, key, ta.Mint, mint)
	}
	if ta.Frozen {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountFrozen, key)
	}
	return ta, nil
}

// MinimumBalance implements ledger.RentService.
func (l *Ledger) MinimumBalance(size uint64) uint64 {
	return (AccountStorageOverhead + size) * LamportsPerByteYear * ExemptionYears
}
