package ledger

import "errors"

// Errors returned by hosts implementing the service contracts.
var (
	ErrMissingAuthority  = errors.New("missing authority account")
	ErrInvalidAuthority  = errors.New("invalid authority")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountInUse      = errors.New("account already in use")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountFrozen     = errors.New("account is frozen")
	ErrMintMismatch      = errors.New("token account mint mismatch")
)
