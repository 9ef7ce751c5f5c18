// Package errors defines the error kinds returned by the swap program.
//
// Every failure path of the program returns a *SwapError carrying a stable code,
// so callers can branch on the kind with errors.Is against the pre-defined
// sentinels regardless of the message or wrapped cause.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the swap program.
const (
	ErrCodeMissingSignature     = "MISSING_SIGNATURE"
	ErrCodeUninitializedPool    = "UNINITIALIZED_POOL"
	ErrCodeAccountMismatch      = "ACCOUNT_MISMATCH"
	ErrCodeArithmeticOverflow   = "ARITHMETIC_OVERFLOW"
	ErrCodeSlippageExceeded     = "SLIPPAGE_EXCEEDED"
	ErrCodeMalformedInstruction = "MALFORMED_INSTRUCTION"
	ErrCodeCollaboratorFailure  = "COLLABORATOR_FAILURE"
	ErrCodeNotEnoughAccounts    = "NOT_ENOUGH_ACCOUNTS"
	ErrCodeInvalidAccountData   = "INVALID_ACCOUNT_DATA"
)

// SwapError represents an error raised by the swap program.
type SwapError struct {
	// Code is a unique error code for this error kind.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Details contains additional error context.
	Details map[string]any
}

// Error implements the error interface.
func (e *SwapError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *SwapError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target by code.
func (e *SwapError) Is(target error) bool {
	t, ok := target.(*SwapError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *SwapError) WithCause(cause error) *SwapError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy of the error with the given details.
func (e *SwapError) WithDetails(details map[string]any) *SwapError {
	cp := *e
	cp.Details = details
	return &cp
}

// NewError creates a new SwapError.
func NewError(code, message string) *SwapError {
	return &SwapError{
		Code:    code,
		Message: message,
	}
}

// Pre-defined errors, one per kind.
var (
	// ErrMissingSignature is returned when a required caller did not sign.
	ErrMissingSignature = NewError(ErrCodeMissingSignature, "missing required signature")

	// ErrUninitializedPool is returned when operating on a pool that was never initialized.
	ErrUninitializedPool = NewError(ErrCodeUninitializedPool, "pool is not initialized")

	// ErrAccountMismatch is returned when a supplied account does not match the expected identity.
	ErrAccountMismatch = NewError(ErrCodeAccountMismatch, "account does not match pool record")

	// ErrArithmeticOverflow is returned when a conversion is not representable.
	ErrArithmeticOverflow = NewError(ErrCodeArithmeticOverflow, "arithmetic overflow")

	// ErrSlippageExceeded is returned when the computed output is below the caller's minimum.
	ErrSlippageExceeded = NewError(ErrCodeSlippageExceeded, "output below minimum")

	// ErrMalformedInstruction is returned when instruction data cannot be decoded.
	ErrMalformedInstruction = NewError(ErrCodeMalformedInstruction, "malformed instruction")

	// ErrCollaboratorFailure is returned when an external service rejects a call.
	ErrCollaboratorFailure = NewError(ErrCodeCollaboratorFailure, "collaborator call failed")

	// ErrNotEnoughAccounts is returned when the account list is too short.
	ErrNotEnoughAccounts = NewError(ErrCodeNotEnoughAccounts, "not enough account keys")

	// ErrInvalidAccountData is returned when pool account bytes do not decode.
	ErrInvalidAccountData = NewError(ErrCodeInvalidAccountData, "invalid account data")
)

// MalformedInstruction creates an error for an undecodable instruction buffer.
func MalformedInstruction(reason string, cause error) *SwapError {
	e := NewError(ErrCodeMalformedInstruction, fmt.Sprintf("malformed instruction: %s", reason))
	e.Cause = cause
	return e
}

// AccountMismatch creates an error naming the mismatched account.
func AccountMismatch(what string, expected, got fmt.Stringer) *SwapError {
	return NewError(ErrCodeAccountMismatch, fmt.Sprintf("%s mismatch", what)).WithDetails(map[string]any{
		"expected": expected.String(),
		"got":      got.String(),
	})
}

// ArithmeticOverflow creates an overflow error for the named operation.
func ArithmeticOverflow(op string) *SwapError {
	return NewError(ErrCodeArithmeticOverflow, fmt.Sprintf("arithmetic overflow in %s", op))
}

// SlippageExceeded creates a slippage error with the computed and minimum amounts.
func SlippageExceeded(out, minOut uint64) *SwapError {
	return NewError(ErrCodeSlippageExceeded, fmt.Sprintf("output %d below minimum %d", out, minOut)).WithDetails(map[string]any{
		"out":     out,
		"min_out": minOut,
	})
}

// CollaboratorFailure wraps an error returned by an external service.
func CollaboratorFailure(op string, cause error) *SwapError {
	e := NewError(ErrCodeCollaboratorFailure, fmt.Sprintf("%s failed", op))
	e.Cause = cause
	return e
}

// NotEnoughAccounts creates an error for a short account list.
func NotEnoughAccounts(want, got int) *SwapError {
	return NewError(ErrCodeNotEnoughAccounts, fmt.Sprintf("expected %d accounts, got %d", want, got))
}

// InvalidAccountData creates an error for undecodable account bytes.
func InvalidAccountData(what string, cause error) *SwapError {
	e := NewError(ErrCodeInvalidAccountData, fmt.Sprintf("invalid %s data", what))
	e.Cause = cause
	return e
}

// Code returns the code of the first SwapError in err's chain, or "" if none.
func Code(err error) string {
	var se *SwapError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
