package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestIsMatchesByCode(t *testing.T) {
	err := SlippageExceeded(4, 5)
	if !errors.Is(err, ErrSlippageExceeded) {
		t.Error("constructor error should match its sentinel")
	}
	if errors.Is(err, ErrArithmeticOverflow) {
		t.Error("different codes must not match")
	}
	if err.Details["min_out"] != uint64(5) {
		t.Errorf("unexpected details %v", err.Details)
	}

	wrapped := fmt.Errorf("outer: %w", AccountMismatch("mint", solana.SystemProgramID, solana.TokenProgramID))
	if !Is(wrapped, ErrAccountMismatch) {
		t.Error("wrapped error should match")
	}
	if Code(wrapped) != ErrCodeAccountMismatch {
		t.Errorf("Code = %q", Code(wrapped))
	}
	if Code(errors.New("plain")) != "" {
		t.Error("plain errors have no code")
	}
}

func TestCollaboratorFailureKeepsCause(t *testing.T) {
	cause := errors.New("insufficient funds")
	err := CollaboratorFailure("transfer", cause)

	if !errors.Is(err, ErrCollaboratorFailure) || !errors.Is(err, cause) {
		t.Error("both the kind and the cause must be reachable")
	}
	var se *SwapError
	if !As(err, &se) || se.Code != ErrCodeCollaboratorFailure {
		t.Errorf("As = %v", se)
	}
	if got := err.Error(); got != "COLLABORATOR_FAILURE: transfer failed: insufficient funds" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWithCauseCopies(t *testing.T) {
	cause := errors.New("boom")
	err := ErrMalformedInstruction.WithCause(cause)
	if ErrMalformedInstruction.Cause != nil {
		t.Error("WithCause must not modify the sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable")
	}
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}
