package view

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/internal/state"
)

func createTestPoolBuffer(t testing.TB) ([]byte, *state.PoolState) {
	record := &state.PoolState{
		Initialized:   true,
		AuthorityBump: 251,
		TokenMint:     solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"),
		TokenVault:    solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111"),
		Rate:          1_250_000_000,
	}
	buf, err := record.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf, record
}

func TestPoolView(t *testing.T) {
	buf, record := createTestPoolBuffer(t)
	view, err := NewPoolView(buf)
	if err != nil {
		t.Fatalf("Failed to create pool view: %v", err)
	}

	if !view.Initialized() {
		t.Error("Expected initialized to be true")
	}
	if view.AuthorityBump() != 251 {
		t.Errorf("Expected bump 251, got %d", view.AuthorityBump())
	}
	if !view.TokenMint().Equals(record.TokenMint) {
		t.Errorf("Expected mint %s, got %s", record.TokenMint, view.TokenMint())
	}
	if !view.TokenVault().Equals(record.TokenVault) {
		t.Errorf("Expected vault %s, got %s", record.TokenVault, view.TokenVault())
	}
	if view.Rate() != 1_250_000_000 {
		t.Errorf("Expected rate 1250000000, got %d", view.Rate())
	}
	if *view.Record() != *record {
		t.Errorf("Expected record %s, got %s", record, view.Record())
	}

	view.SetRate(42)
	decoded, err := state.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Rate != 42 {
		t.Errorf("Expected SetRate to write through, got %d", decoded.Rate)
	}
}

func TestPoolViewRejectsBadBuffers(t *testing.T) {
	if _, err := NewPoolView(make([]byte, state.Size-1)); err != ErrInvalidBuffer {
		t.Errorf("Expected ErrInvalidBuffer, got %v", err)
	}
	buf, _ := createTestPoolBuffer(t)
	buf[state.OffsetInitialized] = 3
	if _, err := NewPoolView(buf); err != ErrInvalidAccountData {
		t.Errorf("Expected ErrInvalidAccountData, got %v", err)
	}
}

func TestInstructionView(t *testing.T) {
	if _, err := NewInstructionView(nil); err != ErrInvalidBuffer {
		t.Errorf("Expected ErrInvalidBuffer, got %v", err)
	}

	buf := []byte{3, 1, 2, 3, 4, 5, 6, 7, 8}
	view, err := NewInstructionView(buf)
	if err != nil {
		t.Fatalf("Failed to create instruction view: %v", err)
	}
	if view.Tag() != 3 {
		t.Errorf("Expected tag 3, got %d", view.Tag())
	}
	if len(view.Payload()) != 8 {
		t.Errorf("Expected payload length 8, got %d", len(view.Payload()))
	}
	if len(view.FullData()) != 9 {
		t.Errorf("Expected full data length 9, got %d", len(view.FullData()))
	}

	tagOnly, _ := NewInstructionView([]byte{1})
	if tagOnly.Payload() != nil {
		t.Error("Expected nil payload")
	}
}

func BenchmarkPoolView(b *testing.B) {
	buf, _ := createTestPoolBuffer(b)

	b.Run("ZeroCopyView", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			view, _ := NewPoolView(buf)
			_ = view.TokenMint()
			_ = view.TokenVault()
			_ = view.Rate()
		}
	})

	b.Run("Decode", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			record, _ := state.Decode(buf)
			_ = record
		}
	})
}
