package instruction

import (
	"bytes"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-fixedswap/internal/authority"
	swaperrors "github.com/lugondev/go-fixedswap/internal/errors"
)

func TestDecodeKnownLayouts(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Instruction
	}{
		{
			name: "initialize",
			data: []byte{0, 254, 0x00, 0x94, 0x35, 0x77, 0, 0, 0, 0},
			want: &Initialize{AuthorityBump: 254, Rate: 2_000_000_000},
		},
		{
			name: "swap base for token",
			data: []byte{1, 5, 0, 0, 0, 0, 0, 0, 0, 9, 0, 0, 0, 0, 0, 0, 0},
			want: &SwapBaseForToken{AmountIn: 5, MinOut: 9},
		},
		{
			name: "swap token for base",
			data: []byte{2, 10, 0, 0, 0, 0, 0, 0, 0, 6, 0, 0, 0, 0, 0, 0, 0},
			want: &SwapTokenForBase{AmountIn: 10, MinOut: 6},
		},
		{
			name: "update rate",
			data: []byte{3, 0, 0, 0, 0, 0, 0, 0, 0},
			want: &UpdateRate{Rate: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if got.Tag() != tt.want.Tag() {
				t.Fatalf("tag = %s; want %s", got.Tag(), tt.want.Tag())
			}
			switch want := tt.want.(type) {
			case *Initialize:
				if *got.(*Initialize) != *want {
					t.Errorf("got %+v; want %+v", got, want)
				}
			case *SwapBaseForToken:
				if *got.(*SwapBaseForToken) != *want {
					t.Errorf("got %+v; want %+v", got, want)
				}
			case *SwapTokenForBase:
				if *got.(*SwapTokenForBase) != *want {
					t.Errorf("got %+v; want %+v", got, want)
				}
			case *UpdateRate:
				if *got.(*UpdateRate) != *want {
					t.Errorf("got %+v; want %+v", got, want)
				}
			}

			encoded, err := Encode(got)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if !bytes.Equal(encoded, tt.data) {
				t.Errorf("Encode = %v; want %v", encoded, tt.data)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown tag", []byte{4, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"truncated initialize", []byte{0, 1, 2, 3}},
		{"tag only", []byte{1}},
		{"truncated min out", []byte{2, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0}},
		{"trailing bytes", []byte{3, 1, 0, 0, 0, 0, 0, 0, 0, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := Decode(tt.data)
			if !swaperrors.Is(err, swaperrors.ErrMalformedInstruction) {
				t.Fatalf("Decode(%v) = %v, %v; want malformed instruction", tt.data, ix, err)
			}
		})
	}
}

func TestTagString(t *testing.T) {
	if TagSwapTokenForBase.String() != "SwapTokenForBase" {
		t.Errorf("unexpected name %s", TagSwapTokenForBase)
	}
	if Tag(9).String() != "Tag(9)" {
		t.Errorf("unexpected name %s", Tag(9))
	}
}

func TestBuildersMatchAccountOrder(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	authorityKey, bump, err := authority.Find(programID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	user := solana.NewWallet().PublicKey()
	userToken := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	vault := solana.NewWallet().PublicKey()

	initIx, err := NewInitialize(programID, InitializeAccounts{Initializer: user, Pool: pool, Mint: mint, Vault: vault}, bump, 1)
	if err != nil {
		t.Fatalf("NewInitialize: %v", err)
	}
	initKeys := []solana.PublicKey{user, pool, authorityKey, mint, vault, solana.SystemProgramID, solana.TokenProgramID, solana.SysVarRentPubkey}
	assertKeys(t, initIx.Accounts(), initKeys)
	if !initIx.Accounts()[0].IsSigner || !initIx.Accounts()[1].IsSigner {
		t.Error("initializer and pool must sign")
	}

	swapAccts := SwapAccounts{User: user, UserToken: userToken, Pool: pool, Mint: mint, Vault: vault, AuthorityBump: bump}
	buy, err := NewSwapBaseForToken(programID, swapAccts, 5, 9)
	if err != nil {
		t.Fatalf("NewSwapBaseForToken: %v", err)
	}
	assertKeys(t, buy.Accounts(), []solana.PublicKey{user, userToken, pool, authorityKey, mint, vault, solana.SystemProgramID, solana.TokenProgramID})

	sell, err := NewSwapTokenForBase(programID, swapAccts, 10, 6)
	if err != nil {
		t.Fatalf("NewSwapTokenForBase: %v", err)
	}
	assertKeys(t, sell.Accounts(), []solana.PublicKey{user, userToken, pool, authorityKey, mint, solana.SystemProgramID, solana.TokenProgramID})

	update, err := NewUpdateRate(programID, user, pool, 7)
	if err != nil {
		t.Fatalf("NewUpdateRate: %v", err)
	}
	assertKeys(t, update.Accounts(), []solana.PublicKey{user, pool})

	data, err := sell.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := decoded.(*SwapTokenForBase); got.AmountIn != 10 || got.MinOut != 6 {
		t.Errorf("decoded %+v", got)
	}
}

func assertKeys(t *testing.T, metas []*solana.AccountMeta, want []solana.PublicKey) {
	t.Helper()
	if len(metas) != len(want) {
		t.Fatalf("got %d accounts; want %d", len(metas), len(want))
	}
	for i := range want {
		if !metas[i].PublicKey.Equals(want[i]) {
			t.Errorf("account %d = %s; want %s", i, metas[i].PublicKey, want[i])
		}
	}
}
