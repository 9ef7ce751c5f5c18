package solana

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"

	"github.com/lugondev/go-fixedswap/internal/state"
	"github.com/lugondev/go-fixedswap/pkg/view"
)

// ErrNotPool is returned when an account does not hold a pool record of the
// expected program.
var ErrNotPool = errors.New("account is not a swap pool")

// Client wraps the Solana RPC client
type Client struct {
	rpc     *rpc.Client
	limiter *rate.Limiter
}

// NewClient creates a new Solana client. requestsPerSecond <= 0 disables rate
// limiting.
func NewClient(endpoint string, requestsPerSecond float64) *Client {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = max(int(requestsPerSecond), 1)
	}
	return &Client{
		rpc:     rpc.New(endpoint),
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// GetBalance returns the balance of an account in lamports
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	result, err := c.rpc.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return result.Value, nil
}

// GetLatestBlockhash returns the latest blockhash
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Hash{}, err
	}
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return result.Value.Blockhash, nil
}

// GetAccountInfo returns the account info for a given public key
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.Account, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	result, err := c.rpc.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("account %s: %w", pubkey, rpc.ErrNotFound)
	}
	return result.Value, nil
}

// GetPool fetches and decodes the pool record stored at address.
func (c *Client) GetPool(ctx context.Context, programID, address solana.PublicKey) (*state.PoolState, error) {
	acct, err := c.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	if !acct.Owner.Equals(programID) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrNotPool, address, acct.Owner)
	}
	return state.Decode(acct.Data.GetBinary())
}

// PoolAccount is a pool record with its address.
type PoolAccount struct {
	Address solana.PublicKey
	Pool    *state.PoolState
}

// ListPools returns every initialized pool owned by programID.
func (c *Client) ListPools(ctx context.Context, programID solana.PublicKey) ([]PoolAccount, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	result, err := c.rpc.GetProgramAccountsWithOpts(ctx, programID, &rpc.GetProgramAccountsOpts{
		Encoding: solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{DataSize: state.Size},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	pools := make([]PoolAccount, 0, len(result))
	for _, keyed := range result {
		if keyed == nil || keyed.Account == nil {
			continue
		}
		v, err := view.NewPoolView(keyed.Account.Data.GetBinary())
		if err != nil || !v.Initialized() {
			continue
		}
		pools = append(pools, PoolAccount{Address: keyed.Pubkey, Pool: v.Record()})
	}
	return pools, nil
}

// RequestAirdrop requests an airdrop of SOL (only works on devnet/testnet)
func (c *Client) RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.rpc.RequestAirdrop(ctx, pubkey, lamports, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to request airdrop: %w", err)
	}
	return sig, nil
}

// SendTransaction sends a transaction
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// BuildTransaction assembles a transaction paid by payer and signs it with
// payer and every extra signer.
func (c *Client) BuildTransaction(ctx context.Context, instructions []solana.Instruction, payer *Wallet, signers ...*Wallet) (*solana.Transaction, error) {
	blockhash, err := c.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	return SignTransaction(instructions, blockhash, payer, signers...)
}

// SignTransaction builds and signs a transaction against a known blockhash.
func SignTransaction(instructions []solana.Instruction, blockhash solana.Hash, payer *Wallet, signers ...*Wallet) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	keys := map[solana.PublicKey]solana.PrivateKey{payer.PublicKey(): payer.PrivateKey()}
	for _, s := range signers {
		keys[s.PublicKey()] = s.PrivateKey()
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if pk, ok := keys[key]; ok {
			return &pk
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.rpc.Close()
}
