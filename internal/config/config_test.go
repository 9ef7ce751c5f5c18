package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://api.devnet.solana.com", cfg.Solana.GetRPCEndpoint())
	assert.Equal(t, 30*time.Second, cfg.Solana.RequestTimeout())
	assert.Equal(t, -1, cfg.Pool.AuthorityBump)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixedswap.yaml")
	content := `
solana:
  network: localnet
  timeout: 5
log:
  level: debug
pool:
  mint: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
  authority_bump: 254
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("FIXEDSWAP_LOG_FORMAT", "json")
	t.Setenv("FIXEDSWAP_SOLANA_REQUESTS_PER_SECOND", "12.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:8899", cfg.Solana.GetRPCEndpoint())
	assert.Equal(t, 5*time.Second, cfg.Solana.RequestTimeout())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 12.5, cfg.Solana.RequestsPerSecond)
	assert.Equal(t, 254, cfg.Pool.AuthorityBump)
	assert.Equal(t, DefaultProgramID, cfg.Program.ID)
}

func TestValidateRejectsBadAddresses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pool.Vault = "not-a-key"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Program.ID = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Pool.AuthorityBump = 300
	assert.Error(t, cfg.Validate())
}
