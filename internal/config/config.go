package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// DefaultProgramID is the swap program address used when none is configured.
const DefaultProgramID = "FxSwap1111111111111111111111111111111111111"

// Config holds all configuration for the application
type Config struct {
	Solana  SolanaConfig  `mapstructure:"solana"`
	Log     LogConfig     `mapstructure:"log"`
	Program ProgramConfig `mapstructure:"program"`
	Pool    PoolConfig    `mapstructure:"pool"`
}

// SolanaConfig holds Solana-specific configuration
type SolanaConfig struct {
	RPC               string  `mapstructure:"rpc"`
	Network           string  `mapstructure:"network"`
	Timeout           int     `mapstructure:"timeout"` // in seconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Keypair           string  `mapstructure:"keypair"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// ProgramConfig identifies the deployed swap program.
type ProgramConfig struct {
	ID string `mapstructure:"id"`
}

// PoolConfig holds the accounts of the pool the CLI operates on by default.
type PoolConfig struct {
	Address       string `mapstructure:"address"`
	Mint          string `mapstructure:"mint"`
	Vault         string `mapstructure:"vault"`
	AuthorityBump int    `mapstructure:"authority_bump"` // negative means derive
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Solana: SolanaConfig{
			RPC:               "",
			Network:           "devnet",
			Timeout:           30,
			RequestsPerSecond: 5,
			Keypair:           "~/.config/solana/id.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Program: ProgramConfig{
			ID: DefaultProgramID,
		},
		Pool: PoolConfig{
			AuthorityBump: -1,
		},
	}
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".fixedswap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	// Environment variables
	v.SetEnvPrefix("FIXEDSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys absent
// from the config file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("solana.rpc", cfg.Solana.RPC)
	v.SetDefault("solana.network", cfg.Solana.Network)
	v.SetDefault("solana.timeout", cfg.Solana.Timeout)
	v.SetDefault("solana.requests_per_second", cfg.Solana.RequestsPerSecond)
	v.SetDefault("solana.keypair", cfg.Solana.Keypair)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("program.id", cfg.Program.ID)
	v.SetDefault("pool.address", cfg.Pool.Address)
	v.SetDefault("pool.mint", cfg.Pool.Mint)
	v.SetDefault("pool.vault", cfg.Pool.Vault)
	v.SetDefault("pool.authority_bump", cfg.Pool.AuthorityBump)
}

// GetRPCEndpoint returns the RPC endpoint for the configured network
func (c *SolanaConfig) GetRPCEndpoint() string {
	if c.RPC != "" {
		return c.RPC
	}

	switch c.Network {
	case "mainnet", "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	case "localnet", "localhost":
		return "http://localhost:8899"
	default:
		return "https://api.devnet.solana.com"
	}
}

// RequestTimeout returns the per-request timeout.
func (c *SolanaConfig) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// ProgramID parses the configured program address.
func (c *Config) ProgramID() (solana.PublicKey, error) {
	id, err := solana.PublicKeyFromBase58(c.Program.ID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program id %q: %w", c.Program.ID, err)
	}
	return id, nil
}

// Validate checks that configured addresses parse.
func (c *Config) Validate() error {
	if _, err := c.ProgramID(); err != nil {
		return err
	}
	for name, value := range map[string]string{
		"pool.address": c.Pool.Address,
		"pool.mint":    c.Pool.Mint,
		"pool.vault":   c.Pool.Vault,
	} {
		if value == "" {
			continue
		}
		if _, err := solana.PublicKeyFromBase58(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}
	if c.Pool.AuthorityBump > 255 {
		return fmt.Errorf("invalid pool.authority_bump %d", c.Pool.AuthorityBump)
	}
	if c.Solana.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid solana.requests_per_second %v", c.Solana.RequestsPerSecond)
	}
	return nil
}
