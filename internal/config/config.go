// Package config defines configuration for the demo commands. Config is
// loaded from an optional YAML file with sensitive fields overridable via
// POLY_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file
// structure.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Wallet  WalletConfig  `mapstructure:"wallet"`
	Stream  StreamConfig  `mapstructure:"stream"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds the REST endpoints.
type APIConfig struct {
	CLOBBaseURL  string `mapstructure:"clob_base_url"`
	GammaBaseURL string `mapstructure:"gamma_base_url"`
}

// WalletConfig holds the signing wallet. PrivateKey signs L1 (EIP-712) auth
// and derives L2 API keys; ChainID is used for order signing only (the L1
// auth domain is always Polygon).
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
	ChainID    int    `mapstructure:"chain_id"`
}

// StreamConfig holds the market WebSocket endpoint and the asset ids the
// monitor subscribes to.
type StreamConfig struct {
	WSMarketURL string   `mapstructure:"ws_market_url"`
	AssetIDs    []string `mapstructure:"asset_ids"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from an optional YAML file with env var overrides.
// Sensitive and per-run fields use env vars: POLY_API_URL, POLY_GAMMA_URL,
// POLY_WS_URL, POLY_PRIVATE_KEY, POLY_CHAIN_ID, POLY_ASSET_IDS.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("api.clob_base_url", "https://clob.polymarket.com")
	v.SetDefault("api.gamma_base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("stream.ws_market_url", "wss://ws-subscriptions-clob.polymarket.com/ws/market")
	v.SetDefault("wallet.chain_id", 137)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override from env
	if url := os.Getenv("POLY_API_URL"); url != "" {
		cfg.API.CLOBBaseURL = url
	}
	if url := os.Getenv("POLY_GAMMA_URL"); url != "" {
		cfg.API.GammaBaseURL = url
	}
	if url := os.Getenv("POLY_WS_URL"); url != "" {
		cfg.Stream.WSMarketURL = url
	}
	if key := os.Getenv("POLY_PRIVATE_KEY"); key != "" {
		cfg.Wallet.PrivateKey = key
	}
	if raw := os.Getenv("POLY_CHAIN_ID"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			cfg.Wallet.ChainID = id
		}
	}
	if raw := os.Getenv("POLY_ASSET_IDS"); raw != "" {
		cfg.Stream.AssetIDs = splitAssetIDs(raw)
	}

	return &cfg, nil
}

func splitAssetIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// Validate checks the fields every authenticated command needs.
func (c *Config) Validate() error {
	if c.Wallet.PrivateKey == "" {
		return fmt.Errorf("wallet.private_key is required (set POLY_PRIVATE_KEY)")
	}
	if c.Wallet.ChainID == 0 {
		return fmt.Errorf("wallet.chain_id is required (137 for mainnet)")
	}
	if c.API.CLOBBaseURL == "" {
		return fmt.Errorf("api.clob_base_url is required")
	}
	return nil
}
