package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.CLOBBaseURL != "https://clob.polymarket.com" {
		t.Errorf("CLOBBaseURL = %s", cfg.API.CLOBBaseURL)
	}
	if cfg.Wallet.ChainID != 137 {
		t.Errorf("ChainID = %d, want 137", cfg.Wallet.ChainID)
	}
	if cfg.Stream.WSMarketURL == "" {
		t.Error("WSMarketURL default missing")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POLY_API_URL", "https://example.test")
	t.Setenv("POLY_PRIVATE_KEY", "0xabc")
	t.Setenv("POLY_CHAIN_ID", "80002")
	t.Setenv("POLY_ASSET_IDS", " 111, 222 ,,333 ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.CLOBBaseURL != "https://example.test" {
		t.Errorf("CLOBBaseURL = %s", cfg.API.CLOBBaseURL)
	}
	if cfg.Wallet.PrivateKey != "0xabc" {
		t.Errorf("PrivateKey = %s", cfg.Wallet.PrivateKey)
	}
	if cfg.Wallet.ChainID != 80002 {
		t.Errorf("ChainID = %d, want 80002", cfg.Wallet.ChainID)
	}
	want := []string{"111", "222", "333"}
	if len(cfg.Stream.AssetIDs) != len(want) {
		t.Fatalf("AssetIDs = %v, want %v", cfg.Stream.AssetIDs, want)
	}
	for i, id := range want {
		if cfg.Stream.AssetIDs[i] != id {
			t.Errorf("AssetIDs[%d] = %s, want %s", i, cfg.Stream.AssetIDs[i], id)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("expected error without private key")
	}

	cfg.Wallet.PrivateKey = "0x1234"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
