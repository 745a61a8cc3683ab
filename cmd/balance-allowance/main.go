// balance-allowance bootstraps credentials and reports the wallet's USDC
// balance and exchange allowance via the L2-authenticated endpoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/howardpen9/polysqueeze/internal/config"
	"github.com/howardpen9/polysqueeze/pkg/auth"
	"github.com/howardpen9/polysqueeze/pkg/clob"
	"github.com/howardpen9/polysqueeze/pkg/types"
)

func main() {
	godotenv.Load()

	cfgPath := os.Getenv("POLY_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	signer, err := auth.NewSigner(cfg.Wallet.PrivateKey)
	if err != nil {
		logger.Error("invalid private key", "error", err)
		os.Exit(1)
	}

	client := clob.NewClient(cfg.API.CLOBBaseURL, signer, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := client.CreateOrDeriveApiKey(ctx, nil); err != nil {
		logger.Error("credential bootstrap failed", "error", err)
		os.Exit(1)
	}

	balance, err := client.GetBalanceAllowance(ctx, types.BalanceAllowanceParams{
		AssetType: types.AssetCollateral,
	})
	if err != nil {
		logger.Error("balance allowance failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("balance:   %s\n", balance.Balance)
	fmt.Printf("allowance: %s\n", balance.Allowance)
}
