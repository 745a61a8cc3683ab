// derive-creds bootstraps L2 API credentials from the configured wallet and
// prints them. Run once per wallet; the CLOB returns the same triplet on
// subsequent derives.
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
)

func main() {
	godotenv.Load()

	cfg, logger, err := setup()
	if err != nil {
		slog.Error("setup failed", "error", err)
		os.Exit(1)
	}

	signer, err := auth.NewSigner(cfg.Wallet.PrivateKey)
	if err != nil {
		logger.Error("invalid private key", "error", err)
		os.Exit(1)
	}
	logger.Info("wallet ready", "address", signer.AddressHex())

	client := clob.NewClient(cfg.API.CLOBBaseURL, signer, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	creds, err := client.CreateOrDeriveApiKey(ctx, nil)
	if err != nil {
		logger.Error("credential bootstrap failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("POLY_API_KEY=%s\n", creds.ApiKey)
	fmt.Printf("POLY_API_SECRET=%s\n", creds.Secret)
	fmt.Printf("POLY_API_PASSPHRASE=%s\n", creds.Passphrase)
}

func setup() (*config.Config, *slog.Logger, error) {
	cfgPath := os.Getenv("POLY_CONFIG")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return cfg, slog.New(handler), nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
