// wss-monitor subscribes to the market channel and logs the event stream.
//
// Asset ids come from POLY_ASSET_IDS (comma-separated), or are derived from
// a market's Yes/No tokens when POLY_CONDITION_ID is set instead.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/howardpen9/polysqueeze/internal/config"
	"github.com/howardpen9/polysqueeze/pkg/gamma"
	"github.com/howardpen9/polysqueeze/pkg/wss"
)

func main() {
	godotenv.Load()

	cfgPath := os.Getenv("POLY_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	assetIDs := cfg.Stream.AssetIDs
	if len(assetIDs) == 0 {
		conditionID := os.Getenv("POLY_CONDITION_ID")
		if conditionID == "" {
			logger.Error("set POLY_ASSET_IDS or POLY_CONDITION_ID")
			os.Exit(1)
		}

		market, err := gamma.NewClient(cfg.API.GammaBaseURL, logger).GetMarket(ctx, conditionID)
		if err != nil {
			logger.Error("market lookup failed", "error", err)
			os.Exit(1)
		}
		assetIDs, err = market.AssetIDs()
		if err != nil {
			logger.Error("asset derivation failed", "error", err)
			os.Exit(1)
		}
		logger.Info("market resolved", "question", market.Question, "condition_id", market.ConditionID)
	}

	client := wss.NewClient(cfg.Stream.WSMarketURL, logger)
	defer client.Close()

	if err := client.Subscribe(ctx, assetIDs); err != nil {
		logger.Error("subscribe failed", "error", err)
		os.Exit(1)
	}
	logger.Info("streaming", "assets", len(assetIDs))

	for {
		evt, err := client.NextEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down")
				return
			}
			logger.Warn("stream error", "error", err)
			continue
		}

		switch {
		case evt.Book != nil:
			snap, _ := client.State(evt.Book.AssetID)
			logger.Info("book",
				"asset", evt.Book.AssetID,
				"hash", evt.Book.Hash,
				"best_bid", nullDecimalString(snap.BestBid.Valid, snap.BestBid.Decimal.String()),
				"best_ask", nullDecimalString(snap.BestAsk.Valid, snap.BestAsk.Decimal.String()),
				"bids", len(evt.Book.Bids),
				"asks", len(evt.Book.Asks),
			)
		case evt.PriceChange != nil:
			logger.Info("price_change",
				"market", evt.PriceChange.Market,
				"changes", len(evt.PriceChange.PriceChanges),
			)
		case evt.TickSizeChange != nil:
			logger.Info("tick_size_change",
				"asset", evt.TickSizeChange.AssetID,
				"old", evt.TickSizeChange.OldTickSize,
				"new", evt.TickSizeChange.NewTickSize,
			)
		case evt.LastTrade != nil:
			snap, _ := client.State(evt.LastTrade.AssetID)
			var hash string
			if len(snap.RecentTrades) > 0 {
				hash = snap.RecentTrades[0].BookHash
			}
			logger.Info("trade",
				"asset", evt.LastTrade.AssetID,
				"price", evt.LastTrade.Price,
				"size", evt.LastTrade.Size,
				"side", evt.LastTrade.Side,
				"book_hash", hash,
			)
		}
	}
}

func nullDecimalString(valid bool, s string) string {
	if !valid {
		return "-"
	}
	return s
}
