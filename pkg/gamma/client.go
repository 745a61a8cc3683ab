// Package gamma implements market discovery against the Polymarket Gamma
// API. It lists markets with filter parameters and derives the Yes/No asset
// id pair a market stream subscription needs.
package gamma

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/howardpen9/polysqueeze/pkg/types"
)

// Market is the JSON shape returned by the Gamma API. ClobTokenIds and
// Outcomes are double-encoded JSON array strings, a Gamma quirk.
type Market struct {
	ID                    string  `json:"id"`
	Question              string  `json:"question"`
	ConditionID           string  `json:"conditionId"`
	Slug                  string  `json:"slug"`
	Active                bool    `json:"active"`
	Closed                bool    `json:"closed"`
	AcceptingOrders       bool    `json:"acceptingOrders"`
	EnableOrderBook       bool    `json:"enableOrderBook"`
	EndDate               string  `json:"endDate"`
	Liquidity             string  `json:"liquidity"`
	Volume24hr            float64 `json:"volume24hr"`
	Outcomes              string  `json:"outcomes"`
	ClobTokenIds          string  `json:"clobTokenIds"`
	NegRisk               bool    `json:"negRisk"`
	Spread                float64 `json:"spread"`
	BestBid               float64 `json:"bestBid"`
	BestAsk               float64 `json:"bestAsk"`
	LastTradePrice        float64 `json:"lastTradePrice"`
	OrderPriceMinTickSize float64 `json:"orderPriceMinTickSize"`
	OrderMinSize          float64 `json:"orderMinSize"`
}

// AssetIDs parses the market's CLOB token ids. Binary markets carry exactly
// two: Yes first, No second.
func (m Market) AssetIDs() ([]string, error) {
	if m.ClobTokenIds == "" {
		return nil, types.NewValidationError("market " + m.ConditionID + " has no CLOB token ids")
	}

	var ids []string
	if err := json.Unmarshal([]byte(m.ClobTokenIds), &ids); err != nil {
		return nil, types.NewParseError("decode clobTokenIds", err)
	}
	if len(ids) < 2 {
		return nil, types.NewValidationError("market " + m.ConditionID + " does not have both Yes and No tokens")
	}
	return ids, nil
}

// ListParams filter the /markets listing. Zero values are omitted from the
// query.
type ListParams struct {
	Limit           int
	Offset          int
	Active          bool
	Closed          bool
	LiquidityNumMin decimal.Decimal
}

// Client talks to the Gamma API.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a Gamma API client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)

	return &Client{
		http:   httpClient,
		logger: logger.With("component", "gamma"),
	}
}

// ListMarkets fetches one page of markets matching the params.
func (c *Client) ListMarkets(ctx context.Context, params ListParams) ([]Market, error) {
	query := map[string]string{}
	if params.Limit > 0 {
		query["limit"] = strconv.Itoa(params.Limit)
	}
	if params.Offset > 0 {
		query["offset"] = strconv.Itoa(params.Offset)
	}
	if params.Active {
		query["active"] = "true"
	}
	if params.Closed {
		query["closed"] = "true"
	}
	if params.LiquidityNumMin.IsPositive() {
		query["liquidity_num_min"] = params.LiquidityNumMin.String()
	}

	var markets []Market
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(&markets).
		Get("/markets")
	if err != nil {
		return nil, types.NewNetworkError("list markets", err)
	}
	if resp.StatusCode() != 200 {
		return nil, types.NewInternalError("list markets status "+resp.Status(), nil)
	}

	c.logger.Debug("markets listed", "count", len(markets))
	return markets, nil
}

// GetMarket fetches a single market by condition id.
func (c *Client) GetMarket(ctx context.Context, conditionID string) (*Market, error) {
	if conditionID == "" {
		return nil, types.NewValidationError("condition id is required")
	}

	var markets []Market
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("condition_ids", conditionID).
		SetResult(&markets).
		Get("/markets")
	if err != nil {
		return nil, types.NewNetworkError("get market", err)
	}
	if resp.StatusCode() != 200 {
		return nil, types.NewInternalError("get market status "+resp.Status(), nil)
	}
	if len(markets) == 0 {
		return nil, types.NewValidationError("no market for condition id " + conditionID)
	}

	return &markets[0], nil
}
