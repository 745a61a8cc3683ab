// Package clob implements the authenticated Polymarket CLOB REST client:
//
//   - CreateOrDeriveApiKey: POST /auth/api-key    — bootstrap L2 creds via L1 wallet auth,
//     falling back to GET /auth/derive-api-key when the keys already exist
//   - GetApiKeys:           GET  /auth/api-keys   — list api keys for the wallet (L2)
//   - GetBalanceAllowance:  GET  /balance-allowance — balance + exchange allowance (L2)
//
// Every request is rate-limited via per-category TokenBuckets and
// automatically retried on 5xx errors. Credentials are cached in memory on
// the client after bootstrap and never written to disk.
package clob

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/howardpen9/polysqueeze/pkg/auth"
	"github.com/howardpen9/polysqueeze/pkg/types"
)

const httpTimeout = 30 * time.Second

// Client is the CLOB REST API client. It wraps a resty HTTP client with
// rate limiting, retry, and L1/L2 auth header injection.
type Client struct {
	http   *resty.Client
	signer *auth.Signer
	rl     *RateLimiter
	logger *slog.Logger

	credsMu sync.RWMutex
	creds   types.ApiCredentials
}

// NewClient creates a REST client for the given base URL. The signer is
// required for both L1 bootstrap and L2 request signing.
func NewClient(baseURL string, signer *auth.Signer, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(httpTimeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		signer: signer,
		rl:     NewRateLimiter(),
		logger: logger.With("component", "clob"),
	}
}

// SetCredentials installs pre-derived L2 credentials (e.g. from config).
func (c *Client) SetCredentials(creds types.ApiCredentials) {
	c.credsMu.Lock()
	c.creds = creds
	c.credsMu.Unlock()
}

// Credentials returns the currently cached L2 credentials.
func (c *Client) Credentials() types.ApiCredentials {
	c.credsMu.RLock()
	defer c.credsMu.RUnlock()
	return c.creds
}

// CreateOrDeriveApiKey bootstraps L2 API credentials. It first attempts to
// create a fresh key via POST /auth/api-key; if the server reports the
// wallet already has one, it derives the existing key via
// GET /auth/derive-api-key using the same L1 headers. The result is cached
// on the client for subsequent L2 calls. A nil nonce signs as zero.
func (c *Client) CreateOrDeriveApiKey(ctx context.Context, nonce *big.Int) (types.ApiCredentials, error) {
	if err := c.rl.Auth.Wait(ctx); err != nil {
		return types.ApiCredentials{}, err
	}

	headers, err := auth.CreateL1Headers(c.signer, nonce)
	if err != nil {
		return types.ApiCredentials{}, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		Post("/auth/api-key")
	if err != nil {
		return types.ApiCredentials{}, types.NewNetworkError("create api key", err)
	}

	switch {
	case resp.StatusCode() == http.StatusOK:
		return c.cacheCredentials(resp.Body())
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return types.ApiCredentials{}, types.NewAuthError("create api key rejected: " + resp.String())
	}

	// Any other status is taken to mean the wallet already has a key; derive
	// it instead.
	c.logger.Debug("api key exists, deriving", "status", resp.StatusCode())

	if err := c.rl.Auth.Wait(ctx); err != nil {
		return types.ApiCredentials{}, err
	}

	resp, err = c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get("/auth/derive-api-key")
	if err != nil {
		return types.ApiCredentials{}, types.NewNetworkError("derive api key", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return types.ApiCredentials{}, types.NewAuthError("derive api key rejected: " + resp.String())
	}
	if resp.StatusCode() != http.StatusOK {
		return types.ApiCredentials{}, types.NewInternalError("derive api key status "+resp.Status(), nil)
	}

	return c.cacheCredentials(resp.Body())
}

func (c *Client) cacheCredentials(body []byte) (types.ApiCredentials, error) {
	var creds types.ApiCredentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return types.ApiCredentials{}, types.NewParseError("decode credentials", err)
	}
	if !creds.Complete() {
		return types.ApiCredentials{}, types.NewParseError("incomplete credentials in response", nil)
	}

	c.SetCredentials(creds)
	c.logger.Info("api credentials ready", "api_key", creds.ApiKey)
	return creds, nil
}

// GetApiKeys lists the api keys registered for the wallet.
func (c *Client) GetApiKeys(ctx context.Context) ([]string, error) {
	body, err := c.getL2(ctx, c.rl.Auth, "/auth/api-keys", nil)
	if err != nil {
		return nil, err
	}

	var result types.ApiKeysResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, types.NewParseError("decode api keys", err)
	}
	return result.ApiKeys, nil
}

// GetBalanceAllowance reports balance and exchange allowance for one asset.
// CONDITIONAL queries must carry the token id.
func (c *Client) GetBalanceAllowance(ctx context.Context, params types.BalanceAllowanceParams) (*types.BalanceAllowanceResponse, error) {
	if params.AssetType == "" {
		return nil, types.NewValidationError("asset_type is required")
	}
	if params.AssetType == types.AssetConditional && params.TokenID == "" {
		return nil, types.NewValidationError("token_id is required for CONDITIONAL queries")
	}

	query := map[string]string{"asset_type": string(params.AssetType)}
	if params.TokenID != "" {
		query["token_id"] = params.TokenID
	}

	body, err := c.getL2(ctx, c.rl.Data, "/balance-allowance", query)
	if err != nil {
		return nil, err
	}

	var result types.BalanceAllowanceResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, types.NewParseError("decode balance allowance", err)
	}
	return &result, nil
}

// getL2 performs an L2-authenticated GET. The HMAC signs the bare path;
// query parameters ride outside the signature, matching the server's check.
func (c *Client) getL2(ctx context.Context, bucket *TokenBucket, path string, query map[string]string) ([]byte, error) {
	if err := bucket.Wait(ctx); err != nil {
		return nil, err
	}

	creds := c.Credentials()
	if !creds.Complete() {
		return nil, types.NewValidationError("no L2 credentials; call CreateOrDeriveApiKey first")
	}

	headers, err := auth.CreateL2Headers(c.signer, creds, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeaders(headers)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, types.NewNetworkError("get "+path, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, types.NewAuthError("server rejected credentials for " + path)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, types.NewInternalError("get "+path+" status "+resp.Status(), nil)
	}

	return resp.Body(), nil
}
