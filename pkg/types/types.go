// Package types defines shared data structures used across all packages.
//
// This package is the common vocabulary for the client — credentials, order
// wire formats, order book levels, and WebSocket event payloads. It has no
// dependencies on internal packages, so it can be imported by any layer.
package types

import (
	"github.com/shopspring/decimal"
)

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Side represents the direction of an order: BUY or SELL.
type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// OrderType enumerates the supported order lifecycles.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC" // Good-Til-Cancelled: stays on book until filled or cancelled
	OrderTypeFOK OrderType = "FOK" // Fill-Or-Kill: fills entirely or not at all
)

// SignatureType identifies the signing scheme for the CTF exchange contract.
type SignatureType int

const (
	SigEOA        SignatureType = 0 // externally-owned account (standard wallet)
	SigProxy      SignatureType = 1 // Polymarket proxy / Magic wallet
	SigGnosisSafe SignatureType = 2 // Gnosis Safe multisig
)

// AssetType selects which balance the /balance-allowance endpoint reports.
type AssetType string

const (
	AssetCollateral  AssetType = "COLLATERAL"  // USDC balance
	AssetConditional AssetType = "CONDITIONAL" // outcome token balance (requires token id)
)

// ————————————————————————————————————————————————————————————————————————
// Credentials
// ————————————————————————————————————————————————————————————————————————

// ApiCredentials is the L2 API key triplet issued by /auth/api-key or
// /auth/derive-api-key. All three fields are non-empty after a successful
// bootstrap. Held in memory only; never written to disk.
type ApiCredentials struct {
	ApiKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// Complete reports whether all three credential fields are present.
func (c ApiCredentials) Complete() bool {
	return c.ApiKey != "" && c.Secret != "" && c.Passphrase != ""
}

// ApiKeysResponse is the response of GET /auth/api-keys.
type ApiKeysResponse struct {
	ApiKeys []string `json:"apiKeys"`
}

// BalanceAllowanceParams are the query parameters for GET /balance-allowance.
// TokenID is required when AssetType is CONDITIONAL.
type BalanceAllowanceParams struct {
	AssetType AssetType
	TokenID   string
}

// BalanceAllowanceResponse reports on-chain balance and exchange allowance
// for one asset, in the token's smallest indivisible unit.
type BalanceAllowanceResponse struct {
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"`
}

// ————————————————————————————————————————————————————————————————————————
// Orders
// ————————————————————————————————————————————————————————————————————————

// SignedOrder is the order format the CLOB API expects. Field order matters:
// the L2 HMAC signs the serialized body verbatim, so the layout must match
// what the server renders.
//
// For BUY:  maker gives MakerAmount USDC, receives TakerAmount tokens
// For SELL: maker gives MakerAmount tokens, receives TakerAmount USDC
type SignedOrder struct {
	Salt          int64         `json:"salt"`
	Maker         string        `json:"maker"`       // funder/proxy wallet address
	Signer        string        `json:"signer"`      // EOA that signs the order
	Taker         string        `json:"taker"`       // zero address = open order
	TokenID       string        `json:"tokenId"`     // CTF token ID
	MakerAmount   string        `json:"makerAmount"` // what maker gives (scaled to 1e6)
	TakerAmount   string        `json:"takerAmount"` // what maker receives (scaled to 1e6)
	Expiration    string        `json:"expiration"`  // unix timestamp as string, "0" = no expiry
	Nonce         string        `json:"nonce"`       // replay protection
	FeeRateBps    string        `json:"feeRateBps"`  // fee in basis points as string
	Side          Side          `json:"side"`
	SignatureType SignatureType `json:"signatureType"` // 0 = EOA
	Signature     string        `json:"signature"`     // EIP-712 signature hex
}

// OrderPayload is the REST API request body for POST /order.
type OrderPayload struct {
	Order     SignedOrder `json:"order"`
	Owner     string      `json:"owner"`     // API key of the order owner
	OrderType OrderType   `json:"orderType"` // GTC, FOK
}

// ————————————————————————————————————————————————————————————————————————
// Order book
// ————————————————————————————————————————————————————————————————————————

// OrderSummary is a single bid or ask level. The wire carries prices and
// sizes as strings to preserve decimal precision; they decode into exact
// decimals here. Prices are in [0,1] for binary markets.
type OrderSummary struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// ————————————————————————————————————————————————————————————————————————
// WebSocket market channel
// ————————————————————————————————————————————————————————————————————————
// These structs map 1:1 to the JSON frames on the wss /ws/market channel.
// The event_type field discriminates: "book", "price_change",
// "tick_size_change", "last_trade_price". Unknown fields are ignored.

// MarketBook is a full order book snapshot. The server sends one per
// subscribed asset right after the subscribe frame, then again whenever it
// resyncs. Hash is the authoritative book revision tag at emission time.
// Bids are not guaranteed sorted on the wire.
type MarketBook struct {
	EventType string         `json:"event_type"` // always "book"
	AssetID   string         `json:"asset_id"`
	Market    string         `json:"market"` // condition ID
	Timestamp string         `json:"timestamp"`
	Hash      string         `json:"hash"`
	Bids      []OrderSummary `json:"bids"`
	Asks      []OrderSummary `json:"asks"`
}

// PriceChangeEntry is a single level delta within a price_change frame.
// Hash is the post-update book revision; the next full book snapshot
// overrides it.
type PriceChangeEntry struct {
	AssetID string          `json:"asset_id"`
	Price   decimal.Decimal `json:"price"`
	Size    decimal.Decimal `json:"size"` // new size at that level, 0 = removed
	Side    Side            `json:"side"`
	Hash    string          `json:"hash"`
	BestBid string          `json:"best_bid"`
	BestAsk string          `json:"best_ask"`
}

// PriceChangeMessage is an incremental order book update carrying one or
// more level deltas applied atomically.
type PriceChangeMessage struct {
	EventType    string             `json:"event_type"` // always "price_change"
	Market       string             `json:"market"`
	Timestamp    string             `json:"timestamp"`
	PriceChanges []PriceChangeEntry `json:"price_changes"`
}

// LastTradeMessage reports the most recent trade on an asset. The frame
// carries no book hash; the stream client stamps it with the latest known
// hash for the asset at receipt time.
type LastTradeMessage struct {
	EventType  string          `json:"event_type"` // always "last_trade_price"
	AssetID    string          `json:"asset_id"`
	Market     string          `json:"market"`
	Price      decimal.Decimal `json:"price"`
	Size       decimal.Decimal `json:"size"`
	Side       Side            `json:"side"`
	FeeRateBps string          `json:"fee_rate_bps"`
	Timestamp  string          `json:"timestamp"`
}

// TickSizeChangeMessage announces a change of the minimum price increment
// for an asset, which can happen mid-market as prices approach 0 or 1.
type TickSizeChangeMessage struct {
	EventType   string `json:"event_type"` // always "tick_size_change"
	AssetID     string `json:"asset_id"`
	Market      string `json:"market"`
	OldTickSize string `json:"old_tick_size"`
	NewTickSize string `json:"new_tick_size"`
	Timestamp   string `json:"timestamp"`
}

// MarketSubscribeMessage is the single frame sent after the WebSocket
// handshake. The asset set is fixed for the life of the connection.
type MarketSubscribeMessage struct {
	AssetIDs []string `json:"assets_ids"`
	Type     string   `json:"type"` // always "market"
}
