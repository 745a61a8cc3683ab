// Package auth implements the two layers of Polymarket CLOB authentication:
//
//   - L1 (EIP-712): Used only to bootstrap L2 API keys. Signs a typed-data
//     "ClobAuth" message with the wallet's private key, proving ownership.
//
//   - L2 (HMAC-SHA256): Used for all authenticated API calls. Signs
//     "timestamp + method + path [+ body]" with the derived API secret.
//
// It also signs orders for the CTF exchange contract (see order.go). All
// functions here are synchronous and perform no I/O, so independent tasks
// may call them in parallel, each holding its own Signer.
package auth

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/howardpen9/polysqueeze/pkg/types"
)

// Header names for L1 and L2 authenticated requests.
const (
	HeaderPolyAddress    = "poly_address"
	HeaderPolySignature  = "poly_signature"
	HeaderPolyTimestamp  = "poly_timestamp"
	HeaderPolyNonce      = "poly_nonce"
	HeaderPolyApiKey     = "poly_api_key"
	HeaderPolyPassphrase = "poly_passphrase"
)

// The ClobAuth domain is pinned to Polygon mainnet no matter which chain
// orders are signed for.
const (
	clobAuthChainID = 137
	clobAuthMessage = "This message attests that I control the given wallet"
)

// CurrentUnixSeconds returns the current Unix timestamp in seconds.
// Header builders re-read it on every call; header maps are never cached.
func CurrentUnixSeconds() int64 {
	return time.Now().Unix()
}

// DecodeApiSecret decodes an API secret into raw key bytes. The exchange has
// issued secrets as URL-safe base64 with and without padding and as standard
// base64 over time, so each decoder is tried in turn; anything that defeats
// all three is treated as a raw byte string. Never fails.
func DecodeApiSecret(secret string) []byte {
	decoders := []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
	}
	for _, dec := range decoders {
		if b, err := dec.DecodeString(secret); err == nil {
			return b
		}
	}
	return []byte(secret)
}

// formatBodyForSignature renders a request body to the exact compact JSON
// the HMAC signs: no whitespace, struct fields in declaration order, no HTML
// escaping. Pass struct values or json.RawMessage; map keys would be sorted
// by encoding/json and cannot reproduce insertion order.
func formatBodyForSignature(body any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return "", types.NewParseError("serialize body", err)
	}
	// Encode appends a newline the wire format must not carry.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// BuildHmacSignature computes the L2 request signature:
// URL-safe base64 (padded) of HMAC-SHA256 over
// "timestamp + METHOD + path [+ body]" keyed with the decoded secret.
// A nil body contributes nothing to the message.
func BuildHmacSignature(secret string, timestamp int64, method, requestPath string, body any) (string, error) {
	message := strconv.FormatInt(timestamp, 10) + strings.ToUpper(method) + requestPath
	if body != nil {
		bodyStr, err := formatBodyForSignature(body)
		if err != nil {
			return "", err
		}
		message += bodyStr
	}

	mac := hmac.New(sha256.New, DecodeApiSecret(secret))
	mac.Write([]byte(message))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// SignClobAuthMessage produces the L1 EIP-712 signature over the ClobAuth
// attestation for the given timestamp and nonce. A nil nonce signs as zero.
func SignClobAuthMessage(signer *Signer, timestamp string, nonce *big.Int) (string, error) {
	if nonce == nil {
		nonce = big.NewInt(0)
	}

	sig, err := signer.SignTypedData(
		&apitypes.TypedDataDomain{
			Name:    "ClobAuthDomain",
			Version: "1",
			ChainId: math.NewHexOrDecimal256(clobAuthChainID),
		},
		apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"ClobAuth": {
				{Name: "address", Type: "address"},
				{Name: "timestamp", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "message", Type: "string"},
			},
		},
		apitypes.TypedDataMessage{
			"address":   signer.AddressHex(),
			"timestamp": timestamp,
			"nonce":     nonce.String(),
			"message":   clobAuthMessage,
		},
		"ClobAuth",
	)
	if err != nil {
		return "", err
	}

	return encodeSignature(sig), nil
}

// CreateL1Headers builds wallet-signed headers for the credential bootstrap
// endpoints. The timestamp is read fresh on every call.
func CreateL1Headers(signer *Signer, nonce *big.Int) (map[string]string, error) {
	timestamp := strconv.FormatInt(CurrentUnixSeconds(), 10)
	if nonce == nil {
		nonce = big.NewInt(0)
	}

	sig, err := SignClobAuthMessage(signer, timestamp, nonce)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderPolyAddress:   signer.AddressHex(),
		HeaderPolySignature: sig,
		HeaderPolyTimestamp: timestamp,
		HeaderPolyNonce:     nonce.String(),
	}, nil
}

// CreateL2Headers builds HMAC-signed headers for authenticated API calls.
// body may be nil for bodyless requests.
func CreateL2Headers(signer *Signer, creds types.ApiCredentials, method, requestPath string, body any) (map[string]string, error) {
	timestamp := CurrentUnixSeconds()

	sig, err := BuildHmacSignature(creds.Secret, timestamp, method, requestPath, body)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderPolyAddress:    signer.AddressHex(),
		HeaderPolySignature:  sig,
		HeaderPolyTimestamp:  strconv.FormatInt(timestamp, 10),
		HeaderPolyApiKey:     creds.ApiKey,
		HeaderPolyPassphrase: creds.Passphrase,
	}, nil
}
