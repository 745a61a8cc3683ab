package auth

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/howardpen9/polysqueeze/pkg/types"
)

// Order is the EIP-712 struct the CTF exchange contract verifies. All
// amounts are unsigned integers in the collateral token's smallest unit;
// the caller does unit conversion before signing.
type Order struct {
	Salt          *big.Int
	Maker         common.Address // funder/proxy wallet
	Signer        common.Address // EOA that signs
	Taker         common.Address // zero address = open order
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          uint8 // 0 = BUY, 1 = SELL
	SignatureType uint8
}

// SignOrderMessage signs an Order under the exchange domain with the
// caller-supplied chain id and verifying contract, returning the signature
// as 0x-prefixed hex. Signing is offline; submission is a separate concern.
func SignOrderMessage(signer *Signer, order Order, chainID int64, verifyingContract common.Address) (string, error) {
	if order.Salt == nil || order.TokenID == nil || order.MakerAmount == nil || order.TakerAmount == nil {
		return "", types.NewValidationError("order salt, tokenId, makerAmount and takerAmount are required")
	}

	expiration := order.Expiration
	if expiration == nil {
		expiration = big.NewInt(0)
	}
	nonce := order.Nonce
	if nonce == nil {
		nonce = big.NewInt(0)
	}
	feeRateBps := order.FeeRateBps
	if feeRateBps == nil {
		feeRateBps = big.NewInt(0)
	}

	sig, err := signer.SignTypedData(
		&apitypes.TypedDataDomain{
			Name:              "Polymarket CTF Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(chainID),
			VerifyingContract: verifyingContract.Hex(),
		},
		apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Order": {
				{Name: "salt", Type: "uint256"},
				{Name: "maker", Type: "address"},
				{Name: "signer", Type: "address"},
				{Name: "taker", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
				{Name: "makerAmount", Type: "uint256"},
				{Name: "takerAmount", Type: "uint256"},
				{Name: "expiration", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "feeRateBps", Type: "uint256"},
				{Name: "side", Type: "uint8"},
				{Name: "signatureType", Type: "uint8"},
			},
		},
		apitypes.TypedDataMessage{
			"salt":          order.Salt.String(),
			"maker":         order.Maker.Hex(),
			"signer":        order.Signer.Hex(),
			"taker":         order.Taker.Hex(),
			"tokenId":       order.TokenID.String(),
			"makerAmount":   order.MakerAmount.String(),
			"takerAmount":   order.TakerAmount.String(),
			"expiration":    expiration.String(),
			"nonce":         nonce.String(),
			"feeRateBps":    feeRateBps.String(),
			"side":          strconv.Itoa(int(order.Side)),
			"signatureType": strconv.Itoa(int(order.SignatureType)),
		},
		"Order",
	)
	if err != nil {
		return "", err
	}

	return encodeSignature(sig), nil
}
