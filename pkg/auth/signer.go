package auth

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/howardpen9/polysqueeze/pkg/types"
)

// Signer wraps a secp256k1 private key and produces EIP-712 signatures.
// The key material never leaves the struct; callers only see the derived
// address and signature outputs.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner parses a 32-byte hex private key (with or without 0x prefix)
// and derives the account address.
func NewSigner(privateKeyHex string) (*Signer, error) {
	keyHex := privateKeyHex
	if len(keyHex) >= 2 && keyHex[:2] == "0x" {
		keyHex = keyHex[2:]
	}

	privateKey, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, types.NewCryptoError("parse private key", err)
	}

	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the signer's Ethereum address.
func (s *Signer) Address() common.Address {
	return s.address
}

// AddressHex returns the address as 0x-prefixed lowercase hex, the form the
// poly_address header expects.
func (s *Signer) AddressHex() string {
	return "0x" + common.Bytes2Hex(s.address.Bytes())
}

// SignTypedData signs EIP-712 typed data and adjusts V to 27/28.
// Returns the 65-byte (r || s || v) signature.
func (s *Signer) SignTypedData(
	domain *apitypes.TypedDataDomain,
	typesDef apitypes.Types,
	message apitypes.TypedDataMessage,
	primaryType string,
) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       typesDef,
		PrimaryType: primaryType,
		Domain:      *domain,
		Message:     message,
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, types.NewCryptoError("typed data hash", err)
	}

	sig, err := crypto.Sign(hash, s.privateKey)
	if err != nil {
		return nil, types.NewCryptoError(fmt.Sprintf("sign typed data as %s", s.AddressHex()), err)
	}

	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

// encodeSignature renders a 65-byte signature as 0x-prefixed lowercase hex
// (132 characters total).
func encodeSignature(sig []byte) string {
	return "0x" + common.Bytes2Hex(sig)
}
