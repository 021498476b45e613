package eth

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

// RecoverPersonal returns the address that produced signatureHex over the
// EIP-191 personal message hash of message.
func RecoverPersonal(message, signatureHex string) (string, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != signatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", signatureLength, len(sig))
	}

	// Wallets emit V as 27/28, SigToPub expects 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// VerifyPersonalSignature reports whether claimed signed message.
// Malformed input of any kind yields false.
func VerifyPersonalSignature(message, signatureHex, claimed string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	recovered, err := RecoverPersonal(message, signatureHex)
	if err != nil {
		return false
	}
	return SameAddress(recovered, claimed)
}

// SignPersonal signs message the way a wallet's personal_sign does, with V as 27/28
func SignPersonal(message string, key *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// KeyAddress returns the checksummed address of a private key
func KeyAddress(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}
