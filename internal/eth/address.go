// Package eth holds the Ethereum primitives used by the login flow: address
// grammar and checksumming, and EIP-191 personal message signatures.
package eth

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsAddress reports whether s is a 0x-prefixed 20-byte hex account identifier.
// Mixed case is accepted without enforcing the EIP-55 checksum.
func IsAddress(s string) bool {
	if len(s) != 2+2*common.AddressLength || !strings.HasPrefix(s, "0x") {
		return false
	}
	return common.IsHexAddress(s)
}

// Checksum returns the EIP-55 mixed-case form of a well-formed address
func Checksum(s string) string {
	return common.HexToAddress(s).Hex()
}

// SameAddress compares two addresses case-insensitively
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}
