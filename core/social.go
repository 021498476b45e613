package core

import (
	"math/big"
	"strings"
)

// SocialLink is the set of handles a wallet has linked on the SocialLinking contract
type SocialLink struct {
	Owner     string `json:"owner"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

// Handles returns the non-empty linked handles without a leading '@'
func (l SocialLink) Handles() []string {
	var out []string
	for _, h := range []string{l.Twitter, l.Instagram, l.LinkedIn} {
		if h = NormalizeHandle(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// PendingClaim is a balance held by the contract for a handle with no linked wallet yet
type PendingClaim struct {
	SocialHandle string
	Amount       *big.Int
	Claimed      bool
	PaymentCount *big.Int
}

// NormalizeHandle strips surrounding whitespace and one leading '@'
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
