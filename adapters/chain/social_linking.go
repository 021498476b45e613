// Package chain reads the SocialLinking contract through an Ethereum JSON-RPC client.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
	"github.com/layer-3/socialpay/ports"
)

const socialLinkingABI = `[
  {"type":"function","name":"getSocialLink","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"owner","type":"address"},
     {"name":"twitter","type":"string"},
     {"name":"instagram","type":"string"},
     {"name":"linkedin","type":"string"}]}]},
  {"type":"function","name":"getPendingClaim","stateMutability":"view",
   "inputs":[{"name":"socialHandle","type":"string"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"socialHandle","type":"string"},
     {"name":"amount","type":"uint256"},
     {"name":"claimed","type":"bool"},
     {"name":"paymentCount","type":"uint256"}]}]}
]`

// SocialLinkingABI is the parsed read-only surface of the contract
var SocialLinkingABI = mustParseABI(socialLinkingABI)

type socialLinkTuple struct {
	Owner     common.Address
	Twitter   string
	Instagram string
	Linkedin  string
}

type pendingClaimTuple struct {
	SocialHandle string
	Amount       *big.Int
	Claimed      bool
	PaymentCount *big.Int
}

// SocialLinking implements ports.SocialReader over an ethereum.ContractCaller
type SocialLinking struct {
	caller  ethereum.ContractCaller
	address common.Address
}

// NewSocialLinking creates a reader for the contract deployed at address
func NewSocialLinking(caller ethereum.ContractCaller, address string) (ports.SocialReader, error) {
	if !eth.IsAddress(address) {
		return nil, core.NewError(core.KindConfiguration, fmt.Sprintf("invalid SocialLinking contract address %q", address))
	}
	return &SocialLinking{
		caller:  caller,
		address: common.HexToAddress(address),
	}, nil
}

// GetSocialLink returns nil when the contract reports a zero owner
func (s *SocialLinking) GetSocialLink(ctx context.Context, wallet string) (*core.SocialLink, error) {
	if !eth.IsAddress(wallet) {
		return nil, core.ErrInvalidAddress
	}

	out, err := s.call(ctx, "getSocialLink", common.HexToAddress(wallet))
	if err != nil {
		return nil, err
	}
	link := *abi.ConvertType(out[0], new(socialLinkTuple)).(*socialLinkTuple)

	if link.Owner == (common.Address{}) {
		return nil, nil
	}

	return &core.SocialLink{
		Owner:     link.Owner.Hex(),
		Twitter:   link.Twitter,
		Instagram: link.Instagram,
		LinkedIn:  link.Linkedin,
	}, nil
}

// GetPendingClaim returns the claim recorded for handle, which may be empty
func (s *SocialLinking) GetPendingClaim(ctx context.Context, handle string) (*core.PendingClaim, error) {
	out, err := s.call(ctx, "getPendingClaim", handle)
	if err != nil {
		return nil, err
	}
	claim := *abi.ConvertType(out[0], new(pendingClaimTuple)).(*pendingClaimTuple)

	return &core.PendingClaim{
		SocialHandle: claim.SocialHandle,
		Amount:       claim.Amount,
		Claimed:      claim.Claimed,
		PaymentCount: claim.PaymentCount,
	}, nil
}

func (s *SocialLinking) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	input, err := SocialLinkingABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	output, err := s.caller.CallContract(ctx, ethereum.CallMsg{To: &s.address, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := SocialLinkingABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected %s output length %d", method, len(out))
	}
	return out, nil
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
