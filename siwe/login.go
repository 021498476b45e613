package siwe

import (
	"time"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
)

// LoginInput is a signed login attempt and what the server expects of it
type LoginInput struct {
	Message   string
	Signature string // 0x-prefixed 65-byte personal_sign signature
	Address   string // Claimed signer

	ExpectedDomain string
	ExpectedNonce  string
	MaxAge         time.Duration
}

// VerifyLogin validates the message bound to the claimed address, then checks
// the signature. A bad signature is reported as core.ErrInvalidSignature,
// separate from the message validation kinds.
func VerifyLogin(in LoginInput, now time.Time) (core.SignInMessage, error) {
	m, err := Validate(in.Message, Expectations{
		Domain:  in.ExpectedDomain,
		Address: in.Address,
		Nonce:   in.ExpectedNonce,
		MaxAge:  in.MaxAge,
	}, now)
	if err != nil {
		return core.SignInMessage{}, err
	}

	if !eth.VerifyPersonalSignature(in.Message, in.Signature, in.Address) {
		return core.SignInMessage{}, core.ErrInvalidSignature
	}

	return m, nil
}
