package siwe

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
)

// Expectations constrain a message during validation. Zero values are not checked.
type Expectations struct {
	Domain  string
	Address string
	Nonce   string
	MaxAge  time.Duration // Maximum age of Issued At, whole seconds
}

// Validate parses text and checks it against exp at time now. Rules are
// applied in a fixed order and the first failure is returned.
func Validate(text string, exp Expectations, now time.Time) (core.SignInMessage, error) {
	m := Parse(text)

	if m.Domain == "" || !ValidDomain(m.Domain) {
		return core.SignInMessage{}, core.NewError(core.KindInvalidDomain, "invalid or missing domain in message")
	}
	if m.Address == "" || !eth.IsAddress(m.Address) {
		return core.SignInMessage{}, core.NewError(core.KindInvalidAddress, "invalid or missing address in message")
	}
	if strings.TrimSpace(m.Nonce) == "" {
		return core.SignInMessage{}, core.NewError(core.KindMissingNonce, "missing nonce in message")
	}

	issuedAt, err := parseTime(m.IssuedAt)
	if err != nil {
		return core.SignInMessage{}, core.NewError(core.KindMissingIssuedAt, "missing or malformed 'Issued At' in message")
	}

	if exp.Domain != "" && !strings.EqualFold(strings.TrimSpace(m.Domain), strings.TrimSpace(exp.Domain)) {
		return core.SignInMessage{}, core.NewError(core.KindDomainMismatch,
			fmt.Sprintf("domain mismatch: expected %s, got %s", exp.Domain, m.Domain))
	}
	if exp.Address != "" && !eth.SameAddress(m.Address, exp.Address) {
		return core.SignInMessage{}, core.NewError(core.KindAddressMismatch,
			fmt.Sprintf("address mismatch: expected %s, got %s", exp.Address, m.Address))
	}
	if exp.Nonce != "" && subtle.ConstantTimeCompare([]byte(m.Nonce), []byte(exp.Nonce)) != 1 {
		return core.SignInMessage{}, core.ErrNonceMismatch
	}

	if exp.MaxAge > 0 {
		age := int64(now.Sub(issuedAt) / time.Second)
		if age < 0 {
			age = 0
		}
		if limit := int64(exp.MaxAge / time.Second); age > limit {
			return core.SignInMessage{}, core.NewError(core.KindMessageTooOld,
				fmt.Sprintf("message too old (%ds > %ds)", age, limit))
		}
	}

	if m.ExpirationTime != "" {
		// An unparseable expiration is ignored rather than rejected
		if expiresAt, err := parseTime(m.ExpirationTime); err == nil && now.After(expiresAt) {
			return core.SignInMessage{}, core.ErrMessageExpired
		}
	}

	return m, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	return time.Parse(time.RFC3339Nano, s)
}
