package siwe

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
)

var issued = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func buildAt(t *testing.T, p Params) string {
	t.Helper()
	if p.Domain == "" {
		p.Domain = "example.com"
	}
	if p.Address == "" {
		p.Address = testAddress
	}
	if p.Nonce == "" {
		p.Nonce = "00112233445566778899aabbccddeeff"
	}
	if p.IssuedAt == "" {
		p.IssuedAt = FormatTime(issued)
	}
	text, err := Build(p)
	require.NoError(t, err)
	return text
}

func TestValidateNoExpectations(t *testing.T) {
	m, err := Validate(buildAt(t, Params{}), Expectations{}, issued)
	require.NoError(t, err)
	assert.Equal(t, "example.com", m.Domain)
	assert.Equal(t, testAddress, m.Address)
}

func TestValidateMissingRequiredFields(t *testing.T) {
	text := buildAt(t, Params{})

	tests := []struct {
		name   string
		mutate func(string) string
		kind   core.Kind
	}{
		{"domain", func(s string) string {
			return strings.Replace(s, "example.com wants you", "wants you", 1)
		}, core.KindInvalidDomain},
		{"address", func(s string) string {
			return strings.Replace(s, testAddress+"\n", "\n", 1)
		}, core.KindInvalidAddress},
		{"nonce", func(s string) string {
			return strings.Replace(s, "Nonce: 00112233445566778899aabbccddeeff\n", "", 1)
		}, core.KindMissingNonce},
		{"empty nonce", func(s string) string {
			return strings.Replace(s, "Nonce: 00112233445566778899aabbccddeeff", "Nonce: ", 1)
		}, core.KindMissingNonce},
		{"issued at", func(s string) string {
			return strings.Replace(s, "\nIssued At: "+FormatTime(issued), "", 1)
		}, core.KindMissingIssuedAt},
		{"malformed issued at", func(s string) string {
			return strings.Replace(s, FormatTime(issued), "yesterday", 1)
		}, core.KindMissingIssuedAt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.mutate(text), Expectations{}, issued)
			require.Error(t, err)
			assert.Equal(t, tc.kind, core.KindOf(err))
		})
	}
}

func TestValidateExpectations(t *testing.T) {
	text := buildAt(t, Params{})

	_, err := Validate(text, Expectations{
		Domain:  "EXAMPLE.com",
		Address: strings.ToLower(testAddress),
		Nonce:   "00112233445566778899aabbccddeeff",
		MaxAge:  10 * time.Minute,
	}, issued.Add(time.Minute))
	require.NoError(t, err)

	_, err = Validate(text, Expectations{Domain: "evil.example.com"}, issued)
	assert.True(t, errors.Is(err, core.ErrDomainMismatch))

	// No subdomain wildcarding
	sub := buildAt(t, Params{Domain: "app.example.com"})
	_, err = Validate(sub, Expectations{Domain: "example.com"}, issued)
	assert.True(t, errors.Is(err, core.ErrDomainMismatch))

	_, err = Validate(text, Expectations{Address: "0x0000000000000000000000000000000000000001"}, issued)
	assert.True(t, errors.Is(err, core.ErrAddressMismatch))

	_, err = Validate(text, Expectations{Nonce: "00112233445566778899aabbccddeefe"}, issued)
	assert.True(t, errors.Is(err, core.ErrNonceMismatch))

	_, err = Validate(text, Expectations{Nonce: "short"}, issued)
	assert.True(t, errors.Is(err, core.ErrNonceMismatch))
}

func TestValidateRuleOrder(t *testing.T) {
	text := buildAt(t, Params{})

	// Domain mismatch is reported before address and nonce mismatches
	_, err := Validate(text, Expectations{
		Domain:  "other.com",
		Address: "0x0000000000000000000000000000000000000001",
		Nonce:   "wrong",
	}, issued)
	assert.Equal(t, core.KindDomainMismatch, core.KindOf(err))

	_, err = Validate(text, Expectations{
		Address: "0x0000000000000000000000000000000000000001",
		Nonce:   "wrong",
	}, issued)
	assert.Equal(t, core.KindAddressMismatch, core.KindOf(err))
}

func TestValidateAge(t *testing.T) {
	text := buildAt(t, Params{})
	exp := Expectations{MaxAge: 600 * time.Second}

	_, err := Validate(text, exp, issued.Add(600*time.Second+999*time.Millisecond))
	require.NoError(t, err, "age is floored to whole seconds")

	_, err = Validate(text, exp, issued.Add(601*time.Second))
	assert.Equal(t, core.KindMessageTooOld, core.KindOf(err))

	// Issued in the future clamps to zero age
	_, err = Validate(text, exp, issued.Add(-time.Hour))
	require.NoError(t, err)
}

func TestValidateExpiration(t *testing.T) {
	text := buildAt(t, Params{ExpirationTime: FormatTime(issued.Add(5 * time.Minute))})

	_, err := Validate(text, Expectations{}, issued.Add(5*time.Minute))
	require.NoError(t, err)

	_, err = Validate(text, Expectations{}, issued.Add(5*time.Minute+time.Millisecond))
	assert.True(t, errors.Is(err, core.ErrMessageExpired))

	junk := buildAt(t, Params{ExpirationTime: "never"})
	_, err = Validate(junk, Expectations{}, issued.Add(24*time.Hour))
	require.NoError(t, err)
}

func TestVerifyLogin(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)

	addr := eth.KeyAddress(key)
	text := buildAt(t, Params{Address: addr, Nonce: "feedface"})

	sig, err := eth.SignPersonal(text, key)
	require.NoError(t, err)

	in := LoginInput{
		Message:        text,
		Signature:      sig,
		Address:        addr,
		ExpectedDomain: "example.com",
		ExpectedNonce:  "feedface",
		MaxAge:         10 * time.Minute,
	}

	m, err := VerifyLogin(in, issued.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, addr, m.Address)

	badSig, err := eth.SignPersonal(text, other)
	require.NoError(t, err)
	bad := in
	bad.Signature = badSig
	_, err = VerifyLogin(bad, issued.Add(time.Second))
	assert.True(t, errors.Is(err, core.ErrInvalidSignature))

	// Message validation wins over the signature check
	wrongNonce := in
	wrongNonce.ExpectedNonce = "cafebabe"
	_, err = VerifyLogin(wrongNonce, issued.Add(time.Second))
	assert.Equal(t, core.KindNonceMismatch, core.KindOf(err))

	garbage := in
	garbage.Signature = "0xnothex"
	_, err = VerifyLogin(garbage, issued.Add(time.Second))
	assert.Equal(t, core.KindInvalidSignature, core.KindOf(err))
}
