package siwe

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/socialpay/core"
)

const testAddress = "0xAbCdEf0123456789aBcDeF0123456789abCDef12"

func TestBuildLayout(t *testing.T) {
	text, err := Build(Params{
		Domain:         "example.com",
		Address:        testAddress,
		Statement:      "Sign in to socialpay.",
		URI:            "https://example.com/login",
		ChainID:        "8453",
		Nonce:          "00112233445566778899aabbccddeeff",
		IssuedAt:       "2025-01-02T03:04:05.000Z",
		ExpirationTime: "2025-01-02T03:14:05.000Z",
		Resources:      []string{"https://example.com/terms", "ipfs://bafy"},
	})
	require.NoError(t, err)

	want := strings.Join([]string{
		"example.com wants you to sign in with your Ethereum account:",
		testAddress,
		"",
		"Sign in to socialpay.",
		"",
		"URI: https://example.com/login",
		"Version: 1",
		"Chain ID: 8453",
		"Nonce: 00112233445566778899aabbccddeeff",
		"Issued At: 2025-01-02T03:04:05.000Z",
		"Expiration Time: 2025-01-02T03:14:05.000Z",
		"Resources:",
		"- https://example.com/terms",
		"- ipfs://bafy",
	}, "\n")
	assert.Equal(t, want, text)
}

func TestBuildDefaults(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Millisecond)
	text, err := Build(Params{Domain: "example.com", Address: testAddress, Nonce: "abc"})
	require.NoError(t, err)

	m := Parse(text)
	assert.Equal(t, "https://example.com", m.URI)
	assert.Equal(t, DefaultVersion, m.Version)
	assert.Equal(t, DefaultChainID, m.ChainID)
	assert.Empty(t, m.Statement)
	assert.Empty(t, m.ExpirationTime)
	assert.Nil(t, m.Resources)

	issued, err := time.Parse(time.RFC3339Nano, m.IssuedAt)
	require.NoError(t, err)
	assert.False(t, issued.Before(before))
	assert.True(t, strings.HasSuffix(m.IssuedAt, "Z"))

	// No statement means the blank line after the address is followed directly by the URI
	assert.Contains(t, text, testAddress+"\n\nURI: ")
}

func TestBuildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		kind core.Kind
	}{
		{"scheme in domain", Params{Domain: "https://example.com", Address: testAddress, Nonce: "n"}, core.KindInvalidDomain},
		{"port in domain", Params{Domain: "example.com:3000", Address: testAddress, Nonce: "n"}, core.KindInvalidDomain},
		{"empty domain", Params{Address: testAddress, Nonce: "n"}, core.KindInvalidDomain},
		{"long domain", Params{Domain: strings.Repeat("a", 256), Address: testAddress, Nonce: "n"}, core.KindInvalidDomain},
		{"short address", Params{Domain: "example.com", Address: "0x1234", Nonce: "n"}, core.KindInvalidAddress},
		{"no prefix", Params{Domain: "example.com", Address: testAddress[2:], Nonce: "n"}, core.KindInvalidAddress},
		{"no nonce", Params{Domain: "example.com", Address: testAddress}, core.KindMissingNonce},
		{"multi-line statement", Params{Domain: "example.com", Address: testAddress, Nonce: "n", Statement: "line one\nline two"}, core.KindInvalidField},
		{"injected fields", Params{Domain: "example.com", Address: testAddress, Nonce: "n", Statement: "see\nURI: https://evil.example\nNonce: forged"}, core.KindInvalidField},
		{"carriage return", Params{Domain: "example.com", Address: testAddress, Nonce: "n", Statement: "a\rb"}, core.KindInvalidField},
		{"padded statement", Params{Domain: "example.com", Address: testAddress, Nonce: "n", Statement: " padded "}, core.KindInvalidField},
		{"chain id with injected nonce", Params{Domain: "example.com", Address: testAddress, Nonce: "n", ChainID: "1\nNonce: forged"}, core.KindInvalidField},
		{"multi-line resource", Params{Domain: "example.com", Address: testAddress, Nonce: "n", Resources: []string{"a\n- b"}}, core.KindInvalidField},
		{"uri statement", Params{Domain: "example.com", Address: testAddress, Nonce: "n", Statement: "uri: https://evil.example"}, core.KindInvalidField},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.p)
			require.Error(t, err)
			assert.Equal(t, tc.kind, core.KindOf(err))
		})
	}
}

func TestValidDomain(t *testing.T) {
	assert.True(t, ValidDomain("localhost"))
	assert.True(t, ValidDomain("sub.example-site.co"))
	assert.True(t, ValidDomain(strings.Repeat("a", 255)))
	assert.False(t, ValidDomain("http://example.com"))
	assert.False(t, ValidDomain("exa mple.com"))
	assert.False(t, ValidDomain("example.com/path"))
}

func TestParseRoundTrip(t *testing.T) {
	cases := []Params{
		{Domain: "example.com", Address: testAddress, Nonce: "deadbeef", IssuedAt: "2025-01-02T03:04:05.000Z"},
		{Domain: "a.b-c.io", Address: strings.ToLower(testAddress), Nonce: "n1", Statement: "hello", ChainID: "8453", IssuedAt: "2025-01-02T03:04:05.000Z"},
		{Domain: "localhost", Address: testAddress, Nonce: "n2", Statement: "sign in: Nonce: later", URI: "http://localhost:3000",
			IssuedAt: "2025-01-02T03:04:05.000Z", ExpirationTime: "2025-01-02T04:04:05.000Z", Resources: []string{"r1", "r2"}},
	}

	for _, p := range cases {
		text, err := Build(p)
		require.NoError(t, err)

		m := Parse(text)
		assert.Equal(t, p.Domain, m.Domain)
		assert.Equal(t, p.Address, m.Address)
		assert.Equal(t, p.Nonce, m.Nonce)
		assert.Equal(t, p.Statement, m.Statement)
		assert.Equal(t, p.Resources, m.Resources)

		// The signature covers exact bytes, so re-rendering must reproduce them
		assert.Equal(t, text, Format(m))
	}
}

func TestParseRoundTripRejectsForgeableStatements(t *testing.T) {
	for _, statement := range []string{
		"see\nURI: https://evil.example\nNonce: forged",
		" padded ",
		"URI: https://evil.example",
	} {
		_, err := Build(Params{Domain: "example.com", Address: testAddress, Nonce: "real", Statement: statement})
		require.ErrorIs(t, err, core.ErrInvalidField, statement)
	}

	text, err := Build(Params{Domain: "example.com", Address: testAddress, Nonce: "real", Statement: "padded inside  ok"})
	require.NoError(t, err)
	m := Parse(text)
	assert.Equal(t, "real", m.Nonce)
	assert.Equal(t, "https://example.com", m.URI)
	assert.Equal(t, text, Format(m))
}

func TestParseMissingFields(t *testing.T) {
	m := Parse("")
	assert.Equal(t, core.SignInMessage{}, m)

	m = Parse("just some text\nNonce: abc")
	assert.Empty(t, m.Domain)
	assert.Empty(t, m.Address)
	assert.Equal(t, "abc", m.Nonce)
	assert.Empty(t, m.IssuedAt)
}

func TestParseIgnoresFieldLikeStatementLines(t *testing.T) {
	text, err := Build(Params{
		Domain:    "example.com",
		Address:   testAddress,
		Nonce:     "real",
		Statement: "Nonce: fake",
		IssuedAt:  "2025-01-02T03:04:05.000Z",
	})
	require.NoError(t, err)

	m := Parse(text)
	assert.Equal(t, "real", m.Nonce)
	assert.Equal(t, "Nonce: fake", m.Statement)
}
