package siwe

import (
	"regexp"
	"strings"
	"time"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
)

const (
	// DefaultVersion is the message version used when none is given
	DefaultVersion = "1"

	// DefaultChainID is the chain used when none is given
	DefaultChainID = "1"

	// TimeLayout renders timestamps the way browsers' toISOString does
	TimeLayout = "2006-01-02T15:04:05.000Z"

	headerSuffix = " wants you to sign in with your Ethereum account:"
	maxDomainLen = 255
)

var domainRe = regexp.MustCompile(`^[A-Za-z0-9.-]+$`)

// Params are the inputs to Build. Domain, Address and Nonce are required.
type Params struct {
	Domain         string
	Address        string
	Statement      string
	URI            string // Defaults to https://{Domain}
	Version        string
	ChainID        string
	Nonce          string
	IssuedAt       string // Defaults to the current UTC time
	ExpirationTime string
	Resources      []string
}

// ValidDomain reports whether domain is a bare host name: no scheme, only
// letters, digits, dots and hyphens, at most 255 characters.
func ValidDomain(domain string) bool {
	if domain == "" || len(domain) > maxDomainLen {
		return false
	}
	lower := strings.ToLower(domain)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return false
	}
	return domainRe.MatchString(domain)
}

// ValidStatement reports whether statement survives a round trip through
// Parse: one line, no surrounding whitespace, and not itself a URI field.
// The empty statement is valid and omitted from the message.
func ValidStatement(statement string) bool {
	return singleLine(statement) && !uriLineRe.MatchString(statement)
}

// singleLine reports whether s renders as one line that Parse reads back
// unchanged. The empty string is allowed.
func singleLine(s string) bool {
	return !strings.ContainsAny(s, "\r\n") && strings.TrimSpace(s) == s
}

// FormatTime renders t in the sign-in message timestamp format
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Build constructs the canonical sign-in message text
func Build(p Params) (string, error) {
	if !ValidDomain(p.Domain) {
		return "", core.NewError(core.KindInvalidDomain, "invalid domain: "+p.Domain)
	}
	if !eth.IsAddress(p.Address) {
		return "", core.NewError(core.KindInvalidAddress, "invalid ethereum address: "+p.Address)
	}
	if p.Nonce == "" {
		return "", core.NewError(core.KindMissingNonce, "nonce is required")
	}
	if !ValidStatement(p.Statement) {
		return "", core.NewError(core.KindInvalidField, "invalid statement: must be a single line without surrounding whitespace")
	}
	for name, value := range map[string]string{
		"uri":            p.URI,
		"version":        p.Version,
		"chainId":        p.ChainID,
		"issuedAt":       p.IssuedAt,
		"expirationTime": p.ExpirationTime,
	} {
		if !singleLine(value) {
			return "", core.NewError(core.KindInvalidField, "invalid "+name+": must be a single line without surrounding whitespace")
		}
	}
	for _, r := range p.Resources {
		if r == "" || !singleLine(r) {
			return "", core.NewError(core.KindInvalidField, "invalid resource: "+r)
		}
	}

	m := core.SignInMessage{
		Domain:         p.Domain,
		Address:        p.Address,
		Statement:      p.Statement,
		URI:            p.URI,
		Version:        p.Version,
		ChainID:        p.ChainID,
		Nonce:          p.Nonce,
		IssuedAt:       p.IssuedAt,
		ExpirationTime: p.ExpirationTime,
		Resources:      p.Resources,
	}
	if m.URI == "" {
		m.URI = "https://" + p.Domain
	}
	if m.Version == "" {
		m.Version = DefaultVersion
	}
	if m.ChainID == "" {
		m.ChainID = DefaultChainID
	}
	if m.IssuedAt == "" {
		m.IssuedAt = FormatTime(time.Now())
	}

	return Format(m), nil
}

// Format renders message fields in the fixed line layout. Parse(Format(m))
// returns m for any m produced by Build.
func Format(m core.SignInMessage) string {
	lines := make([]string, 0, 12+len(m.Resources))
	lines = append(lines, m.Domain+headerSuffix, m.Address, "")

	if m.Statement != "" {
		lines = append(lines, m.Statement, "")
	}

	lines = append(lines,
		"URI: "+m.URI,
		"Version: "+m.Version,
		"Chain ID: "+m.ChainID,
		"Nonce: "+m.Nonce,
		"Issued At: "+m.IssuedAt,
	)
	if m.ExpirationTime != "" {
		lines = append(lines, "Expiration Time: "+m.ExpirationTime)
	}

	if len(m.Resources) > 0 {
		lines = append(lines, "Resources:")
		for _, r := range m.Resources {
			lines = append(lines, "- "+r)
		}
	}

	return strings.Join(lines, "\n")
}
