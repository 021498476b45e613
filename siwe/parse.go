package siwe

import (
	"regexp"
	"strings"

	"github.com/layer-3/socialpay/core"
)

var (
	headerRe  = regexp.MustCompile(`(?i)^(.+?) wants you to sign in`)
	addressRe = regexp.MustCompile(`^[ \t]*(0x[a-fA-F0-9]{40})[ \t]*$`)
	fieldRe   = regexp.MustCompile(`(?i)^[ \t]*(URI|Version|Chain ID|Nonce|Issued At|Expiration Time):[ \t]*(.*?)[ \t]*$`)
	uriLineRe = regexp.MustCompile(`(?i)^[ \t]*URI:`)
)

// Parse extracts the fields of a sign-in message. Missing fields are left
// empty; Parse never fails.
func Parse(text string) core.SignInMessage {
	var m core.SignInMessage
	lines := strings.Split(text, "\n")

	if match := headerRe.FindStringSubmatch(lines[0]); match != nil {
		m.Domain = match[1]
	}

	addrIdx := -1
	for i, line := range lines {
		if match := addressRe.FindStringSubmatch(line); match != nil {
			m.Address = match[1]
			addrIdx = i
			break
		}
	}

	uriIdx := -1
	for i := addrIdx + 1; i < len(lines); i++ {
		if uriLineRe.MatchString(lines[i]) {
			uriIdx = i
			break
		}
	}

	// The statement sits between the blank line after the address and the URI line
	if addrIdx >= 0 && uriIdx > addrIdx+2 {
		m.Statement = strings.TrimSpace(strings.Join(lines[addrIdx+2:uriIdx], "\n"))
	}

	start := addrIdx + 1
	if uriIdx >= 0 {
		start = uriIdx
	}

	inResources := false
	for _, line := range lines[start:] {
		if inResources {
			if r, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), "- "); ok {
				m.Resources = append(m.Resources, r)
				continue
			}
			inResources = false
		}

		if strings.EqualFold(strings.TrimSpace(line), "Resources:") {
			inResources = true
			continue
		}

		match := fieldRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		setField(&m, strings.ToLower(match[1]), match[2])
	}

	return m
}

// setField keeps the first occurrence of each field
func setField(m *core.SignInMessage, key, value string) {
	var dst *string
	switch key {
	case "uri":
		dst = &m.URI
	case "version":
		dst = &m.Version
	case "chain id":
		dst = &m.ChainID
	case "nonce":
		dst = &m.Nonce
	case "issued at":
		dst = &m.IssuedAt
	case "expiration time":
		dst = &m.ExpirationTime
	default:
		return
	}
	if *dst == "" {
		*dst = value
	}
}
