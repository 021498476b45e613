package http

import (
	"net/http"
	"regexp"
	"strings"
)

var bearerRe = regexp.MustCompile(`(?i)^Bearer (.+)$`)

// requestHost is the host the client addressed, without port. Proxies win
// over the Host header.
func requestHost(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if i := strings.IndexByte(host, ','); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "localhost"
	}
	return strings.Split(host, ":")[0]
}

// requestScheme is http or https as seen by the client, https when unknown
func requestScheme(r *http.Request) string {
	switch proto := r.Header.Get("X-Forwarded-Proto"); proto {
	case "http", "https":
		return proto
	}
	return "https"
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// sessionToken reads the session cookie, falling back to a bearer token
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if m := bearerRe.FindStringSubmatch(r.Header.Get("Authorization")); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
