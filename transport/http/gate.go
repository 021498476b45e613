package http

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/ports"
)

// Headers set on gated requests for downstream handlers. Client supplied
// copies are always stripped.
const (
	HeaderWalletAddress = "X-Wallet-Address"
	HeaderSessionNonce  = "X-Session-Nonce"
	HeaderSessionIat    = "X-Session-Iat"
	HeaderSessionExp    = "X-Session-Exp"
)

const sessionKey = "session"

type sessionCtxKey struct{}

var staticFileRe = regexp.MustCompile(`(?i)\.(?:png|jpe?g|gif|svg|ico|webp|avif|css|js|txt|json|map|woff2?|ttf|otf)$`)

// PublicPaths decides which paths skip the gate
type PublicPaths struct {
	Exact    map[string]struct{}
	Prefixes []string
}

// DefaultPublicPaths are the pages, static assets, auth endpoints and
// read-only lookups reachable without a session
func DefaultPublicPaths() *PublicPaths {
	exact := map[string]struct{}{}
	for _, p := range []string{
		"/", "/favicon.ico", "/robots.txt", "/sitemap.xml", "/manifest.json",
		"/metrics", "/healthz",
		"/api/network-info",
		"/api/social/get",
		"/api/social/get-handle",
		"/api/social/find-wallet",
		"/api/tokens/get-accounts",
		"/api/tokens/build-transaction",
		"/api/tokens/build-unlinked-transaction",
	} {
		exact[p] = struct{}{}
	}
	return &PublicPaths{
		Exact:    exact,
		Prefixes: []string{"/_next", "/assets", "/images", "/icons", "/api/auth/"},
	}
}

// IsPublic reports whether path may be served without a session
func (p *PublicPaths) IsPublic(path string) bool {
	if _, ok := p.Exact[path]; ok {
		return true
	}
	for _, prefix := range p.Prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return staticFileRe.MatchString(path)
}

// Gate rejects requests to non-public paths that lack a valid session. API
// paths get a 401 JSON body, pages are redirected to the login page.
func Gate(tokens ports.Tokenizer, public *PublicPaths, metrics ports.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range []string{HeaderWalletAddress, HeaderSessionNonce, HeaderSessionIat, HeaderSessionExp} {
			c.Request.Header.Del(h)
		}

		path := c.Request.URL.Path
		if public.IsPublic(path) {
			c.Next()
			return
		}

		token := sessionToken(c.Request)
		if token == "" {
			metrics.RecordGateDecision("missing")
			reject(c, path, "required", "Unauthorized")
			return
		}

		session, err := tokens.Verify(token)
		if err != nil {
			metrics.RecordGateDecision("invalid")
			reject(c, path, "expired", "Invalid or expired session")
			return
		}
		metrics.RecordGateDecision("allowed")

		c.Set(sessionKey, session)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionCtxKey{}, session))
		c.Request.Header.Set(HeaderWalletAddress, session.Address)
		c.Request.Header.Set(HeaderSessionNonce, session.Nonce)
		c.Request.Header.Set(HeaderSessionIat, strconv.FormatInt(session.IssuedAt.Unix(), 10))
		c.Request.Header.Set(HeaderSessionExp, strconv.FormatInt(session.ExpiresAt.Unix(), 10))

		c.Next()
	}
}

func reject(c *gin.Context, path, reason, msg string) {
	if strings.HasPrefix(path, "/api/") {
		abortUnauthorized(c, msg)
		return
	}
	c.Redirect(http.StatusFound, "/?auth="+reason)
	c.Abort()
}

// SessionFrom returns the session the gate attached to c
func SessionFrom(c *gin.Context) (*core.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*core.Session)
	return session, ok
}

// SessionFromContext returns the session the gate attached to a request context
func SessionFromContext(ctx context.Context) (*core.Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(*core.Session)
	return session, ok
}
