// Package socialpay is a Go client for the socialpay auth gateway. It keeps
// the login_nonce and session cookies in a cookie jar, so a Client behaves
// like a browser tab.
package socialpay

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
)

// Challenge is the response of the nonce endpoint
type Challenge struct {
	Nonce   string `json:"nonce"`
	Domain  string `json:"domain"`
	Message string `json:"message,omitempty"`
	Address string `json:"address,omitempty"`
	ChainID string `json:"chainId,omitempty"`
}

// SessionInfo is what /api/protected reports about the current session
type SessionInfo struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// APIError is a non-2xx response. It unwraps to a *core.Error of the
// reported kind, so errors.Is works against the core sentinels.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Code    string `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("socialpay: %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return core.NewError(core.ParseKind(e.Code), e.Message)
}

// Client talks to one socialpay server
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient creates a client for the server at baseURL. httpClient is copied,
// never modified; the copy gets a cookie jar if it has none and does not
// follow redirects.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	hc := *httpClient
	httpClient = &hc
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	// Page redirects from the gate are reported, not followed
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

// Challenge requests a login nonce. With an address the server also returns
// the message to sign.
func (c *Client) Challenge(ctx context.Context, address string) (*Challenge, error) {
	q := url.Values{}
	if address != "" {
		q.Set("address", address)
	}
	var out Challenge
	if err := c.do(ctx, http.MethodGet, "/api/auth/nonce", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify submits a signed message. On success the session cookie is stored
// and the checksummed address returned.
func (c *Client) Verify(ctx context.Context, address, signature, message string) (string, error) {
	body := map[string]string{
		"address":   address,
		"signature": signature,
		"message":   message,
	}
	var out struct {
		Address string `json:"address"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify", nil, body, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

// Login runs the whole challenge, sign and verify sequence for key
func (c *Client) Login(ctx context.Context, key *ecdsa.PrivateKey) (string, error) {
	address := eth.KeyAddress(key)
	challenge, err := c.Challenge(ctx, address)
	if err != nil {
		return "", err
	}
	signature, err := eth.SignPersonal(challenge.Message, key)
	if err != nil {
		return "", err
	}
	return c.Verify(ctx, address, signature, challenge.Message)
}

// Session returns the current session as seen by the server
func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	var out SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/protected", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session and drops both cookies
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
