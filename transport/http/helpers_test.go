package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/socialpay/adapters/events"
	"github.com/layer-3/socialpay/adapters/store"
	"github.com/layer-3/socialpay/adapters/tokenizer"
	"github.com/layer-3/socialpay/internal/eth"
	"github.com/layer-3/socialpay/ports"
	"github.com/layer-3/socialpay/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	router *gin.Engine
	clock  *testClock
	tokens ports.Tokenizer
	reader *stubSocialReader
}

type envOption func(*Dependencies)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	tokens, err := tokenizer.NewJWTTokenizer([]byte("test-secret"), tokenizer.WithClock(clock.Now))
	require.NoError(t, err)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	auth := service.NewAuthService(tokens, events.NewWatermillPublisher(pubSub), service.WithClock(clock.Now))
	reader := &stubSocialReader{}
	social := service.NewSocialService(reader, store.NewMemoryStore())

	deps := Dependencies{
		Auth:   auth,
		Social: social,
		Tokens: tokens,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{
		router: SetupRouter(deps),
		clock:  clock,
		tokens: tokens,
		reader: reader,
	}
}

type requestOpt func(*http.Request)

func withCookie(c *http.Cookie) requestOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value}) }
}

func withHeader(key, value string) requestOpt {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (e *testEnv) do(method, target string, body any, opts ...requestOpt) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type wallet struct {
	address string
	sign    func(string) string
}

func newWallet(t *testing.T) wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet{
		address: eth.KeyAddress(key),
		sign: func(msg string) string {
			sig, err := eth.SignPersonal(msg, key)
			require.NoError(t, err)
			return sig
		},
	}
}

// challenge requests a nonce for address and returns the message and nonce cookie
func (e *testEnv) challenge(t *testing.T, address string) (string, *http.Cookie) {
	t.Helper()
	rec := e.do(http.MethodGet, "/api/auth/nonce?address="+url.QueryEscape(address), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	cookie := findCookie(rec, NonceCookie)
	require.NotNil(t, cookie)
	return body["message"].(string), cookie
}

// login runs the full nonce, sign and verify flow and returns the session cookie
func (e *testEnv) login(t *testing.T, w wallet) *http.Cookie {
	t.Helper()
	message, nonceCookie := e.challenge(t, w.address)
	rec := e.do(http.MethodPost, "/api/auth/verify", verifyRequest{
		Address:   w.address,
		Signature: w.sign(message),
		Message:   message,
	}, withCookie(nonceCookie))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	session := findCookie(rec, SessionCookie)
	require.NotNil(t, session)
	return session
}
