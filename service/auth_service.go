package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
	"github.com/layer-3/socialpay/ports"
	"github.com/layer-3/socialpay/siwe"
)

const (
	// NonceTTL is how long a login nonce cookie lives
	NonceTTL = 10 * time.Minute

	// MaxMessageAge bounds the age of a signed message at verification time
	MaxMessageAge = 10 * time.Minute

	// DefaultStatement is shown to the user when the client does not supply one
	DefaultStatement = "Please sign this message to authenticate with the application."

	// DefaultChainID is Base mainnet
	DefaultChainID = "8453"

	tracerName = "github.com/layer-3/socialpay/service"
)

// missingNonceMsg is returned verbatim to clients without a login_nonce cookie
const missingNonceMsg = "Missing or expired nonce. Please request a new login nonce."

// AuthService handles authentication business logic
type AuthService struct {
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	metrics   ports.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	nonceLength int
	sessionTTL  time.Duration
}

// AuthOption configures an AuthService
type AuthOption func(*AuthService)

// WithClock replaces the wall clock used for message age checks and issuedAt
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithMetrics records login outcomes
func WithMetrics(m ports.Metrics) AuthOption {
	return func(s *AuthService) { s.metrics = m }
}

// WithLogger sets the logger, slog.Default otherwise
func WithLogger(l *slog.Logger) AuthOption {
	return func(s *AuthService) { s.logger = l }
}

// WithTracerProvider takes spans from tp instead of the global provider
func WithTracerProvider(tp trace.TracerProvider) AuthOption {
	return func(s *AuthService) { s.tracer = tp.Tracer(tracerName) }
}

// WithNonceLength sets the number of random bytes per nonce
func WithNonceLength(n int) AuthOption {
	return func(s *AuthService) { s.nonceLength = n }
}

// WithSessionTTL sets the lifetime of minted sessions
func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) { s.sessionTTL = ttl }
}

// NewAuthService creates a new authentication service
func NewAuthService(tokenizer ports.Tokenizer, eventPub ports.EventPublisher, opts ...AuthOption) *AuthService {
	s := &AuthService{
		tokenizer:   tokenizer,
		eventPub:    eventPub,
		metrics:     ports.NopMetrics{},
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
		now:         time.Now,
		nonceLength: siwe.DefaultNonceLength,
		sessionTTL:  15 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionTTL is the lifetime given to new sessions
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// ChallengeRequest describes who is about to sign in and where
type ChallengeRequest struct {
	Domain    string
	Scheme    string // http or https, used for the message URI
	Address   string // Optional; when set a ready-to-sign message is built
	Statement string
	ChainID   string
}

// Challenge issues a fresh login nonce and, when the address is known, the
// message the wallet should sign
func (s *AuthService) Challenge(ctx context.Context, req ChallengeRequest) (*core.Challenge, error) {
	_, span := s.tracer.Start(ctx, "AuthService.Challenge")
	defer span.End()

	nonce, err := siwe.NewNonce(s.nonceLength)
	if err != nil {
		return nil, s.fail(span, err)
	}
	s.metrics.RecordNonceIssued()

	challenge := &core.Challenge{
		Nonce:  core.Nonce{Value: nonce, MaxAge: NonceTTL},
		Domain: req.Domain,
	}
	if req.Address == "" {
		return challenge, nil
	}
	if !eth.IsAddress(req.Address) {
		return nil, s.fail(span, core.NewError(core.KindInvalidAddress, "invalid ethereum address: "+req.Address))
	}

	if req.Statement == "" {
		req.Statement = DefaultStatement
	}
	if req.ChainID == "" {
		req.ChainID = DefaultChainID
	}
	if req.Scheme == "" {
		req.Scheme = "https"
	}

	message, err := siwe.Build(siwe.Params{
		Domain:    req.Domain,
		Address:   req.Address,
		Statement: req.Statement,
		URI:       req.Scheme + "://" + req.Domain,
		ChainID:   req.ChainID,
		Nonce:     nonce,
		IssuedAt:  siwe.FormatTime(s.now()),
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	challenge.Address = req.Address
	challenge.ChainID = req.ChainID
	challenge.Message = message
	return challenge, nil
}

// LoginRequest is a signed message submitted together with the nonce cookie
type LoginRequest struct {
	Address     string
	Signature   string
	Message     string
	CookieNonce string // Value of the login_nonce cookie, empty when absent
	Domain      string // Host the request was addressed to
}

// LoginResult is a freshly minted session
type LoginResult struct {
	Token   string
	Session *core.Session
}

// Login verifies the signed message against the cookie nonce and the request
// host, then mints a session bound to that nonce
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login",
		trace.WithAttributes(attribute.String("wallet", req.Address)))
	defer span.End()

	result, err := s.login(ctx, req)
	if err != nil {
		s.metrics.RecordLogin(core.KindOf(err).String())
		s.logger.Info("login rejected", "wallet", req.Address, "reason", err.Error())
		return nil, s.fail(span, err)
	}
	s.metrics.RecordLogin("success")
	return result, nil
}

func (s *AuthService) login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.CookieNonce == "" {
		return nil, core.NewError(core.KindMissingNonce, missingNonceMsg)
	}

	if _, err := siwe.VerifyLogin(siwe.LoginInput{
		Message:        req.Message,
		Signature:      req.Signature,
		Address:        req.Address,
		ExpectedDomain: req.Domain,
		ExpectedNonce:  req.CookieNonce,
		MaxAge:         MaxMessageAge,
	}, s.now()); err != nil {
		return nil, err
	}

	token, err := s.tokenizer.Issue(eth.Checksum(req.Address), req.CookieNonce, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	session, err := s.tokenizer.Verify(token)
	if err != nil {
		return nil, err
	}

	if err := s.eventPub.PublishLogin(ctx, session.Address, session.ID); err != nil {
		s.logger.Warn("failed to publish login event", "wallet", session.Address, "error", err)
	}

	return &LoginResult{Token: token, Session: session}, nil
}

// Authenticate resolves a session token
func (s *AuthService) Authenticate(ctx context.Context, token string) (*core.Session, error) {
	_, span := s.tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	session, err := s.tokenizer.Verify(token)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.String("wallet", session.Address))
	return session, nil
}

// Logout announces the end of a session. Tokens are stateless, so an invalid
// or missing token is simply ignored; the caller clears the cookies either way.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	session, err := s.tokenizer.Verify(token)
	if err != nil {
		return
	}
	if err := s.eventPub.PublishLogout(ctx, session.Address, session.ID); err != nil {
		s.logger.Warn("failed to publish logout event", "wallet", session.Address, "error", err)
	}
}

func (s *AuthService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, core.KindOf(err).String())
	return err
}
