package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
	"github.com/layer-3/socialpay/ports"
)

// DefaultSessionTTL is the lifetime of a session token
const DefaultSessionTTL = 15 * time.Minute

// JWTTokenizer implements the Tokenizer interface with HS256 JWTs
type JWTTokenizer struct {
	secret []byte
	now    func() time.Time
}

// Option configures a JWTTokenizer
type Option func(*JWTTokenizer)

// WithClock replaces the wall clock used for iat, exp and expiry checks
func WithClock(now func() time.Time) Option {
	return func(j *JWTTokenizer) {
		j.now = now
	}
}

// NewJWTTokenizer creates a tokenizer signing with secret. An empty secret is
// a configuration error and should abort startup.
func NewJWTTokenizer(secret []byte, opts ...Option) (ports.Tokenizer, error) {
	if len(secret) == 0 {
		return nil, core.NewError(core.KindConfiguration, "missing session signing secret")
	}

	j := &JWTTokenizer{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Issue mints a session token for address
func (j *JWTTokenizer) Issue(address, nonce string, ttl time.Duration) (string, error) {
	if !eth.IsAddress(address) {
		return "", core.NewError(core.KindInvalidAddress, "invalid address for session subject")
	}
	if nonce == "" {
		return "", core.NewError(core.KindMissingNonce, "nonce is required to create a session token")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := j.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   eth.Checksum(address),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Nonce: nonce,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify parses a session token. Any failure, expiry included, is core.ErrInvalidSession.
func (j *JWTTokenizer) Verify(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.NewError(core.KindInvalidSession, "session token has expired")
		}
		return nil, core.NewError(core.KindInvalidSession, "invalid session token")
	}

	if !token.Valid {
		return nil, core.ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !eth.IsAddress(claims.Subject) || claims.IssuedAt == nil {
		return nil, core.ErrInvalidSession
	}

	return &core.Session{
		ID:        claims.ID,
		Address:   claims.Subject,
		Nonce:     claims.Nonce,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
