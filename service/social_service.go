package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
	"github.com/layer-3/socialpay/ports"
)

const (
	// DefaultSocialCacheTTL is how long contract lookups are served from the cache
	DefaultSocialCacheTTL = time.Minute

	// DefaultTokenDecimals matches PYUSD
	DefaultTokenDecimals = 6

	socialLinkKeyPrefix = "social:link:"
)

// Claim is an unclaimed balance waiting for one of the wallet's handles
type Claim struct {
	Handle          string `json:"handle"`
	Amount          string `json:"amount"`
	AmountFormatted string `json:"amountFormatted"`
	PaymentCount    string `json:"paymentCount"`
}

// PendingClaims is the result of scanning a wallet's handles for claims
type PendingClaims struct {
	Linked bool // false when the wallet has no linked handle at all
	Claims []Claim
}

// Payment summarises the balance sent to a handle. The contract keeps an
// aggregate per handle, not individual transfers.
type Payment struct {
	Amount          string `json:"amount"`
	AmountFormatted string `json:"amountFormatted"`
	Claimed         bool   `json:"claimed"`
}

// PaymentHistory is what a handle has received so far
type PaymentHistory struct {
	Handle   string    `json:"handle"`
	Payments []Payment `json:"payments"`
	Total    uint64    `json:"total"` // number of payments made to the handle
}

// SocialService reads the SocialLinking contract through a TTL cache
type SocialService struct {
	reader   ports.SocialReader
	cache    ports.Store
	metrics  ports.Metrics
	logger   *slog.Logger
	cacheTTL time.Duration
	decimals int32
}

// SocialOption configures a SocialService
type SocialOption func(*SocialService)

// WithCacheTTL sets how long lookups are cached
func WithCacheTTL(ttl time.Duration) SocialOption {
	return func(s *SocialService) { s.cacheTTL = ttl }
}

// WithTokenDecimals sets the decimals used to format claim amounts
func WithTokenDecimals(decimals int32) SocialOption {
	return func(s *SocialService) { s.decimals = decimals }
}

// WithSocialMetrics records cache hits and misses
func WithSocialMetrics(m ports.Metrics) SocialOption {
	return func(s *SocialService) { s.metrics = m }
}

// WithSocialLogger sets the logger, slog.Default otherwise
func WithSocialLogger(l *slog.Logger) SocialOption {
	return func(s *SocialService) { s.logger = l }
}

// NewSocialService creates a social lookup service
func NewSocialService(reader ports.SocialReader, cache ports.Store, opts ...SocialOption) *SocialService {
	s := &SocialService{
		reader:   reader,
		cache:    cache,
		metrics:  ports.NopMetrics{},
		logger:   slog.Default(),
		cacheTTL: DefaultSocialCacheTTL,
		decimals: DefaultTokenDecimals,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSocialLink returns the wallet's linked handles, or nil when it has none.
// Both outcomes are cached.
func (s *SocialService) GetSocialLink(ctx context.Context, wallet string) (*core.SocialLink, error) {
	if !eth.IsAddress(wallet) {
		return nil, core.NewError(core.KindInvalidAddress, "invalid ethereum address: "+wallet)
	}
	key := socialLinkKeyPrefix + strings.ToLower(wallet)

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var link *core.SocialLink
		if err := json.Unmarshal(data, &link); err == nil {
			s.metrics.RecordSocialLookup(true)
			return link, nil
		}
		s.logger.Warn("dropping corrupt cache entry", "key", key)
	case !errors.Is(err, ports.ErrNotFound):
		s.logger.Warn("social cache read failed", "key", key, "error", err)
	}
	s.metrics.RecordSocialLookup(false)

	link, err := s.reader.GetSocialLink(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to read social link: %w", err)
	}

	if data, err := json.Marshal(link); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("social cache write failed", "key", key, "error", err)
		}
	}
	return link, nil
}

// PendingClaims lists unclaimed positive balances for each linked handle.
// A handle whose lookup fails is logged and skipped.
func (s *SocialService) PendingClaims(ctx context.Context, wallet string) (*PendingClaims, error) {
	link, err := s.GetSocialLink(ctx, wallet)
	if err != nil {
		return nil, err
	}

	result := &PendingClaims{Claims: []Claim{}}
	if link == nil {
		return result, nil
	}
	handles := link.Handles()
	result.Linked = len(handles) > 0

	for _, handle := range handles {
		claim, err := s.reader.GetPendingClaim(ctx, handle)
		if err != nil {
			s.logger.Warn("pending claim lookup failed", "handle", handle, "error", err)
			continue
		}
		if claim == nil || claim.Claimed || claim.Amount == nil || claim.Amount.Sign() <= 0 {
			continue
		}

		count := "0"
		if claim.PaymentCount != nil {
			count = claim.PaymentCount.String()
		}
		result.Claims = append(result.Claims, Claim{
			Handle:          claim.SocialHandle,
			Amount:          claim.Amount.String(),
			AmountFormatted: FormatAmount(claim.Amount, s.decimals),
			PaymentCount:    count,
		})
	}
	return result, nil
}

// PaymentHistory reports the payments recorded for handle. A leading '@' is ignored.
func (s *SocialService) PaymentHistory(ctx context.Context, handle string) (*PaymentHistory, error) {
	handle = core.NormalizeHandle(handle)
	history := &PaymentHistory{Handle: handle, Payments: []Payment{}}

	claim, err := s.reader.GetPendingClaim(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending claim: %w", err)
	}
	if claim == nil || claim.PaymentCount == nil || claim.PaymentCount.Sign() <= 0 {
		return history, nil
	}

	amount := claim.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	history.Payments = append(history.Payments, Payment{
		Amount:          amount.String(),
		AmountFormatted: FormatAmount(amount, s.decimals),
		Claimed:         claim.Claimed,
	})
	history.Total = claim.PaymentCount.Uint64()
	return history, nil
}

// FormatAmount renders a base-unit token amount with the given decimals
func FormatAmount(amount *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(amount, -decimals).StringFixed(decimals)
}
