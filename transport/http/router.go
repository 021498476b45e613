package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/socialpay/ports"
	"github.com/layer-3/socialpay/service"
)

// Dependencies are everything the router wires into handlers and middleware
type Dependencies struct {
	Auth   *service.AuthService
	Social *service.SocialService // Optional
	Tokens ports.Tokenizer

	Metrics        ports.Metrics // Optional
	MetricsHandler http.Handler  // Optional, served on /metrics
	Logger         *slog.Logger  // Optional

	AuthRateLimit int // Requests per minute per client IP on /api/auth; 0 disables
	CORSOrigins   []string
}

// SetupRouter sets up the Gin router
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestLogger(deps.Logger),
		RequestMetrics(deps.Metrics),
		CORS(deps.CORSOrigins),
		Gate(deps.Tokens, DefaultPublicPaths(), deps.Metrics),
	)

	authHandlers := NewAuthHandlers(deps.Auth)
	socialHandlers := NewSocialHandlers(deps.Social)

	router.GET("/healthz", Health)
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// Auth routes
	auth := router.Group("/api/auth")
	if deps.AuthRateLimit > 0 {
		auth.Use(NewRateLimiter(deps.AuthRateLimit).Middleware())
	}
	{
		auth.GET("/nonce", authHandlers.Nonce)
		auth.POST("/verify", authHandlers.Verify)
		auth.POST("/logout", authHandlers.Logout)
	}

	// Everything below /api outside the public list is gated
	api := router.Group("/api")
	{
		api.GET("/protected", authHandlers.Protected)
		api.GET("/user/me", authHandlers.Me)
		api.GET("/social/get", socialHandlers.Get)
		api.GET("/tokens/pending-claims", socialHandlers.PendingClaims)
		api.GET("/tokens/payment-history", socialHandlers.PaymentHistory)
	}

	return router
}
