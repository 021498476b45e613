package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/layer-3/socialpay/adapters/chain"
	"github.com/layer-3/socialpay/adapters/events"
	"github.com/layer-3/socialpay/adapters/store"
	"github.com/layer-3/socialpay/adapters/tokenizer"
	"github.com/layer-3/socialpay/internal/config"
	"github.com/layer-3/socialpay/internal/logger"
	"github.com/layer-3/socialpay/internal/metrics"
	"github.com/layer-3/socialpay/internal/tracing"
	"github.com/layer-3/socialpay/ports"
	"github.com/layer-3/socialpay/service"
	transporthttp "github.com/layer-3/socialpay/transport/http"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server.

Environment:
  AUTH_JWT_SECRET         session signing secret (required)
  HTTP_ADDR               listen address (default :9000)
  SESSION_TTL             session lifetime (default 15m)
  NONCE_LENGTH            random bytes per login nonce (default 16)
  REDIS_URL               Redis for the lookup cache and auth events; in-memory when empty
  RPC_URL                 Ethereum JSON-RPC endpoint (default https://1rpc.io/sepolia)
  SOCIAL_LINKING_ADDRESS  SocialLinking contract; social lookups are disabled when empty
  PYUSD_DECIMALS          decimals used to format claim amounts (default 6)
  SOCIAL_CACHE_TTL        lookup cache lifetime (default 1m)
  AUTH_RATE_LIMIT         requests per minute per IP on /api/auth (default 30)
  CORS_EXTRA_ORIGINS      comma separated origins allowed besides the extension
  LOG_LEVEL               debug, info, warn or error (default info)
  TRACE_EXPORTER          "stdout" writes auth spans to stderr; disabled when empty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	tokens, err := tokenizer.NewJWTTokenizer(cfg.JWTSecret)
	if err != nil {
		return err
	}

	// Redis backs both the lookup cache and the event stream when configured
	wmLogger := watermill.NewSlogLogger(log)
	var (
		cache     ports.Store
		publisher message.Publisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}

		publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{Client: redisClient}, wmLogger)
		if err != nil {
			return fmt.Errorf("failed to create Redis publisher: %w", err)
		}
		cache = store.NewRedisStore(redisClient)
	} else {
		log.Warn("REDIS_URL not set, using in-memory cache and in-process events")
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		cache = store.NewMemoryStore()
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	authOpts := []service.AuthOption{
		service.WithMetrics(collector),
		service.WithLogger(log),
		service.WithNonceLength(cfg.NonceLength),
		service.WithSessionTTL(cfg.SessionTTL),
	}

	tp, err := tracing.NewProvider(cfg.TraceExporter, os.Stderr)
	if err != nil {
		return err
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn("failed to flush traces", "error", err)
			}
		}()
		otel.SetTracerProvider(tp)
		authOpts = append(authOpts, service.WithTracerProvider(tp))
	}

	authService := service.NewAuthService(tokens, events.NewWatermillPublisher(publisher), authOpts...)

	var socialService *service.SocialService
	if cfg.SocialLinkingAddress != "" {
		ethClient, err := ethclient.DialContext(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("failed to dial RPC: %w", err)
		}
		defer ethClient.Close()

		reader, err := chain.NewSocialLinking(ethClient, cfg.SocialLinkingAddress)
		if err != nil {
			return err
		}
		socialService = service.NewSocialService(reader, cache,
			service.WithCacheTTL(cfg.SocialCacheTTL),
			service.WithTokenDecimals(cfg.TokenDecimals),
			service.WithSocialMetrics(collector),
			service.WithSocialLogger(log),
		)
	} else {
		log.Warn("SOCIAL_LINKING_ADDRESS not set, social lookups disabled")
	}

	router := transporthttp.SetupRouter(transporthttp.Dependencies{
		Auth:           authService,
		Social:         socialService,
		Tokens:         tokens,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),
		Logger:         log,
		AuthRateLimit:  cfg.AuthRateLimit,
		CORSOrigins:    cfg.CORSExtraOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
