package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/layer-3/socialpay/core"
)

// Config holds the process configuration. It is read from the environment
// once at startup and treated as immutable.
type Config struct {
	// Session
	JWTSecret   []byte
	SessionTTL  time.Duration
	NonceLength int

	// Server
	HTTPAddr         string
	AuthRateLimit    int // requests per minute per client IP on /api/auth/*
	CORSExtraOrigins []string
	LogLevel         string
	TraceExporter    string // "" disables tracing, "stdout" writes spans to stderr

	// Storage and events
	RedisURL string

	// Chain
	RPCURL               string
	SocialLinkingAddress string
	TokenDecimals        int32
	SocialCacheTTL       time.Duration
}

// Load reads Config from the environment. A missing signing secret is a
// configuration error.
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	cfg.JWTSecret = []byte(secret)

	if len(missing) > 0 {
		return nil, core.NewError(core.KindConfiguration,
			fmt.Sprintf("required environment variables are not set: %v", missing))
	}

	cfg.HTTPAddr = getEnvString("HTTP_ADDR", ":9000")
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", 15*time.Minute)
	cfg.NonceLength = getEnvInt("NONCE_LENGTH", 16)
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.RPCURL = getEnvString("RPC_URL", "https://1rpc.io/sepolia")
	cfg.SocialLinkingAddress = getEnvString("SOCIAL_LINKING_ADDRESS", "")
	cfg.TokenDecimals = int32(getEnvInt("PYUSD_DECIMALS", 6))
	cfg.SocialCacheTTL = getEnvDuration("SOCIAL_CACHE_TTL", time.Minute)
	cfg.AuthRateLimit = getEnvInt("AUTH_RATE_LIMIT", 30)
	cfg.CORSExtraOrigins = getEnvList("CORS_EXTRA_ORIGINS")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.TraceExporter = strings.ToLower(getEnvString("TRACE_EXPORTER", ""))

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
