package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config drives the portal process.
type Config struct {
	Port      string `env:"PORT,       default=8090"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	API     APIConfig
	Session SessionConfig
	Search  SearchConfig
	Live    LiveConfig

	Mongo MongoConfig
	Redis RedisConfig
}

// APIConfig locates the remote ParkSphere backend.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:8080"`
	PushURL string        `env:"PUSH_URL,     default=ws://localhost:8080/ws"`
	Timeout time.Duration `env:"HTTP_TIMEOUT, default=10s"`
}

// SessionConfig selects where the session survives restarts.
type SessionConfig struct {
	Backend   string `env:"SESSION_BACKEND,    default=redis"`
	KeyPrefix string `env:"SESSION_KEY_PREFIX, default=parksphere:"`
}

type SearchConfig struct {
	Debounce time.Duration `env:"SEARCH_DEBOUNCE, default=300ms"`
}

type LiveConfig struct {
	// LogLimit caps the spot update log; 0 keeps everything.
	LogLimit int `env:"LIVE_LOG_LIMIT, default=500"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=parksphere"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// DevAPIConfig drives the stand-in backend.
type DevAPIConfig struct {
	Port      string `env:"DEVAPI_PORT, default=8080"`
	Env       string `env:"ENV,         default=development"`
	LogLevel  string `env:"LOG_LEVEL,   default=info"`
	LogPretty bool   `env:"LOG_PRETTY,  default=false"`

	JWTSecret string        `env:"JWT_SECRET, default=parksphere-dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	// SpotFeedInterval makes the push hub flip a random spot on a timer; 0 disables it.
	SpotFeedInterval time.Duration `env:"SPOT_FEED_INTERVAL, default=0s"`
}

// Load reads the portal configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	switch cfg.Session.Backend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return nil, fmt.Errorf("load config: unknown SESSION_BACKEND %q", cfg.Session.Backend)
	}
	return &cfg, nil
}

// LoadDevAPI reads the stand-in backend configuration.
func LoadDevAPI(ctx context.Context) (*DevAPIConfig, error) {
	var cfg DevAPIConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load devapi config: %w", err)
	}
	return &cfg, nil
}
