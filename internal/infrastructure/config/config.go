package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DefaultJWTSecret is only accepted when ENV is development or test.
const DefaultJWTSecret = "your-secret-key"

// insecureEnvs may run on DefaultJWTSecret when JWT_SECRET is unset.
var insecureEnvs = map[string]bool{
	"development": true,
	"test":        true,
}

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	TrustProxy      bool          `env:"TRUST_PROXY,      default=false"`

	Auth  AuthConfig
	Audit AuditConfig
	Mongo MongoConfig
	Redis RedisConfig

	// UsingDefaultSecret is set when JWT_SECRET was empty and the development
	// fallback was applied.
	UsingDefaultSecret bool
}

type AuthConfig struct {
	JWTSecret         string        `env:"JWT_SECRET"`
	TokenTTL          time.Duration `env:"JWT_TTL,                  default=720h"`
	BcryptCost        int           `env:"BCRYPT_COST,              default=10"`
	RejectLockedLogin bool          `env:"AUTH_REJECT_LOCKED_LOGIN, default=false"`
	RateLimit         int           `env:"LOGIN_RATE_LIMIT,         default=20"`
	RateWindow        time.Duration `env:"LOGIN_RATE_WINDOW,        default=1m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=mystere_meal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if !insecureEnvs[c.Env] {
			return fmt.Errorf("config: JWT_SECRET is required when ENV=%q", c.Env)
		}
		c.Auth.JWTSecret = DefaultJWTSecret
		c.UsingDefaultSecret = true
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.RateLimit <= 0 {
		return fmt.Errorf("config: LOGIN_RATE_LIMIT must be positive, got %d", c.Auth.RateLimit)
	}
	if c.Auth.RateWindow <= 0 {
		return fmt.Errorf("config: LOGIN_RATE_WINDOW must be positive, got %s", c.Auth.RateWindow)
	}
	return nil
}
