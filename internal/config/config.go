package config

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sethvargo/go-envconfig"
)

const minCredentialsKeyLength = 32

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Clerk    ClerkConfig    `env:",prefix=CLERK_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=identity_sync"`
	Password string `env:"PASSWORD,default=identity_sync_password"`
	DBName   string `env:"DB,default=identity_sync_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
	Migrate  bool   `env:"MIGRATE,default=true"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// ClerkConfig configures session token verification and webhook authentication
type ClerkConfig struct {
	SecretKey         string   `env:"SECRET_KEY,default="`
	JWKSURL           string   `env:"JWKS_URL,default=https://api.clerk.com/v1/jwks"`
	Issuer            string   `env:"ISSUER,default="`
	AuthorizedParties []string `env:"AUTHORIZED_PARTIES"`
	JWKSCacheTTL      Duration `env:"JWKS_CACHE_TTL,default=1h"`
	ClockSkew         Duration `env:"CLOCK_SKEW,default=5s"`
	VerifyTimeout     Duration `env:"VERIFY_TIMEOUT,default=5s"`
	WebhookSecret     string   `env:"WEBHOOK_SECRET,required"`
	WebhookTolerance  Duration `env:"WEBHOOK_TOLERANCE,default=5m"`
}

type SecurityConfig struct {
	CredentialsKey    string   `env:"CREDENTIALS_ENCRYPTION_KEY,required"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=100"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	WebhookDedupTTL   Duration `env:"WEBHOOK_DEDUP_TTL,default=1d"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection URL expected by the migrator
func (p PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%s", p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if config.Clerk.WebhookSecret == "" {
		return nil, fmt.Errorf("CLERK_WEBHOOK_SECRET must not be empty")
	}

	if len(config.Security.CredentialsKey) < minCredentialsKeyLength {
		return nil, fmt.Errorf("CREDENTIALS_ENCRYPTION_KEY must be at least %d characters long", minCredentialsKeyLength)
	}

	if config.Clerk.JWKSURL == "" {
		return nil, fmt.Errorf("CLERK_JWKS_URL must not be empty")
	}

	return &config, nil
}
