package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env     string `env:"ENV,default=dev"`
	Address string `env:"ADDRESS,default=:3000"`
	BaseURL string `env:"BASE_URL,default=http://localhost:3000"`
	Debug   bool   `env:"DEBUG,default=false"`

	DatabaseDSN string `env:"DATABASE_DSN,default=file:booktracker.db?cache=shared"`

	DeterministicUserIDs bool `env:"DETERMINISTIC_USER_IDS,default=false"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	SessionTokenSecret string        `env:"SESSION_TOKEN_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL,default=6h"`
	SessionTokenTTL    time.Duration `env:"SESSION_TOKEN_TTL,default=120h"`
	SessionCookieName  string        `env:"SESSION_COOKIE_NAME,default=refresh-token"`
	Issuer             string        `env:"TOKEN_ISSUER,default=booktracker"`

	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`
	RedisPrefix   string `env:"REDIS_PREFIX,default=booktracker"`

	SMTPHost       string `env:"SMTP_HOST"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SMTPFrom       string `env:"SMTP_FROM,default=BookTracker <no-reply@booktracker.local>"`
	SMTPSkipVerify bool   `env:"SMTP_SKIP_VERIFY,default=false"`

	BooksAPIKey   string        `env:"BOOKS_API_KEY"`
	BooksCacheTTL time.Duration `env:"BOOKS_CACHE_TTL,default=10m"`
}

func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) GetAccessTokenSecret() string      { return c.AccessTokenSecret }
func (c *Config) GetSessionTokenSecret() string     { return c.SessionTokenSecret }
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetSessionTokenTTL() time.Duration { return c.SessionTokenTTL }
func (c *Config) GetSessionCookieName() string      { return c.SessionCookieName }
func (c *Config) GetIssuer() string                 { return c.Issuer }
