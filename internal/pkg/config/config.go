package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Server ServerConfig
	Mongo  MongoConfig
	SMTP   SMTPConfig
	Client ClientConfig
	Redis  RedisConfig
}

type ServerConfig struct {
	Port string `env:"PORT, default=8080"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ecsetu"`
}

// SMTPConfig holds the mail transport settings. Without User and Pass the
// mailer stays disabled for the life of the process.
type SMTPConfig struct {
	Host   string `env:"SMTP_HOST,   default=smtp.gmail.com"`
	Port   int    `env:"SMTP_PORT,   default=587"`
	Secure bool   `env:"SMTP_SECURE, default=false"`
	From   string `env:"SMTP_FROM"`
	User   string `env:"SMTP_USER"`
	Pass   string `env:"SMTP_PASS"`
}

// Sender returns the From address, falling back to the SMTP username.
func (c SMTPConfig) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.User
}

// ClientConfig configures portalctl and its session storage.
type ClientConfig struct {
	APIURL    string `env:"PORTAL_API_URL,   default=http://localhost:8080"`
	Store     string `env:"PORTAL_STORE,     default=file"`
	StateFile string `env:"PORTAL_STATE_FILE"`
	StateKey  string `env:"PORTAL_STATE_KEY, default=ec_setu_auth_state"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether ENV selects the development profile.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// StatePath returns the snapshot file location, defaulting to the user
// config directory.
func (c ClientConfig) StatePath() string {
	if c.StateFile != "" {
		return c.StateFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ecsetu", c.StateKey+".json")
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for program entry points.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return cfg
}
