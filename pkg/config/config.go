package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	StorageFirestore = "firestore"
	StorageSQLite    = "sqlite"
	StorageMySQL     = "mysql"
)

const envPrefix = "CIVICLINK"

type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	GoogleCloud GoogleCloudConfig `yaml:"google_cloud"`
	Sentry      SentryConfig
}

type ServerConfig struct {
	Port        int
	FrontendURL string          `yaml:"frontend_url"`
	Development bool            `yaml:"development"`
	JWTSecret   string          `yaml:"jwt_secret"`
	TokenTTL    time.Duration   `yaml:"token_ttl"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type StorageConfig struct {
	Driver string
	DSN    string `yaml:"dsn"`
}

type GoogleCloudConfig struct {
	ProjectID              string `yaml:"project_id"`
	ServiceAccountFilename string `yaml:"service_account_filename"`
	LogID                  string `yaml:"log_id"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string
}

func ReadConfig(filename string) (*Config, error) {
	f, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	err = yaml.Unmarshal(f, cfg)
	if err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	cfg.applyDefaults()

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a configuration suitable for local development and tests, backed by an
// in-memory sqlite database.
func Default() *Config {
	cfg := &Config{
		Storage: StorageConfig{Driver: StorageSQLite, DSN: ":memory:"},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnvironment() {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if s := v.GetString("jwt_secret"); len(s) > 0 {
		c.Server.JWTSecret = s
	}
	if p := v.GetInt("port"); p > 0 {
		c.Server.Port = p
	}
	if d := v.GetString("storage_dsn"); len(d) > 0 {
		c.Storage.DSN = d
	}
	if d := v.GetString("sentry_dsn"); len(d) > 0 {
		c.Sentry.DSN = d
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if len(c.Server.FrontendURL) == 0 {
		c.Server.FrontendURL = "http://localhost:8080"
	}
	if c.Server.TokenTTL == 0 {
		c.Server.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Server.RateLimit.Requests == 0 {
		c.Server.RateLimit.Requests = 100
	}
	if c.Server.RateLimit.Window == 0 {
		c.Server.RateLimit.Window = 15 * time.Minute
	}
	if len(c.Storage.Driver) == 0 {
		c.Storage.Driver = StorageFirestore
	}
	if len(c.GoogleCloud.LogID) == 0 {
		c.GoogleCloud.LogID = "civiclink"
	}
}

func (c *Config) Validate() error {
	if len(c.Server.JWTSecret) == 0 {
		return fmt.Errorf("server.jwt_secret is required")
	}

	switch c.Storage.Driver {
	case StorageFirestore:
		if len(c.GoogleCloud.ProjectID) == 0 {
			return fmt.Errorf("google_cloud.project_id is required for firestore storage")
		}
	case StorageSQLite, StorageMySQL:
		if len(c.Storage.DSN) == 0 {
			return fmt.Errorf("storage.dsn is required for %s storage", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver, %s", c.Storage.Driver)
	}

	return nil
}
