package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable this module reads.
const EnvPrefix = "KRES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	DevDB   DevDBConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KRES_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"KRES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KRES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig describes the remote store the gateway talks to.
type BackendConfig struct {
	BaseURL    string        `envconfig:"KRES_BACKEND_BASE_URL" default:"http://localhost:8084"`
	Timeout    time.Duration `envconfig:"KRES_BACKEND_TIMEOUT" default:"10s"`
	CSRFHeader string        `envconfig:"KRES_BACKEND_CSRF_HEADER" default:"X-CSRFToken"`
	CSRFToken  string        `envconfig:"KRES_BACKEND_CSRF_TOKEN"`
}

func (b BackendConfig) validate() error {
	if strings.TrimSpace(b.BaseURL) == "" {
		return fmt.Errorf("backend base URL is required")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	return nil
}

// DevDBConfig configures the development backend's database.
type DevDBConfig struct {
	Driver string `envconfig:"KRES_DEVDB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"KRES_DEVDB_DSN" default:"file::memory:?cache=shared"`
	Port   string `envconfig:"KRES_DEVDB_PORT" default:"8084"`

	MaxOpenConns    int           `envconfig:"KRES_DEVDB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"KRES_DEVDB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"KRES_DEVDB_CONN_MAX_LIFETIME" default:"1h"`
}
