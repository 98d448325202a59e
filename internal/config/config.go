// Package config loads the service configuration from the environment.
//
// Values come from process env vars (a `.env` file is autoloaded when present),
// are mapped into structs with koanf and validated with go-playground/validator,
// so the service fails fast on missing or broken configuration.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	// Loads `.env` into the process env before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the CRUD_ prefix and mapped to koanf keys: the first
	"_" separates the block from the field, "__" descends one more level.

	  CRUD_SERVER_PORT                      -> server.port
	  CRUD_DATABASE_MAX_OPEN_CONNS          -> database.max_open_conns
	  CRUD_OBSERVABILITY_LOGGING__LEVEL     -> observability.logging.level
*/

// EnvPrefix is the prefix of every env var read by LoadConfig.
const EnvPrefix = "CRUD_"

// ServiceName identifies this service in logs and APM.
const ServiceName = "go-crud"

// Config is the root configuration object.
//
// Observability is optional; defaults are injected when it is absent.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Storage       StorageConfig        `koanf:"storage"`
	Crud          CrudConfig           `koanf:"crud"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	// Env is the runtime environment: local, development, production...
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port string `koanf:"port" validate:"required"`

	// Timeouts are in seconds.
	ReadTimeout  int `koanf:"read_timeout" validate:"required"`
	WriteTimeout int `koanf:"write_timeout" validate:"required"`
	IdleTimeout  int `koanf:"idle_timeout" validate:"required"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	Name     string `koanf:"name" validate:"required"`
	SSLMode  string `koanf:"ssl_mode" validate:"required"`

	MaxOpenConns    int `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int `koanf:"conn_max_idle_time" validate:"required"`
}

type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

type AuthConfig struct {
	// SecretKey is the Clerk secret key.
	SecretKey string `koanf:"secret_key" validate:"required"`
}

type IntegrationConfig struct {
	// ResendAPIKey enables transactional emails. Empty disables sending.
	ResendAPIKey string `koanf:"resend_api_key"`

	// EmailFrom is the sender address used for transactional emails.
	EmailFrom string `koanf:"email_from"`
}

// StorageConfig configures the S3-compatible bucket holding uploads.
// An empty Endpoint disables uploads.
type StorageConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// Enabled reports whether uploads can be stored.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != ""
}

// CrudConfig tunes the generic CRUD handlers.
type CrudConfig struct {
	// DefaultRows is the grid page size when the client sends none.
	DefaultRows int `koanf:"default_rows" validate:"omitempty,min=1,max=1000"`

	// MaxRows caps the page size a client may ask for.
	MaxRows int `koanf:"max_rows" validate:"omitempty,min=1,max=10000"`

	// CacheTTLSeconds is how long entity reads stay in redis. 0 disables caching.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds" validate:"omitempty,min=0"`

	// RateLimit is the allowed requests per second per client IP on the API. 0 disables it.
	RateLimit float64 `koanf:"rate_limit" validate:"omitempty,min=0"`
}

// DefaultCrudConfig returns the values used when the crud block is omitted.
func DefaultCrudConfig() CrudConfig {
	return CrudConfig{
		DefaultRows:     20,
		MaxRows:         1000,
		CacheTTLSeconds: 300,
		RateLimit:       20,
	}
}

// envKey maps CRUD_SERVER_READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	block, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return block + "." + strings.ReplaceAll(rest, "__", ".")
}

// LoadConfig reads, defaults and validates the configuration.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{
		Crud:          DefaultCrudConfig(),
		Observability: DefaultObservabilityConfig(),
	}

	// Env values are flat strings: list settings such as
	// CRUD_SERVER_CORS_ALLOWED_ORIGINS are comma separated.
	if err := k.UnmarshalWithConf("", mainConfig, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				StringToTrimmedSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// StringToTrimmedSliceHookFunc splits a string on sep when the target is a
// []string. Items are trimmed and blank ones dropped, so "a, b," is [a b].
func StringToTrimmedSliceHookFunc(sep string) mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string(nil)) {
			return data, nil
		}

		items := strings.Split(data.(string), sep)
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
}
