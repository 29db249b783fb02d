package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MaxBatchAddresses es el tope de direcciones por petición.
const MaxBatchAddresses = 20

// Config es la configuración completa de polydrop.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Checker CheckerConfig `yaml:"checker"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	DataBase string `yaml:"data_base"`
}

// FetchConfig controla paginación, reintentos y rate limiting del fetcher.
type FetchConfig struct {
	PageSize         int     `yaml:"page_size"`
	MaxPages         int     `yaml:"max_pages"`   // 0 = sin límite
	MaxRetries       *int    `yaml:"max_retries"` // nil = por defecto, 0 = sin reintentos
	RetryWaitMs      int     `yaml:"retry_wait_ms"`
	RequestTimeoutMs int     `yaml:"request_timeout_ms"`
	PageDelayMs      *int    `yaml:"page_delay_ms"` // nil = por defecto, 0 = sin pausa
	RatePerSec       float64 `yaml:"rate_per_sec"`
	Burst            int     `yaml:"burst"`
}

// CheckerConfig controla el batch.
type CheckerConfig struct {
	MaxAddresses        int `yaml:"max_addresses"`
	BatchTimeoutSeconds int `yaml:"batch_timeout_seconds"`
	Workers             int `yaml:"workers"` // 0 = una goroutine por dirección
}

// CacheConfig selecciona el backend del cache de resultados.
type CacheConfig struct {
	Backend    string `yaml:"backend"` // memory | redis | none
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// StorageConfig controla dónde se persiste el histórico.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para desactivar
}

// WatchConfig define la re-comprobación periódica.
type WatchConfig struct {
	Schedule  string   `yaml:"schedule"` // cron de 5 campos o "@every 1h"
	Addresses []string `yaml:"addresses"`
}

// MetricsConfig expone /metrics si Addr no está vacío.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Default devuelve la configuración por defecto, con overrides de entorno,
// para ejecutar sin archivo YAML.
func Default() *Config {
	_ = godotenv.Load()

	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

func (c *Config) RetryWait() time.Duration {
	return time.Duration(c.Fetch.RetryWaitMs) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Fetch.RequestTimeoutMs) * time.Millisecond
}

func (c *Config) PageDelay() time.Duration {
	return time.Duration(*c.Fetch.PageDelayMs) * time.Millisecond
}

func (c *Config) MaxRetries() int {
	return *c.Fetch.MaxRetries
}

func (c *Config) BatchTimeout() time.Duration {
	return time.Duration(c.Checker.BatchTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYDROP_DATA_API"); v != "" {
		cfg.API.DataBase = v
	}
	if v := os.Getenv("POLYDROP_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		if cfg.Cache.Backend == "" {
			cfg.Cache.Backend = "redis"
		}
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.Fetch.PageSize <= 0 {
		cfg.Fetch.PageSize = 500
	}
	if cfg.Fetch.MaxRetries == nil || *cfg.Fetch.MaxRetries < 0 {
		cfg.Fetch.MaxRetries = intPtr(3)
	}
	if cfg.Fetch.RetryWaitMs <= 0 {
		cfg.Fetch.RetryWaitMs = 500
	}
	if cfg.Fetch.RequestTimeoutMs <= 0 {
		cfg.Fetch.RequestTimeoutMs = 10_000
	}
	if cfg.Fetch.PageDelayMs == nil || *cfg.Fetch.PageDelayMs < 0 {
		cfg.Fetch.PageDelayMs = intPtr(100)
	}
	if cfg.Fetch.RatePerSec <= 0 {
		cfg.Fetch.RatePerSec = 12
	}
	if cfg.Fetch.Burst <= 0 {
		cfg.Fetch.Burst = 4
	}
	if cfg.Checker.MaxAddresses <= 0 {
		cfg.Checker.MaxAddresses = 20
	}
	if cfg.Checker.BatchTimeoutSeconds <= 0 {
		cfg.Checker.BatchTimeoutSeconds = 120
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.Backend == "redis" && cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Watch.Schedule == "" {
		cfg.Watch.Schedule = "@every 1h"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func intPtr(v int) *int {
	return &v
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Checker.MaxAddresses > MaxBatchAddresses {
		return fmt.Errorf("checker.max_addresses %d exceeds the limit of %d per request",
			c.Checker.MaxAddresses, MaxBatchAddresses)
	}
	if c.Fetch.RatePerSec > 100 {
		return fmt.Errorf("fetch.rate_per_sec %.0f exceeds the Data API limit", c.Fetch.RatePerSec)
	}
	return nil
}
