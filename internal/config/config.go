// Package config provides configuration management for the dashboard API.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like DATABASE_URL, SERVER_PORT)
// 3. Default values
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Demo      DemoConfig      `mapstructure:"demo"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

// AppConfig identifies the running build.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	APIPrefix       string        `mapstructure:"api_prefix"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AllowCredentials      bool     `mapstructure:"allow_credentials"`
	UnsafeAllowAllOrigins bool     `mapstructure:"unsafe_allow_all_origins"`

	OpenAPI OpenAPIValidationConfig `mapstructure:"openapi_validation"`
}

// OpenAPIValidationConfig switches contract checks of API traffic against
// the embedded OpenAPI document.
type OpenAPIValidationConfig struct {
	Requests  bool `mapstructure:"requests"`
	Responses bool `mapstructure:"responses"`
}

// DatabaseConfig contains PostgreSQL connection settings.
// One pgx pool is shared by GORM, migrations and the readiness check.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`

	// AutoMigrate applies the embedded goose migrations at startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
	// SlowQueryThreshold is the GORM logger threshold for slow SQL warnings.
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
}

// DSN returns the PostgreSQL connection string.
// Priority: DATABASE_URL > constructed from individual fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode,
	)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// SecurityConfig contains token and access settings.
type SecurityConfig struct {
	SessionSecret string        `mapstructure:"session_secret"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`
	TokenIssuer   string        `mapstructure:"token_issuer"`
	RequireAuth   bool          `mapstructure:"require_auth"`
}

// PricingConfig holds the commodity prices used for scrap valuation.
type PricingConfig struct {
	LMECopperUSDPerMT float64 `mapstructure:"lme_copper_usd_per_mt"`
	USDToSAR          float64 `mapstructure:"usd_to_sar"`
}

// DashboardConfig tunes the trend charts.
type DashboardConfig struct {
	DailyTargetMT float64 `mapstructure:"daily_target_mt"`
	// PlantAreas assigns machine areas to the two plant series of the
	// hourly chart. A list keeps plant ids out of viper's lower-cased keys.
	PlantAreas []PlantAreas `mapstructure:"plant_areas"`
}

// PlantAreas names the machine areas whose output a plant owns.
type PlantAreas struct {
	Plant string   `mapstructure:"plant"`
	Areas []string `mapstructure:"areas"`
}

// AreasOf returns the areas configured for plant.
func (c DashboardConfig) AreasOf(plant string) []string {
	for _, pa := range c.PlantAreas {
		if pa.Plant == plant {
			return pa.Areas
		}
	}
	return nil
}

// DemoConfig gates the cold-start fallback figures shown when the
// database holds no plants, workforce records, checks or trends yet.
type DemoConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// WorkerConfig contains worker pool settings.
type WorkerConfig struct {
	GeneralPoolSize int `mapstructure:"general_pool_size"`
}

var (
	bootstrapLoggerOnce sync.Once
	bootstrapLogger     *zap.Logger
)

// Load reads configuration from file and environment variables.
// Environment variables carry no prefix (DATABASE_URL, SERVER_PORT, ...).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cableops")

	// Maps nested config: database.max_conns -> DATABASE_MAX_CONNS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.ensureSecrets(); err != nil {
		return nil, fmt.Errorf("ensure secrets: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if len(c.Security.SessionSecret) < 32 {
		return fmt.Errorf("security.session_secret must be at least 32 characters")
	}
	if c.Security.TokenLifetime <= 0 {
		return fmt.Errorf("security.token_lifetime must be positive")
	}
	if c.Pricing.LMECopperUSDPerMT <= 0 {
		return fmt.Errorf("pricing.lme_copper_usd_per_mt must be positive")
	}
	if c.Pricing.USDToSAR <= 0 {
		return fmt.Errorf("pricing.usd_to_sar must be positive")
	}
	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("server.api_prefix must start with /")
	}
	return nil
}

// ensureSecrets generates a signing secret on first boot when none is set.
// Tokens issued with a generated secret do not survive a restart.
func (c *Config) ensureSecrets() error {
	if c.Security.SessionSecret == "" {
		secret, err := generateSecureRandomHex(32)
		if err != nil {
			return fmt.Errorf("auto-generate session secret: %w", err)
		}
		c.Security.SessionSecret = secret
		logBootstrapWarn(
			"auto-generated session_secret; set SECURITY_SESSION_SECRET for tokens that survive restarts",
			zap.Int("length", len(secret)),
		)
	}
	return nil
}

func logBootstrapWarn(msg string, fields ...zap.Field) {
	bootstrapLoggerOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

		l, err := cfg.Build()
		if err != nil {
			bootstrapLogger = zap.NewNop()
			return
		}
		bootstrapLogger = l
	})

	bootstrapLogger.Warn(msg, fields...)
}

// generateSecureRandomHex produces a hex-encoded string of n random bytes.
func generateSecureRandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// bindEnv registers keys that have no default, since AutomaticEnv only
// resolves keys viper already knows about when unmarshalling.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("security.session_secret", "SECURITY_SESSION_SECRET")
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "Cable Plant Operations Dashboard")
	v.SetDefault("app.version", "1.0.0")

	// Server
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8000"})
	v.SetDefault("server.allow_credentials", true)
	v.SetDefault("server.unsafe_allow_all_origins", false)
	v.SetDefault("server.openapi_validation.requests", true)
	v.SetDefault("server.openapi_validation.responses", true)

	// Database
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cableops")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "cableops")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.slow_query_threshold", "500ms")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Security
	v.SetDefault("security.token_lifetime", "168h")
	v.SetDefault("security.token_issuer", "cableops")
	v.SetDefault("security.require_auth", true)

	// Pricing
	v.SetDefault("pricing.lme_copper_usd_per_mt", 9500.0)
	v.SetDefault("pricing.usd_to_sar", 3.75)

	// Dashboard
	v.SetDefault("dashboard.daily_target_mt", 60.0)
	v.SetDefault("dashboard.plant_areas", []map[string]interface{}{
		{"plant": "PCP-1", "areas": []string{"Drawing", "Stranding"}},
		{"plant": "PCP-2", "areas": []string{"Extrusion", "CV Line"}},
	})

	// Demo
	v.SetDefault("demo.enabled", false)

	// Worker pool
	v.SetDefault("worker.general_pool_size", 8)
}
