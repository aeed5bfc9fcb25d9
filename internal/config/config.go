package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds everything the binaries need. Values come from an optional
// config file plus MEDSTOCK_* environment overrides; .env loading happens in
// each main before Load runs.
type Config struct {
	App struct {
		Env string `mapstructure:"env"`
	} `mapstructure:"app"`

	HTTP struct {
		Addr           string   `mapstructure:"addr"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"postgres"`

	OpenAI struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"openai"`

	Stock struct {
		SafetyFactor float64 `mapstructure:"safety_factor"`
	} `mapstructure:"stock"`

	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		AdminUser     string `mapstructure:"admin_user"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"auth"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

// SafetyFactor returns the configured reorder safety factor as a decimal.
func (c Config) SafetyFactor() decimal.Decimal {
	return decimal.NewFromFloat(c.Stock.SafetyFactor)
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDSTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-5")
	v.SetDefault("stock.safety_factor", 2.0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_user", "admin")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("metrics.enabled", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if c.Postgres.DSN == "" {
		return Config{}, fmt.Errorf("postgres.dsn (MEDSTOCK_POSTGRES_DSN) is required")
	}
	if c.Stock.SafetyFactor <= 1.0 {
		return Config{}, fmt.Errorf("stock.safety_factor must be greater than 1.0, got %v", c.Stock.SafetyFactor)
	}
	return c, nil
}
