// Package config provides configuration management for the measure pricing service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
)

// Storage drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverNone   = "none"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Pricing  PricingConfig
	Units    calculator.UnitDefaults
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	// RateLimit is the sustained number of requests per second per client.
	RateLimit      float64
	RateBurst      int
	RequestTimeout time.Duration
	CORSOrigins    []string
	SwaggerUser    string
	SwaggerPass    string
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// CacheConfig holds the settings snapshot cache configuration.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// DatabaseConfig holds storage configuration.
type DatabaseConfig struct {
	Driver       string
	URI          string
	DatabaseName string
	SQLitePath   string
	QuotesTTL    time.Duration
	// CircuitBreaker configuration
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

// PricingConfig holds measurement and price calculation options.
type PricingConfig struct {
	StrictConversions bool
	Precision         int
	RoundPrices       bool
	PriceDecimals     int
}

// LoadDotEnv loads variables from the given .env files, or from ./.env when
// none is given. Variables already set in the environment win. Missing files
// are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment and, when CONFIG_FILE
// is set, from that file. Environment variables take precedence over the
// file, which takes precedence over defaults.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			RateLimit:      positiveFloat(v, "RATE_LIMIT", 100),
			RateBurst:      positiveInt(v, "RATE_BURST", 200),
			RequestTimeout: positiveDuration(v, "REQUEST_TIMEOUT", 30*time.Second),
			CORSOrigins:    parseCORSOrigins(v.GetString("CORS_ORIGINS")),
			SwaggerUser:    v.GetString("SWAGGER_USER"),
			SwaggerPass:    v.GetString("SWAGGER_PASS"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
		Cache: CacheConfig{
			Size: positiveInt(v, "CACHE_SIZE", 1000),
			TTL:  positiveDuration(v, "CACHE_TTL", 5*time.Minute),
		},
		Database: DatabaseConfig{
			Driver:                         strings.ToLower(v.GetString("STORAGE_DRIVER")),
			URI:                            v.GetString("MONGODB_URI"),
			DatabaseName:                   v.GetString("MONGODB_DATABASE"),
			SQLitePath:                     v.GetString("SQLITE_PATH"),
			QuotesTTL:                      positiveDuration(v, "QUOTES_TTL", 90*24*time.Hour),
			CircuitBreakerFailureThreshold: positiveInt(v, "CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: positiveInt(v, "CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          positiveDuration(v, "CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		},
		Pricing: PricingConfig{
			StrictConversions: v.GetBool("CONVERSION_STRICT"),
			Precision:         nonNegativeInt(v, "MEASUREMENT_PRECISION", 3),
			RoundPrices:       v.GetBool("PRICE_ROUND"),
			PriceDecimals:     nonNegativeInt(v, "PRICE_DECIMALS", 2),
		},
		Units: calculator.UnitDefaults{
			Dimension: v.GetString("DEFAULT_DIMENSION_UNIT"),
			Area:      v.GetString("DEFAULT_AREA_UNIT"),
			Volume:    v.GetString("DEFAULT_VOLUME_UNIT"),
			Weight:    v.GetString("DEFAULT_WEIGHT_UNIT"),
		},
	}

	switch cfg.Database.Driver {
	case DriverMongo, DriverSQLite, DriverNone:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("STORAGE_DRIVER", DriverNone)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "measure_pricing")
	v.SetDefault("SQLITE_PATH", "measure-pricing.db")
	v.SetDefault("CONVERSION_STRICT", false)
	v.SetDefault("PRICE_ROUND", false)
	v.SetDefault("DEFAULT_DIMENSION_UNIT", "in")
	v.SetDefault("DEFAULT_AREA_UNIT", "sq. ft.")
	v.SetDefault("DEFAULT_VOLUME_UNIT", "cu. ft.")
	v.SetDefault("DEFAULT_WEIGHT_UNIT", "lbs")
}

// Invalid or non-positive values fall back to the default.

func positiveInt(v *viper.Viper, key string, def int) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return def
}

func nonNegativeInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) || strings.TrimSpace(v.GetString(key)) == "" {
		return def
	}
	if n := v.GetInt(key); n > 0 || v.GetString(key) == "0" {
		return n
	}
	return def
}

func positiveFloat(v *viper.Viper, key string, def float64) float64 {
	if f := v.GetFloat64(key); f > 0 {
		return f
	}
	return def
}

func positiveDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	return def
}

func parseCORSOrigins(s string) []string {
	// Default origins for local development
	defaults := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}
