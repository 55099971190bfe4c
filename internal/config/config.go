package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aouyang1/go-weibull-forecaster/forecast/options"
	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort     = 8080
	DefaultFitTimeout   = 10 * time.Second
	DefaultMaxBodyBytes = 1 << 20
	DefaultRateLimitRPS = 50
)

// Config holds the server settings and the forecast options applied to every fit.
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Forecast *options.Options `yaml:"forecast"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// HTTPPort is the port the API listens on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// FitTimeout bounds the wall-clock time of a single fit. Default: 10s.
	FitTimeout time.Duration `yaml:"fit_timeout"`

	// MaxBodyBytes caps the size of a request body. Default: 1MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// RateLimit throttles the fit endpoint.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a token bucket applied across all fit requests. A zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// EffectiveBurst returns the configured burst, or twice the RPS when unset.
func (r RateLimitConfig) EffectiveBurst() int {
	if r.Burst > 0 {
		return r.Burst
	}
	burst := int(r.RPS * 2)
	if burst < 1 {
		burst = 1
	}
	return burst
}

// Load reads and parses the config file at path. Missing fields are filled with defaults
// before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, filling defaults and validating the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:     DefaultHTTPPort,
			FitTimeout:   DefaultFitTimeout,
			MaxBodyBytes: DefaultMaxBodyBytes,
			RateLimit: RateLimitConfig{
				RPS: DefaultRateLimitRPS,
			},
		},
		Forecast: options.NewDefaultOptions(),
	}
}

func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.FitTimeout <= 0 {
		return fmt.Errorf("server.fit_timeout must be positive")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if cfg.Server.RateLimit.RPS < 0 {
		return fmt.Errorf("server.rate_limit.rps must not be negative")
	}
	if cfg.Server.RateLimit.Burst < 0 {
		return fmt.Errorf("server.rate_limit.burst must not be negative")
	}

	forecastOpt, err := cfg.Forecast.Validate()
	if err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	cfg.Forecast = forecastOpt
	return nil
}
