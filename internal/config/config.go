// Package config assembles storefront configuration from defaults, an optional
// YAML file, a dotenv file and the process environment, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "STOREFRONT_"

	defaultEnvFile       = ".env"
	defaultAddr          = ":8080"
	defaultCatalogSource = "products.json"
	defaultFetchTimeout  = 10 * time.Second
	defaultRefreshTTL    = 5 * time.Minute
	defaultLocale        = "fr-FR"
	defaultCurrency      = "EUR"
	defaultSiteName      = "Lumière Spirituelle"
	defaultRelatedLimit  = 3
	defaultLogLevel      = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Catalog CatalogConfig `yaml:"catalog" envPrefix:"CATALOG_"`
	Site    SiteConfig    `yaml:"site" envPrefix:"SITE_"`
	Session SessionConfig `yaml:"session" envPrefix:"SESSION_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	DevMode      bool          `yaml:"dev_mode" env:"DEV"`
}

// CatalogConfig locates the product catalog document.
type CatalogConfig struct {
	// Source is a filesystem path, a file:// URI or an http(s) URL.
	Source       string        `yaml:"source" env:"SOURCE"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	// RefreshTTL controls how long a loaded catalog is served before it is
	// fetched again. Zero loads the catalog once per process.
	RefreshTTL   time.Duration `yaml:"refresh_ttl" env:"REFRESH_TTL"`
	RelatedLimit int           `yaml:"related_limit" env:"RELATED_LIMIT"`
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	Name     string `yaml:"name" env:"NAME"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	Locale   string `yaml:"locale" env:"LOCALE"`
	Currency string `yaml:"currency" env:"CURRENCY"`
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	SigningKey   string `yaml:"signing_key" env:"SIGNING_KEY"`
	SecureCookie bool   `yaml:"secure_cookie" env:"SECURE_COOKIE"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	file         string
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithFile reads a YAML configuration file before applying environment overrides.
func WithFile(path string) Option {
	return func(o *loaderOptions) {
		o.file = path
	}
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit environment values. They take precedence over
// the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         defaultAddr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Catalog: CatalogConfig{
			Source:       defaultCatalogSource,
			FetchTimeout: defaultFetchTimeout,
			RefreshTTL:   defaultRefreshTTL,
			RelatedLimit: defaultRelatedLimit,
		},
		Site: SiteConfig{
			Name:     defaultSiteName,
			Locale:   defaultLocale,
			Currency: defaultCurrency,
		},
		Log: LogConfig{Level: defaultLogLevel},
	}
}

// Load assembles the configuration: defaults, then the YAML file, then the
// dotenv file, then the process environment, then WithEnvMap values.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()
	if options.file != "" {
		raw, err := os.ReadFile(options.file)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", options.file, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", options.file, err)
		}
	}

	values, err := environment(options)
	if err != nil {
		return Config{}, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      envPrefix,
		Environment: values,
	}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func environment(options loaderOptions) (map[string]string, error) {
	values := map[string]string{}
	if options.envFile != "" {
		dot, err := godotenv.Read(options.envFile)
		switch {
		case err == nil:
			for k, v := range dot {
				values[k] = v
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read env file %s: %w", options.envFile, err)
		}
	}
	if options.useSystemEnv {
		for k, v := range env.ToMap(os.Environ()) {
			values[k] = v
		}
	}
	for k, v := range options.envMap {
		values[k] = v
	}
	return values, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var fields []string
	if strings.TrimSpace(c.Server.Addr) == "" {
		fields = append(fields, "Server.Addr")
	}
	if strings.TrimSpace(c.Catalog.Source) == "" {
		fields = append(fields, "Catalog.Source")
	}
	if c.Catalog.FetchTimeout <= 0 {
		fields = append(fields, "Catalog.FetchTimeout")
	}
	if c.Catalog.RefreshTTL < 0 {
		fields = append(fields, "Catalog.RefreshTTL")
	}
	if c.Catalog.RelatedLimit < 0 {
		fields = append(fields, "Catalog.RelatedLimit")
	}
	if _, err := language.Parse(c.Site.Locale); err != nil {
		fields = append(fields, "Site.Locale")
	}
	if _, err := currency.ParseISO(c.Site.Currency); err != nil {
		fields = append(fields, "Site.Currency")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

// LanguageTag returns the parsed site locale, defaulting to French.
func (c Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Site.Locale)
	if err != nil {
		return language.French
	}
	return tag
}
