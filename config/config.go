package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "WEATHERCRAWL_"

// Engine names accepted by ScraperConfig.Engine.
const (
	EngineBrowser = "browser"
	EngineHTTP    = "http"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Selectors SelectorConfig
	Auth      AuthConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server started by `weathercrawl serve`.
type ServerConfig struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`
	Mode string `env:"MODE" envDefault:"release"` // "debug", "release", "test"
}

// BrowserConfig controls the Chromium instance launched for each scrape.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool `env:"HEADLESS" envDefault:"true"`

	// NoSandbox disables Chrome's sandbox.
	NoSandbox bool `env:"NO_SANDBOX" envDefault:"true"`

	// BrowserBin overrides the Chromium binary path. When empty the
	// launcher looks up or downloads a browser.
	BrowserBin string `env:"BROWSER_BIN"`

	// WindowWidth and WindowHeight fix the viewport size.
	WindowWidth  int `env:"WINDOW_WIDTH" envDefault:"1280"`
	WindowHeight int `env:"WINDOW_HEIGHT" envDefault:"720"`

	// AcceptLanguage is sent with every page request.
	AcceptLanguage string `env:"ACCEPT_LANGUAGE" envDefault:"ko-KR,ko;q=0.9,en;q=0.8"`

	// BlockedResources lists resource types the page never loads.
	// Allowed: Image, Stylesheet, Font, Media.
	BlockedResources []string `env:"BLOCKED_RESOURCES" envSeparator:"," envDefault:"Image,Font,Media"`
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// Engine selects the session factory: "browser" or "http".
	Engine string `env:"ENGINE" envDefault:"browser"`

	// Timeout is the per-field wait bound in seconds.
	Timeout int `env:"TIMEOUT" envDefault:"10"`

	// PollInterval is how often a lookup re-checks the page.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"250ms"`

	// NavigationTimeout bounds page.Navigate alone.
	NavigationTimeout time.Duration `env:"NAV_TIMEOUT" envDefault:"30s"`
}

// SelectorConfig overrides the compiled-in locators. Empty values keep
// the defaults.
type SelectorConfig struct {
	// Strategy applies to every override: "css" or "xpath".
	Strategy    string `env:"SELECTOR_STRATEGY" envDefault:"css"`
	Location    string `env:"SELECTOR_LOCATION"`
	Temperature string `env:"SELECTOR_TEMPERATURE"`
	Status      string `env:"SELECTOR_STATUS"`
}

// AuthConfig controls API key authentication for the HTTP API.
type AuthConfig struct {
	Enabled bool     `env:"AUTH_ENABLED" envDefault:"false"`
	APIKeys []string `env:"API_KEYS" envSeparator:","`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"INFO"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load reads configuration from WEATHERCRAWL_* environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that the environment parser cannot.
func (c *Config) Validate() error {
	switch c.Scraper.Engine {
	case EngineBrowser, EngineHTTP:
	default:
		return fmt.Errorf("config: unknown engine %q (want %q or %q)", c.Scraper.Engine, EngineBrowser, EngineHTTP)
	}
	if c.Scraper.PollInterval <= 0 {
		return fmt.Errorf("config: poll interval must be positive, got %s", c.Scraper.PollInterval)
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", c.Browser.WindowWidth, c.Browser.WindowHeight)
	}
	switch c.Selectors.Strategy {
	case "css", "xpath":
	default:
		return fmt.Errorf("config: unknown selector strategy %q", c.Selectors.Strategy)
	}
	return nil
}
