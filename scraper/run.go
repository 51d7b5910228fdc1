package scraper

import (
	"context"
	"time"

	"github.com/use-agent/weathercrawl/config"
	"github.com/use-agent/weathercrawl/logging"
	"github.com/use-agent/weathercrawl/models"
)

// RunOptions are the inputs of the programmatic entry point.
// Start from NewRunOptions to get the documented defaults.
type RunOptions struct {
	URL      string
	Headless bool
	Timeout  int    // seconds per field
	LogLevel string // DEBUG, INFO, WARNING, ERROR, CRITICAL

	// Config supplies engine, browser and selector settings. Nil loads
	// them from the environment.
	Config *config.Config
}

// NewRunOptions returns options for url with headless on, a 10 second
// timeout and INFO logging.
func NewRunOptions(url string) RunOptions {
	return RunOptions{
		URL:      url,
		Headless: true,
		Timeout:  10,
		LogLevel: "INFO",
	}
}

// Run configures logging and scrapes opts.URL once.
func Run(ctx context.Context, opts RunOptions) (*models.WeatherRecord, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logging.Setup(logging.Config{Level: opts.LogLevel, Format: cfg.Log.Format})

	sc, err := NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return sc.Scrape(ctx, opts.URL, opts.Headless, time.Duration(opts.Timeout)*time.Second)
}
