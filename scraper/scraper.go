package scraper

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/use-agent/weathercrawl/config"
	"github.com/use-agent/weathercrawl/metrics"
	"github.com/use-agent/weathercrawl/models"
)

// Scraper visits one page per Scrape call and reads the weather fields.
// Each call owns its own session, so concurrent calls are independent.
type Scraper struct {
	factory      SessionFactory
	selectors    Selectors
	pollInterval time.Duration
	navTimeout   time.Duration
	active       atomic.Int32
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithSelectors replaces the default locators.
func WithSelectors(sel Selectors) Option {
	return func(s *Scraper) { s.selectors = sel }
}

// WithPollInterval sets how often lookups re-probe the page.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scraper) { s.pollInterval = d }
}

// WithNavigationTimeout bounds navigation alone. Zero means no bound
// beyond the caller's context.
func WithNavigationTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.navTimeout = d }
}

// New returns a Scraper drawing sessions from factory.
func New(factory SessionFactory, opts ...Option) *Scraper {
	s := &Scraper{
		factory:      factory,
		selectors:    DefaultSelectors(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig builds a Scraper with the configured engine and selectors.
func NewFromConfig(cfg *config.Config) (*Scraper, error) {
	sel, err := SelectorsFromConfig(cfg.Selectors)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid selector configuration", err)
	}

	var factory SessionFactory
	switch cfg.Scraper.Engine {
	case config.EngineHTTP:
		factory = NewHTTPFactory(cfg.Browser)
	default:
		factory = NewBrowserFactory(cfg.Browser)
	}

	return New(factory,
		WithSelectors(sel),
		WithPollInterval(cfg.Scraper.PollInterval),
		WithNavigationTimeout(cfg.Scraper.NavigationTimeout),
	), nil
}

// Engine reports the session factory in use.
func (s *Scraper) Engine() string { return s.factory.Name() }

// Active reports how many scrapes are in flight.
func (s *Scraper) Active() int { return int(s.active.Load()) }

// Scrape opens a session, navigates to url, looks up the three fields with
// the shared per-field timeout and releases the session on every path.
//
// It fails only when the session cannot be created or navigation errors.
// Missing elements yield absent fields, never an error.
func (s *Scraper) Scrape(ctx context.Context, url string, headless bool, timeout time.Duration) (record *models.WeatherRecord, err error) {
	if strings.TrimSpace(url) == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "url is required", nil)
	}

	s.active.Add(1)
	defer s.active.Add(-1)

	start := time.Now()
	defer func() {
		result := metrics.ResultOK
		var se *models.ScrapeError
		if errors.As(err, &se) {
			result = se.Code
		}
		metrics.ObserveScrape(s.factory.Name(), result, time.Since(start))
	}()

	slog.Info("start scraping", "url", url, "engine", s.factory.Name(), "headless", headless, "timeout", timeout)

	// ── 1. Acquire session ─────────────────────────────────────────────
	sess, sessErr := s.factory.NewSession(ctx, headless)
	if sessErr != nil {
		slog.Error("failed to create session", "engine", s.factory.Name(), "error", sessErr)
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to create browser session", sessErr)
	}

	// ── 2. Guaranteed release ──────────────────────────────────────────
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("failed to release session", "error", closeErr)
			return
		}
		slog.Debug("session released")
	}()

	// ── 3. Navigate ────────────────────────────────────────────────────
	if navErr := s.navigate(ctx, sess, url); navErr != nil {
		slog.Error("navigation failed", "url", url, "error", navErr)
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	// ── 4. Field lookups ───────────────────────────────────────────────
	var texts [3]*string
	for i, f := range s.selectors.fields() {
		res := lookup(ctx, sess, f.name, f.loc, timeout, s.pollInterval)
		metrics.ObserveLookup(f.name, res.Outcome.String())
		texts[i] = res.Text
	}

	// ── 5. Assemble ────────────────────────────────────────────────────
	record = models.NewWeatherRecord(texts[0], texts[1], texts[2])
	if record.Complete() {
		slog.Info("scraping finished", "url", url, "record", record.Fields())
	} else {
		slog.Warn("scraping finished with absent fields", "url", url, "record", record.Fields())
	}
	return record, nil
}

func (s *Scraper) navigate(ctx context.Context, sess Session, url string) error {
	if s.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.navTimeout)
		defer cancel()
	}
	return sess.Navigate(ctx, url)
}

// categorizeError wraps raw errors into typed ScrapeErrors so callers
// can map them to exit paths and HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
