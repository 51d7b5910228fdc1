package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/weathercrawl/config"
	"github.com/ysmood/gson"
)

// BrowserFactory launches a dedicated Chromium per session.
type BrowserFactory struct {
	cfg config.BrowserConfig
}

// NewBrowserFactory returns a factory using cfg for every launch.
func NewBrowserFactory(cfg config.BrowserConfig) *BrowserFactory {
	return &BrowserFactory{cfg: cfg}
}

func (f *BrowserFactory) Name() string { return config.EngineBrowser }

// newLauncher builds the launch flags for unattended operation.
func (f *BrowserFactory) newLauncher(headless bool) *launcher.Launcher {
	l := launcher.New().
		Headless(headless).
		NoSandbox(f.cfg.NoSandbox)

	if headless {
		// The new headless mode renders like a regular window.
		l.Set(flags.Headless, "new")
	}
	if f.cfg.BrowserBin != "" {
		l = l.Bin(f.cfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("window-size"), strconv.Itoa(f.cfg.WindowWidth)+","+strconv.Itoa(f.cfg.WindowHeight))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	// Keep Chromium's own logging off the console.
	l.Delete(flags.Flag("enable-logging"))
	l.Set(flags.Flag("log-level"), "3")

	return l
}

// NewSession launches Chromium, connects to it and opens one page.
// Every failure tears down whatever was already started.
func (f *BrowserFactory) NewSession(ctx context.Context, headless bool) (Session, error) {
	l := f.newLauncher(headless)

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		l.Kill()
		slog.Error("failed to launch browser", "headless", headless, "error", err)
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		slog.Error("failed to connect to browser", "controlURL", controlURL, "error", err)
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		slog.Error("failed to open page", "error", err)
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             f.cfg.WindowWidth,
		Height:            f.cfg.WindowHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("failed to set viewport, keeping window size", "error", err)
	}

	if f.cfg.AcceptLanguage != "" {
		if err := (proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": f.cfg.AcceptLanguage}),
		}).Call(page); err != nil {
			slog.Warn("failed to set extra headers", "error", err)
		}
	}

	// Must precede navigation to see the page's first requests.
	router := blockResources(page, f.cfg.BlockedResources)

	slog.Info("browser session created", "headless", headless, "controlURL", controlURL)

	return &browserSession{
		launcher: l,
		browser:  browser,
		page:     page,
		router:   router,
	}, nil
}

// browserSession is one rod page bound to its own browser process.
type browserSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	router   *rod.HijackRouter
}

func (s *browserSession) Navigate(ctx context.Context, url string) error {
	return s.page.Context(ctx).Navigate(url)
}

// Probe uses Has/HasX, which check once instead of retrying like
// Element/ElementX.
func (s *browserSession) Probe(ctx context.Context, loc Locator) (string, bool, error) {
	p := s.page.Context(ctx)

	var (
		has bool
		el  *rod.Element
		err error
	)
	switch loc.Strategy {
	case StrategyCSS:
		has, el, err = p.Has(loc.Selector)
	case StrategyXPath:
		has, el, err = p.HasX(loc.Selector)
	default:
		return "", false, fmt.Errorf("unknown locator strategy %q", loc.Strategy)
	}
	if err != nil || !has {
		return "", false, err
	}

	text, err := el.Text()
	if err != nil {
		return "", false, fmt.Errorf("read element text: %w", err)
	}
	return text, true, nil
}

// Close closes the page, asks the browser to exit and removes the
// temporary profile directory.
func (s *browserSession) Close() error {
	var errs []error
	if s.router != nil {
		if err := s.router.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop request router: %w", err))
		}
	}
	if err := s.page.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close page: %w", err))
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
		s.launcher.Kill()
	}
	s.launcher.Cleanup()
	return errors.Join(errs...)
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
