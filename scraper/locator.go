package scraper

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/weathercrawl/config"
	"github.com/use-agent/weathercrawl/models"
)

// Strategy is how a Locator's selector string is interpreted.
type Strategy string

const (
	StrategyCSS   Strategy = "css"
	StrategyXPath Strategy = "xpath"
)

// Locator identifies an element on the page. A CSS selector list matches
// the first element matching any of its members.
type Locator struct {
	Strategy Strategy
	Selector string
}

// CSS returns a CSS locator.
func CSS(selector string) Locator {
	return Locator{Strategy: StrategyCSS, Selector: selector}
}

// XPath returns an XPath locator.
func XPath(expr string) Locator {
	return Locator{Strategy: StrategyXPath, Selector: expr}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Selector)
}

// Validate rejects empty selectors, unknown strategies and CSS that does
// not parse.
func (l Locator) Validate() error {
	if strings.TrimSpace(l.Selector) == "" {
		return fmt.Errorf("empty selector")
	}
	switch l.Strategy {
	case StrategyCSS:
		if _, err := cascadia.ParseGroup(l.Selector); err != nil {
			return fmt.Errorf("invalid css selector %q: %w", l.Selector, err)
		}
	case StrategyXPath:
	default:
		return fmt.Errorf("unknown locator strategy %q", l.Strategy)
	}
	return nil
}

// Selectors holds the locator for each record field.
//
// The defaults target the current Naver Weather layout. A layout change on
// that page breaks them; swap in a new set rather than patching callers.
type Selectors struct {
	Location    Locator
	Temperature Locator
	Status      Locator
}

// DefaultSelectors returns the compiled-in locators.
func DefaultSelectors() Selectors {
	return Selectors{
		Location:    CSS("strong.location_name, span.location_name"),
		Temperature: CSS(".card_data_now .card_now_temperature"),
		Status:      CSS(".card_data_detail .card_date_emphasis"),
	}
}

// SelectorsFromConfig applies non-empty overrides on top of the defaults.
func SelectorsFromConfig(cfg config.SelectorConfig) (Selectors, error) {
	newLocator := CSS
	switch Strategy(cfg.Strategy) {
	case StrategyCSS, "":
	case StrategyXPath:
		newLocator = XPath
	default:
		return Selectors{}, fmt.Errorf("unknown locator strategy %q", cfg.Strategy)
	}

	sel := DefaultSelectors()
	if cfg.Location != "" {
		sel.Location = newLocator(cfg.Location)
	}
	if cfg.Temperature != "" {
		sel.Temperature = newLocator(cfg.Temperature)
	}
	if cfg.Status != "" {
		sel.Status = newLocator(cfg.Status)
	}
	return sel, sel.Validate()
}

// Validate checks every locator in the set.
func (s Selectors) Validate() error {
	for _, f := range s.fields() {
		if err := f.loc.Validate(); err != nil {
			return fmt.Errorf("selector for %s: %w", f.name, err)
		}
	}
	return nil
}

type namedLocator struct {
	name string
	loc  Locator
}

// fields lists the locators in scrape order.
func (s Selectors) fields() []namedLocator {
	return []namedLocator{
		{models.FieldLocation, s.Location},
		{models.FieldTemperature, s.Temperature},
		{models.FieldStatus, s.Status},
	}
}
