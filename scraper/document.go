package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// errNoDocument is returned by probes issued before a successful Navigate.
var errNoDocument = errors.New("no document loaded")

// loadFunc fetches the HTML for url.
type loadFunc func(ctx context.Context, url string) ([]byte, error)

// documentSession answers probes against a static HTML snapshot. No
// JavaScript runs, so elements rendered client-side never appear.
type documentSession struct {
	load loadFunc

	mu       sync.Mutex
	doc      *goquery.Document
	matchers map[string]cascadia.Selector
	closed   bool
}

// NewDocumentSession returns a session whose every navigation yields the
// given HTML. It is useful for offline runs against saved pages.
func NewDocumentSession(html string) Session {
	return newDocumentSession(func(context.Context, string) ([]byte, error) {
		return []byte(html), nil
	})
}

func newDocumentSession(load loadFunc) *documentSession {
	return &documentSession{
		load:     load,
		matchers: make(map[string]cascadia.Selector),
	}
}

func (s *documentSession) Navigate(ctx context.Context, url string) error {
	body, err := s.load(ctx, url)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session closed")
	}
	s.doc = doc
	return nil
}

func (s *documentSession) Probe(ctx context.Context, loc Locator) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if loc.Strategy != StrategyCSS {
		return "", false, fmt.Errorf("%s locators need a browser session", loc.Strategy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return "", false, errNoDocument
	}

	m, ok := s.matchers[loc.Selector]
	if !ok {
		compiled, err := cascadia.Compile(loc.Selector)
		if err != nil {
			return "", false, fmt.Errorf("compile selector: %w", err)
		}
		m = compiled
		s.matchers[loc.Selector] = m
	}

	sel := s.doc.FindMatcher(m).First()
	if sel.Length() == 0 {
		return "", false, nil
	}
	return sel.Text(), true, nil
}

// Static reports true: no script runs, so a miss is final.
func (s *documentSession) Static() bool { return true }

func (s *documentSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.doc = nil
	return nil
}
