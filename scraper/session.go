package scraper

import "context"

// Session is one controllable page, owned by a single scrape.
// It is not safe for concurrent use and must not be reused after Close.
type Session interface {
	// Navigate loads url. An error here is fatal to the scrape.
	Navigate(ctx context.Context, url string) error

	// Probe checks once, without waiting, for the first element matching
	// loc. found is false when nothing matches yet.
	Probe(ctx context.Context, loc Locator) (text string, found bool, err error)

	// Close releases the page and everything behind it.
	Close() error
}

// StaticSession is implemented by sessions whose content cannot change
// after Navigate. Lookups stop at the first miss on a static session.
type StaticSession interface {
	Static() bool
}

// SessionFactory produces ready-to-use sessions.
type SessionFactory interface {
	// Name identifies the engine ("browser", "http").
	Name() string

	// NewSession creates a session. headless is ignored by engines that
	// never render a UI.
	NewSession(ctx context.Context, headless bool) (Session, error)
}
