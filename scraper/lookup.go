package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
)

// DefaultPollInterval is how often Lookup re-probes the page.
const DefaultPollInterval = 250 * time.Millisecond

// Outcome tags how a lookup ended. Every outcome other than OutcomeFound
// yields an absent field.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeEmpty
	OutcomeTimeout
	OutcomeFault
	// OutcomeMissing: a static session had no matching element.
	OutcomeMissing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeFault:
		return "fault"
	case OutcomeMissing:
		return "missing"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// LookupResult is the tagged result of a bounded lookup.
type LookupResult struct {
	Outcome Outcome

	// Text is the trimmed element text; nil unless Outcome is OutcomeFound.
	Text *string

	// Err is the cause of an OutcomeFault.
	Err error
}

// Lookup waits up to timeout for an element matching loc and returns its
// trimmed text. It never returns an error: timeouts, blank text and probe
// failures all come back as an absent Text. On a StaticSession the first
// miss ends the wait. field only tags log entries.
func Lookup(ctx context.Context, sess Session, field string, loc Locator, timeout time.Duration) LookupResult {
	return lookup(ctx, sess, field, loc, timeout, DefaultPollInterval)
}

func lookup(ctx context.Context, sess Session, field string, loc Locator, timeout, interval time.Duration) (res LookupResult) {
	logger := slog.With(
		"field", field,
		"strategy", string(loc.Strategy),
		"selector", loc.Selector,
	)

	if timeout <= 0 {
		logger.Warn("no time to wait for element", "timeout", timeout)
		return LookupResult{Outcome: OutcomeTimeout}
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("probe panicked: %v", r)
			logger.Error("unexpected error while getting element text",
				"error", err,
				"stack", string(debug.Stack()),
			)
			res = LookupResult{Outcome: OutcomeFault, Err: err}
		}
	}()

	static := false
	if st, ok := sess.(StaticSession); ok {
		static = st.Static()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		text, found, err := sess.Probe(ctx, loc)
		switch {
		case err != nil && ctx.Err() != nil && isContextErr(err):
			// The deadline cut an in-flight probe short.
			logger.Warn("timeout while waiting for element", "timeout", timeout)
			return LookupResult{Outcome: OutcomeTimeout}
		case err != nil:
			logger.Error("unexpected error while getting element text", "error", err)
			return LookupResult{Outcome: OutcomeFault, Err: err}
		case found:
			trimmed := strings.TrimSpace(text)
			logger.Debug("element found", "text", trimmed)
			if trimmed == "" {
				return LookupResult{Outcome: OutcomeEmpty}
			}
			return LookupResult{Outcome: OutcomeFound, Text: &trimmed}
		case static:
			logger.Warn("element not present in static document")
			return LookupResult{Outcome: OutcomeMissing}
		}

		select {
		case <-ctx.Done():
			logger.Warn("timeout while waiting for element", "timeout", timeout)
			return LookupResult{Outcome: OutcomeTimeout}
		case <-ticker.C:
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
