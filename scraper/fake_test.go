package scraper

import (
	"context"
	"errors"
	"sync"
)

// fakeSession is a scripted Session keyed by selector string.
type fakeSession struct {
	mu sync.Mutex

	navErr error
	texts  map[string]string
	errs   map[string]error
	panics map[string]bool
	// appearAfter delays a text until the selector was probed this many times.
	appearAfter map[string]int

	navigated  []string
	probeCalls map[string]int
	closeCalls int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		texts:       make(map[string]string),
		errs:        make(map[string]error),
		panics:      make(map[string]bool),
		appearAfter: make(map[string]int),
		probeCalls:  make(map[string]int),
	}
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigated = append(s.navigated, url)
	return s.navErr
}

func (s *fakeSession) Probe(_ context.Context, loc Locator) (string, bool, error) {
	s.mu.Lock()
	s.probeCalls[loc.Selector]++
	calls := s.probeCalls[loc.Selector]
	panicking := s.panics[loc.Selector]
	err := s.errs[loc.Selector]
	text, ok := s.texts[loc.Selector]
	after := s.appearAfter[loc.Selector]
	s.mu.Unlock()

	if panicking {
		panic("stale element")
	}
	if err != nil {
		return "", false, err
	}
	if !ok || calls <= after {
		return "", false, nil
	}
	return text, true, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	return nil
}

func (s *fakeSession) totalProbes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.probeCalls {
		n += c
	}
	return n
}

// fakeFactory hands out one prepared session.
type fakeFactory struct {
	sess     *fakeSession
	err      error
	headless []bool
}

func (f *fakeFactory) Name() string { return "fake" }

func (f *fakeFactory) NewSession(_ context.Context, headless bool) (Session, error) {
	f.headless = append(f.headless, headless)
	if f.err != nil {
		return nil, f.err
	}
	return f.sess, nil
}

var errBoom = errors.New("boom")

const weatherHTML = `<html><head><title>Weather</title></head><body>
<div class="location_area"><strong class="location_name">  Seoul </strong></div>
<div class="card_data_now">
  <strong class="card_now_temperature">
    5°C
  </strong>
</div>
<div class="card_data_detail"><span class="card_date_emphasis">Cloudy</span></div>
</body></html>`
