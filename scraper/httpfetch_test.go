package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/weathercrawl/config"
	"github.com/use-agent/weathercrawl/models"
)

func TestHTTPFactory_Scrape(t *testing.T) {
	var gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(weatherHTML))
	}))
	defer srv.Close()

	f := NewHTTPFactory(config.BrowserConfig{AcceptLanguage: "ko-KR"})
	rec, err := New(f, WithPollInterval(testInterval)).Scrape(context.Background(), srv.URL, true, time.Second)
	if err != nil {
		t.Fatalf("Scrape() error: %v", err)
	}

	assertField(t, "location", rec.Location, "Seoul")
	assertField(t, "temperature", rec.Temperature, "5°C")
	assertField(t, "status", rec.Status, "Cloudy")
	if gotLang != "ko-KR" {
		t.Errorf("Accept-Language = %q, want ko-KR", gotLang)
	}
}

func TestHTTPFactory_ErrorStatusIsNavigationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(NewHTTPFactory(config.BrowserConfig{})).Scrape(context.Background(), srv.URL, true, testTimeout)

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeNavigation {
		t.Errorf("error = %v, want %s", err, models.ErrCodeNavigation)
	}
}

func TestExtractTitle(t *testing.T) {
	if got := extractTitle([]byte(weatherHTML)); got != "Weather" {
		t.Errorf("extractTitle = %q, want Weather", got)
	}
	if got := extractTitle([]byte("<p>no title</p>")); got != "" {
		t.Errorf("extractTitle = %q, want empty", got)
	}
}

func TestNeedsBrowser(t *testing.T) {
	long := strings.Repeat("weather text ", 40)
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"spa shell", `<html><body><div id="root"></div><script src="a.js"></script></body></html>`, true},
		{"noscript", `<html><body><noscript>Please enable JavaScript</noscript><p>` + long + `</p></body></html>`, true},
		{"server rendered", `<html><body><p>` + long + `</p></body></html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsBrowser([]byte(tt.body)); got != tt.want {
				t.Errorf("needsBrowser = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHTTPFactory_DecodesCharset(t *testing.T) {
	// "서울" in EUC-KR.
	const seoulEUCKR = "\xbc\xad\xbf\xef"

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{
			name:        "header charset",
			contentType: "text/html; charset=euc-kr",
			body:        `<html><body><strong class="location_name">` + seoulEUCKR + `</strong></body></html>`,
		},
		{
			name:        "meta charset",
			contentType: "text/html",
			body:        `<html><head><meta charset="euc-kr"></head><body><strong class="location_name">` + seoulEUCKR + `</strong></body></html>`,
		},
		{
			name:        "undeclared utf-8",
			contentType: "text/html",
			body:        `<!-- ` + strings.Repeat("padding ", 200) + `--><html><body><strong class="location_name">서울</strong></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			rec, err := New(NewHTTPFactory(config.BrowserConfig{}), WithPollInterval(testInterval)).
				Scrape(context.Background(), srv.URL, true, time.Second)
			if err != nil {
				t.Fatalf("Scrape() error: %v", err)
			}
			assertField(t, "location", rec.Location, "서울")
		})
	}
}

func TestDecodeHTML(t *testing.T) {
	body, name, err := decodeHTML([]byte("<p>\xbc\xad\xbf\xef</p>"), "text/html; charset=EUC-KR")
	if err != nil {
		t.Fatalf("decodeHTML error: %v", err)
	}
	if name != "euc-kr" || string(body) != "<p>서울</p>" {
		t.Errorf("got %q (%s), want <p>서울</p> (euc-kr)", body, name)
	}

	plain := []byte("<p>5°C</p>")
	body, name, err = decodeHTML(plain, "")
	if err != nil || name != "utf-8" || string(body) != string(plain) {
		t.Errorf("undeclared utf-8 changed: %q (%s, %v)", body, name, err)
	}
}
