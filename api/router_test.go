package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/weathercrawl/config"
	"github.com/use-agent/weathercrawl/models"
)

type stubScraper struct {
	record *models.WeatherRecord
	err    error

	gotURL      string
	gotHeadless bool
	gotTimeout  time.Duration
}

func (s *stubScraper) Scrape(_ context.Context, url string, headless bool, timeout time.Duration) (*models.WeatherRecord, error) {
	s.gotURL, s.gotHeadless, s.gotTimeout = url, headless, timeout
	return s.record, s.err
}

func (s *stubScraper) Active() int    { return 0 }
func (s *stubScraper) Engine() string { return "stub" }

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Mode: "test"},
		Scraper: config.ScraperConfig{Timeout: 10},
	}
}

func do(t *testing.T, cfg *config.Config, sc *stubScraper, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, models.WeatherResponse) {
	t.Helper()
	r := NewRouter(sc, cfg, time.Now())

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.WeatherResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestWeather_Success(t *testing.T) {
	loc, temp := "Seoul", "5°C"
	sc := &stubScraper{record: &models.WeatherRecord{Location: &loc, Temperature: &temp}}

	w, resp := do(t, testConfig(), sc, http.MethodPost, "/api/v1/weather", `{"url":"https://weather.example/today"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !resp.Success || resp.Data == nil || *resp.Data.Location != "Seoul" {
		t.Errorf("unexpected response %s", w.Body.String())
	}
	if resp.Data.Status != nil {
		t.Errorf("status should be null, got %q", *resp.Data.Status)
	}
	if !strings.Contains(w.Body.String(), `"status":null`) {
		t.Errorf("absent field should encode as null: %s", w.Body.String())
	}
	if sc.gotTimeout != 10*time.Second || !sc.gotHeadless {
		t.Errorf("defaults not applied: timeout %s headless %v", sc.gotTimeout, sc.gotHeadless)
	}
}

func TestWeather_RequestOverrides(t *testing.T) {
	sc := &stubScraper{record: &models.WeatherRecord{}}

	w, _ := do(t, testConfig(), sc, http.MethodPost, "/api/v1/weather", `{"url":"https://weather.example","headless":false,"timeout":3}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if sc.gotHeadless || sc.gotTimeout != 3*time.Second {
		t.Errorf("got headless %v timeout %s", sc.gotHeadless, sc.gotTimeout)
	}
}

func TestWeather_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{}`},
		{"not a url", `{"url":"weather"}`},
		{"timeout too large", `{"url":"https://weather.example","timeout":500}`},
		{"malformed json", `{"url":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(t, testConfig(), &stubScraper{}, http.MethodPost, "/api/v1/weather", tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
				t.Errorf("error = %+v, want %s", resp.Error, models.ErrCodeInvalidInput)
			}
		})
	}
}

func TestWeather_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"navigation", models.NewScrapeError(models.ErrCodeNavigation, "nav", nil), http.StatusBadGateway},
		{"timeout", models.NewScrapeError(models.ErrCodeTimeout, "slow", nil), http.StatusGatewayTimeout},
		{"browser", models.NewScrapeError(models.ErrCodeBrowserCrash, "launch", nil), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(t, testConfig(), &stubScraper{err: tt.err}, http.MethodPost, "/api/v1/weather", `{"url":"https://weather.example"}`, nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if resp.Success || resp.Error == nil {
				t.Errorf("expected error response, got %s", w.Body.String())
			}
		})
	}
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}
	body := `{"url":"https://weather.example"}`

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"x-api-key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, cfg, &stubScraper{record: &models.WeatherRecord{}}, http.MethodPost, "/api/v1/weather", body, tt.header)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHealth_NoAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}

	r := NewRouter(&stubScraper{}, cfg, time.Now())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var health models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" || health.Engine != "stub" {
		t.Errorf("health = %+v", health)
	}
}

func TestRequestID(t *testing.T) {
	w, _ := do(t, testConfig(), &stubScraper{record: &models.WeatherRecord{}}, http.MethodPost, "/api/v1/weather", `{"url":"https://weather.example"}`, nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry a generated X-Request-ID")
	}

	const id = "3f2b8c1e-6a4d-4e1f-9b7a-2c5d8e9f0a1b"
	w, _ = do(t, testConfig(), &stubScraper{record: &models.WeatherRecord{}}, http.MethodPost, "/api/v1/weather", `{"url":"https://weather.example"}`, map[string]string{"X-Request-ID": id})
	if got := w.Header().Get("X-Request-ID"); got != id {
		t.Errorf("X-Request-ID = %q, want %q", got, id)
	}

	w, _ = do(t, testConfig(), &stubScraper{record: &models.WeatherRecord{}}, http.MethodPost, "/api/v1/weather", `{"url":"https://weather.example"}`, map[string]string{"X-Request-ID": "not-a-uuid"})
	if got := w.Header().Get("X-Request-ID"); got == "not-a-uuid" || got == "" {
		t.Errorf("malformed X-Request-ID should be replaced, got %q", got)
	}
}

func TestMetrics_NoAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}

	r := NewRouter(&stubScraper{}, cfg, time.Now())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("metrics output should include the default Go collectors")
	}
}
