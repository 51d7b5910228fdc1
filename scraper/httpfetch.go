package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	tls2 "github.com/refraction-networking/utls"
	"github.com/use-agent/weathercrawl/config"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 10 * 1024 * 1024

// HTTPFactory produces sessions that fetch the page once over plain HTTP
// with a Chrome TLS fingerprint and probe the static HTML. The body is
// decoded to UTF-8 before parsing. Because the document never changes,
// a missing field is reported at once instead of after the timeout.
type HTTPFactory struct {
	fetcher *httpFetcher
}

// NewHTTPFactory returns a factory that sends cfg.AcceptLanguage with every fetch.
func NewHTTPFactory(cfg config.BrowserConfig) *HTTPFactory {
	return &HTTPFactory{fetcher: newHTTPFetcher(cfg.AcceptLanguage)}
}

func (f *HTTPFactory) Name() string { return config.EngineHTTP }

func (f *HTTPFactory) NewSession(_ context.Context, _ bool) (Session, error) {
	return newDocumentSession(f.fetcher.load), nil
}

// httpFetcher performs HTTP requests with a Chrome TLS fingerprint (utls).
type httpFetcher struct {
	acceptLanguage string
	client         *http.Client
}

func newHTTPFetcher(acceptLanguage string) *httpFetcher {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	return &httpFetcher{
		acceptLanguage: acceptLanguage,
		client:         &http.Client{Transport: transport},
	}
}

// load fetches targetURL and logs a hint when the page looks like it needs
// JavaScript to render.
func (f *httpFetcher) load(ctx context.Context, targetURL string) ([]byte, error) {
	body, err := f.fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	slog.Debug("page fetched over http",
		"url", targetURL,
		"bytes", len(body),
		"title", extractTitle(body),
	)
	if needsBrowser(body) {
		slog.Warn("fetched page looks script-rendered, fields may be missing; try the browser engine",
			"url", targetURL,
		)
	}
	return body, nil
}

func (f *httpFetcher) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if f.acceptLanguage != "" {
		req.Header.Set("Accept-Language", f.acceptLanguage)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("httpfetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("httpfetch: read body: %w", err)
	}

	body, name, err := decodeHTML(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	if name != "utf-8" {
		slog.Debug("decoded page body", "url", targetURL, "charset", name)
	}
	return body, nil
}

// decodeHTML converts body to UTF-8. The charset comes from the
// Content-Type header, a BOM or a <meta> declaration, in that order.
// Undeclared bodies that are already valid UTF-8 pass through unchanged;
// the parser's windows-1252 fallback would mangle them.
func decodeHTML(body []byte, contentType string) ([]byte, string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || (!certain && name == "windows-1252" && utf8.Valid(body)) {
		return body, "utf-8", nil
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, name, fmt.Errorf("httpfetch: decode %s body: %w", name, err)
	}
	return decoded, name, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via
// utls. ALPN is pinned to http/1.1 because the transport speaks HTTP/1
// over custom dialed connections.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	spec, err := tls2.UTLSIdToSpec(tls2.HelloChrome_Auto)
	if err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("utls spec: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls2.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{ServerName: host}, tls2.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("utls preset: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

var reNoscript = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// needsBrowser uses heuristics to decide if the HTTP-fetched HTML likely
// needs JS rendering (SPA shell, heavy JS dependency, noscript warnings).
func needsBrowser(body []byte) bool {
	bodyText := extractVisibleText(body)
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(string(body))
	for _, shell := range []string{`<div id="root"></div>`, `<div id="app"></div>`, `<div id="__next"></div>`} {
		if strings.Contains(lower, shell) {
			return true
		}
	}
	if reNoscript.MatchString(lower) {
		return true
	}
	return strings.Count(lower, "<script") > 10 && len(bodyText) < 500
}

// extractTitle extracts the <title> content from raw HTML bytes.
func extractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}

// extractVisibleText returns the text inside <body>, skipping
// <script>/<style>/<noscript> content.
func extractVisibleText(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "body":
				inBody = true
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
