package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"StockScreener/internal/model"
)

const (
	DefaultQuotePageURL = "https://finance.yahoo.com/quote/%s/history"
	DefaultDownloadURL  = "https://query1.finance.yahoo.com/v7/finance/download/%s"
	DefaultTimeout      = 30 * time.Second

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; WOW64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/54.0.2840.99 Safari/537.36"
)

// Session is the header set, crumb and cookies obtained from the quote page.
// It authorizes exactly one download and is never reused.
type Session struct {
	Header http.Header
	Crumb  string
	Jar    http.CookieJar
}

// YahooFetcher downloads historical quotes as CSV from Yahoo Finance.
type YahooFetcher struct {
	QuotePageURL string // fmt template taking the escaped symbol
	DownloadURL  string // fmt template taking the escaped symbol
	Timeout      time.Duration
	Transport    http.RoundTripper
	Logger       *zap.Logger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string, timeout time.Duration, logger *zap.Logger) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			logger.Warn("ignoring invalid proxy url", zap.String("proxy", proxyURL), zap.Error(err))
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &YahooFetcher{
		QuotePageURL: DefaultQuotePageURL,
		DownloadURL:  DefaultDownloadURL,
		Timeout:      timeout,
		Transport:    transport,
		Logger:       logger,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func browserHeader() http.Header {
	h := http.Header{}
	h.Set("Connection", "keep-alive")
	h.Set("Expires", "-1")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("User-Agent", browserUserAgent)
	return h
}

func (f *YahooFetcher) client(jar http.CookieJar) *http.Client {
	return &http.Client{
		Timeout:   f.Timeout,
		Transport: f.Transport,
		Jar:       jar,
	}
}

// get issues a GET and returns the body of a 200 response.
func (f *YahooFetcher) get(ctx context.Context, client *http.Client, u string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrFetch, err)
	}
	req.Header = header.Clone()

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", model.ErrFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", model.ErrFetch, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// FetchSession visits the quote history page of symbol and returns the crumb
// together with the cookies the page set.
func (f *YahooFetcher) FetchSession(ctx context.Context, symbol string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	header := browserHeader()
	u := fmt.Sprintf(f.QuotePageURL, url.PathEscape(symbol))

	body, err := f.get(ctx, f.client(jar), u, header)
	if err != nil {
		return nil, fmt.Errorf("quote page: %w", err)
	}
	crumb, err := ExtractCrumb(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("quote page %s: %w", symbol, err)
	}
	f.Logger.Debug("crumb obtained", zap.String("symbol", symbol))
	return &Session{Header: header, Crumb: crumb, Jar: jar}, nil
}

// DownloadURLFor builds the authorized history download URL.
// The end day is included by pushing period2 to the following midnight.
func (f *YahooFetcher) DownloadURLFor(req model.Request, crumb string) string {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(req.Start.UTC().Unix(), 10))
	q.Set("period2", strconv.FormatInt(req.End.UTC().AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", string(req.Interval))
	q.Set("events", "history")
	q.Set("crumb", crumb)
	return fmt.Sprintf(f.DownloadURL, url.PathEscape(req.Symbol)) + "?" + q.Encode()
}

// Download returns the raw CSV lines (header first) for the requested range.
func (f *YahooFetcher) Download(ctx context.Context, req model.Request) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.HasRange() {
		return nil, fmt.Errorf("%w: yahoo downloads need start and end dates", model.ErrInvalidRequest)
	}

	sess, err := f.FetchSession(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	body, err := f.get(ctx, f.client(sess.Jar), f.DownloadURLFor(req, sess.Crumb), sess.Header)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", req.Symbol, err)
	}
	return splitLines(string(body)), nil
}

// Series downloads and parses the requested range.
func (f *YahooFetcher) Series(ctx context.Context, req model.Request) (*model.Series, error) {
	lines, err := f.Download(ctx, req)
	if err != nil {
		return nil, err
	}
	s, err := ParseCSV(req.Symbol, req.Interval, strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.Symbol, err)
	}
	s = s.Between(req.Start, req.End)
	f.Logger.Info("quotes downloaded",
		zap.String("symbol", req.Symbol),
		zap.String("interval", string(req.Interval)),
		zap.Int("rows", s.Len()),
	)
	return s, nil
}

func splitLines(body string) []string {
	lines := strings.Split(body, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
