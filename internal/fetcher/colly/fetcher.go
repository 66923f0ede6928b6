// Package collyfetcher implements the listing-page fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/praclabs/workinator/internal/offers"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// browserHeaders mimics an ordinary browser request. The site serves a
// challenge page to clients that look like scripts.
var browserHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "pl-PL,pl;q=0.9,en-US;q=0.8,en;q=0.7",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
	"Sec-Fetch-Dest":  "document",
	"Sec-Fetch-Mode":  "navigate",
	"Sec-Fetch-Site":  "none",
	"Sec-Fetch-User":  "?1",
}

// challengeMarkers are body fragments that identify an anti-bot interstitial
// regardless of status code.
var challengeMarkers = []string{
	"just a moment",
	"cf-chl",
	"attention required",
	"detected unusual activity",
	"wykryliśmy nietypową aktywność",
}

// Fetcher fetches listing pages with a shared collector, so cookies set by
// the site persist across the pages of one crawl run.
type Fetcher struct {
	cfg       Config
	collector *colly.Collector
	policy    offers.RetryPolicy
	logger    *zap.Logger
}

// New builds a Fetcher. A nil policy disables retries.
func New(cfg Config, policy offers.RetryPolicy, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if policy == nil {
		policy = offers.NewExponentialRetryPolicy(1, 0, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// AllowURLRevisit lets the retry loop re-request the same page.
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.UserAgent = cfg.UserAgent
	c.IgnoreRobotsTxt = true
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:       cfg,
		collector: c,
		policy:    policy,
		logger:    logger,
	}
}

// Fetch retrieves one listing page, retrying per policy. Failures are always
// a *offers.FetchError carrying the classified kind.
func (f *Fetcher) Fetch(ctx context.Context, url string) (offers.FetchResult, error) {
	for attempt := 1; ; attempt++ {
		result, err := f.fetchOnce(ctx, url)
		if err == nil {
			return result, nil
		}
		if !f.policy.ShouldRetry(err, attempt) {
			return offers.FetchResult{}, err
		}
		delay := f.policy.Backoff(attempt)
		f.logger.Warn("fetch attempt failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return offers.FetchResult{}, &offers.FetchError{
				Kind: offers.FetchTimeout,
				URL:  url,
				Err:  ctx.Err(),
			}
		case <-time.After(delay):
		}
	}
}

type attemptOutcome struct {
	result offers.FetchResult
	err    error
}

// fetchOnce runs one attempt in its own goroutine so cancellation never
// races the collector callbacks. On ctx expiry the attempt's state is
// abandoned, not read.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) (offers.FetchResult, error) {
	done := make(chan attemptOutcome, 1)
	go func() {
		result, err := f.visit(url)
		done <- attemptOutcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return offers.FetchResult{}, &offers.FetchError{
			Kind: offers.FetchTimeout,
			URL:  url,
			Err:  ctx.Err(),
		}
	case out := <-done:
		return out.result, out.err
	}
}

// visit performs one synchronous request. All callback state stays confined
// to the calling goroutine because the collector is not async.
func (f *Fetcher) visit(url string) (offers.FetchResult, error) {
	var (
		result    offers.FetchResult
		status    int
		body      []byte
		visitErr  error
		responded bool
	)
	start := time.Now()

	collector := f.collector.Clone()
	collector.OnRequest(func(r *colly.Request) {
		for key, value := range browserHeaders {
			r.Headers.Set(key, value)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		responded = true
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
		result = offers.FetchResult{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       body,
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
			body = append([]byte(nil), r.Body...)
		}
		visitErr = err
	})

	if err := collector.Visit(url); err != nil {
		visitErr = err
	}

	if visitErr != nil || !responded {
		if visitErr == nil {
			visitErr = fmt.Errorf("no response received")
		}
		return offers.FetchResult{}, classify(url, status, body, visitErr)
	}
	if blocked(status, body) {
		return offers.FetchResult{}, &offers.FetchError{
			Kind:       offers.FetchBlocked,
			URL:        url,
			StatusCode: status,
			Err:        fmt.Errorf("anti-bot challenge served"),
		}
	}
	return result, nil
}

// classify maps a failed attempt onto a FetchError kind.
func classify(url string, status int, body []byte, err error) *offers.FetchError {
	fe := &offers.FetchError{URL: url, StatusCode: status, Err: err}
	switch {
	case blocked(status, body):
		fe.Kind = offers.FetchBlocked
	case status == http.StatusNotFound || status == http.StatusGone:
		fe.Kind = offers.FetchNotFound
	case isTimeout(err):
		fe.Kind = offers.FetchTimeout
	default:
		fe.Kind = offers.FetchNetwork
	}
	return fe
}

func blocked(status int, body []byte) bool {
	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		return true
	}
	lower := strings.ToLower(string(body))
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
