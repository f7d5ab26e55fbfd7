// Package fetcher issues outbound HTTP requests through a Colly collector
// using a fixed desktop-browser header profile.
package fetcher

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/job-finders/app/internal/metrics"
)

// DefaultUserAgent is the desktop identity string presented to the crawl
// target; a bare Go user agent gets trivially blocked.
const DefaultUserAgent = "Mozilla/4.0 (compatible; MSIE 7.0; Windows NT 5.1; .NET CLR 1.1.4322; .NET CLR 2.0.50727; .NET CLR 3.0.04506.30)"

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements jobs.Fetcher using the Colly collector. Any transport
// failure is surfaced as "no data", never as an error to the caller.
type Fetcher struct {
	cfg           Config
	headers       map[string]string
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	// colly v2.1.0's Async option ignores its argument and always enables
	// async mode; synchronous is the default, so no option is passed.
	c := colly.NewCollector()
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		headers:       headerProfile(),
		baseCollector: c,
		logger:        logger,
	}
}

// headerProfile is the fixed request identity applied to every fetch.
// Accept-Encoding is left to the transport so bodies arrive decoded.
func headerProfile() map[string]string {
	return map[string]string{
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://www.google.com",
		"Connection":      "keep-alive",
		"Cache-Control":   "max-age=0",
		"Accept":          "*/*",
	}
}

// Fetch executes a single HTTP GET. The boolean is false on any transport
// error, timeout, or non-OK status.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, bool) {
	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		body      []byte
		responded bool
		fetchErr  error
	)
	collector.OnRequest(func(r *colly.Request) {
		for key, value := range f.headers {
			r.Headers.Set(key, value)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
		responded = true
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		f.logger.Info("fetch canceled", zap.String("url", url), zap.Error(ctx.Err()))
		metrics.ObserveFetch("error")
		return nil, false
	case err := <-done:
		if err == nil {
			err = fetchErr
		}
		if err != nil || !responded {
			f.logger.Info("fetch failed", zap.String("url", url), zap.Error(err))
			metrics.ObserveFetch("error")
			return nil, false
		}
	}

	metrics.ObserveFetch("ok")
	return body, true
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
