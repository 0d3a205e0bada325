package engine

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxBodyBytes caps provider responses. TikTok pages with the rehydration
// payload run to a few MB; anything beyond this is not a provider response.
const maxBodyBytes = 8 << 20

// Per-host politeness limiters for outbound provider calls.
var (
	limiterMu sync.Mutex
	limiters  = map[string]*rate.Limiter{}
)

func hostLimiter(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	limiterMu.Lock()
	defer limiterMu.Unlock()
	l, ok := limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(cfg.RatePerHost), 2)
		limiters[host] = l
	}
	return l
}

// Get performs a single HTTP GET with a bounded timeout. No retries: a failed
// or timed-out provider contributes nothing and the cascade moves on.
func Get(ctx context.Context, fetchURL string, timeout time.Duration, asBrowser bool) ([]byte, error) {
	metrics.FetchRequests.Add(1)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := hostLimiter(fetchURL).Wait(ctx); err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}

	if asBrowser {
		req.Header.Set("User-Agent", UserAgentChrome)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	} else {
		req.Header.Set("User-Agent", UserAgentBot)
		req.Header.Set("Accept", "application/json,text/plain,*/*;q=0.9")
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("GET %s: status %d", fetchURL, resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("GET %s: read body: %w", fetchURL, err)
	}
	return body, nil
}

// GetJSON fetches a URL (through the response cache when enabled) and decodes
// the JSON body into out.
func GetJSON(ctx context.Context, fetchURL string, timeout time.Duration, out any) error {
	body, err := CachedGet(ctx, fetchURL, timeout, false)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", fetchURL, err)
	}
	return nil
}

// readBody reads the response body, handling gzip decompression if needed.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}
