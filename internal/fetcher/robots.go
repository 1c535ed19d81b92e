package fetcher

import (
	"context"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsCache holds the parsed robots.txt of every host seen during a run.
// A nil entry means the host has no usable robots.txt and everything is allowed.
type robotsCache struct {
	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

func newRobotsCache() *robotsCache {
	return &robotsCache{hosts: make(map[string]*robotstxt.RobotsData)}
}

// allowed reports whether f's user agent may fetch rawURL.
// The check is best effort: an unreachable, non-2xx or unparsable
// robots.txt allows everything.
func (c *robotsCache) allowed(ctx context.Context, f *HTTPFetcher, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	data, ok := c.hosts[key]
	c.mu.Unlock()

	if !ok {
		data = f.loadRobots(ctx, key)
		c.mu.Lock()
		c.hosts[key] = data
		c.mu.Unlock()
	}
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, f.userAgent)
}

// loadRobots fetches and parses origin/robots.txt. It returns nil when
// there is nothing to honour.
func (f *HTTPFetcher) loadRobots(ctx context.Context, origin string) *robotstxt.RobotsData {
	robotsURL := origin + "/robots.txt"

	page, err := f.Fetch(ctx, robotsURL)
	if err != nil {
		f.logger.Debug("robots.txt not available", "url", robotsURL, "error", err)
		return nil
	}

	data, err := robotstxt.FromString(page.Body)
	if err != nil {
		f.logger.Debug("robots.txt not parsable", "url", robotsURL, "error", err)
		return nil
	}
	return data
}
