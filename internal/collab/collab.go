// Package collab declares the external collaborator interfaces the core
// packages depend on but never implement themselves: HTTP fetch, robots.txt
// consultation, the shared crawled-URL cache, and blob persistence. Concrete
// backends live in subpackages (internal/collab/cassandra).
package collab

import (
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

// Fetcher performs the HTTP fetch; the only collaborator that actually talks
// to the network on the crawl path.
type Fetcher interface {
	Fetch(rawURL string) (status int, body []byte, err error)
}

// Robots answers robots.txt questions for a host.
type Robots interface {
	CanFetch(rawURL, userAgent string) bool
	CrawlDelay(rawURL, userAgent string) (time.Duration, bool)
}

// SeenSet is the shared, cache-backed set of already-crawled URLs, satisfying
// both internal/frontier.SeenSet and internal/dedupe.SeenSet.
type SeenSet interface {
	Contains(key string) (bool, error)
	Add(key string) error
}

// BlobStore persists opaque serialised artefacts (index and PageRank blobs).
type BlobStore interface {
	Put(path string, data []byte) error
	Get(path string) ([]byte, error)
}

// HTTPFetcher is a minimal Fetcher backed by net/http, honouring the
// configured user agent and request timeout the way the teacher's own
// fetcher does.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher returns an HTTPFetcher with timeout and user agent pulled
// from the given values (callers pass walker.Config's fields). Dialing goes
// through a DNS-caching dialer so repeated fetches against the same host
// during a crawl don't repeat its resolution.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	dial, err := newCachingDialer(8192)
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if err == nil {
		transport.Dial = dial
	} else {
		log.Warn().Err(err).Msg("failed to build DNS-caching dialer, falling back to net.Dial")
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: userAgent,
	}
}

// Fetch issues a GET request, returning the status code and body. Transport
// and non-2xx/3xx errors are returned to the caller rather than logged here;
// per-URL failure handling is the crawl loop's job.
func (f *HTTPFetcher) Fetch(rawURL string) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return resp.StatusCode, buf, rerr
		}
	}
	return resp.StatusCode, buf, nil
}

// RobotsOracle answers robots.txt questions, fetching and caching the
// robots.txt document per host. A fetch failure defaults to "allowed" — a
// conservative convenience choice, documented as such. Safe for concurrent
// use by the crawl loop's worker pool: groups is guarded by mu.
type RobotsOracle struct {
	fetcher Fetcher

	mu     sync.RWMutex
	groups map[string]*robotstxt.Group
}

// NewRobotsOracle returns a RobotsOracle that fetches robots.txt documents
// through fetcher on demand.
func NewRobotsOracle(fetcher Fetcher) *RobotsOracle {
	return &RobotsOracle{fetcher: fetcher, groups: make(map[string]*robotstxt.Group)}
}

// CanFetch reports whether userAgent may fetch rawURL per the host's
// robots.txt. Robots fetch failure defaults to allowed.
func (r *RobotsOracle) CanFetch(rawURL, userAgent string) bool {
	group := r.groupFor(rawURL, userAgent)
	if group == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	return group.Test(u.RequestURI())
}

// CrawlDelay returns the host's robots.txt Crawl-delay directive, if any.
func (r *RobotsOracle) CrawlDelay(rawURL, userAgent string) (time.Duration, bool) {
	group := r.groupFor(rawURL, userAgent)
	if group == nil || group.CrawlDelay <= 0 {
		return 0, false
	}
	return group.CrawlDelay, true
}

func (r *RobotsOracle) groupFor(rawURL, userAgent string) *robotstxt.Group {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := u.Hostname()

	r.mu.RLock()
	g, ok := r.groups[host]
	r.mu.RUnlock()
	if ok {
		return g
	}

	return r.fetchGroup(host, u, userAgent)
}

func (r *RobotsOracle) fetchGroup(host string, u *url.URL, userAgent string) *robotstxt.Group {
	robotsURL := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}
	status, body, err := r.fetcher.Fetch(robotsURL.String())
	if err != nil || status != http.StatusOK {
		log.Warn().Str("host", host).Err(err).Msg("robots.txt fetch failed, defaulting to allowed")
		r.mu.Lock()
		r.groups[host] = nil
		r.mu.Unlock()
		return nil
	}

	doc, err := robotstxt.FromBytes(body)
	if err != nil {
		log.Warn().Str("host", host).Err(err).Msg("robots.txt parse failed, defaulting to allowed")
		r.mu.Lock()
		r.groups[host] = nil
		r.mu.Unlock()
		return nil
	}

	group := doc.FindGroup(userAgent)
	r.mu.Lock()
	r.groups[host] = group
	r.mu.Unlock()
	return group
}
