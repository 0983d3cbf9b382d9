package collab

import (
	"net"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// cachingDialer wraps net.Dial with an LRU cache of DNS resolutions, so a
// high fan-out crawl does not repeat the same lookups for every fetch off a
// given host within dnsCacheTTL. Failed resolutions are cached too, to avoid
// hammering a broken host's DNS on every retry.
type cachingDialer struct {
	cache *lru.Cache
	mu    sync.RWMutex
}

const dnsCacheTTL = 5 * time.Minute

type dnsEntry struct {
	addr     string
	err      error
	resolved time.Time
}

// newCachingDialer returns a dial function suitable for http.Transport.Dial,
// backed by an LRU cache of up to maxEntries host resolutions.
func newCachingDialer(maxEntries int) (func(network, addr string) (net.Conn, error), error) {
	cache, err := lru.New(maxEntries)
	if err != nil {
		return nil, err
	}
	d := &cachingDialer{cache: cache}
	return d.dial, nil
}

func (d *cachingDialer) dial(network, addr string) (net.Conn, error) {
	d.mu.RLock()
	if v, ok := d.cache.Get(addr); ok {
		entry := v.(dnsEntry)
		if time.Since(entry.resolved) < dnsCacheTTL {
			d.mu.RUnlock()
			if entry.err != nil {
				return nil, entry.err
			}
			return net.Dial(network, entry.addr)
		}
	}
	d.mu.RUnlock()
	return d.resolve(network, addr)
}

func (d *cachingDialer) resolve(network, addr string) (net.Conn, error) {
	conn, err := net.Dial(network, addr)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.cache.Add(addr, dnsEntry{err: err, resolved: time.Now()})
		return nil, err
	}
	d.cache.Add(addr, dnsEntry{addr: conn.RemoteAddr().String(), resolved: time.Now()})
	return conn, nil
}
