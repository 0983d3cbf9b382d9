// Package frontier implements the priority- and politeness-aware URL queue
// that feeds the crawl loop.
package frontier

import (
	"container/heap"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// SeenSet abstracts the shared, cache-backed crawled-URL set described in
// spec.md's shared-cache collaborator (sadd/sismember). A cache-backed
// implementation persists the set across process restarts; a nil SeenSet
// keeps the frontier local-only. Errors from either method degrade the
// frontier to local-only authority for the rest of the process; they are
// never fatal.
type SeenSet interface {
	Contains(key string) (bool, error)
	Add(key string) error
}

type localSeenSet struct{}

func (localSeenSet) Contains(string) (bool, error) { return false, nil }
func (localSeenSet) Add(string) error               { return nil }

// entry is one item of the primary priority queue: (priority, enqueue time,
// canonical URL). Lower priority numbers are higher priority; ties break on
// earlier enqueue time, then lexicographic URL.
type entry struct {
	priority int
	enqueued time.Time
	url      string
	index    int // heap bookkeeping
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	if !h[i].enqueued.Equal(h[j].enqueued) {
		return h[i].enqueued.Before(h[j].enqueued)
	}
	return h[i].url < h[j].url
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *entryHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Now is overridable for deterministic tests.
var Now = time.Now

// Frontier is the priority- and politeness-aware URL queue described by the
// crawl frontier contract. It is safe for concurrent use: Add and Next may
// be called from multiple goroutines, matching the "single writer or
// mutex-protected" requirement on the primary queue.
type Frontier struct {
	mu sync.Mutex

	queue entryHeap
	seen  SeenSet

	localCrawled map[string]bool
	lastAccess   map[string]time.Time

	crawlDelay time.Duration
	hostDelay  map[string]time.Duration
}

// New returns an empty Frontier with the given default per-host crawl delay.
// seen may be nil to run local-only.
func New(crawlDelay time.Duration, seen SeenSet) *Frontier {
	if seen == nil {
		seen = localSeenSet{}
	}
	if crawlDelay <= 0 {
		crawlDelay = time.Second
	}
	return &Frontier{
		seen:         seen,
		localCrawled: make(map[string]bool),
		lastAccess:   make(map[string]time.Time),
		crawlDelay:   crawlDelay,
		hostDelay:    make(map[string]time.Duration),
	}
}

// SetHostDelay overrides the politeness delay for a host, e.g. from a
// robots.txt Crawl-delay directive. A zero duration resets to the default.
func (f *Frontier) SetHostDelay(host string, delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if delay <= 0 {
		delete(f.hostDelay, host)
		return
	}
	f.hostDelay[host] = delay
}

func (f *Frontier) delayFor(host string) time.Duration {
	if d, ok := f.hostDelay[host]; ok {
		return d
	}
	return f.crawlDelay
}

// Add inserts url with the given priority if it has not already been
// crawled. It returns whether the URL was accepted.
func (f *Frontier) Add(rawURL string, priority int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.localCrawled[rawURL] {
		return false, nil
	}
	if crawled, err := f.seen.Contains(rawURL); err == nil && crawled {
		// shared cache already knows this URL was crawled; mirror locally
		// so we don't round-trip to the cache again for it.
		f.localCrawled[rawURL] = true
		return false, nil
	}

	heap.Push(&f.queue, &entry{priority: priority, enqueued: Now(), url: rawURL})
	return true, nil
}

// politenessHost returns the grouping key used for per-host politeness:
// the eTLD+1 when determinable, falling back to the raw host.
func politenessHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := u.Hostname()
	if dom, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return dom
	}
	return host
}

// Next returns the next URL whose host politeness delay has elapsed, or
// ("", false) if the ready frontier is exhausted. Entries whose host is not
// yet ready are re-deferred with an updated timestamp and the search
// continues with the next candidate.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := Now()
	attempts := f.queue.Len()
	for i := 0; i < attempts && f.queue.Len() > 0; i++ {
		e := heap.Pop(&f.queue).(*entry)
		host := politenessHost(e.url)
		delay := f.delayFor(host)
		last, ok := f.lastAccess[host]

		if !ok || now.Sub(last) >= delay {
			f.lastAccess[host] = now
			f.localCrawled[e.url] = true
			// Shared-cache errors here downgrade to local-only state; the
			// URL has already been committed to the local crawled set so
			// it still won't be returned again by this process.
			_ = f.seen.Add(e.url)
			return e.url, true
		}

		e.enqueued = last.Add(delay)
		heap.Push(&f.queue, e)
	}
	return "", false
}

// Empty reports whether the primary queue currently holds no entries.
func (f *Frontier) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len() == 0
}

// Size returns the number of entries currently queued.
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}
