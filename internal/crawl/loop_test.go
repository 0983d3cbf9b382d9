package crawl

import (
	"testing"
	"time"

	"github.com/iParadigms/walker/internal/dedupe"
	"github.com/iParadigms/walker/internal/extractor"
	"github.com/iParadigms/walker/internal/frontier"
	"github.com/iParadigms/walker/internal/index"
	"github.com/iParadigms/walker/internal/rank/pagerank"
	"github.com/iParadigms/walker/internal/textproc"
)

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(rawURL string) (int, []byte, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return 404, nil, nil
	}
	return 200, []byte(body), nil
}

type allowAllRobots struct{}

func (allowAllRobots) CanFetch(string, string) bool                      { return true }
func (allowAllRobots) CrawlDelay(string, string) (time.Duration, bool) { return 0, false }

type recordingHandler struct {
	seen []string
}

func (h *recordingHandler) HandlePage(docID string, _ extractor.Record, _ []string) {
	h.seen = append(h.seen, docID)
}

func TestCrawlOneIndexesPageAndDiscoversLinks(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://example.com/a": `<html><head><title>Page A</title></head><body><p>hello world</p><a href="/b">b</a></body></html>`,
	}}

	f := frontier.New(time.Millisecond, nil)
	loop := NewLoop(f, fetcher, allowAllRobots{}, dedupe.New(nil, 0), index.New(2), pagerank.New(pagerank.DefaultConfig()), textproc.New(""), &recordingHandler{})
	loop.UserAgent = "TestBot/1.0"

	loop.crawlOne("http://example.com/a")

	if loop.Index.TotalDocs() != 1 {
		t.Fatalf("TotalDocs = %d, want 1", loop.Index.TotalDocs())
	}
	if f.Size() != 1 {
		t.Errorf("frontier size after discovering one link = %d, want 1", f.Size())
	}
}

func TestCrawlOneSkipsDisallowedByRobots(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://example.com/a": "<html><body>hi</body></html>",
	}}
	f := frontier.New(time.Millisecond, nil)
	loop := NewLoop(f, fetcher, disallowAllRobots{}, dedupe.New(nil, 0), index.New(2), pagerank.New(pagerank.DefaultConfig()), textproc.New(""), nil)

	loop.crawlOne("http://example.com/a")

	if loop.Index.TotalDocs() != 0 {
		t.Errorf("robots-disallowed page should not be indexed, TotalDocs = %d", loop.Index.TotalDocs())
	}
}

type disallowAllRobots struct{}

func (disallowAllRobots) CanFetch(string, string) bool                      { return false }
func (disallowAllRobots) CrawlDelay(string, string) (time.Duration, bool) { return 0, false }

func TestCrawlOneSkipsAlreadySeenURL(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://example.com/a": "<html><body>hi there world people stuff</body></html>",
	}}
	f := frontier.New(time.Millisecond, nil)
	handler := &recordingHandler{}
	loop := NewLoop(f, fetcher, allowAllRobots{}, dedupe.New(nil, 0), index.New(2), pagerank.New(pagerank.DefaultConfig()), textproc.New(""), handler)

	loop.crawlOne("http://example.com/a")
	loop.crawlOne("http://example.com/a")

	if len(handler.seen) != 1 {
		t.Errorf("handler called %d times, want 1 (second crawl should be caught by the duplicate-url check)", len(handler.seen))
	}
}

func TestSeedAddsURLsAtHighestPriority(t *testing.T) {
	f := frontier.New(time.Millisecond, nil)
	loop := NewLoop(f, &fakeFetcher{}, allowAllRobots{}, dedupe.New(nil, 0), index.New(2), pagerank.New(pagerank.DefaultConfig()), textproc.New(""), nil)

	if err := loop.Seed([]string{"http://example.com/", "http://example.com/other"}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if f.Size() != 2 {
		t.Errorf("frontier size after seeding = %d, want 2", f.Size())
	}
}
