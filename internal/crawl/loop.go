// Package crawl wires the frontier, duplicate detector, content extractor,
// text processor and inverted index into a running crawl loop, modeled on
// the teacher's FetchManager: a fixed pool of worker goroutines pulling work
// from a shared source until told to stop.
package crawl

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iParadigms/walker/internal/collab"
	"github.com/iParadigms/walker/internal/dedupe"
	"github.com/iParadigms/walker/internal/extractor"
	"github.com/iParadigms/walker/internal/frontier"
	"github.com/iParadigms/walker/internal/index"
	"github.com/iParadigms/walker/internal/rank/pagerank"
	"github.com/iParadigms/walker/internal/textproc"
)

// Handler is called once per page that was fetched with a 2xx status, was
// not a URL or near-content duplicate, and was added to the index. It is
// never called on a transport failure or a non-2xx response.
type Handler interface {
	HandlePage(docID string, record extractor.Record, tokens []string)
}

// Loop is the cooperative crawl loop: up to NumWorkers concurrent fetches,
// each yielding at every collaborator round-trip, with non-suspending work
// (text processing, duplicate detection, indexing) run inline on the
// fetching goroutine.
type Loop struct {
	Frontier  *frontier.Frontier
	Fetcher   collab.Fetcher
	Robots    collab.Robots
	Dedupe    *dedupe.Detector
	Index     *index.Index
	Graph     *pagerank.Graph
	Processor *textproc.Processor
	Handler   Handler

	UserAgent  string
	NumWorkers int

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewLoop returns a Loop ready to Start, defaulting NumWorkers to 10 (the
// spec's MAX_CRAWL_THREADS default) if unset.
func NewLoop(f *frontier.Frontier, fetcher collab.Fetcher, robots collab.Robots, dd *dedupe.Detector, idx *index.Index, graph *pagerank.Graph, proc *textproc.Processor, h Handler) *Loop {
	return &Loop{
		Frontier:   f,
		Fetcher:    fetcher,
		Robots:     robots,
		Dedupe:     dd,
		Index:      idx,
		Graph:      graph,
		Processor:  proc,
		Handler:    h,
		NumWorkers: 10,
		quit:       make(chan struct{}),
	}
}

// Start launches NumWorkers goroutines that each loop calling crawlOne until
// Stop is called. An exhausted frontier does not end a worker: it sleeps
// briefly and polls the frontier again. Start blocks until every worker has
// returned.
func (l *Loop) Start() {
	if l.NumWorkers <= 0 {
		l.NumWorkers = 10
	}
	log.Info().Int("workers", l.NumWorkers).Msg("starting crawl loop")

	for i := 0; i < l.NumWorkers; i++ {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.worker()
		}()
	}
	l.wg.Wait()
}

// Stop signals every worker to finish its current fetch and return. It does
// not block; callers wanting a synchronous stop should Start in a goroutine
// and join on it themselves, matching the teacher's Start/Stop split.
func (l *Loop) Stop() {
	close(l.quit)
}

func (l *Loop) worker() {
	for {
		select {
		case <-l.quit:
			return
		default:
		}

		rawURL, ok := l.Frontier.Next()
		if !ok {
			// Frontier has nothing ready right now; back off briefly rather
			// than busy-spinning, same tolerance as the teacher's
			// crawlNewHost "nothing to crawl" path.
			time.Sleep(100 * time.Millisecond)
			select {
			case <-l.quit:
				return
			default:
				continue
			}
		}

		l.crawlOne(rawURL)
	}
}

// crawlOne performs one fetch-to-index pass: robots check, duplicate check,
// fetch, extraction, text processing, index add, link discovery. Any
// per-URL transient failure is logged and the URL is dropped from the
// current pass, per the error propagation policy.
func (l *Loop) crawlOne(rawURL string) {
	if l.Robots != nil && !l.Robots.CanFetch(rawURL, l.UserAgent) {
		log.Debug().Str("url", rawURL).Msg("skipped: disallowed by robots.txt")
		return
	}

	dup, err := l.Dedupe.IsDuplicateURL(rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("duplicate url check failed to canonicalise url")
	}
	if dup {
		return
	}

	status, body, err := l.Fetcher.Fetch(rawURL)
	if err != nil {
		log.Error().Err(err).Str("url", rawURL).Msg("fetch failed")
		return
	}
	if status < 200 || status >= 300 {
		log.Warn().Int("status", status).Str("url", rawURL).Msg("non-2xx response, dropping")
		return
	}

	record, err := extractor.Extract(string(body), rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("best-effort extraction failed")
	}

	if l.Dedupe.IsDuplicateContent(record.BodyText) {
		log.Debug().Str("url", rawURL).Msg("skipped: near-duplicate content")
		return
	}

	headingTexts := make([]string, len(record.Headings))
	for i, h := range record.Headings {
		headingTexts[i] = h.Text
	}

	zones := map[textproc.Zone]string{
		textproc.ZoneTitle:    record.Title,
		textproc.ZoneHeadings: strings.Join(headingTexts, " "),
		textproc.ZoneBody:     record.BodyText,
		textproc.ZoneMeta:     record.MetaDescription,
		textproc.ZoneLinks:    record.LinksText,
	}
	features := l.Processor.Features(zones)

	var allTokens []string
	for _, toks := range features {
		allTokens = append(allTokens, toks...)
	}

	docID := rawURL
	l.Index.Add(docID, allTokens)

	for _, link := range record.Links {
		l.Graph.AddLink(rawURL, link.URL)
		if _, err := l.Frontier.Add(link.URL, defaultPriority); err != nil {
			log.Warn().Err(err).Str("url", link.URL).Msg("frontier add degraded to local-only")
		}
	}

	if l.Handler != nil {
		l.Handler.HandlePage(docID, record, allTokens)
	}
}

const defaultPriority = 5

// Seed adds the given URLs to the frontier at the highest priority (0),
// matching how a crawl's initial seed set is typically favored over
// discovered links.
func (l *Loop) Seed(urls []string) error {
	for _, u := range urls {
		if _, err := l.Frontier.Add(u, 0); err != nil {
			return fmt.Errorf("seed %s: %w", u, err)
		}
	}
	return nil
}
