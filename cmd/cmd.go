/*
Package cmd provides the walker search core's command-line entrypoints:
crawl (run the crawl loop against seed URLs), index (inspect a persisted
index blob), query (parse and rank a one-off query against a persisted
index), and rank (recompute PageRank over a persisted link graph).

cmd.Execute() blocks until the program completes (usually by being shut down
via SIGINT for the long-running crawl command).
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iParadigms/walker"
	"github.com/iParadigms/walker/internal/collab"
	"github.com/iParadigms/walker/internal/collab/cassandra"
	"github.com/iParadigms/walker/internal/crawl"
	"github.com/iParadigms/walker/internal/dedupe"
	"github.com/iParadigms/walker/internal/frontier"
	"github.com/iParadigms/walker/internal/index"
	"github.com/iParadigms/walker/internal/query"
	"github.com/iParadigms/walker/internal/rank"
	"github.com/iParadigms/walker/internal/rank/pagerank"
	"github.com/iParadigms/walker/internal/rank/tfidf"
	"github.com/iParadigms/walker/internal/textproc"
)

var config string

// Execute runs the command specified by the command line.
func Execute() {
	rootCmd.Execute()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func initCommand() {
	if config != "" {
		if err := walker.ReadConfigFile(config); err != nil {
			fatalf("failed to read config file %s: %v", config, err)
		}
	}
}

var rootCmd = &cobra.Command{
	Use: "walker",
}

var outputDir string

func init() {
	rootCmd.PersistentFlags().StringVarP(&config, "config", "c", "", "path to a config file to load")
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(schemaCmd)
	queryCmd.Flags().StringVarP(&queryText, "q", "q", "", "the query text")
	crawlCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "if set, also write each crawled page's extracted record as JSON under this directory")
}

const (
	indexBlobPath    = "index.blob"
	pagerankBlobPath = "pagerank.blob"
)

func openStore() *cassandra.Store {
	store, err := cassandra.NewStore()
	if err != nil {
		fatalf("failed to open cassandra store: %v", err)
	}
	return store
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "create the cassandra schema this module depends on",
	Run: func(_ *cobra.Command, _ []string) {
		initCommand()
		store := openStore()
		defer store.Close()
		if err := store.CreateSchema(); err != nil {
			fatalf("failed to create schema: %v", err)
		}
	},
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [seed URLs...]",
	Short: "run the crawl loop against a set of seed URLs",
	Run: func(_ *cobra.Command, args []string) {
		initCommand()
		if len(args) == 0 {
			fatalf("crawl requires at least one seed URL")
		}

		store := openStore()
		defer store.Close()
		if err := store.CreateSchema(); err != nil {
			fatalf("failed to create schema: %v", err)
		}

		timeout, err := time.ParseDuration(walker.Config.RequestTimeout)
		if err != nil {
			fatalf("invalid request_timeout: %v", err)
		}
		fetcher := collab.NewHTTPFetcher(walker.Config.UserAgent, timeout)
		robots := collab.NewRobotsOracle(fetcher)

		delay := time.Duration(walker.Config.Frontier.CrawlDelay * float64(time.Second))
		f := frontier.New(delay, store)
		idx := index.New(walker.Config.Index.MinTermLength)
		graph := pagerank.New(pagerank.DefaultConfig())
		dd := dedupe.New(store, walker.Config.Rank.DuplicateSimilarityThreshold)
		proc := textproc.New("")

		var handler crawl.Handler
		if outputDir != "" {
			handler = &crawl.FileHandler{Root: outputDir}
		}
		loop := crawl.NewLoop(f, fetcher, robots, dd, idx, graph, proc, handler)
		loop.UserAgent = walker.Config.UserAgent
		loop.NumWorkers = walker.Config.Frontier.MaxCrawlThreads

		if err := loop.Seed(args); err != nil {
			fatalf("failed to seed frontier: %v", err)
		}

		done := make(chan struct{})
		go func() {
			loop.Start()
			close(done)
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT)
		select {
		case <-sig:
			loop.Stop()
			<-done
		case <-done:
		}

		persist(idx, graph, store)
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "print statistics for the persisted index",
	Run: func(_ *cobra.Command, _ []string) {
		initCommand()
		store := openStore()
		defer store.Close()

		blob, err := store.Get(indexBlobPath)
		if err != nil {
			fatalf("failed to load index blob: %v", err)
		}
		idx := index.New(walker.Config.Index.MinTermLength)
		if err := idx.Deserialise(blob); err != nil {
			fatalf("index blob invariant violation: %v", err)
		}

		stats := idx.Stats()
		fmt.Printf("documents:      %d\n", stats.TotalDocuments)
		fmt.Printf("unique terms:   %d\n", stats.UniqueTerms)
		fmt.Printf("postings:       %d\n", stats.TotalPostings)
		fmt.Printf("avg doc length: %.2f\n", stats.AverageDocLength)
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "recompute global PageRank over the persisted link graph",
	Run: func(_ *cobra.Command, _ []string) {
		initCommand()
		store := openStore()
		defer store.Close()

		blob, err := store.Get(pagerankBlobPath)
		if err != nil {
			fatalf("failed to load pagerank blob: %v", err)
		}
		graph := pagerank.New(pagerank.DefaultConfig())
		if _, err := graph.Deserialise(blob); err != nil {
			fatalf("pagerank blob invariant violation: %v", err)
		}

		scores := graph.Compute()
		newBlob, err := graph.Serialise(scores)
		if err != nil {
			fatalf("failed to serialise recomputed scores: %v", err)
		}
		if err := store.Put(pagerankBlobPath, newBlob); err != nil {
			fatalf("failed to persist recomputed scores: %v", err)
		}

		for _, u := range scores.Top(10) {
			fmt.Printf("%.6f  %s\n", scores.Score(u), u)
		}
	},
}

var queryText string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "parse and rank a one-off query against the persisted index",
	Run: func(_ *cobra.Command, _ []string) {
		initCommand()
		if queryText == "" {
			fatalf("query requires --q")
		}

		store := openStore()
		defer store.Close()

		idxBlob, err := store.Get(indexBlobPath)
		if err != nil {
			fatalf("failed to load index blob: %v", err)
		}
		idx := index.New(walker.Config.Index.MinTermLength)
		if err := idx.Deserialise(idxBlob); err != nil {
			fatalf("index blob invariant violation: %v", err)
		}

		var scores pagerank.Scores
		if prBlob, err := store.Get(pagerankBlobPath); err == nil {
			graph := pagerank.New(pagerank.DefaultConfig())
			scores, _ = graph.Deserialise(prBlob)
		}

		parser := query.New("")
		parsed := parser.Parse(queryText)
		terms := append([]string(nil), parsed.ProcessedTerms...)
		for _, phrase := range parsed.Phrases {
			terms = append(terms, phrase...)
		}

		scorer := tfidf.New(idx, tfidf.LogNormalized)
		candidates := tfidf.Candidates(idx, terms)

		signals := make([]rank.Signals, 0, len(candidates))
		for _, docID := range candidates {
			signals = append(signals, rank.Signals{
				DocID:    docID,
				TFIDF:    scorer.ScoreDocument(terms, docID),
				PageRank: scores.Score(docID),
			})
		}

		weights := rank.Weights{
			ContentRelevance: walker.Config.Rank.ContentRelevanceWeight,
			PageRank:         walker.Config.Rank.PageRankWeight,
			Freshness:        walker.Config.Rank.FreshnessWeight,
			UserSignals:      walker.Config.Rank.UserSignalsWeight,
			TechnicalSEO:     walker.Config.Rank.TechnicalSEOWeight,
		}
		for _, r := range rank.Combine(signals, weights) {
			fmt.Printf("%.6f  %s\n", r.FinalScore, r.DocID)
		}
	},
}

func persist(idx *index.Index, graph *pagerank.Graph, store *cassandra.Store) {
	idxBlob, err := idx.Serialise()
	if err != nil {
		log.Error().Err(err).Msg("failed to serialise index")
		return
	}
	if err := store.Put(indexBlobPath, idxBlob); err != nil {
		log.Error().Err(err).Msg("failed to persist index blob")
	}

	scores := graph.Compute()
	prBlob, err := graph.Serialise(scores)
	if err != nil {
		log.Error().Err(err).Msg("failed to serialise pagerank graph")
		return
	}
	if err := store.Put(pagerankBlobPath, prBlob); err != nil {
		log.Error().Err(err).Msg("failed to persist pagerank blob")
	}
}
