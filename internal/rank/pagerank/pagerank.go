// Package pagerank computes global and personalised PageRank scores over the
// crawled link graph, using a dense-array adjacency representation and
// matrix-free power iteration so memory stays O(|E|).
package pagerank

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"sync"
)

// Config holds the power-iteration parameters.
type Config struct {
	Damping             float64
	PersonalizedDamping float64
	MaxIterations       int
	Tolerance           float64
}

// DefaultConfig matches the spec's defaults: alpha=0.85, alpha_p=0.15,
// max_iterations=50, tolerance=1e-6.
func DefaultConfig() Config {
	return Config{
		Damping:             0.85,
		PersonalizedDamping: 0.15,
		MaxIterations:       50,
		Tolerance:           1e-6,
	}
}

// Graph is the directed link graph, stored as dense-array out/in adjacency
// keyed by interned integer ids, per the spec's recommended redesign over a
// hash-map-of-sets representation.
type Graph struct {
	mu sync.Mutex

	urlToID map[string]int
	idToURL []string

	out [][]int // out[i] = ids that i links to
	in  [][]int // in[i] = ids that link to i

	cfg Config
}

// New returns an empty Graph using cfg (the zero Config selects
// DefaultConfig's values).
func New(cfg Config) *Graph {
	if cfg.Damping == 0 {
		cfg = DefaultConfig()
	}
	return &Graph{
		urlToID: make(map[string]int),
		cfg:     cfg,
	}
}

func (g *Graph) idFor(url string) int {
	if id, ok := g.urlToID[url]; ok {
		return id
	}
	id := len(g.idToURL)
	g.urlToID[url] = id
	g.idToURL = append(g.idToURL, url)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

// AddLink records a directed edge source -> target, assigning dense ids on
// first sight. Self-loops are discarded.
func (g *Graph) AddLink(source, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.idFor(source)
	tID := g.idFor(target)
	if s == tID {
		return
	}
	if !containsInt(g.out[s], tID) {
		g.out[s] = append(g.out[s], tID)
	}
	if !containsInt(g.in[tID], s) {
		g.in[tID] = append(g.in[tID], s)
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// snapshot is an immutable copy of the graph taken before a run, so that a
// concurrent AddLink during iteration does not perturb the result; it is
// simply picked up by the graph's next run.
type snapshot struct {
	n       int
	urlToID map[string]int
	idToURL []string
	out     [][]int
	in      [][]int
}

func (g *Graph) snapshot() snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([][]int, len(g.out))
	in := make([][]int, len(g.in))
	for i := range g.out {
		out[i] = append([]int(nil), g.out[i]...)
		in[i] = append([]int(nil), g.in[i]...)
	}
	urlToID := make(map[string]int, len(g.urlToID))
	for k, v := range g.urlToID {
		urlToID[k] = v
	}
	return snapshot{
		n:       len(g.idToURL),
		urlToID: urlToID,
		idToURL: append([]string(nil), g.idToURL...),
		out:     out,
		in:      in,
	}
}

// Scores is the immutable result of a PageRank run, keyed by canonical URL.
type Scores struct {
	byURL map[string]float64
}

// Score returns url's score, 0 if unknown.
func (s Scores) Score(url string) float64 {
	if s.byURL == nil {
		return 0
	}
	return s.byURL[url]
}

// topEntry is used by Top's internal sort.
type topEntry struct {
	url   string
	score float64
}

// Top returns the n highest-scoring urls, descending by score.
func (s Scores) Top(n int) []string {
	entries := make([]topEntry, 0, len(s.byURL))
	for url, score := range s.byURL {
		entries = append(entries, topEntry{url, score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].url < entries[j].url
	})
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = entries[i].url
	}
	return out
}

// Compute runs global power iteration over the current graph snapshot and
// returns the converged scores.
func (g *Graph) Compute() Scores {
	snap := g.snapshot()
	if snap.n == 0 {
		return Scores{byURL: map[string]float64{}}
	}

	n := snap.n
	scores := uniform(n)

	for iter := 0; iter < g.cfg.MaxIterations; iter++ {
		next := iterate(snap, scores, g.cfg.Damping, uniform(n))
		if l1Diff(scores, next) < g.cfg.Tolerance {
			scores = next
			break
		}
		scores = next
	}

	return toScores(snap, scores)
}

// PersonalizedCompute runs personalised power iteration seeded uniformly on
// seedURLs. URLs absent from the graph are dropped from the seed set; if
// none remain, an empty result is returned.
func (g *Graph) PersonalizedCompute(seedURLs []string) Scores {
	snap := g.snapshot()
	if snap.n == 0 {
		return Scores{byURL: map[string]float64{}}
	}

	var seedIDs []int
	for _, url := range seedURLs {
		if id, ok := snap.urlToID[url]; ok {
			seedIDs = append(seedIDs, id)
		}
	}
	if len(seedIDs) == 0 {
		return Scores{byURL: map[string]float64{}}
	}

	personalization := make([]float64, snap.n)
	p := 1.0 / float64(len(seedIDs))
	for _, id := range seedIDs {
		personalization[id] = p
	}

	scores := append([]float64(nil), personalization...)
	alphaP := g.cfg.PersonalizedDamping

	for iter := 0; iter < g.cfg.MaxIterations; iter++ {
		mv := matVec(snap, scores)
		next := make([]float64, snap.n)
		for i := range next {
			next[i] = (1-alphaP)*mv[i] + alphaP*personalization[i]
		}
		diff := l1Diff(scores, next)
		scores = next
		if diff < g.cfg.Tolerance {
			break
		}
	}

	return toScores(snap, scores)
}

// Stats summarises graph structure.
type Stats struct {
	NodeCount       int
	EdgeCount       int
	MeanOutDegree   float64
	DanglingNodes   int
	NoIncomingNodes int
	Density         float64
}

// Stats computes graph statistics over the current state.
func (g *Graph) Stats() Stats {
	snap := g.snapshot()
	n := snap.n
	var edges int
	var dangling int
	var noIncoming int
	for i := 0; i < n; i++ {
		edges += len(snap.out[i])
		if len(snap.out[i]) == 0 {
			dangling++
		}
		if len(snap.in[i]) == 0 {
			noIncoming++
		}
	}
	mean := 0.0
	density := 0.0
	if n > 0 {
		mean = float64(edges) / float64(n)
		density = float64(edges) / float64(n*n)
	}
	return Stats{
		NodeCount:       n,
		EdgeCount:       edges,
		MeanOutDegree:   mean,
		DanglingNodes:   dangling,
		NoIncomingNodes: noIncoming,
		Density:         density,
	}
}

func uniform(n int) []float64 {
	v := make([]float64, n)
	u := 1.0 / float64(n)
	for i := range v {
		v[i] = u
	}
	return v
}

// matVec computes M*s where M is the column-stochastic transition matrix
// implied by snap's adjacency: for non-dangling column j, mass 1/|out(j)| is
// distributed to each out-neighbour; for dangling j, mass is distributed
// uniformly over all n nodes. This is computed by iterating edges, never
// materialising the n x n matrix.
func matVec(snap snapshot, s []float64) []float64 {
	n := snap.n
	out := make([]float64, n)

	var danglingMass float64
	for j := 0; j < n; j++ {
		if len(snap.out[j]) == 0 {
			danglingMass += s[j]
			continue
		}
		share := s[j] / float64(len(snap.out[j]))
		for _, i := range snap.out[j] {
			out[i] += share
		}
	}

	if danglingMass > 0 {
		perNode := danglingMass / float64(n)
		for i := range out {
			out[i] += perNode
		}
	}
	return out
}

// iterate computes one global power-iteration step:
// s' = alpha*M*s + (1-alpha)/n * 1.
func iterate(snap snapshot, s []float64, alpha float64, _ []float64) []float64 {
	n := snap.n
	mv := matVec(snap, s)
	randomJump := (1 - alpha) / float64(n)
	next := make([]float64, n)
	for i := range next {
		next[i] = alpha*mv[i] + randomJump
	}
	return next
}

func l1Diff(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

func toScores(snap snapshot, s []float64) Scores {
	byURL := make(map[string]float64, snap.n)
	for id, url := range snap.idToURL {
		byURL[url] = s[id]
	}
	return Scores{byURL: byURL}
}

// blobVersion is bumped whenever the serialised layout changes, mirroring
// internal/index's versioned-blob contract.
const blobVersion = 1

// blob is the gob-serialisable representation of a Graph's state plus the
// last computed global scores, matching the persisted-artefact shape
// {scores, url_to_id, id_to_url, out_edges, in_edges}.
type blob struct {
	Version int
	URLToID map[string]int
	IDToURL []string
	Out     [][]int
	In      [][]int
	Scores  map[string]float64
}

// Serialise encodes the graph's structure and last-computed global scores to
// an opaque, versioned blob.
func (g *Graph) Serialise(scores Scores) ([]byte, error) {
	snap := g.snapshot()

	b := blob{
		Version: blobVersion,
		URLToID: snap.urlToID,
		IDToURL: snap.idToURL,
		Out:     snap.out,
		In:      snap.in,
		Scores:  scores.byURL,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("serialise pagerank graph: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialise replaces the graph's state from blob and returns the
// persisted scores. A version mismatch is an invariant violation: graph
// consistency broken on load is fatal per the error taxonomy, so this
// returns an error rather than loading partial state.
func (g *Graph) Deserialise(data []byte) (Scores, error) {
	var b blob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return Scores{}, fmt.Errorf("deserialise pagerank graph: %w", err)
	}
	if b.Version != blobVersion {
		return Scores{}, fmt.Errorf("deserialise pagerank graph: unsupported blob version %d (want %d)", b.Version, blobVersion)
	}

	g.mu.Lock()
	g.urlToID = b.URLToID
	g.idToURL = b.IDToURL
	g.out = b.Out
	g.in = b.In
	if g.urlToID == nil {
		g.urlToID = make(map[string]int)
	}
	g.mu.Unlock()

	return Scores{byURL: b.Scores}, nil
}
