// Package tfidf scores documents against a query using term-frequency /
// inverse-document-frequency statistics drawn from an inverted index.
package tfidf

import (
	"math"
	"sort"

	"github.com/iParadigms/walker/internal/index"
)

// Method selects the term-frequency normalisation variant.
type Method string

// The three TF variants the scorer supports.
const (
	Raw              Method = "raw"
	LogNormalized    Method = "log_normalized"
	DoubleNormalized Method = "double_normalized"
)

// Scorer computes TF-IDF scores against an inverted index.
type Scorer struct {
	Index  Index
	Method Method
}

// Index is the subset of *index.Index the scorer depends on.
type Index interface {
	DocumentFrequency(term string) int
	TermFrequency(term, docID string) int
	DocumentLength(docID string) int
	TotalDocs() int
}

// Searcher is satisfied by *index.Index.
type Searcher interface {
	Search(terms []string) map[string][]index.Posting
}

// Candidates returns the union of documents referencing at least one of
// queryTerms, i.e. the candidate set scoring should iterate over.
func Candidates(searcher Searcher, queryTerms []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, postings := range searcher.Search(queryTerms) {
		for _, p := range postings {
			if !seen[p.DocID] {
				seen[p.DocID] = true
				out = append(out, p.DocID)
			}
		}
	}
	return out
}

// New returns a Scorer over idx using the given method ("" selects the
// spec default, log_normalized).
func New(idx Index, method Method) *Scorer {
	if method == "" {
		method = LogNormalized
	}
	return &Scorer{Index: idx, Method: method}
}

// TF computes the term-frequency score for the configured method.
func (s *Scorer) TF(termFreq, docLength int) float64 {
	if termFreq == 0 {
		return 0
	}
	switch s.Method {
	case Raw:
		return float64(termFreq)
	case DoubleNormalized:
		if docLength == 0 {
			return 0
		}
		return 0.5 + 0.5*float64(termFreq)/float64(docLength)
	default: // LogNormalized
		return 1 + math.Log(float64(termFreq))
	}
}

// IDF computes the inverse document frequency for term; 0 if the term never
// occurs.
func (s *Scorer) IDF(term string) float64 {
	df := s.Index.DocumentFrequency(term)
	if df == 0 {
		return 0
	}
	total := s.Index.TotalDocs()
	return math.Log(float64(total) / float64(df))
}

// TermScore is tf_variant(tf, doc_length) * idf(term); 0 if tf == 0.
func (s *Scorer) TermScore(term, docID string) float64 {
	tf := s.Index.TermFrequency(term, docID)
	if tf == 0 {
		return 0
	}
	return s.TF(tf, s.Index.DocumentLength(docID)) * s.IDF(term)
}

// ScoreDocument sums per-term scores over the query term multiset and
// divides by the query length so longer queries don't inflate scores. An
// empty query scores 0.
func (s *Scorer) ScoreDocument(queryTerms []string, docID string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	var total float64
	for _, term := range queryTerms {
		total += s.TermScore(term, docID)
	}
	return total / float64(len(queryTerms))
}

// Scored is one ranked result.
type Scored struct {
	DocID string
	Score float64
}

// ScoreDocuments scores every candidate document and returns them in
// descending score order (ties broken by ascending doc_id). Documents with
// zero score are dropped.
func (s *Scorer) ScoreDocuments(queryTerms []string, candidates []string) []Scored {
	var out []Scored
	for _, docID := range candidates {
		score := s.ScoreDocument(queryTerms, docID)
		if score > 0 {
			out = append(out, Scored{DocID: docID, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}
