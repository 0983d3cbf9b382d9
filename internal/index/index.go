// Package index implements the inverted index: postings, document
// frequencies and document lengths, plus the statistics ranking consumes.
package index

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
)

// Posting is one (doc, frequency, positions) entry for a term.
type Posting struct {
	DocID     string
	TermFreq  int
	Positions []int
}

// Stats summarises the state of the index.
type Stats struct {
	TotalDocuments   int
	UniqueTerms      int
	TotalPostings    int
	AverageDocLength float64
}

// blobVersion is bumped whenever the serialised layout changes; old blobs are
// not expected to deserialise under a new version (spec.md: "opaque,
// versioned blob ... re-index on format change").
const blobVersion = 1

// Index is the term -> postings inverted index. It is safe for concurrent
// use: Add takes an exclusive lock; Search and the statistics accessors take
// a shared lock so callers see a consistent snapshot.
type Index struct {
	mu sync.RWMutex

	postings   map[string][]Posting
	docFreq    map[string]int
	docLength  map[string]int
	minTermLen int
}

// New returns an empty Index. minTermLen mirrors the MIN_TERM_LENGTH config
// value; tokens shorter than it are defensively skipped during Add even
// though the text processor should never hand them over.
func New(minTermLen int) *Index {
	if minTermLen <= 0 {
		minTermLen = 2
	}
	return &Index{
		postings:   make(map[string][]Posting),
		docFreq:    make(map[string]int),
		docLength:  make(map[string]int),
		minTermLen: minTermLen,
	}
}

// Add indexes tokens under doc_id in a single pass. It is a no-op if doc_id
// is already known, matching the index's append-only, idempotent-on-doc_id
// contract.
func (idx *Index) Add(docID string, tokens []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, known := idx.docLength[docID]; known {
		return
	}
	idx.addLocked(docID, tokens)
}

// Rebuild replaces docID's postings with those derived from tokens,
// regardless of whether docID was previously indexed. This is the batch
// re-index path for content that has changed since its first crawl: Add is
// append-only and silently ignores a docID it already knows, so a changed
// page must go through Rebuild to have its postings and document length
// updated.
func (idx *Index) Rebuild(docID string, tokens []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(docID)
	idx.addLocked(docID, tokens)
}

// Delete removes docID's postings and document length entirely, the other
// half of the batch re-index path alongside Rebuild.
func (idx *Index) Delete(docID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(docID)
}

func (idx *Index) removeLocked(docID string) {
	if _, known := idx.docLength[docID]; !known {
		return
	}
	for term, postings := range idx.postings {
		kept := postings[:0]
		for _, p := range postings {
			if p.DocID != docID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(idx.postings, term)
			delete(idx.docFreq, term)
		} else {
			idx.postings[term] = kept
			idx.docFreq[term] = len(kept)
		}
	}
	delete(idx.docLength, docID)
}

func (idx *Index) addLocked(docID string, tokens []string) {
	positions := make(map[string][]int)
	for pos, tok := range tokens {
		if len(tok) < idx.minTermLen {
			continue
		}
		positions[tok] = append(positions[tok], pos)
	}

	for term, pos := range positions {
		idx.postings[term] = append(idx.postings[term], Posting{
			DocID:     docID,
			TermFreq:  len(pos),
			Positions: pos,
		})
		idx.docFreq[term]++
	}

	idx.docLength[docID] = len(tokens)
}

// Search returns, for each requested term, its posting list (empty, never
// nil-panicking, for unknown terms). Search never raises.
func (idx *Index) Search(terms []string) map[string][]Posting {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make(map[string][]Posting, len(terms))
	for _, term := range terms {
		results[term] = append(make([]Posting, 0, len(idx.postings[term])), idx.postings[term]...)
	}
	return results
}

// DocumentFrequency returns the number of distinct documents containing term.
func (idx *Index) DocumentFrequency(term string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docFreq[term]
}

// TermFrequency returns term's occurrence count in docID, 0 if absent.
func (idx *Index) TermFrequency(term, docID string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, p := range idx.postings[term] {
		if p.DocID == docID {
			return p.TermFreq
		}
	}
	return 0
}

// DocumentLength returns the indexed token count for docID, 0 if unknown.
func (idx *Index) DocumentLength(docID string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docLength[docID]
}

// TotalDocs returns the number of indexed documents.
func (idx *Index) TotalDocs() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docLength)
}

// Stats returns summary statistics over the current index state.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var totalPostings int
	for _, postings := range idx.postings {
		totalPostings += len(postings)
	}

	var totalLength int
	for _, l := range idx.docLength {
		totalLength += l
	}
	avg := 0.0
	if len(idx.docLength) > 0 {
		avg = float64(totalLength) / float64(len(idx.docLength))
	}

	return Stats{
		TotalDocuments:   len(idx.docLength),
		UniqueTerms:      len(idx.postings),
		TotalPostings:    totalPostings,
		AverageDocLength: avg,
	}
}

// snapshot is the gob-serialisable representation of an Index's state.
type snapshot struct {
	Version   int
	Postings  map[string][]Posting
	DocFreq   map[string]int
	DocLength map[string]int
}

// Serialise encodes the full index state to an opaque, versioned blob.
func (idx *Index) Serialise() ([]byte, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	snap := snapshot{
		Version:   blobVersion,
		Postings:  idx.postings,
		DocFreq:   idx.docFreq,
		DocLength: idx.docLength,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("serialise index: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialise replaces the index's state with the blob's contents.
// Compatibility across blobVersion values is not promised; a version
// mismatch is treated as an invariant violation and returns an error rather
// than loading partial state.
func (idx *Index) Deserialise(blob []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&snap); err != nil {
		return fmt.Errorf("deserialise index: %w", err)
	}
	if snap.Version != blobVersion {
		return fmt.Errorf("deserialise index: unsupported blob version %d (want %d)", snap.Version, blobVersion)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.postings = snap.Postings
	idx.docFreq = snap.DocFreq
	idx.docLength = snap.DocLength
	if idx.postings == nil {
		idx.postings = make(map[string][]Posting)
	}
	if idx.docFreq == nil {
		idx.docFreq = make(map[string]int)
	}
	if idx.docLength == nil {
		idx.docLength = make(map[string]int)
	}
	return nil
}
