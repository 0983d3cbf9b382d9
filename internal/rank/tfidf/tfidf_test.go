package tfidf

import (
	"math"
	"testing"

	"github.com/iParadigms/walker/internal/index"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScenarioCatMat(t *testing.T) {
	idx := index.New(2)
	idx.Add("A", []string{"cat", "sat", "mat"})
	idx.Add("B", []string{"cat", "cat", "hat"})

	scorer := New(idx, LogNormalized)

	if s := scorer.ScoreDocument([]string{"cat"}, "A"); !approxEqual(s, 0) {
		t.Errorf("score(A, [cat]) = %v, want 0", s)
	}
	if s := scorer.ScoreDocument([]string{"cat"}, "B"); !approxEqual(s, 0) {
		t.Errorf("score(B, [cat]) = %v, want 0", s)
	}

	if s := scorer.ScoreDocument([]string{"mat"}, "A"); !approxEqual(s, math.Log(2)) {
		t.Errorf("score(A, [mat]) = %v, want %v", s, math.Log(2))
	}
	if s := scorer.ScoreDocument([]string{"mat"}, "B"); !approxEqual(s, 0) {
		t.Errorf("score(B, [mat]) = %v, want 0", s)
	}

	candidates := Candidates(idx, []string{"mat"})
	ranked := scorer.ScoreDocuments([]string{"mat"}, candidates)
	if len(ranked) != 1 || ranked[0].DocID != "A" {
		t.Fatalf("ranked = %+v, want only A", ranked)
	}
}

func TestTFVariants(t *testing.T) {
	idx := index.New(2)
	idx.Add("A", []string{"cat", "cat", "cat", "dog"})

	raw := New(idx, Raw)
	if tf := raw.TF(3, 4); tf != 3 {
		t.Errorf("raw TF = %v, want 3", tf)
	}

	logn := New(idx, LogNormalized)
	if tf := logn.TF(1, 4); tf != 1 {
		t.Errorf("log_normalized TF(1) = %v, want 1", tf)
	}

	dbl := New(idx, DoubleNormalized)
	if tf := dbl.TF(3, 4); !approxEqual(tf, 0.5+0.5*3.0/4.0) {
		t.Errorf("double_normalized TF = %v, want %v", tf, 0.5+0.5*3.0/4.0)
	}
	if tf := dbl.TF(0, 4); tf != 0 {
		t.Errorf("TF with termFreq=0 must be 0, got %v", tf)
	}
}

func TestEmptyQueryScoresZero(t *testing.T) {
	idx := index.New(2)
	idx.Add("A", []string{"cat"})
	scorer := New(idx, "")
	if s := scorer.ScoreDocument(nil, "A"); s != 0 {
		t.Errorf("empty query should score 0, got %v", s)
	}
}

func TestIDFZeroWhenAbsent(t *testing.T) {
	idx := index.New(2)
	idx.Add("A", []string{"cat"})
	scorer := New(idx, "")
	if idf := scorer.IDF("nonexistent"); idf != 0 {
		t.Errorf("IDF for absent term = %v, want 0", idf)
	}
}
