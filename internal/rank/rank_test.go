package rank

import "testing"

func defaultWeights() Weights {
	return Weights{
		ContentRelevance: 0.4,
		PageRank:         0.25,
		Freshness:        0.15,
		UserSignals:      0.1,
		TechnicalSEO:     0.1,
	}
}

func TestCombineOrdersByFinalScoreDescending(t *testing.T) {
	candidates := []Signals{
		{DocID: "low", TFIDF: 1, PageRank: 0.1},
		{DocID: "high", TFIDF: 5, PageRank: 0.9},
	}
	results := Combine(candidates, defaultWeights())

	if len(results) != 2 || results[0].DocID != "high" || results[1].DocID != "low" {
		t.Fatalf("results = %+v, want high before low", results)
	}
}

func TestCombineNormalizesToUnitRange(t *testing.T) {
	candidates := []Signals{
		{DocID: "a", TFIDF: 0, PageRank: 0},
		{DocID: "b", TFIDF: 10, PageRank: 1},
	}
	results := Combine(candidates, defaultWeights())

	byID := make(map[string]Scored, len(results))
	for _, r := range results {
		byID[r.DocID] = r
	}
	if byID["a"].TFIDFNorm != 0 || byID["b"].TFIDFNorm != 1 {
		t.Errorf("tfidf_norm = a:%v b:%v, want 0 and 1", byID["a"].TFIDFNorm, byID["b"].TFIDFNorm)
	}
}

func TestCombineDegenerateRangeScalesToZero(t *testing.T) {
	candidates := []Signals{
		{DocID: "a", TFIDF: 3, PageRank: 0.5},
		{DocID: "b", TFIDF: 3, PageRank: 0.5},
	}
	results := Combine(candidates, defaultWeights())
	for _, r := range results {
		if r.TFIDFNorm != 0 || r.PageRankNorm != 0 {
			t.Errorf("expected 0 normalised score for degenerate range, got %+v", r)
		}
	}
}

func TestCombineEmptyCandidatesYieldsNil(t *testing.T) {
	if got := Combine(nil, defaultWeights()); got != nil {
		t.Errorf("Combine(nil) = %v, want nil", got)
	}
}

func TestCombineFallsBackOnMissingCollaboratorSignals(t *testing.T) {
	candidates := []Signals{
		{DocID: "a", TFIDF: 1, PageRank: 0.5}, // Freshness/UserSignals/TechnicalSEO left at zero value
	}
	results := Combine(candidates, defaultWeights())
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Freshness != 0 || results[0].UserSignals != 0 || results[0].TechnicalSEO != 0 {
		t.Errorf("expected zero defaults for absent collaborator signals, got %+v", results[0])
	}
}
