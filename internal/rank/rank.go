// Package rank composes the sub-scores (TF-IDF, PageRank, freshness, user
// signals, technical SEO) into the final linear ranking score.
package rank

import "sort"

// Weights is the ranking mix; the five weights must sum to 1.0, enforced by
// walker.assertConfigInvariants at config load time rather than here.
type Weights struct {
	ContentRelevance float64
	PageRank         float64
	Freshness        float64
	UserSignals      float64
	TechnicalSEO     float64
}

// Signals bundles every collaborator-supplied sub-score for one candidate
// document. Freshness, UserSignals and TechnicalSEO default to 0 when a
// collaborator has no opinion, per spec.md's propagation policy.
type Signals struct {
	DocID        string
	TFIDF        float64
	PageRank     float64
	Freshness    float64
	UserSignals  float64
	TechnicalSEO float64
}

// Scored is one ranked result with its final score and, for debuggability,
// every sub-score that contributed to it (spec.md's resolution of the open
// question about ranker composability).
type Scored struct {
	DocID        string
	FinalScore   float64
	TFIDFNorm    float64
	PageRankNorm float64
	Freshness    float64
	UserSignals  float64
	TechnicalSEO float64
}

// Combine min-max normalises TFIDF and PageRank across candidates, then
// computes the weighted linear combination for each, returning results in
// descending final-score order (ties broken by ascending doc_id).
func Combine(candidates []Signals, w Weights) []Scored {
	if len(candidates) == 0 {
		return nil
	}

	tfidfMin, tfidfMax := candidates[0].TFIDF, candidates[0].TFIDF
	prMin, prMax := candidates[0].PageRank, candidates[0].PageRank
	for _, c := range candidates[1:] {
		if c.TFIDF < tfidfMin {
			tfidfMin = c.TFIDF
		}
		if c.TFIDF > tfidfMax {
			tfidfMax = c.TFIDF
		}
		if c.PageRank < prMin {
			prMin = c.PageRank
		}
		if c.PageRank > prMax {
			prMax = c.PageRank
		}
	}

	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		tfidfNorm := minMax(c.TFIDF, tfidfMin, tfidfMax)
		prNorm := minMax(c.PageRank, prMin, prMax)

		final := w.ContentRelevance*tfidfNorm +
			w.PageRank*prNorm +
			w.Freshness*c.Freshness +
			w.UserSignals*c.UserSignals +
			w.TechnicalSEO*c.TechnicalSEO

		out = append(out, Scored{
			DocID:        c.DocID,
			FinalScore:   final,
			TFIDFNorm:    tfidfNorm,
			PageRankNorm: prNorm,
			Freshness:    c.Freshness,
			UserSignals:  c.UserSignals,
			TechnicalSEO: c.TechnicalSEO,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}

// minMax scales v into [0,1] given the candidate set's [lo,hi] range. A
// degenerate (lo == hi) range scales to 0 for every candidate rather than
// dividing by zero.
func minMax(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}
