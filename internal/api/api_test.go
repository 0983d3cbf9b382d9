package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iParadigms/walker/internal/index"
	"github.com/iParadigms/walker/internal/query"
	"github.com/iParadigms/walker/internal/rank"
	"github.com/iParadigms/walker/internal/rank/pagerank"
)

func defaultWeights() rank.Weights {
	return rank.Weights{ContentRelevance: 0.4, PageRank: 0.25, Freshness: 0.15, UserSignals: 0.1, TechnicalSEO: 0.1}
}

func newTestServer() *Server {
	idx := index.New(2)
	idx.Add("http://a.test/", []string{"cat", "sat", "mat"})
	idx.Add("http://b.test/", []string{"cat", "cat", "hat"})

	graph := pagerank.New(pagerank.DefaultConfig())
	graph.AddLink("http://a.test/", "http://b.test/")

	return NewServer(idx, graph, query.New(""), defaultWeights(), "test-cookie-key-0123456789abcdef")
}

func TestSearchReturnsRankedResults(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/search?q=mat", nil)
	w := httptest.NewRecorder()

	s.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ResultCount != 1 || resp.Results[0].DocID != "http://a.test/" {
		t.Errorf("resp = %+v, want one result for a.test", resp)
	}
}

func TestSearchEmptyQueryReturnsEmptyResultSet(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/search?q=", nil)
	w := httptest.NewRecorder()

	s.Routes().ServeHTTP(w, req)

	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ResultCount != 0 || len(resp.Results) != 0 {
		t.Errorf("expected empty result set for empty query, got %+v", resp)
	}
}

func TestSuggestReturnsPrefixMatches(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/suggest?q=mach", nil)
	w := httptest.NewRecorder()

	s.Routes().ServeHTTP(w, req)

	var resp map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp["suggestions"]) != 1 || resp["suggestions"][0] != "machine learning" {
		t.Errorf("suggestions = %v, want [machine learning]", resp["suggestions"])
	}
}
