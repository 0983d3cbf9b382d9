// Package api exposes the query operation over HTTP, grounded on the
// teacher's console package: gorilla/mux routing, gorilla/sessions for
// per-visitor state, unrolled/render for JSON responses.
package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"

	"github.com/iParadigms/walker/internal/index"
	"github.com/iParadigms/walker/internal/query"
	"github.com/iParadigms/walker/internal/rank"
	"github.com/iParadigms/walker/internal/rank/pagerank"
	"github.com/iParadigms/walker/internal/rank/tfidf"
)

// recentQueriesKey names the session field holding a visitor's recent query
// strings, carried per visitor the way the teacher's console uses sessions
// for UI state. handleSuggest does not read it; suggestions come from the
// static popular-query list only.
const recentQueriesKey = "recent_queries"

// Server serves the search API: a parse-score-rank pipeline over a shared
// index, link graph and TF-IDF scorer.
type Server struct {
	Index             *index.Index
	Graph             *pagerank.Graph
	Parser            *query.Parser
	Weights           rank.Weights
	MaxResultsPerPage int

	render   *render.Render
	sessions *sessions.CookieStore
}

// NewServer returns a Server ready to Routes().
func NewServer(idx *index.Index, graph *pagerank.Graph, parser *query.Parser, weights rank.Weights, cookieKey string) *Server {
	return &Server{
		Index:             idx,
		Graph:             graph,
		Parser:            parser,
		Weights:           weights,
		MaxResultsPerPage: 10,
		render:            render.New(render.Options{IndentJSON: true}),
		sessions:          sessions.NewCookieStore([]byte(cookieKey)),
	}
}

// Routes builds the mux.Router exposing the search API.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/suggest", s.handleSuggest).Methods(http.MethodGet)
	return r
}

type searchResult struct {
	DocID        string  `json:"doc_id"`
	FinalScore   float64 `json:"final_score"`
	TFIDFNorm    float64 `json:"tfidf_norm"`
	PageRankNorm float64 `json:"pagerank_norm"`
}

type searchResponse struct {
	Query       string         `json:"query"`
	QueryType   string         `json:"query_type"`
	Intent      string         `json:"intent"`
	ResultCount int            `json:"result_count"`
	Results     []searchResult `json:"results"`
}

// handleSearch parses the "q" parameter, scores candidates, combines
// rankings and renders JSON. A query with no terms after parsing returns an
// empty result set, not an error, per the error handling policy.
func (s *Server) handleSearch(w http.ResponseWriter, req *http.Request) {
	raw := req.URL.Query().Get("q")
	parsed := s.Parser.Parse(raw)
	s.rememberQuery(w, req, raw)

	queryTerms := parsed.ProcessedTerms
	for _, phrase := range parsed.Phrases {
		queryTerms = append(queryTerms, phrase...)
	}

	if len(queryTerms) == 0 {
		s.render.JSON(w, http.StatusOK, searchResponse{
			Query:     raw,
			QueryType: parsed.QueryType,
			Intent:    parsed.Intent,
		})
		return
	}

	scorer := tfidf.New(s.Index, tfidf.LogNormalized)
	candidateIDs := tfidf.Candidates(s.Index, queryTerms)
	pageScores := s.Graph.Compute()

	signals := make([]rank.Signals, 0, len(candidateIDs))
	for _, docID := range candidateIDs {
		signals = append(signals, rank.Signals{
			DocID:    docID,
			TFIDF:    scorer.ScoreDocument(queryTerms, docID),
			PageRank: pageScores.Score(docID),
		})
	}

	combined := rank.Combine(signals, s.Weights)
	limit := parsePositiveInt(req.URL.Query().Get("limit"), s.MaxResultsPerPage)
	if limit <= 0 || limit > len(combined) {
		limit = len(combined)
	}

	resp := searchResponse{
		Query:       raw,
		QueryType:   parsed.QueryType,
		Intent:      parsed.Intent,
		ResultCount: len(combined),
	}
	for _, c := range combined[:limit] {
		resp.Results = append(resp.Results, searchResult{
			DocID:        c.DocID,
			FinalScore:   c.FinalScore,
			TFIDFNorm:    c.TFIDFNorm,
			PageRankNorm: c.PageRankNorm,
		})
	}

	s.render.JSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggest(w http.ResponseWriter, req *http.Request) {
	partial := req.URL.Query().Get("q")
	s.render.JSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": query.Suggest(partial),
	})
}

// rememberQuery appends raw to the visitor's session-carried recent-query
// list, capped at 20 entries. Session write failures are logged and
// swallowed; suggestion state is best-effort, never on the critical path.
func (s *Server) rememberQuery(w http.ResponseWriter, req *http.Request, raw string) {
	if raw == "" {
		return
	}
	sess, err := s.sessions.Get(req, "walker-search")
	if err != nil {
		log.Warn().Err(err).Msg("session decode failed, starting fresh")
	}

	var recent []string
	if v, ok := sess.Values[recentQueriesKey].([]string); ok {
		recent = v
	}
	recent = append(recent, raw)
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	sess.Values[recentQueriesKey] = recent

	if err := sess.Save(req, w); err != nil {
		log.Warn().Err(err).Msg("session save failed")
	}
}

func parsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
