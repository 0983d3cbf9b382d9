// Package textproc turns HTML and plain text into normalised, weighted token
// streams for the index and the ranker.
package textproc

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// Zone identifies the region of a page a token stream was extracted from.
// Ranking gives different zones different weight.
type Zone string

// Zones recognised by the processor; their weights are in ZoneWeight.
const (
	ZoneTitle    Zone = "title"
	ZoneHeadings Zone = "headings"
	ZoneBody     Zone = "body"
	ZoneLinks    Zone = "links"
	ZoneMeta     Zone = "meta"
)

// ZoneWeight is the ranking-assist weight applied to terms found in a zone.
var ZoneWeight = map[Zone]float64{
	ZoneTitle:    3.0,
	ZoneHeadings: 2.0,
	ZoneMeta:     1.5,
	ZoneBody:     1.0,
	ZoneLinks:    0.8,
}

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s]+`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	wordPattern  = regexp.MustCompile(`[\p{L}\p{N}'-]+`)
	digitsOnly   = regexp.MustCompile(`^[0-9]+$`)
)

var stopWords = buildStopWords()

// Processor tokenises and normalises text the same way for both indexing and
// query parsing, so terms line up on both sides of the inverted index.
type Processor struct {
	// Language selects the stemmer dialect snowball.Stem understands. Empty
	// defaults to "english".
	Language string
}

// New returns a Processor for the given language ("" means English).
func New(language string) *Processor {
	if language == "" {
		language = "english"
	}
	return &Processor{Language: language}
}

// Process runs the full pipeline: clean, tokenise, filter, stem.
func (p *Processor) Process(text string) []string {
	cleaned := clean(text)
	tokens := tokenize(cleaned)

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if norm := p.processToken(tok); norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

// clean lowercases, strips URLs/emails and collapses whitespace.
func clean(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// tokenize splits on word boundaries. If the regexp tokeniser somehow yields
// nothing for non-empty input, fall back to a whitespace split rather than
// fail the pipeline.
func tokenize(text string) []string {
	tokens := wordPattern.FindAllString(text, -1)
	if len(tokens) == 0 && strings.TrimSpace(text) != "" {
		tokens = strings.Fields(text)
	}
	return tokens
}

// processToken strips surrounding punctuation, filters stop-words, numerics
// and short tokens, then stems what's left. A stemmer error degrades to the
// unstemmed token rather than dropping it.
func (p *Processor) processToken(token string) string {
	token = strings.Trim(token, "'-")
	if len(token) < 2 {
		return ""
	}
	if digitsOnly.MatchString(token) {
		return ""
	}
	if stopWords[token] {
		return ""
	}

	stemmed, err := snowball.Stem(token, p.Language, false)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// Features extracts per-zone token streams from pre-split zone text, e.g. the
// output of an extractor.Record broken into its constituent fields.
func (p *Processor) Features(zones map[Zone]string) map[Zone][]string {
	out := make(map[Zone][]string, len(zones))
	for zone, text := range zones {
		out[zone] = p.Process(text)
	}
	return out
}

// TermWeights folds per-zone token streams into a single term -> weight map,
// summing zone weight times occurrence count across zones.
func TermWeights(zones map[Zone][]string) map[string]float64 {
	weights := make(map[string]float64)
	for zone, terms := range zones {
		w, ok := ZoneWeight[zone]
		if !ok {
			w = 1.0
		}
		for _, term := range terms {
			weights[term] += w
		}
	}
	return weights
}

func buildStopWords() map[string]bool {
	list := []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
		"any", "are", "aren't", "as", "at", "be", "because", "been", "before", "being",
		"below", "between", "both", "but", "by", "can't", "cannot", "could", "couldn't",
		"did", "didn't", "do", "does", "doesn't", "doing", "don't", "down", "during",
		"each", "few", "for", "from", "further", "had", "hadn't", "has", "hasn't",
		"have", "haven't", "having", "he", "he'd", "he'll", "he's", "her", "here",
		"here's", "hers", "herself", "him", "himself", "his", "how", "how's", "i",
		"i'd", "i'll", "i'm", "i've", "if", "in", "into", "is", "isn't", "it", "it's",
		"its", "itself", "let's", "me", "more", "most", "mustn't", "my", "myself",
		"no", "nor", "not", "of", "off", "on", "once", "only", "or", "other", "ought",
		"our", "ours", "ourselves", "out", "over", "own", "same", "shan't", "she",
		"she'd", "she'll", "she's", "should", "shouldn't", "so", "some", "such",
		"than", "that", "that's", "the", "their", "theirs", "them", "themselves",
		"then", "there", "there's", "these", "they", "they'd", "they'll", "they're",
		"they've", "this", "those", "through", "to", "too", "under", "until", "up",
		"very", "was", "wasn't", "we", "we'd", "we'll", "we're", "we've", "were",
		"weren't", "what", "what's", "when", "when's", "where", "where's", "which",
		"while", "who", "who's", "whom", "why", "why's", "with", "won't", "would",
		"wouldn't", "you", "you'd", "you'll", "you're", "you've", "your", "yours",
		"yourself", "yourselves",
		// custom additions per the text processing contract
		"could", "should", "might", "must",
	}
	m := make(map[string]bool, len(list))
	for _, w := range list {
		m[w] = true
	}
	return m
}
