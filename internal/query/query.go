// Package query parses raw search-box input into structured terms, phrases,
// operators and filters, classifying the query's type and intent.
package query

import (
	"regexp"
	"strings"

	"github.com/iParadigms/walker/internal/textproc"
)

var (
	phrasePattern   = regexp.MustCompile(`"([^"]*)"`)
	operatorPattern = regexp.MustCompile(`(?i)\b(AND|OR|NOT)\b`)
	sitePattern     = regexp.MustCompile(`(?i)site:(\S+)`)
	filetypePattern = regexp.MustCompile(`(?i)filetype:(\S+)`)
)

var datePatterns = []struct {
	period  string
	pattern *regexp.Regexp
}{
	{"last_day", regexp.MustCompile(`(?i)\b(today|yesterday)\b`)},
	{"last_week", regexp.MustCompile(`(?i)\blast week\b`)},
	{"last_month", regexp.MustCompile(`(?i)\blast month\b`)},
	{"last_year", regexp.MustCompile(`(?i)\blast year\b`)},
}

var whPrefixes = []string{"what", "how", "when", "where", "why", "who"}

// Parsed is the structured result of parsing a raw query string.
type Parsed struct {
	Original       string
	ProcessedTerms []string
	Phrases        [][]string
	Operators      []string
	Filters        map[string]string
	QueryType      string
	Intent         string
}

// Parser parses raw queries using a Text Processor to normalise residue and
// phrase contents.
type Parser struct {
	textproc *textproc.Processor
}

// New returns a Parser. language selects the Text Processor's stemmer
// dialect ("" means English).
func New(language string) *Parser {
	return &Parser{textproc: textproc.New(language)}
}

// Parse runs the full extraction pipeline: phrases, then operators, then
// filters, then date filters; residue is handed to the Text Processor.
func (p *Parser) Parse(raw string) Parsed {
	queryType := p.detectQueryType(raw)
	intent := p.detectIntent(raw)

	phrases, residue := p.extractPhrases(raw)
	operators, residue := extractOperators(residue)
	filters, residue := p.extractFilters(residue)

	return Parsed{
		Original:       raw,
		ProcessedTerms: p.textproc.Process(residue),
		Phrases:        phrases,
		Operators:      operators,
		Filters:        filters,
		QueryType:      queryType,
		Intent:         intent,
	}
}

// detectQueryType classifies by presence of operators, quotes, known filter
// prefixes, question marks or wh-prefixes, in that priority order.
func (p *Parser) detectQueryType(raw string) string {
	lower := strings.ToLower(raw)

	if operatorPattern.MatchString(raw) {
		return "boolean"
	}
	if strings.Contains(raw, `"`) {
		return "phrase"
	}
	if strings.Contains(lower, "site:") || strings.Contains(lower, "filetype:") {
		return "filtered"
	}
	if strings.HasSuffix(raw, "?") || hasWhPrefix(lower) {
		return "question"
	}
	return "simple"
}

var navigationalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(facebook|twitter|instagram|youtube|amazon|google)\b`),
	regexp.MustCompile(`(?i)\b(login|sign in|homepage|official site)\b`),
}

var transactionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(buy|purchase|order|price|cost|cheap|discount|deal)\b`),
	regexp.MustCompile(`(?i)\b(download|install|get|free)\b`),
}

// detectIntent classifies navigational/transactional/informational, with
// question form taking priority over transactional keyword hits so e.g.
// "what's the cheapest flight" still reads as informational.
func (p *Parser) detectIntent(raw string) string {
	lower := strings.ToLower(raw)

	if strings.HasSuffix(raw, "?") || hasWhPrefix(lower) {
		return "informational"
	}
	for _, pat := range navigationalPatterns {
		if pat.MatchString(lower) {
			return "navigational"
		}
	}
	for _, pat := range transactionalPatterns {
		if pat.MatchString(lower) {
			return "transactional"
		}
	}
	return "informational"
}

func hasWhPrefix(lower string) bool {
	for _, w := range whPrefixes {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

// extractPhrases pulls out quoted phrases, running each through the Text
// Processor but keeping its terms grouped, and returns the residue with
// matched phrases replaced by a single space.
func (p *Parser) extractPhrases(raw string) ([][]string, string) {
	var phrases [][]string
	residue := raw

	matches := phrasePattern.FindAllStringSubmatch(raw, -1)
	for _, m := range matches {
		phrase := strings.TrimSpace(m[1])
		if phrase != "" {
			phrases = append(phrases, p.textproc.Process(phrase))
		}
		residue = strings.Replace(residue, m[0], " ", 1)
	}
	return phrases, strings.TrimSpace(residue)
}

// extractOperators pulls out boolean operators (case-insensitive,
// word-bounded), upper-casing them, and returns the residue.
func extractOperators(raw string) ([]string, string) {
	var operators []string
	residue := raw

	matches := operatorPattern.FindAllString(raw, -1)
	for _, m := range matches {
		operators = append(operators, strings.ToUpper(m))
		residue = strings.Replace(residue, m, " ", 1)
	}
	return operators, strings.TrimSpace(residue)
}

// extractFilters pulls site:, filetype: and the first matching date pattern
// out of the residue, returning the filters and what is left.
func (p *Parser) extractFilters(residue string) (map[string]string, string) {
	filters := make(map[string]string)

	if m := sitePattern.FindStringSubmatch(residue); m != nil {
		filters["site"] = m[1]
		residue = sitePattern.ReplaceAllString(residue, " ")
	}
	if m := filetypePattern.FindStringSubmatch(residue); m != nil {
		filters["filetype"] = m[1]
		residue = filetypePattern.ReplaceAllString(residue, " ")
	}
	for _, dp := range datePatterns {
		if dp.pattern.MatchString(residue) {
			filters["date"] = dp.period
			residue = dp.pattern.ReplaceAllString(residue, " ")
			break
		}
	}
	return filters, strings.TrimSpace(residue)
}

// synonyms is a static expansion table.
var synonyms = map[string][]string{
	"car":   {"vehicle", "automobile", "auto"},
	"house": {"home", "residence", "property"},
	"job":   {"work", "employment", "career"},
	"phone": {"mobile", "smartphone", "cell"},
}

// Expand appends synonym terms for every processed term that has a table
// entry, preserving input order.
func Expand(parsed Parsed) []string {
	expanded := append([]string(nil), parsed.ProcessedTerms...)
	for _, term := range parsed.ProcessedTerms {
		if syns, ok := synonyms[term]; ok {
			expanded = append(expanded, syns...)
		}
	}
	return expanded
}

var commonMisspellings = map[string]string{
	"teh":        "the",
	"adn":        "and",
	"recieve":    "receive",
	"seperate":   "separate",
	"definately": "definitely",
}

var misspellingPatterns = buildMisspellingPatterns()

func buildMisspellingPatterns() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(commonMisspellings))
	for mistake := range commonMisspellings {
		m[mistake] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(mistake) + `\b`)
	}
	return m
}

// CorrectSpelling rewrites a fixed table of common misspellings,
// word-bounded and case-insensitive.
func CorrectSpelling(raw string) string {
	corrected := raw
	for mistake, correction := range commonMisspellings {
		corrected = misspellingPatterns[mistake].ReplaceAllString(corrected, correction)
	}
	return corrected
}

// popularQueries backs Suggest; a real deployment would source this from
// query logs rather than a static list.
var popularQueries = []string{
	"python programming",
	"machine learning",
	"web development",
	"data science",
	"artificial intelligence",
	"software engineering",
}

// Suggest returns up to 5 popular queries prefix-matching partial,
// lowercased before comparison.
func Suggest(partial string) []string {
	lower := strings.ToLower(partial)
	var out []string
	for _, q := range popularQueries {
		if strings.HasPrefix(q, lower) {
			out = append(out, q)
		}
		if len(out) == 5 {
			break
		}
	}
	return out
}
