// Package extractor turns a fetched HTML page into a structured content
// record: title, headings, body text, links, images and language.
package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heading is a single h1..h6 element in document order.
type Heading struct {
	Level int
	Text  string
}

// Image describes an <img> tag.
type Image struct {
	Src   string
	Alt   string
	Title string
}

// Link describes a resolved <a href> anchor discovered on the page.
type Link struct {
	URL        string
	AnchorText string
	Title      string
}

// Record is the structured output of Extract.
type Record struct {
	Title           string
	MetaDescription string
	Headings        []Heading
	BodyText        string
	LinksText       string
	Images          []Image
	Links           []Link
	WordCount       int
	Language        string
}

var removedTags = []string{"script", "style", "nav", "footer"}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Extract parses html relative to pageURL and returns the structured record.
// A malformed document produces a best-effort (possibly empty) record rather
// than an error; only a completely unparseable reader fails.
func Extract(html string, pageURL string) (Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Record{}, err
	}

	for _, tag := range removedTags {
		doc.Find(tag).Remove()
	}

	rec := Record{
		Title:           extractTitle(doc),
		MetaDescription: extractMetaDescription(doc),
		Headings:        extractHeadings(doc),
		BodyText:        extractBodyText(doc),
		LinksText:       extractLinksText(doc),
		Images:          extractImages(doc),
		Language:        extractLanguage(doc),
	}
	rec.Links = extractLinks(doc, pageURL)
	rec.WordCount = countWords(doc.Text())
	return rec, nil
}

func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractMetaDescription(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func extractHeadings(doc *goquery.Document) []Heading {
	var headings []Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		level := int(tag[1] - '0')
		headings = append(headings, Heading{Level: level, Text: strings.TrimSpace(s.Text())})
	})
	return headings
}

func extractBodyText(doc *goquery.Document) string {
	var sel *goquery.Selection
	switch {
	case doc.Find("main").Length() > 0:
		sel = doc.Find("main").First()
	case doc.Find("article").Length() > 0:
		sel = doc.Find("article").First()
	case doc.Find("body").Length() > 0:
		sel = doc.Find("body").First()
	default:
		sel = doc.Selection
	}
	return collapseWhitespace(sel.Text())
}

func extractLinksText(doc *goquery.Document) string {
	var parts []string
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func extractImages(doc *goquery.Document) []Image {
	var images []Image
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			return
		}
		alt, _ := s.Attr("alt")
		title, _ := s.Attr("title")
		images = append(images, Image{Src: src, Alt: alt, Title: title})
	})
	return images
}

func extractLinks(doc *goquery.Document, pageURL string) []Link {
	base, err := url.Parse(pageURL)
	var links []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := href
		if err == nil {
			if ref, perr := url.Parse(href); perr == nil {
				resolved = base.ResolveReference(ref).String()
			}
		}
		parsed, perr := url.Parse(resolved)
		if perr != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return
		}
		title, _ := s.Attr("title")
		links = append(links, Link{
			URL:        resolved,
			AnchorText: strings.TrimSpace(s.Text()),
			Title:      title,
		})
	})
	return links
}

func extractLanguage(doc *goquery.Document) string {
	if lang, ok := doc.Find("html").First().Attr("lang"); ok && lang != "" {
		return lang
	}
	return "en"
}

func countWords(text string) int {
	return len(wordPattern.FindAllString(strings.ToLower(text), -1))
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
