package extractor

import "testing"

const samplePage = `<!DOCTYPE html>
<html lang="fr">
<head>
<title>  Example Page  </title>
<meta name="description" content="a test page">
<script>var x = 1;</script>
</head>
<body>
<nav>Home | About</nav>
<main>
<h1>Welcome</h1>
<h2>Section</h2>
<p>Hello   world.</p>
<a href="/about" title="About us">About</a>
<a href="mailto:x@example.com">mail</a>
<img src="/logo.png" alt="logo">
</main>
<footer>copyright</footer>
</body>
</html>`

func TestExtract(t *testing.T) {
	rec, err := Extract(samplePage, "https://example.com/page")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.Title != "Example Page" {
		t.Errorf("Title = %q, want %q", rec.Title, "Example Page")
	}
	if rec.MetaDescription != "a test page" {
		t.Errorf("MetaDescription = %q", rec.MetaDescription)
	}
	if rec.Language != "fr" {
		t.Errorf("Language = %q, want fr", rec.Language)
	}
	if len(rec.Headings) != 2 || rec.Headings[0].Level != 1 || rec.Headings[1].Level != 2 {
		t.Errorf("Headings = %+v", rec.Headings)
	}
	if rec.BodyText != "Welcome Section Hello world. About mail" {
		t.Errorf("BodyText = %q", rec.BodyText)
	}
	if len(rec.Links) != 1 || rec.Links[0].URL != "https://example.com/about" {
		t.Errorf("Links = %+v, want one http(s) link", rec.Links)
	}
	if len(rec.Images) != 1 || rec.Images[0].Src != "/logo.png" {
		t.Errorf("Images = %+v", rec.Images)
	}
}

func TestExtractTitleFallsBackToH1(t *testing.T) {
	rec, err := Extract(`<html><body><h1>Fallback Title</h1></body></html>`, "https://example.com/")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.Title != "Fallback Title" {
		t.Errorf("Title = %q, want fallback from h1", rec.Title)
	}
}
