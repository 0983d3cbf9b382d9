package dedupe

import (
	"strings"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	got, err := Canonicalize("http://EX.com/p/?utm_source=x&a=1#frag")
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	want := "http://ex.com/p?a=1"
	if got != want {
		t.Errorf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	first, err := Canonicalize("http://EX.com/p/?utm_source=x&a=1#frag")
	if err != nil {
		t.Fatal(err)
	}
	second, err := Canonicalize(first)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Canonicalize not idempotent: %q vs %q", first, second)
	}
}

func TestCanonicalizeRootPathKeepsSlash(t *testing.T) {
	got, err := Canonicalize("http://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if got != "http://example.com/" {
		t.Errorf("Canonicalize() = %q, want root slash kept", got)
	}
}

func TestIsDuplicateURL(t *testing.T) {
	d := New(nil, 0)
	dup, err := d.IsDuplicateURL("http://ex.com/p?a=1")
	if err != nil || dup {
		t.Fatalf("first sighting should not be a duplicate, got dup=%v err=%v", dup, err)
	}
	dup, err = d.IsDuplicateURL("http://ex.com/p?a=1")
	if err != nil || !dup {
		t.Fatalf("second sighting should be a duplicate, got dup=%v err=%v", dup, err)
	}
}

func repeatWords(words []string, times int) string {
	var all []string
	for i := 0; i < times; i++ {
		all = append(all, words...)
	}
	return strings.Join(all, " ")
}

func TestIsDuplicateContentNearDuplicate(t *testing.T) {
	d := New(nil, 0.85)

	base := strings.Fields(
		"the quick brown fox jumps over the lazy dog while the sun sets slowly over the distant green hills today",
	)
	similar := make([]string, len(base))
	copy(similar, base)
	similar[len(similar)-1] = "morning" // one word out of 20 changed

	if d.IsDuplicateContent(strings.Join(base, " ")) {
		t.Fatal("first document should not register as duplicate")
	}
	if !d.IsDuplicateContent(strings.Join(similar, " ")) {
		t.Fatal("near-identical document (1/20 words changed) should be flagged duplicate")
	}
}

func TestIsDuplicateContentBelowThreshold(t *testing.T) {
	d := New(nil, 0.85)

	base := strings.Fields(
		"the quick brown fox jumps over the lazy dog while the sun sets slowly over the distant green hills today",
	)
	different := make([]string, len(base))
	copy(different, base)
	// change 5 of 20 words
	for _, i := range []int{0, 3, 7, 11, 15} {
		different[i] = different[i] + "x"
	}

	d.IsDuplicateContent(strings.Join(base, " "))
	if d.IsDuplicateContent(strings.Join(different, " ")) {
		t.Fatal("document differing in 5/20 words should fall below the 0.85 threshold")
	}
}

func TestIsDuplicateContentShortTextNeverDuplicate(t *testing.T) {
	d := New(nil, 0.85)
	if d.IsDuplicateContent("too short") {
		t.Fatal("text under 5 words should never be a duplicate")
	}
}

func TestJaccard(t *testing.T) {
	a := Fingerprint{1: {}, 2: {}, 3: {}}
	b := Fingerprint{2: {}, 3: {}, 4: {}}
	got := Jaccard(a, b)
	want := 2.0 / 4.0
	if got != want {
		t.Errorf("Jaccard() = %v, want %v", got, want)
	}
}

func TestMinHashIndexMatchesContract(t *testing.T) {
	idx := NewMinHashIndex(64, 8, 0.85)

	base := FingerprintText(
		"the quick brown fox jumps over the lazy dog while the sun sets slowly over the distant hills today",
	)
	if idx.IsDuplicate(base) {
		t.Fatal("first fingerprint should not be a duplicate")
	}
	if !idx.IsDuplicate(base) {
		t.Fatal("identical fingerprint should be a duplicate")
	}
}
