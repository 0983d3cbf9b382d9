package textproc

import (
	"reflect"
	"testing"
)

func TestProcessFiltersAndStems(t *testing.T) {
	p := New("")
	got := p.Process("The Cats are running, visit http://example.com or email me@example.com! 123")
	want := []string{"cat", "run", "visit", "email"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process() = %v, want %v", got, want)
	}
}

func TestProcessDropsShortNumericAndStop(t *testing.T) {
	p := New("")
	got := p.Process("a an 99 of ok")
	want := []string{"ok"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process() = %v, want %v", got, want)
	}
}

func TestProcessCustomStopWords(t *testing.T) {
	p := New("")
	got := p.Process("you should go")
	if len(got) != 1 || got[0] != "go" {
		t.Errorf("expected custom stop word 'should' removed, got %v", got)
	}
}

func TestTermWeights(t *testing.T) {
	zones := map[Zone][]string{
		ZoneTitle: {"cat", "cat"},
		ZoneBody:  {"cat", "dog"},
	}
	w := TermWeights(zones)
	if w["cat"] != 3.0*2+1.0 {
		t.Errorf("cat weight = %v, want %v", w["cat"], 3.0*2+1.0)
	}
	if w["dog"] != 1.0 {
		t.Errorf("dog weight = %v, want 1.0", w["dog"])
	}
}
