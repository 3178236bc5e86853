package resources

import (
	"strings"
	"testing"

	"github.com/themobileprof/nlucore/pkg/nlu"
)

func TestHashSetGazetteer(t *testing.T) {
	g, err := newHashSetGazetteer(strings.NewReader("dog\ncrocodile\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !g.Contains("dog") || !g.Contains("crocodile") {
		t.Fatal("expected dog and crocodile to be present")
	}
	if g.Contains("bird") {
		t.Fatal("expected bird to be absent")
	}
}

func TestMapStemmer(t *testing.T) {
	data := "investigate,investigated,investigation,\"investigate\ndo,done,don't,doing,did,does"
	s, err := newMapStemmer(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Stem("don't"); got != "do" {
		t.Errorf("Stem(don't) = %q, want do", got)
	}
	if got := s.Stem("does"); got != "do" {
		t.Errorf("Stem(does) = %q, want do", got)
	}
	if got := s.Stem("unknown"); got != "unknown" {
		t.Errorf("Stem(unknown) = %q, want unknown (passthrough)", got)
	}
}

func TestMapWordClusterer(t *testing.T) {
	data := "hello\t1111111111111\nworld\t1111110111111\n"
	c, err := newMapWordClusterer(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Cluster("hello"); !ok || got != "1111111111111" {
		t.Errorf("Cluster(hello) = %q, %v", got, ok)
	}
	if _, ok := c.Cluster("unknown"); ok {
		t.Error("expected unknown word to have no cluster")
	}
}

func TestRuleBasedBuiltinEntityParser_Number(t *testing.T) {
	p := NewRuleBasedBuiltinEntityParser()
	entities := p.Parse("make me two cups of coffee please", []nlu.BuiltinKind{nlu.KindNumber})
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1: %+v", len(entities), entities)
	}
	e := entities[0]
	if e.Kind != nlu.KindNumber {
		t.Fatalf("kind = %v, want Number", e.Kind)
	}
	nv, ok := e.Parsed.(nlu.NumberValue)
	if !ok || nv.Value != 2.0 {
		t.Fatalf("parsed = %+v, want Number(2.0)", e.Parsed)
	}
}

func TestRuleBasedBuiltinEntityParser_TimeInterval(t *testing.T) {
	p := NewRuleBasedBuiltinEntityParser()
	text := "Meeting this evening or tomorrow at 11am !"
	entities := p.Parse(text, nil)
	var sawInterval bool
	for _, e := range entities {
		if e.Kind == nlu.KindTimeInterval {
			sawInterval = true
		}
	}
	if !sawInterval {
		t.Fatalf("expected a time interval among %+v", entities)
	}
}

func TestCachingBuiltinEntityParser_CacheHitEqualsBypass(t *testing.T) {
	inner := NewRuleBasedBuiltinEntityParser()
	cached := NewCachingBuiltinEntityParser(inner, 10)

	text := "I need 3 percent more"
	withCache := cached.Extract(text, []nlu.BuiltinKind{nlu.KindPercentage}, true)
	withoutCache := cached.Extract(text, []nlu.BuiltinKind{nlu.KindPercentage}, false)
	if len(withCache) != len(withoutCache) {
		t.Fatalf("cached=%d uncached=%d", len(withCache), len(withoutCache))
	}
	// second call should be served from cache and yield an identical result
	again := cached.Extract(text, []nlu.BuiltinKind{nlu.KindPercentage}, true)
	if len(again) != len(withCache) {
		t.Fatalf("second cached call diverged: %d vs %d", len(again), len(withCache))
	}
}

func TestCustomParser_ExactAndOverlap(t *testing.T) {
	entities := map[string]nlu.EntityDef{
		"city": {Utterances: map[string]string{"new york": "New York", "new york city": "New York City"}},
	}
	p := newCustomParser(entities, 4, "en")
	matches := p.parse("I am flying to new york city tomorrow", nil)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 (longest match should win): %+v", len(matches), matches)
	}
	if matches[0].Resolved != "New York City" {
		t.Fatalf("resolved = %q, want New York City", matches[0].Resolved)
	}
}

func TestRuleBasedBuiltinEntityParser_CharRangeIsCharNotByteIndexed(t *testing.T) {
	// "Café" contains a two-byte rune before the match, so the char
	// offset of "two" (14) differs from its byte offset (15).
	p := NewRuleBasedBuiltinEntityParser()
	text := "Café is nice, two cups please"
	entities := p.Parse(text, []nlu.BuiltinKind{nlu.KindNumber})
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1: %+v", len(entities), entities)
	}
	want := nlu.Range{Start: 14, End: 17}
	if entities[0].CharRange != want {
		t.Fatalf("CharRange = %+v, want %+v (char-indexed, not byte-indexed)", entities[0].CharRange, want)
	}
}

func TestCustomParser_OverlapPrefersMoreTokensOverMoreChars(t *testing.T) {
	// "abc" (3 tokens: a, b, c) overlaps "cwxyz" (2 tokens: c, wxyz) on
	// the shared "c" token. With sep="" (Japanese/Chinese), the 2-token
	// candidate has more characters (6 vs 5) but fewer tokens: spec §4.3's
	// edge policy requires the 3-token candidate to win regardless.
	entities := map[string]nlu.EntityDef{
		"x": {Utterances: map[string]string{"abc": "ABC_RESOLVED"}},
		"y": {Utterances: map[string]string{"cwxyz": "CWXYZ_RESOLVED"}},
	}
	p := newCustomParser(entities, 4, "ja")
	matches := p.parse("a-b-c-wxyz-e", nil)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 (overlap should be deduped): %+v", len(matches), matches)
	}
	if matches[0].Resolved != "ABC_RESOLVED" {
		t.Fatalf("resolved = %q, want ABC_RESOLVED (more tokens should win over more chars)", matches[0].Resolved)
	}
}
