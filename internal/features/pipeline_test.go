package features

import (
	"testing"

	"github.com/themobileprof/nlucore/internal/crf"
	"github.com/themobileprof/nlucore/internal/textutil"
)

func TestIsDigit(t *testing.T) {
	fn, err := buildIsDigit(nil, Deps{})
	if err != nil {
		t.Fatal(err)
	}
	toks := textutil.Tokenize("e3 abc 42 5r", "en")
	want := []bool{false, false, true, false}
	for i, w := range want {
		_, ok := fn(toks, i, nil)
		if ok != w {
			t.Errorf("token %d (%q): is_digit = %v, want %v", i, toks[i].Value, ok, w)
		}
	}
}

func TestPrefixSuffix(t *testing.T) {
	toks := textutil.Tokenize("hello_world", "en")
	prefixFn, _ := buildPrefix(map[string]any{"prefix_size": 6}, Deps{})
	if v, ok := prefixFn(toks, 0, nil); !ok || v != "hello_" {
		t.Errorf("prefix(6) = %q, %v, want hello_", v, ok)
	}
	suffixFn, _ := buildSuffix(map[string]any{"suffix_size": 6}, Deps{})
	if v, ok := suffixFn(toks, 0, nil); !ok || v != "_world" {
		t.Errorf("suffix(6) = %q, %v, want _world", v, ok)
	}
}

func TestShapeNgram(t *testing.T) {
	toks := textutil.Tokenize("Hello BEAUTIFUL world eBay", "en")
	fn2, _ := buildShapeNgram(map[string]any{"n": 2}, Deps{})
	if v, ok := fn2(toks, 0, nil); !ok || v != "Xxx XXX" {
		t.Errorf("shape(0,2) = %q, %v, want Xxx XXX", v, ok)
	}
	fn3, _ := buildShapeNgram(map[string]any{"n": 3}, Deps{})
	if v, ok := fn3(toks, 1, nil); !ok || v != "XXX xxx xX" {
		t.Errorf("shape(1,3) = %q, %v, want XXX xxx xX", v, ok)
	}
}

func TestNgramFeature(t *testing.T) {
	toks := textutil.Tokenize("I love house music", "en")
	fn, _ := buildNgram(map[string]any{"n": 1}, Deps{})
	if v, _ := fn(toks, 0, nil); v != "i" {
		t.Errorf("ngram(0,1) = %q, want i", v)
	}
	fn2, _ := buildNgram(map[string]any{"n": 2}, Deps{})
	if v, _ := fn2(toks, 0, nil); v != "i love" {
		t.Errorf("ngram(0,2) = %q, want \"i love\"", v)
	}
	if _, ok := fn2(toks, 3, nil); ok {
		t.Error("ngram(3,2) should not apply past the end of tokens")
	}
}

func TestEntityMatch_BIO(t *testing.T) {
	toks := textutil.Tokenize("I love this beautiful blue bird !", "en")
	fn, err := buildEntityMatch(map[string]any{
		"collection": []any{"bird", "blue bird", "beautiful blue bird"},
	}, Deps{Scheme: crf.SchemeBIO, Language: "en"})
	if err != nil {
		t.Fatal(err)
	}
	// tokens: I(0) love(1) this(2) beautiful(3) blue(4) bird(5); "!" is not a token
	if _, ok := fn(toks, 2, nil); ok {
		t.Error("token 2 (this) should not match any collection entry")
	}
	if v, ok := fn(toks, 3, nil); !ok || v != "B" {
		t.Errorf("token 3 (beautiful) = %q, %v, want B", v, ok)
	}
	if v, ok := fn(toks, 4, nil); !ok || v != "I" {
		t.Errorf("token 4 (blue) = %q, %v, want I", v, ok)
	}
}
