package textutil

import "testing"

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "Make me two cups of coffee please", []string{"Make", "me", "two", "cups", "of", "coffee", "please"}},
		{"punctuation", "hello, world!!!", []string{"hello", "world"}},
		{"apostrophe", "I don't know", []string{"I", "don't", "know"}},
		{"empty", "", nil},
		{"leading trailing space", "  hi  ", []string{"hi"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tokens := Tokenize(c.text, "en")
			if len(tokens) != len(c.want) {
				t.Fatalf("got %d tokens %v, want %d %v", len(tokens), tokens, len(c.want), c.want)
			}
			for i, tok := range tokens {
				if tok.Value != c.want[i] {
					t.Errorf("token %d: got %q, want %q", i, tok.Value, c.want[i])
				}
				if c.text[tok.ByteRange.Start:tok.ByteRange.End] != tok.Value {
					t.Errorf("token %d: byte range %v does not slice to %q", i, tok.ByteRange, tok.Value)
				}
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Café", "NAÏVE", "hello world", "Über"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
	if got := Normalize("Café"); got != "cafe" {
		t.Errorf("Normalize(Café) = %q, want %q", got, "cafe")
	}
}
