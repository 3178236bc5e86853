package resources

import (
	"bufio"
	"io"
	"os"
)

// Gazetteer reports membership of a normalized surface form in a
// language-specific word list (e.g. city names, stop words).
type Gazetteer interface {
	Contains(value string) bool
}

// hashSetGazetteer is a Gazetteer backed by an in-memory set, one line
// per entry, loaded once at store construction time.
type hashSetGazetteer struct {
	values map[string]struct{}
}

func newHashSetGazetteer(r io.Reader) (*hashSetGazetteer, error) {
	values := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		word := scanner.Text()
		if word != "" {
			values[word] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &hashSetGazetteer{values: values}, nil
}

func loadGazetteerFile(path string) (*hashSetGazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return newHashSetGazetteer(f)
}

func (g *hashSetGazetteer) Contains(value string) bool {
	_, ok := g.values[value]
	return ok
}
