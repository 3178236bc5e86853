package resources

import (
	"encoding/csv"
	"io"
	"os"
)

// Stemmer reduces a token to its stem. Unknown words are returned
// unchanged, matching the original hashmap-backed stemmer's fallback.
type Stemmer interface {
	Stem(value string) string
}

type mapStemmer struct {
	values map[string]string
}

// newMapStemmer reads a comma-separated file where the first field of
// each record is the canonical stem and the remaining fields are
// surface forms that stem to it.
func newMapStemmer(r io.Reader) (*mapStemmer, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	values := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}
		stem := record[0]
		for _, surface := range record[1:] {
			values[surface] = stem
		}
	}
	return &mapStemmer{values: values}, nil
}

func loadStemmerFile(path string) (*mapStemmer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return newMapStemmer(f)
}

func (s *mapStemmer) Stem(value string) string {
	if stem, ok := s.values[value]; ok {
		return stem
	}
	return value
}
