package resources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/themobileprof/nlucore/internal/errs"
)

// manifest is the on-disk shape of a language's metadata.json, declaring
// which optional resources exist and where to find them, relative to the
// metadata.json's own directory.
type manifest struct {
	Language     string            `json:"language"`
	Stems        string            `json:"stems,omitempty"`
	Gazetteers   map[string]string `json:"gazetteers,omitempty"`
	WordClusters map[string]string `json:"word_clusters,omitempty"`
}

// Store holds every resource loaded for a single language. It is
// immutable after Load returns and safe for concurrent read access from
// any number of parser goroutines, per the store's role as a shared,
// explicitly-threaded dependency (spec §5).
type Store struct {
	Language     string
	Stemmer      Stemmer
	Gazetteers   map[string]Gazetteer
	WordClusters map[string]WordClusterer
}

// Load reads dir/metadata.json and loads every resource it declares.
// A resource named in the manifest whose backing file is absent is a
// fatal load error (errs.MissingResourceError): the manifest is a
// contract about what the packaged model provides.
func Load(dir string) (*Store, error) {
	manifestPath := filepath.Join(dir, "metadata.json")
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading resource manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing resource manifest: %w", err)
	}

	store := &Store{
		Language:     m.Language,
		Gazetteers:   make(map[string]Gazetteer),
		WordClusters: make(map[string]WordClusterer),
	}

	if m.Stems != "" {
		path := filepath.Join(dir, m.Stems)
		if _, err := os.Stat(path); err != nil {
			return nil, &errs.MissingResourceError{Language: m.Language, Resource: m.Stems}
		}
		stemmer, err := loadStemmerFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading stems: %w", err)
		}
		store.Stemmer = stemmer
	}

	for name, rel := range m.Gazetteers {
		path := filepath.Join(dir, rel)
		if _, err := os.Stat(path); err != nil {
			return nil, &errs.MissingResourceError{Language: m.Language, Resource: name}
		}
		gazetteer, err := loadGazetteerFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading gazetteer %q: %w", name, err)
		}
		store.Gazetteers[name] = gazetteer
	}

	for name, rel := range m.WordClusters {
		path := filepath.Join(dir, rel)
		if _, err := os.Stat(path); err != nil {
			return nil, &errs.MissingResourceError{Language: m.Language, Resource: name}
		}
		clusterer, err := loadWordClustererFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading word clusters %q: %w", name, err)
		}
		store.WordClusters[name] = clusterer
	}

	return store, nil
}

// Gazetteer looks up a named gazetteer, returning ok=false if the
// manifest never declared one by that name.
func (s *Store) Gazetteer(name string) (Gazetteer, bool) {
	g, ok := s.Gazetteers[name]
	return g, ok
}

// WordClusterer looks up a named word-cluster table.
func (s *Store) WordClusterer(name string) (WordClusterer, bool) {
	c, ok := s.WordClusters[name]
	return c, ok
}

// Stem delegates to the language stemmer if one was loaded, otherwise
// returns the input unchanged.
func (s *Store) Stem(value string) string {
	if s.Stemmer == nil {
		return value
	}
	return s.Stemmer.Stem(value)
}
