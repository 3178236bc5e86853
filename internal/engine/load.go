package engine

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/themobileprof/nlucore/internal/classifier"
	"github.com/themobileprof/nlucore/internal/config"
	"github.com/themobileprof/nlucore/internal/crf"
	"github.com/themobileprof/nlucore/internal/errs"
	"github.com/themobileprof/nlucore/internal/features"
	"github.com/themobileprof/nlucore/internal/parsers/deterministic"
	"github.com/themobileprof/nlucore/internal/parsers/lookup"
	"github.com/themobileprof/nlucore/internal/parsers/probabilistic"
	"github.com/themobileprof/nlucore/internal/resources"
	"github.com/themobileprof/nlucore/internal/resources/diskcache"
	"github.com/themobileprof/nlucore/internal/slotfiller"
	"github.com/themobileprof/nlucore/internal/slots"
	"github.com/themobileprof/nlucore/internal/telemetry"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

const assistantFileName = "trained_assistant.json"

// assistantFile is the on-disk shape of trained_assistant.json (spec §6).
type assistantFile struct {
	ModelVersion           string              `json:"model_version"`
	TrainingPackageVersion string              `json:"training_package_version"`
	DatasetMetadata        datasetMetadataJSON `json:"dataset_metadata"`
	IntentParsers          []unitConfigJSON    `json:"intent_parsers"`
}

type datasetMetadataJSON struct {
	LanguageCode     string                       `json:"language_code"`
	Entities         map[string]entityDefJSON     `json:"entities"`
	SlotNameMappings map[string]map[string]string `json:"slot_name_mappings"`
}

type entityDefJSON struct {
	AutomaticallyExtensible bool              `json:"automatically_extensible"`
	Utterances              map[string]string `json:"utterances"`
}

// unitConfigJSON is one entry of intent_parsers: a unit_name tag plus
// its own unit-specific configuration object, deferred until the
// unit_name is known (spec §6).
type unitConfigJSON struct {
	UnitName string          `json:"unit_name"`
	Config   json.RawMessage `json:"config"`
}

type probabilisticConfigJSON struct {
	IntentClassifier intentClassifierConfigJSON     `json:"intent_classifier"`
	SlotFillers      map[string]slotFillerConfigJSON `json:"slot_fillers"`
}

type intentClassifierConfigJSON struct {
	IntentNames []string             `json:"intent_names"`
	Featurizer  featurizerConfigJSON `json:"featurizer"`
	LogReg      logRegConfigJSON     `json:"log_reg"`
}

type featurizerConfigJSON struct {
	BestFeatures                   []int             `json:"best_features"`
	Vocabulary                     map[string]int    `json:"vocabulary"`
	IDFDiag                        []float64         `json:"idf_diag"`
	StopWords                      []string          `json:"stop_words"`
	SublinearTF                    bool              `json:"sublinear_tf"`
	EntityUtterancesToFeatureNames map[string]string `json:"entity_utterances_to_feature_names"`
	WordClusterName                string            `json:"word_cluster_name"`
}

type logRegConfigJSON struct {
	Intercept []float64   `json:"intercept"`
	Weights   [][]float64 `json:"weights"`
}

type slotFillerConfigJSON struct {
	TaggingScheme    int                 `json:"tagging_scheme"`
	SlotNameToEntity map[string]string   `json:"slot_name_to_entity"`
	FeaturePipeline  []featureConfigJSON `json:"feature_pipeline"`
	CRF              string              `json:"crf"`
}

type featureConfigJSON struct {
	Name    string         `json:"name"`
	Factory string         `json:"factory"`
	Args    map[string]any `json:"args"`
	Offsets []int          `json:"offsets"`
}

// crfBlobJSON is the decoded shape of a slot filler's base64-encoded
// CRF blob (spec §6): a trained linear-chain CRF's label alphabet,
// state-feature weights and transition weights.
type crfBlobJSON struct {
	Labels      []string                      `json:"labels"`
	StateWeight map[string]map[string]float64 `json:"state_weight"`
	Transition  map[string]map[string]float64 `json:"transition"`
}

// FromPath loads an engine from a directory containing
// trained_assistant.json (spec §6). cfg supplies the runtime knobs
// (cache sizes, resource directory, telemetry/disk-cache settings)
// that the model artifact itself does not carry.
func FromPath(dir string, cfg *config.Config) (*Engine, error) {
	path := filepath.Join(dir, assistantFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.ModelLoadError{Path: path, Err: err}
	}
	return build(data, cfg)
}

// FromReader loads an engine from a zip archive whose root (or whose
// "assistant/" subdirectory) contains trained_assistant.json (spec §6).
func FromReader(r io.Reader, cfg *config.Config) (*Engine, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, &errs.ModelLoadError{Path: "<zip stream>", Err: err}
	}
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, &errs.ModelLoadError{Path: "<zip stream>", Err: err}
	}

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == assistantFileName || f.Name == "assistant/"+assistantFileName {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, &errs.ModelLoadError{Path: "<zip stream>", Err: fmt.Errorf("no %s at archive root or assistant/", assistantFileName)}
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, &errs.ModelLoadError{Path: entry.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &errs.ModelLoadError{Path: entry.Name, Err: err}
	}
	return build(data, cfg)
}

func build(data []byte, cfg *config.Config) (*Engine, error) {
	var file assistantFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &errs.ModelLoadError{Path: assistantFileName, Err: err}
	}
	if file.ModelVersion != ModelVersion {
		return nil, &errs.WrongModelVersionError{Found: file.ModelVersion, Expected: ModelVersion}
	}

	dataset := toDatasetMetadata(file.DatasetMetadata)

	var store *resources.Store
	if cfg.ResourcesDir != "" {
		languageDir := filepath.Join(cfg.ResourcesDir, dataset.LanguageCode)
		if _, err := os.Stat(filepath.Join(languageDir, "metadata.json")); err == nil {
			s, err := resources.Load(languageDir)
			if err != nil {
				return nil, err
			}
			store = s
		}
	}

	builtin := resources.NewCachingBuiltinEntityParser(resources.NewRuleBasedBuiltinEntityParser(), cfg.BuiltinCacheCapacity)
	custom := resources.NewCachingCustomEntityParser(dataset.Entities, cfg.CustomEntityMaxNgram, dataset.LanguageCode, cfg.CustomCacheCapacity)

	if cfg.DiskCacheEnabled {
		disk, err := diskcache.Open(cfg.DiskCachePath)
		if err != nil {
			return nil, fmt.Errorf("opening disk cache: %w", err)
		}
		custom.SetDiskTier(disk)
	}

	parsers := make([]cascadeParser, 0, len(file.IntentParsers))
	for _, unit := range file.IntentParsers {
		switch unit.UnitName {
		case "deterministic_intent_parser":
			var dc deterministic.Config
			if err := json.Unmarshal(unit.Config, &dc); err != nil {
				return nil, &errs.ModelLoadError{Path: unit.UnitName, Err: err}
			}
			p, err := deterministic.New(dc, dataset.LanguageCode, builtin)
			if err != nil {
				return nil, err
			}
			parsers = append(parsers, deterministicUnit{p})

		case "lookup_intent_parser":
			var lc lookup.Config
			if err := json.Unmarshal(unit.Config, &lc); err != nil {
				return nil, &errs.ModelLoadError{Path: unit.UnitName, Err: err}
			}
			parsers = append(parsers, lookupUnit{lookup.New(lc)})

		case "probabilistic_intent_parser":
			var pc probabilisticConfigJSON
			if err := json.Unmarshal(unit.Config, &pc); err != nil {
				return nil, &errs.ModelLoadError{Path: unit.UnitName, Err: err}
			}
			p, err := buildProbabilisticParser(pc, store, builtin, dataset.LanguageCode, cfg)
			if err != nil {
				return nil, err
			}
			parsers = append(parsers, probabilisticUnit{p})

		default:
			return nil, &errs.ModelLoadError{Path: unit.UnitName, Err: fmt.Errorf("unknown intent parser unit_name %q", unit.UnitName)}
		}
	}

	resolver := &slots.Resolver{
		Builtin:  builtin,
		Custom:   custom,
		Entities: dataset.Entities,
		Language: dataset.LanguageCode,
	}

	telemetryPath := ""
	if cfg.TelemetryEnabled {
		telemetryPath = cfg.TelemetryPath
	}
	logger := telemetry.GetLogger(telemetryPath)

	return &Engine{
		dataset:   dataset,
		parsers:   parsers,
		resolver:  resolver,
		telemetry: logger,
	}, nil
}

func toDatasetMetadata(raw datasetMetadataJSON) nlu.DatasetMetadata {
	entities := make(map[string]nlu.EntityDef, len(raw.Entities))
	for name, def := range raw.Entities {
		entities[name] = nlu.EntityDef{
			AutomaticallyExtensible: def.AutomaticallyExtensible,
			Utterances:              def.Utterances,
		}
	}
	return nlu.DatasetMetadata{
		LanguageCode:     raw.LanguageCode,
		Entities:         entities,
		SlotNameMappings: raw.SlotNameMappings,
	}
}

func buildProbabilisticParser(pc probabilisticConfigJSON, store *resources.Store, builtin *resources.CachingBuiltinEntityParser, language string, cfg *config.Config) (*probabilistic.Parser, error) {
	stopWords := make(map[string]bool, len(pc.IntentClassifier.Featurizer.StopWords))
	for _, w := range pc.IntentClassifier.Featurizer.StopWords {
		stopWords[w] = true
	}

	featurizer := &classifier.Featurizer{
		BestFeatures:                   pc.IntentClassifier.Featurizer.BestFeatures,
		Vocabulary:                     pc.IntentClassifier.Featurizer.Vocabulary,
		IDFDiag:                        pc.IntentClassifier.Featurizer.IDFDiag,
		StopWords:                      stopWords,
		SublinearTF:                    pc.IntentClassifier.Featurizer.SublinearTF,
		Language:                       language,
		EntityUtterancesToFeatureNames: pc.IntentClassifier.Featurizer.EntityUtterancesToFeatureNames,
		WordClusterName:                pc.IntentClassifier.Featurizer.WordClusterName,
		Store:                          store,
	}

	ic := &classifier.IntentClassifier{
		IntentNames: pc.IntentClassifier.IntentNames,
		Featurizer:  featurizer,
		LogReg: &classifier.MulticlassLogisticRegression{
			Intercept: pc.IntentClassifier.LogReg.Intercept,
			Weights:   pc.IntentClassifier.LogReg.Weights,
		},
	}

	slotFillers := make(map[string]slotfiller.SlotFiller, len(pc.SlotFillers))
	for intentName, sfc := range pc.SlotFillers {
		filler, err := buildSlotFiller(sfc, store, builtin, language, cfg)
		if err != nil {
			return nil, fmt.Errorf("slot filler for intent %q: %w", intentName, err)
		}
		slotFillers[intentName] = filler
	}

	return &probabilistic.Parser{Classifier: ic, SlotFillers: slotFillers}, nil
}

func buildSlotFiller(sfc slotFillerConfigJSON, store *resources.Store, builtin *resources.CachingBuiltinEntityParser, language string, cfg *config.Config) (*slotfiller.CRFSlotFiller, error) {
	scheme, err := crf.ParseScheme(sfc.TaggingScheme)
	if err != nil {
		return nil, err
	}

	deps := features.Deps{Store: store, Scheme: scheme, Language: language}
	configs := make([]features.Config, len(sfc.FeaturePipeline))
	for i, fc := range sfc.FeaturePipeline {
		configs[i] = features.Config{Name: fc.Name, Factory: fc.Factory, Args: fc.Args, Offsets: fc.Offsets}
	}
	pipeline, err := features.NewPipeline(configs, deps)
	if err != nil {
		return nil, err
	}

	blobJSON, err := base64.StdEncoding.DecodeString(sfc.CRF)
	if err != nil {
		return nil, fmt.Errorf("decoding crf blob: %w", err)
	}
	var blob crfBlobJSON
	if err := json.Unmarshal(blobJSON, &blob); err != nil {
		return nil, fmt.Errorf("parsing crf blob: %w", err)
	}
	tagger := crf.NewLinearChainTagger(blob.Labels, blob.StateWeight, blob.Transition)

	return &slotfiller.CRFSlotFiller{
		Tagger:           tagger,
		FeaturePipeline:  pipeline,
		Scheme:           scheme,
		Builtin:          builtin,
		Language:         language,
		SlotNameToEntity: sfc.SlotNameToEntity,
		MaxPermutations:  cfg.MaxAugmentationPermutations,
	}, nil
}
