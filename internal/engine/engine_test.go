package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themobileprof/nlucore/internal/config"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

func writeAssistant(t *testing.T, file assistantFile) string {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, assistantFileName), data, 0644))
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ResourcesDir = filepath.Join(t.TempDir(), "resources-that-do-not-exist")
	return cfg
}

func TestFromPath_DeterministicScenario(t *testing.T) {
	file := assistantFile{
		ModelVersion: ModelVersion,
		DatasetMetadata: datasetMetadataJSON{
			LanguageCode: "en",
			SlotNameMappings: map[string]map[string]string{
				"dummy_intent_3": {"amount": "snips/amountOfMoney"},
			},
		},
		IntentParsers: []unitConfigJSON{
			{
				UnitName: "deterministic_intent_parser",
				Config: mustJSON(t, map[string]any{
					"intent_order": []string{"dummy_intent_3"},
					"patterns": map[string][]string{
						"dummy_intent_3": {`^Send (?P<g>%SNIPSAMOUNTOFMONEY%) to john$`},
					},
					"group_names_to_slot_names": map[string]string{"g": "amount"},
					"slot_names_to_entities": map[string]map[string]string{
						"dummy_intent_3": {"amount": "snips/amountOfMoney"},
					},
				}),
			},
		},
	}
	dir := writeAssistant(t, file)

	eng, err := FromPath(dir, testConfig(t))
	require.NoError(t, err)

	result := eng.Parse("Send 10 dollars to John", nil)
	require.NotNil(t, result.Intent)
	assert.Equal(t, "dummy_intent_3", result.Intent.IntentName)
	require.Len(t, result.Slots, 1)

	slot := result.Slots[0]
	assert.Equal(t, "amount", slot.SlotName)
	assert.Equal(t, "snips/amountOfMoney", slot.Entity)
	require.NotNil(t, slot.CharRange)
	assert.Equal(t, nlu.Range{Start: 5, End: 15}, *slot.CharRange)

	money, ok := slot.Value.Builtin.(nlu.AmountOfMoneyValue)
	require.True(t, ok)
	assert.Equal(t, 10.0, money.Value)
}

func TestFromPath_EmptyIntentParsers_AlwaysEmptyResult(t *testing.T) {
	file := assistantFile{
		ModelVersion: ModelVersion,
		DatasetMetadata: datasetMetadataJSON{
			LanguageCode: "en",
		},
	}
	dir := writeAssistant(t, file)

	eng, err := FromPath(dir, testConfig(t))
	require.NoError(t, err)

	for _, input := range []string{"", "anything at all", "Send 10 dollars to John"} {
		result := eng.Parse(input, nil)
		assert.Equal(t, input, result.Input)
		assert.Nil(t, result.Intent)
		assert.Nil(t, result.Slots)
	}
}

func TestFromPath_EmptyInput(t *testing.T) {
	file := assistantFile{
		ModelVersion: ModelVersion,
		DatasetMetadata: datasetMetadataJSON{
			LanguageCode: "en",
			SlotNameMappings: map[string]map[string]string{
				"dummy_intent_3": {"amount": "snips/amountOfMoney"},
			},
		},
		IntentParsers: []unitConfigJSON{
			{
				UnitName: "deterministic_intent_parser",
				Config: mustJSON(t, map[string]any{
					"intent_order": []string{"dummy_intent_3"},
					"patterns": map[string][]string{
						"dummy_intent_3": {`^Send (?P<g>%SNIPSAMOUNTOFMONEY%) to john$`},
					},
					"group_names_to_slot_names": map[string]string{"g": "amount"},
					"slot_names_to_entities": map[string]map[string]string{
						"dummy_intent_3": {"amount": "snips/amountOfMoney"},
					},
				}),
			},
		},
	}
	dir := writeAssistant(t, file)

	eng, err := FromPath(dir, testConfig(t))
	require.NoError(t, err)

	result := eng.Parse("", nil)
	assert.Equal(t, "", result.Input)
	assert.Nil(t, result.Intent)
	assert.Nil(t, result.Slots)
}

func TestFromPath_WrongModelVersion(t *testing.T) {
	dir := writeAssistant(t, assistantFile{
		ModelVersion:    "0.0.1",
		DatasetMetadata: datasetMetadataJSON{LanguageCode: "en"},
	})

	_, err := FromPath(dir, testConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong model version")
}

func TestEngine_GetSlots_BypassesClassification(t *testing.T) {
	file := assistantFile{
		ModelVersion: ModelVersion,
		DatasetMetadata: datasetMetadataJSON{
			LanguageCode: "en",
			SlotNameMappings: map[string]map[string]string{
				"dummy_intent_3": {"amount": "snips/amountOfMoney"},
			},
		},
		IntentParsers: []unitConfigJSON{
			{
				UnitName: "deterministic_intent_parser",
				Config: mustJSON(t, map[string]any{
					"intent_order": []string{"dummy_intent_3"},
					"patterns": map[string][]string{
						"dummy_intent_3": {`^Send (?P<g>%SNIPSAMOUNTOFMONEY%) to john$`},
					},
					"group_names_to_slot_names": map[string]string{"g": "amount"},
					"slot_names_to_entities": map[string]map[string]string{
						"dummy_intent_3": {"amount": "snips/amountOfMoney"},
					},
				}),
			},
		},
	}
	dir := writeAssistant(t, file)

	eng, err := FromPath(dir, testConfig(t))
	require.NoError(t, err)

	slots, err := eng.GetSlots("Send 10 dollars to John", "dummy_intent_3")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "amount", slots[0].SlotName)

	_, err = eng.GetSlots("Send 10 dollars to John", "no_such_intent")
	require.Error(t, err)
}

func TestEngine_GetIntents_DeterministicSingleton(t *testing.T) {
	file := assistantFile{
		ModelVersion: ModelVersion,
		DatasetMetadata: datasetMetadataJSON{
			LanguageCode: "en",
			SlotNameMappings: map[string]map[string]string{
				"dummy_intent_3": {"amount": "snips/amountOfMoney"},
			},
		},
		IntentParsers: []unitConfigJSON{
			{
				UnitName: "deterministic_intent_parser",
				Config: mustJSON(t, map[string]any{
					"intent_order": []string{"dummy_intent_3"},
					"patterns": map[string][]string{
						"dummy_intent_3": {`^Send (?P<g>%SNIPSAMOUNTOFMONEY%) to john$`},
					},
					"group_names_to_slot_names": map[string]string{"g": "amount"},
					"slot_names_to_entities": map[string]map[string]string{
						"dummy_intent_3": {"amount": "snips/amountOfMoney"},
					},
				}),
			},
		},
	}
	dir := writeAssistant(t, file)

	eng, err := FromPath(dir, testConfig(t))
	require.NoError(t, err)

	intents := eng.GetIntents("Send 10 dollars to John")
	require.Len(t, intents, 1)
	assert.Equal(t, "dummy_intent_3", intents[0].IntentName)
	assert.Equal(t, 1.0, intents[0].Probability)

	assert.Nil(t, eng.GetIntents(""))
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
