// Package errs defines the kind-tagged errors the engine surfaces, per
// the error handling design in spec §7: load-time fatal errors are
// returned to the caller of construction, call-time errors from one
// parser never abort the cascade, and logic errors (unknown intent,
// unknown slot) are surfaced with the offending identifier.
package errs

import "fmt"

// ModelLoadError wraps a failure to read or parse a model artifact.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model load failed for %q: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// WrongModelVersionError signals a model manifest built for a different
// engine version than the one compiled in.
type WrongModelVersionError struct {
	Found    string
	Expected string
}

func (e *WrongModelVersionError) Error() string {
	return fmt.Sprintf("wrong model version: found %q, expected %q", e.Found, e.Expected)
}

// UnknownIntentError is returned when GetSlots is called with an intent
// name absent from the dataset metadata.
type UnknownIntentError struct{ IntentName string }

func (e *UnknownIntentError) Error() string {
	return fmt.Sprintf("unknown intent: %q", e.IntentName)
}

// UnknownSlotError is returned when a slot name has no entry in the
// dataset's slot-name mappings for the given intent.
type UnknownSlotError struct {
	IntentName string
	SlotName   string
}

func (e *UnknownSlotError) Error() string {
	return fmt.Sprintf("unknown slot %q for intent %q", e.SlotName, e.IntentName)
}

// LockPoisonedError surfaces a poisoned tagger/cache lock as a call-level
// failure. The engine instance remains usable for other parsers/calls.
type LockPoisonedError struct{ Component string }

func (e *LockPoisonedError) Error() string {
	return fmt.Sprintf("lock poisoned in %s, parser instance unusable", e.Component)
}

// UnknownFeatureFactoryError is a fatal load-time error: the feature
// pipeline configuration names a factory this engine doesn't implement.
type UnknownFeatureFactoryError struct{ Name string }

func (e *UnknownFeatureFactoryError) Error() string {
	return fmt.Sprintf("unknown feature factory: %q", e.Name)
}

// UnknownTaggingSchemeError is a fatal load-time error for an
// unrecognized numeric tagging scheme code.
type UnknownTaggingSchemeError struct{ Code int }

func (e *UnknownTaggingSchemeError) Error() string {
	return fmt.Sprintf("unknown tagging scheme code: %d", e.Code)
}

// MissingResourceError is a fatal load-time error: metadata.json declares
// a resource (gazetteer, word cluster, stems) whose backing file is
// missing.
type MissingResourceError struct {
	Language string
	Resource string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("missing resource %q declared for language %q", e.Resource, e.Language)
}
