// Package telemetry is the JSONL per-call tracer for the engine,
// modeled line-for-line on the teacher's internal/journey logger: a
// singleton, mutex-guarded, append-only JSON-lines writer. Where the
// teacher logs search steps and final candidates for a REPL session,
// this logger records which parser in the cascade matched an
// utterance, how long the call took, and how many slots it produced.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one parse call's trace record.
type Event struct {
	Timestamp     time.Time `json:"timestamp"`
	TraceID       string    `json:"trace_id"`
	Input         string    `json:"input"`
	MatchedParser string    `json:"matched_parser,omitempty"`
	IntentName    string    `json:"intent_name,omitempty"`
	SlotCount     int       `json:"slot_count"`
	DurationMs    int64     `json:"duration_ms"`
}

// Logger appends Events to a JSONL file. It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	path    string
	enabled bool
}

var instance *Logger
var once sync.Once

// GetLogger returns the process-wide singleton logger. path is only
// honored on the first call per process, matching the original
// journey logger's fixed-path singleton; an empty path disables
// logging entirely.
func GetLogger(path string) *Logger {
	once.Do(func() {
		instance = &Logger{path: path, enabled: path != ""}
	})
	return instance
}

// RecordParse appends one trace line. Write failures are swallowed:
// telemetry is diagnostic, never load-bearing for a parse result.
func (l *Logger) RecordParse(traceID, input, matchedParser, intentName string, slotCount int, duration time.Duration) {
	if l == nil || !l.enabled {
		return
	}
	event := Event{
		Timestamp:     time.Now(),
		TraceID:       traceID,
		Input:         input,
		MatchedParser: matchedParser,
		IntentName:    intentName,
		SlotCount:     slotCount,
		DurationMs:    duration.Milliseconds(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	f.Write(data)
	f.WriteString("\n")
}

// NewTraceID returns a fresh per-call trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}
