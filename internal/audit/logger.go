package audit

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/marthaea/link-guardian-safecheck/internal/target"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

// Entry is one scan record in the JSON-line audit log.
type Entry struct {
	Timestamp      time.Time            `json:"timestamp"`
	ScanID         string               `json:"scan_id"`
	Input          string               `json:"input"`
	Kind           target.Kind          `json:"kind"`
	Domain         string               `json:"domain"`
	HeuristicScore int                  `json:"heuristic_score"`
	RiskScore      int                  `json:"risk_score"`
	WarningLevel   verdict.WarningLevel `json:"warning_level"`
	IsSafe         bool                 `json:"is_safe"`
	Degraded       bool                 `json:"degraded"`
	Cached         bool                 `json:"cached"`
	Sources        []string             `json:"sources,omitempty"`
}

// Logger writes JSON-line audit entries.
type Logger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewLogger creates a logger writing to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{enc: json.NewEncoder(w)}
}

// NewFileLogger creates a logger appending to the file at path.
func NewFileLogger(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return NewLogger(f), nil
}

// NewStderrLogger creates a logger that writes to stderr.
func NewStderrLogger() *Logger {
	return NewLogger(os.Stderr)
}

// NopLogger returns a logger that discards all entries.
func NopLogger() *Logger {
	return NewLogger(io.Discard)
}

// Log writes a single entry as one JSON line.
func (l *Logger) Log(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}
