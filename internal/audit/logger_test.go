package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/marthaea/link-guardian-safecheck/internal/target"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

func TestLog_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	entries := []Entry{
		{ScanID: "scan-1", Input: "http://bit.ly/x", Kind: target.KindLink, RiskScore: 35, WarningLevel: verdict.LevelWarning},
		{ScanID: "scan-2", Input: "a@b.com", Kind: target.KindEmail, IsSafe: true, WarningLevel: verdict.LevelSafe},
	}
	for _, e := range entries {
		if err := l.Log(e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var got Entry
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if got.ScanID != "scan-1" || got.RiskScore != 35 {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set automatically")
	}
}

func TestNopLogger(t *testing.T) {
	if err := NopLogger().Log(Entry{ScanID: "x"}); err != nil {
		t.Errorf("nop logger must not fail: %v", err)
	}
}
