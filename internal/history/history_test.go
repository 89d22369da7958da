package history_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marthaea/link-guardian-safecheck/internal/history"
	"github.com/marthaea/link-guardian-safecheck/internal/target"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

func openTestStore(t *testing.T) *history.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	store, err := history.New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleVerdict(url string, level verdict.WarningLevel, ts time.Time) verdict.Verdict {
	return verdict.Verdict{
		Input:          url,
		Kind:           target.KindLink,
		Domain:         "example.com",
		IsSafe:         level == verdict.LevelSafe,
		WarningLevel:   level,
		RiskScore:      42,
		HeuristicScore: 10,
		ThreatDetails:  "details",
		Timestamp:      ts,
	}
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"scan-a", "scan-b", "scan-c"} {
		v := sampleVerdict("http://example.com/"+id, verdict.LevelWarning, base.Add(time.Duration(i)*time.Minute))
		if err := store.Record(ctx, id, v); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "scan-c" || entries[1].ID != "scan-b" {
		t.Fatalf("expected newest first, got %s, %s", entries[0].ID, entries[1].ID)
	}

	e := entries[0]
	if e.Input != "http://example.com/scan-c" {
		t.Errorf("unexpected input: %s", e.Input)
	}
	if e.Kind != target.KindLink {
		t.Errorf("unexpected kind: %s", e.Kind)
	}
	if e.WarningLevel != verdict.LevelWarning {
		t.Errorf("unexpected warning level: %s", e.WarningLevel)
	}
	if e.RiskScore != 42 || e.HeuristicScore != 10 {
		t.Errorf("unexpected scores: %d / %d", e.RiskScore, e.HeuristicScore)
	}
	if e.IsSafe {
		t.Error("warning entry should not be safe")
	}
	if !e.CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("unexpected created at: %s", e.CreatedAt)
	}
}

func TestStore_ByDomainAndCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	v1 := sampleVerdict("http://example.com/a", verdict.LevelSafe, now)
	v2 := sampleVerdict("http://other.org/b", verdict.LevelDanger, now)
	v2.Domain = "other.org"

	if err := store.Record(ctx, "scan-1", v1); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, "scan-2", v2); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.ByDomain(ctx, "example.com", 0)
	if err != nil {
		t.Fatalf("ByDomain: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "scan-1" {
		t.Fatalf("unexpected ByDomain result: %+v", entries)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
}

func TestStore_RecentEmpty(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
