package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/marthaea/link-guardian-safecheck/internal/scan"
	"github.com/marthaea/link-guardian-safecheck/internal/target"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

func feedEvent(id string, score int, level verdict.WarningLevel, safe bool) *FeedEvent {
	return &FeedEvent{
		ID: id,
		Event: scan.Event{
			Timestamp:    time.Now().UTC(),
			ScanID:       "scan-" + id,
			Input:        "http://example.com/" + id,
			Kind:         target.KindLink,
			Domain:       "example.com",
			RiskScore:    score,
			WarningLevel: level,
			IsSafe:       safe,
		},
	}
}

func TestStats_Record(t *testing.T) {
	s := NewStats()
	s.Record(feedEvent("a", 5, verdict.LevelSafe, true))
	s.Record(feedEvent("b", 55, verdict.LevelWarning, false))
	s.Record(feedEvent("c", 95, verdict.LevelDanger, false))

	snap := s.Snapshot()
	if snap.TotalScans != 3 {
		t.Fatalf("expected 3 scans, got %d", snap.TotalScans)
	}
	if snap.SafeCount != 1 || snap.FlaggedCount != 2 {
		t.Errorf("unexpected safe/flagged: %d/%d", snap.SafeCount, snap.FlaggedCount)
	}
	if snap.AvgRiskScore != (5+55+95)/3.0 {
		t.Errorf("unexpected avg risk: %f", snap.AvgRiskScore)
	}
	if snap.RiskHistogram[0] != 1 || snap.RiskHistogram[5] != 1 || snap.RiskHistogram[9] != 1 {
		t.Errorf("unexpected histogram: %v", snap.RiskHistogram)
	}
	if snap.LevelCounts["danger"] != 1 || snap.LevelCounts["warning"] != 1 || snap.LevelCounts["safe"] != 1 {
		t.Errorf("unexpected level counts: %v", snap.LevelCounts)
	}
	if snap.KindCounts["link"] != 3 {
		t.Errorf("unexpected kind counts: %v", snap.KindCounts)
	}
	if len(snap.TimeSeries) != timeSeriesMinutes {
		t.Errorf("expected %d time series points, got %d", timeSeriesMinutes, len(snap.TimeSeries))
	}
}

func TestStats_HistogramCap(t *testing.T) {
	s := NewStats()
	s.Record(feedEvent("a", 100, verdict.LevelDanger, false))

	snap := s.Snapshot()
	if snap.RiskHistogram[9] != 1 {
		t.Errorf("score 100 should land in the top bucket: %v", snap.RiskHistogram)
	}
}

func TestRingBuffer_Wraparound(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Add(feedEvent(fmt.Sprintf("evt-%d", i), 10, verdict.LevelSafe, true))
	}

	if rb.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", rb.Len())
	}
	all := rb.All()
	if all[0].ID != "evt-2" || all[2].ID != "evt-4" {
		t.Errorf("unexpected order after wraparound: %s .. %s", all[0].ID, all[2].ID)
	}
}

func TestHub_OnEventFeedsBufferAndStats(t *testing.T) {
	hub := NewHub(nil)
	hub.OnEvent(scan.Event{
		Timestamp:    time.Now().UTC(),
		Input:        "http://bit.ly/x",
		Kind:         target.KindLink,
		Domain:       "bit.ly",
		RiskScore:    40,
		WarningLevel: verdict.LevelWarning,
	})

	if hub.Events().Len() != 1 {
		t.Fatalf("expected 1 buffered event, got %d", hub.Events().Len())
	}
	snap := hub.StatsSnapshot()
	if snap.TotalScans != 1 || snap.FlaggedCount != 1 {
		t.Errorf("unexpected stats: %+v", snap)
	}
}
