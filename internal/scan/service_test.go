package scan

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/marthaea/link-guardian-safecheck/internal/audit"
	"github.com/marthaea/link-guardian-safecheck/internal/config"
	"github.com/marthaea/link-guardian-safecheck/internal/intel"
	"github.com/marthaea/link-guardian-safecheck/internal/target"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

type fixedSource struct {
	name   string
	signal intel.Signal
	err    error
	calls  int
}

func (f *fixedSource) Name() string { return f.name }

func (f *fixedSource) Lookup(_ context.Context, _ target.Parsed) (intel.Signal, error) {
	f.calls++
	return f.signal, f.err
}

func newService(sources ...intel.Source) *Service {
	return New(config.Default(), sources, audit.NopLogger(), zerolog.Nop())
}

func TestScan_HeuristicOnly(t *testing.T) {
	s := newService()
	v := s.Scan(context.Background(), "http://example.com")

	if !v.Degraded {
		t.Error("expected degraded verdict with no sources")
	}
	if v.WarningLevel != verdict.LevelSafe || !v.IsSafe {
		t.Errorf("expected safe verdict, got %s", v.WarningLevel)
	}
	if !strings.Contains(v.ThreatDetails, verdict.DegradedDisclosure) {
		t.Error("expected degraded disclosure in threat details")
	}
}

func TestScan_CacheReturnsSameVerdict(t *testing.T) {
	src := &fixedSource{name: "stub", signal: intel.Signal{Service: "stub"}}
	s := newService(src)

	first := s.Scan(context.Background(), "example.com")
	second := s.Scan(context.Background(), "EXAMPLE.com/")

	if src.calls != 1 {
		t.Errorf("expected one source lookup for equivalent inputs, got %d", src.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached verdict differs:\n%+v\n%+v", first, second)
	}
}

func TestScan_CacheClear(t *testing.T) {
	src := &fixedSource{name: "stub"}
	s := newService(src)

	s.Scan(context.Background(), "example.com")
	if s.Cache().Len() != 1 {
		t.Fatalf("expected 1 cached verdict, got %d", s.Cache().Len())
	}
	s.Cache().Clear()
	s.Scan(context.Background(), "example.com")
	if src.calls != 2 {
		t.Errorf("expected recomputation after clear, got %d calls", src.calls)
	}
}

func TestScan_FailingSourceDegrades(t *testing.T) {
	src := &fixedSource{name: "down", err: errors.New("timeout")}
	s := newService(src)

	v := s.Scan(context.Background(), "http://example.org")
	if !v.Degraded {
		t.Error("expected degraded verdict when the only source fails")
	}
	if v.WarningLevel != verdict.LevelSafe {
		t.Errorf("heuristic-only fallback should stay safe here, got %s", v.WarningLevel)
	}
}

func TestScan_PhishingSignalWins(t *testing.T) {
	risk := 90
	src := &fixedSource{name: "rep", signal: intel.Signal{Service: "rep", RiskScore: &risk, Phishing: true}}
	s := newService(src)

	v := s.Scan(context.Background(), "http://example.com")
	if v.WarningLevel != verdict.LevelDanger || v.IsSafe {
		t.Errorf("expected danger for phishing signal, got %s isSafe=%v", v.WarningLevel, v.IsSafe)
	}
}

func TestScan_Deterministic(t *testing.T) {
	a := newService(intel.SimulatedIPQS{}, intel.SimulatedVirusTotal{})
	b := newService(intel.SimulatedIPQS{}, intel.SimulatedVirusTotal{})

	va := a.Scan(context.Background(), "http://some-site.example")
	vb := b.Scan(context.Background(), "http://some-site.example")

	if va.RiskScore != vb.RiskScore || va.WarningLevel != vb.WarningLevel {
		t.Errorf("scan not deterministic across services: %+v vs %+v", va, vb)
	}
}

func TestScanAll_PreservesOrder(t *testing.T) {
	s := newService()
	inputs := []string{"http://example.com", "http://bit.ly/abc123"}
	verdicts := s.ScanAll(context.Background(), inputs)

	if len(verdicts) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(verdicts))
	}
	if verdicts[0].Input != inputs[0] || verdicts[1].Input != inputs[1] {
		t.Error("verdict order does not match input order")
	}
}

func TestScan_ObserversNotified(t *testing.T) {
	s := newService()
	var events []Event
	s.AddObserver(func(e Event) { events = append(events, e) })

	s.Scan(context.Background(), "example.com")
	s.Scan(context.Background(), "example.com") // cached

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Cached || !events[1].Cached {
		t.Errorf("expected second event to be cached: %+v", events)
	}
}

func TestBuildSources(t *testing.T) {
	p := config.Default()
	p.Sources.Simulate = true
	p.Sources.IPQS.Enabled = false

	sources := BuildSources(p, zerolog.Nop())
	if len(sources) != 2 {
		t.Fatalf("expected the two simulators, got %d", len(sources))
	}

	p.Sources.Simulate = false
	if got := BuildSources(p, zerolog.Nop()); len(got) != 0 {
		t.Errorf("expected no sources, got %d", len(got))
	}
}
