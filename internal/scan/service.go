package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marthaea/link-guardian-safecheck/internal/audit"
	"github.com/marthaea/link-guardian-safecheck/internal/config"
	"github.com/marthaea/link-guardian-safecheck/internal/heuristic"
	"github.com/marthaea/link-guardian-safecheck/internal/intel"
	"github.com/marthaea/link-guardian-safecheck/internal/target"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

// EventObserver receives a notification for every completed scan.
type EventObserver func(event Event)

// Event describes one completed scan for observers (dashboard, tests).
type Event struct {
	Timestamp    time.Time            `json:"timestamp"`
	ScanID       string               `json:"scan_id"`
	Input        string               `json:"input"`
	Kind         target.Kind          `json:"kind"`
	Domain       string               `json:"domain"`
	RiskScore    int                  `json:"risk_score"`
	WarningLevel verdict.WarningLevel `json:"warning_level"`
	IsSafe       bool                 `json:"is_safe"`
	Degraded     bool                 `json:"degraded"`
	Cached       bool                 `json:"cached"`

	// Full verdict for observers that persist or re-render results.
	// Excluded from the serialized event to keep the wire format small.
	Verdict verdict.Verdict `json:"-"`
}

// Service runs the normalize → score → gather-signals → combine pipeline
// and owns the session verdict cache. Scans are safe to run concurrently;
// the cache is the only shared state.
type Service struct {
	profile     *config.Profile
	scorer      *heuristic.Scorer
	sources     []intel.Source
	cache       *Cache
	auditLogger *audit.Logger
	logger      zerolog.Logger

	observerMu sync.RWMutex
	observers  []EventObserver
}

// New creates a Service. sources may be empty, in which case every scan
// takes the heuristic-only path.
func New(profile *config.Profile, sources []intel.Source, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		profile:     profile,
		scorer:      heuristic.New(),
		sources:     sources,
		cache:       NewCache(),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// BuildSources assembles the external signal sources a profile enables:
// the real IPQS client when configured with a key, and the deterministic
// simulators otherwise or in addition.
func BuildSources(profile *config.Profile, logger zerolog.Logger) []intel.Source {
	var sources []intel.Source
	if profile.Sources.IPQS.Enabled {
		if key := profile.IPQSKey(); key != "" {
			sources = append(sources, intel.NewIPQSClient(key, profile.Sources.IPQS.Strictness, logger))
		} else {
			logger.Warn().
				Str("env", profile.Sources.IPQS.APIKeyEnv).
				Msg("IPQS enabled but no API key in environment, skipping")
		}
	}
	if profile.Sources.Simulate {
		sources = append(sources, intel.SimulatedIPQS{}, intel.SimulatedVirusTotal{})
	}
	return sources
}

// Scan produces the verdict for one raw input. A cached verdict for the
// same normalized input is returned as-is, without recomputation.
func (s *Service) Scan(ctx context.Context, raw string) verdict.Verdict {
	scanID := "scan-" + uuid.NewString()
	tgt := target.Parse(raw)

	if v, ok := s.cache.Get(tgt.Normalized); ok {
		s.logger.Debug().
			Str("scan_id", scanID).
			Str("input", tgt.Normalized).
			Msg("cache hit")
		s.finish(scanID, tgt, v, true)
		return v
	}

	analysis := s.scorer.Score(tgt)
	heuristic.Classify(&analysis, s.profile.Heuristic)

	signals := intel.Gather(ctx, s.sources, tgt, s.profile.SourceTimeout(), s.logger)

	v := verdict.Combine(tgt, analysis, signals, s.profile.Combiner)
	s.cache.Put(tgt.Normalized, v)

	s.logger.Info().
		Str("scan_id", scanID).
		Str("domain", tgt.Domain).
		Str("kind", string(tgt.Kind)).
		Int("heuristic_score", analysis.Score).
		Int("risk_score", v.RiskScore).
		Str("warning_level", string(v.WarningLevel)).
		Bool("degraded", v.Degraded).
		Msg("scan complete")

	s.finish(scanID, tgt, v, false)
	return v
}

// ScanAll scans a batch of inputs sequentially and returns the verdicts
// in input order.
func (s *Service) ScanAll(ctx context.Context, inputs []string) []verdict.Verdict {
	verdicts := make([]verdict.Verdict, 0, len(inputs))
	for _, in := range inputs {
		verdicts = append(verdicts, s.Scan(ctx, in))
	}
	return verdicts
}

// Cache exposes the verdict cache (for clearing and inspection).
func (s *Service) Cache() *Cache {
	return s.cache
}

// Profile returns the active scan profile.
func (s *Service) Profile() *config.Profile {
	return s.profile
}

// AddObserver registers a callback invoked after every scan.
func (s *Service) AddObserver(fn EventObserver) {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()
	s.observers = append(s.observers, fn)
}

// finish writes the audit entry and notifies observers.
func (s *Service) finish(scanID string, tgt target.Parsed, v verdict.Verdict, cached bool) {
	var sourceNames []string
	for _, sig := range v.Signals {
		sourceNames = append(sourceNames, sig.Service)
	}
	s.auditLogger.Log(audit.Entry{
		ScanID:         scanID,
		Input:          tgt.Raw,
		Kind:           tgt.Kind,
		Domain:         tgt.Domain,
		HeuristicScore: v.HeuristicScore,
		RiskScore:      v.RiskScore,
		WarningLevel:   v.WarningLevel,
		IsSafe:         v.IsSafe,
		Degraded:       v.Degraded,
		Cached:         cached,
		Sources:        sourceNames,
	})

	event := Event{
		Timestamp:    time.Now().UTC(),
		ScanID:       scanID,
		Input:        tgt.Raw,
		Kind:         tgt.Kind,
		Domain:       tgt.Domain,
		RiskScore:    v.RiskScore,
		WarningLevel: v.WarningLevel,
		IsSafe:       v.IsSafe,
		Degraded:     v.Degraded,
		Cached:       cached,
		Verdict:      v,
	}

	s.observerMu.RLock()
	observers := s.observers
	s.observerMu.RUnlock()
	for _, fn := range observers {
		fn(event)
	}
}
