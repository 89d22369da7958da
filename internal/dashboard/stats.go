package dashboard

import (
	"sync"
	"time"
)

const timeSeriesMinutes = 60

// Stats accumulates real-time statistics from scan events.
type Stats struct {
	mu sync.RWMutex

	totalScans    uint64
	flaggedCount  uint64
	safeCount     uint64
	degradedCount uint64
	cachedCount   uint64
	riskScoreSum  float64

	levelCounts map[string]uint64
	kindCounts  map[string]uint64
	riskHist    [10]uint64 // buckets: [0-10), [10-20), ..., [90-100]

	// Per-minute buckets for the last 60 minutes
	timeBuckets [timeSeriesMinutes]timeBucket
}

type timeBucket struct {
	minute  time.Time // truncated to minute
	count   uint64
	flagged uint64
}

// NewStats creates a new stats accumulator.
func NewStats() *Stats {
	return &Stats{
		levelCounts: make(map[string]uint64),
		kindCounts:  make(map[string]uint64),
	}
}

// Record ingests a single scan event.
func (s *Stats) Record(event *FeedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalScans++

	if event.IsSafe {
		s.safeCount++
	} else {
		s.flaggedCount++
	}
	if event.Degraded {
		s.degradedCount++
	}
	if event.Cached {
		s.cachedCount++
	}

	s.riskScoreSum += float64(event.RiskScore)

	// Risk histogram: bucket index = score/10, capped at 9
	bucket := event.RiskScore / 10
	if bucket > 9 {
		bucket = 9
	}
	if bucket < 0 {
		bucket = 0
	}
	s.riskHist[bucket]++

	s.levelCounts[string(event.WarningLevel)]++
	s.kindCounts[string(event.Kind)]++

	// Time series
	now := event.Timestamp.Truncate(time.Minute)
	idx := now.Minute() % timeSeriesMinutes
	if s.timeBuckets[idx].minute != now {
		s.timeBuckets[idx] = timeBucket{minute: now}
	}
	s.timeBuckets[idx].count++
	if !event.IsSafe {
		s.timeBuckets[idx].flagged++
	}
}

// Snapshot returns a point-in-time copy of the stats.
func (s *Stats) Snapshot() *StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &StatsSnapshot{
		TotalScans:    s.totalScans,
		FlaggedCount:  s.flaggedCount,
		SafeCount:     s.safeCount,
		DegradedCount: s.degradedCount,
		CachedCount:   s.cachedCount,
		LevelCounts:   copyMap(s.levelCounts),
		KindCounts:    copyMap(s.kindCounts),
		RiskHistogram: s.riskHist,
	}

	if s.totalScans > 0 {
		snap.AvgRiskScore = s.riskScoreSum / float64(s.totalScans)
	}

	// Build time series from buckets (last 60 minutes, chronological)
	now := time.Now().UTC().Truncate(time.Minute)
	cutoff := now.Add(-timeSeriesMinutes * time.Minute)
	for i := 0; i < timeSeriesMinutes; i++ {
		t := cutoff.Add(time.Duration(i+1) * time.Minute)
		idx := t.Minute() % timeSeriesMinutes
		b := s.timeBuckets[idx]
		if b.minute == t {
			snap.TimeSeries = append(snap.TimeSeries, TimeSeriesPoint{
				Timestamp: b.minute,
				Count:     b.count,
				Flagged:   b.flagged,
			})
		} else {
			snap.TimeSeries = append(snap.TimeSeries, TimeSeriesPoint{
				Timestamp: t,
				Count:     0,
				Flagged:   0,
			})
		}
	}

	return snap
}

func copyMap(m map[string]uint64) map[string]uint64 {
	c := make(map[string]uint64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
