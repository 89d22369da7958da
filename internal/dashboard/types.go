package dashboard

import (
	"time"

	"github.com/marthaea/link-guardian-safecheck/internal/config"
	"github.com/marthaea/link-guardian-safecheck/internal/scan"
)

// FeedEvent wraps a scan event with a unique dashboard ID.
type FeedEvent struct {
	ID string `json:"id"`
	scan.Event
}

// WSMessage is the envelope for all WebSocket messages.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// StatsSnapshot is a point-in-time snapshot of accumulated statistics.
type StatsSnapshot struct {
	TotalScans    uint64            `json:"total_scans"`
	FlaggedCount  uint64            `json:"flagged_count"`
	SafeCount     uint64            `json:"safe_count"`
	DegradedCount uint64            `json:"degraded_count"`
	CachedCount   uint64            `json:"cached_count"`
	AvgRiskScore  float64           `json:"avg_risk_score"`
	LevelCounts   map[string]uint64 `json:"level_counts"`
	KindCounts    map[string]uint64 `json:"kind_counts"`
	RiskHistogram [10]uint64        `json:"risk_histogram"`
	TimeSeries    []TimeSeriesPoint `json:"time_series"`
}

// TimeSeriesPoint is a single point in the 60-minute time series.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     uint64    `json:"count"`
	Flagged   uint64    `json:"flagged"`
}

// InitialState is sent to clients on WebSocket connect.
type InitialState struct {
	Events  []*FeedEvent    `json:"events"`
	Stats   *StatsSnapshot  `json:"stats"`
	Profile *config.Profile `json:"profile"`
}
