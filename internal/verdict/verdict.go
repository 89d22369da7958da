package verdict

import (
	"time"

	"github.com/marthaea/link-guardian-safecheck/internal/heuristic"
	"github.com/marthaea/link-guardian-safecheck/internal/intel"
	"github.com/marthaea/link-guardian-safecheck/internal/target"
)

// WarningLevel is the user-facing severity bucket.
type WarningLevel string

const (
	LevelSafe    WarningLevel = "safe"
	LevelWarning WarningLevel = "warning"
	LevelDanger  WarningLevel = "danger"
)

// rank orders warning levels for most-severe-wins aggregation.
func rank(l WarningLevel) int {
	switch l {
	case LevelDanger:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}

// maxLevel returns the more severe of two levels.
func maxLevel(a, b WarningLevel) WarningLevel {
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// Verdict is the final, user-visible result of a scan. Once built it is
// never mutated; the scan service caches and returns the same value.
type Verdict struct {
	Input              string              `json:"url"`
	Kind               target.Kind         `json:"type"`
	Domain             string              `json:"domain"`
	IsSafe             bool                `json:"isSafe"`
	WarningLevel       WarningLevel        `json:"warningLevel"`
	RiskScore          int                 `json:"riskScore"`
	HeuristicScore     int                 `json:"heuristicScore"`
	HeuristicRiskLevel heuristic.RiskLevel `json:"heuristicRiskLevel"`
	Factors            []string            `json:"factors"`
	ThreatDetails      string              `json:"threatDetails"`
	DomainAge          string              `json:"domainAge"`
	Country            string              `json:"country"`
	Degraded           bool                `json:"degraded"`
	Signals            []intel.Signal      `json:"signals,omitempty"`
	Timestamp          time.Time           `json:"timestamp"`
}

// Weights is the combination weight vector. It is configuration, not a
// hardcoded constant, so different weighting policies can be exercised.
type Weights struct {
	Reputation float64 `yaml:"reputation" json:"reputation"`
	Detection  float64 `yaml:"detection" json:"detection"`
	Heuristic  float64 `yaml:"heuristic" json:"heuristic"`
}

// Policy holds every threshold the combiner consults. One consistent set
// applies to the whole process; call sites never vary it.
type Policy struct {
	// Combined-score cutoffs, applied only when external signals are
	// present. Tighter than the heuristic-only classifier thresholds:
	// independent external confirmation lowers the bar for flagging.
	WarningAt int `yaml:"warning_at" json:"warning_at"`
	DangerAt  int `yaml:"danger_at" json:"danger_at"`

	// A verdict can only be safe below this combined score.
	SafetyCeiling int `yaml:"safety_ceiling" json:"safety_ceiling"`

	// Detection ratios above this are unsafe.
	DetectionRatioCutoff float64 `yaml:"detection_ratio_cutoff" json:"detection_ratio_cutoff"`

	// Reputation scores at or above these marks carry danger/warning
	// severity on their own.
	DangerRiskScore  int `yaml:"danger_risk_score" json:"danger_risk_score"`
	WarningRiskScore int `yaml:"warning_risk_score" json:"warning_risk_score"`

	Weights Weights `yaml:"weights" json:"weights"`
}

// DefaultPolicy is the documented threshold set.
var DefaultPolicy = Policy{
	WarningAt:            20,
	DangerAt:             40,
	SafetyCeiling:        30,
	DetectionRatioCutoff: 0.10,
	DangerRiskScore:      75,
	WarningRiskScore:     40,
	Weights:              Weights{Reputation: 0.45, Detection: 0.30, Heuristic: 0.25},
}
