package heuristic

// RiskLevel buckets a heuristic score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Thresholds define the score cutoffs for the classifier. The scanner
// uses one pair consistently for the heuristic-only path; the combiner
// applies its own, tighter pair when external signals are present.
type Thresholds struct {
	Medium int `yaml:"medium" json:"medium"`
	High   int `yaml:"high" json:"high"`
}

// DefaultThresholds is the heuristic-only pair: high at 50, medium at 25.
var DefaultThresholds = Thresholds{Medium: 25, High: 50}

// explanations is the fixed lookup of user-facing sentences per level.
// No free text is ever generated.
var explanations = map[RiskLevel]string{
	RiskHigh:   "This input has multiple suspicious characteristics and should be treated with extreme caution. Consider avoiding this link entirely.",
	RiskMedium: "This input shows some suspicious patterns. Proceed with caution and verify the source before clicking.",
	RiskLow:    "This input has minor suspicious elements but appears relatively safe. Still exercise normal web browsing caution.",
}

// cleanExplanation replaces the low-risk sentence when no rule fired at all.
const cleanExplanation = "This input shows no obvious suspicious patterns based on our heuristic analysis."

// Level maps a score to a risk level using the given thresholds.
func (t Thresholds) Level(score int) RiskLevel {
	switch {
	case score >= t.High:
		return RiskHigh
	case score >= t.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Classify fills in RiskLevel and Explanation on an analysis.
func Classify(a *Analysis, t Thresholds) {
	a.RiskLevel = t.Level(a.Score)
	a.Explanation = explanations[a.RiskLevel]
	if a.RiskLevel == RiskLow && a.Score == 0 {
		a.Explanation = cleanExplanation
	}
}

// Suspicious reports whether a score crosses the medium threshold.
func (t Thresholds) Suspicious(score int) bool {
	return score >= t.Medium
}
