package verdict

import (
	"fmt"
	"strings"

	"github.com/marthaea/link-guardian-safecheck/internal/heuristic"
	"github.com/marthaea/link-guardian-safecheck/internal/intel"
)

// DegradedDisclosure is the marker consumers look for to know a verdict
// was built without external verification. It must lead the rendered
// text whenever all signals were unavailable.
const DegradedDisclosure = "External verification unavailable — this analysis is heuristic-only and lower confidence."

// recommendations is the fixed closing sentence per warning level.
var recommendations = map[WarningLevel]string{
	LevelSafe:    "This link appears safe based on the available analysis. Exercise normal web browsing caution.",
	LevelWarning: "Treat this link with caution and verify the sender or source before proceeding.",
	LevelDanger:  "Do not open this link. It matches patterns commonly seen in phishing and scam campaigns.",
}

// contributingFactors is the ordered factor list of the verdict: one
// summary line per available external signal first, then the heuristic
// factors in rule-evaluation order.
func contributingFactors(analysis heuristic.Analysis, signals []intel.Signal, pol Policy) []string {
	factors := make([]string, 0, len(signals)+len(analysis.Factors))
	for _, sig := range signals {
		factors = append(factors, summarizeSignal(sig, pol))
	}
	factors = append(factors, analysis.Factors...)
	return factors
}

// summarizeSignal renders one external signal as a single line noting its
// severity bucket and raised flags.
func summarizeSignal(sig intel.Signal, pol Policy) string {
	parts := []string{fmt.Sprintf("%s: %s", sig.Service, signalSeverity(sig, pol))}
	if sig.RiskScore != nil {
		parts = append(parts, fmt.Sprintf("risk score %d/100", *sig.RiskScore))
	}
	if ratio, ok := sig.DetectionRatio(); ok {
		parts = append(parts, fmt.Sprintf("detected by %d/%d engines (%.0f%%)", *sig.Positives, *sig.Total, ratio*100))
	}
	if flags := flagList(sig); len(flags) > 0 {
		parts = append(parts, "flags: "+strings.Join(flags, ", "))
	}
	return strings.Join(parts, ", ")
}

func flagList(sig intel.Signal) []string {
	var flags []string
	if sig.Phishing {
		flags = append(flags, "phishing")
	}
	if sig.Malware {
		flags = append(flags, "malware")
	}
	if sig.Suspicious {
		flags = append(flags, "suspicious")
	}
	if sig.Spamming {
		flags = append(flags, "spamming")
	}
	return flags
}

// renderThreatDetails assembles the deterministic multi-line report:
// external signal blocks first, then the heuristic analysis, then the
// closing recommendation. Degraded verdicts lead with the disclosure.
func renderThreatDetails(v Verdict, analysis heuristic.Analysis, signals []intel.Signal, pol Policy) string {
	var lines []string

	if v.Degraded {
		lines = append(lines, DegradedDisclosure, "")
	}

	if v.IsSafe {
		lines = append(lines, "This link appears safe based on the available analysis.")
	} else {
		lines = append(lines, "This link has been flagged as potentially unsafe.")
	}
	lines = append(lines, "")

	if len(signals) > 0 {
		lines = append(lines, "External security analysis:")
		for _, sig := range signals {
			lines = append(lines, "  - "+summarizeSignal(sig, pol))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "Heuristic analysis:")
	lines = append(lines, fmt.Sprintf("  - Suspicion score: %d/100", analysis.Score))
	lines = append(lines, fmt.Sprintf("  - Risk level: %s", strings.ToUpper(string(analysis.RiskLevel))))
	if len(analysis.Factors) > 0 {
		lines = append(lines, "  - Factors:")
		for _, f := range analysis.Factors {
			lines = append(lines, "      "+f)
		}
	}

	lines = append(lines, "", "Recommendation:")
	lines = append(lines, "  "+recommendations[v.WarningLevel])

	return strings.Join(lines, "\n")
}
