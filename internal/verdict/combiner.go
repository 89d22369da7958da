package verdict

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/marthaea/link-guardian-safecheck/internal/heuristic"
	"github.com/marthaea/link-guardian-safecheck/internal/intel"
	"github.com/marthaea/link-guardian-safecheck/internal/target"
)

// Combine merges the heuristic analysis with zero or more external
// signals into one Verdict. With no signals the verdict is heuristic-only
// and carries an explicit degraded-confidence disclosure.
func Combine(tgt target.Parsed, analysis heuristic.Analysis, signals []intel.Signal, pol Policy) Verdict {
	if externallyRisky(signals, pol) && analysis.SafeDiscount > 0 {
		analysis = withholdSafeDiscount(analysis)
	}

	v := Verdict{
		Input:              tgt.Raw,
		Kind:               tgt.Kind,
		Domain:             tgt.Domain,
		HeuristicScore:     analysis.Score,
		HeuristicRiskLevel: analysis.RiskLevel,
		Degraded:           len(signals) == 0,
		Signals:            signals,
		DomainAge:          "Unknown",
		Country:            "Unknown",
		Timestamp:          time.Now().UTC(),
	}

	v.RiskScore = combinedScore(analysis.Score, signals, pol.Weights)
	v.WarningLevel = warningLevel(analysis, signals, v.RiskScore, pol)
	v.IsSafe = isSafe(analysis, signals, v.RiskScore, pol)

	for _, sig := range signals {
		if v.DomainAge == "Unknown" && sig.DomainAgeDays != nil {
			v.DomainAge = fmt.Sprintf("%d days", *sig.DomainAgeDays)
		}
		if v.Country == "Unknown" && sig.CountryCode != "" {
			v.Country = sig.CountryCode
		}
	}

	v.Factors = contributingFactors(analysis, signals, pol)
	v.ThreatDetails = renderThreatDetails(v, analysis, signals, pol)
	return v
}

// combinedScore is the weighted merge of the strongest reputation score,
// the strongest detection ratio, and the heuristic score. Weights for
// absent signal classes drop out and the rest renormalize. With no
// signals at all, the heuristic score passes through unchanged.
func combinedScore(heuristicScore int, signals []intel.Signal, w Weights) int {
	rep, repOK := strongestReputation(signals)
	ratio, ratioOK := strongestRatio(signals)

	if !repOK && !ratioOK {
		return heuristicScore
	}

	sum := w.Heuristic * float64(heuristicScore)
	weightTotal := w.Heuristic
	if repOK {
		sum += w.Reputation * float64(rep)
		weightTotal += w.Reputation
	}
	if ratioOK {
		sum += w.Detection * ratio * 100
		weightTotal += w.Detection
	}
	if weightTotal == 0 {
		return heuristicScore
	}

	return clampScore(int(math.Round(sum / weightTotal)))
}

// signalSeverity buckets one external signal.
func signalSeverity(sig intel.Signal, pol Policy) WarningLevel {
	if sig.Phishing || sig.Malware {
		return LevelDanger
	}
	if sig.RiskScore != nil && *sig.RiskScore >= pol.DangerRiskScore {
		return LevelDanger
	}
	if sig.Suspicious || sig.Spamming {
		return LevelWarning
	}
	if sig.RiskScore != nil && *sig.RiskScore >= pol.WarningRiskScore {
		return LevelWarning
	}
	if p := sig.Positives; p != nil && *p > 0 {
		return LevelWarning
	}
	return LevelSafe
}

// warningLevel applies most-severe-wins across every source. With no
// signals the level derives purely from the heuristic risk level; with
// signals present the tighter combined-score cutoffs also apply.
func warningLevel(analysis heuristic.Analysis, signals []intel.Signal, combined int, pol Policy) WarningLevel {
	level := heuristicWarningLevel(analysis.RiskLevel)

	if len(signals) == 0 {
		return level
	}

	for _, sig := range signals {
		level = maxLevel(level, signalSeverity(sig, pol))
	}

	switch {
	case combined >= pol.DangerAt:
		level = maxLevel(level, LevelDanger)
	case combined >= pol.WarningAt:
		level = maxLevel(level, LevelWarning)
	}
	return level
}

// heuristicWarningLevel maps the classifier's bucket onto the verdict scale.
func heuristicWarningLevel(l heuristic.RiskLevel) WarningLevel {
	switch l {
	case heuristic.RiskHigh:
		return LevelDanger
	case heuristic.RiskMedium:
		return LevelWarning
	default:
		return LevelSafe
	}
}

// isSafe requires every check to pass: no danger-severity signal, no
// detection ratio above the cutoff, a low heuristic risk level, and a
// combined score under the safety ceiling.
func isSafe(analysis heuristic.Analysis, signals []intel.Signal, combined int, pol Policy) bool {
	if analysis.RiskLevel != heuristic.RiskLow {
		return false
	}
	if combined >= pol.SafetyCeiling {
		return false
	}
	for _, sig := range signals {
		if signalSeverity(sig, pol) == LevelDanger {
			return false
		}
		if ratio, ok := sig.DetectionRatio(); ok && ratio > pol.DetectionRatioCutoff {
			return false
		}
	}
	return true
}

// externallyRisky reports whether any signal carries warning severity or
// worse. Used to decide whether the known-safe-domain discount stands.
func externallyRisky(signals []intel.Signal, pol Policy) bool {
	for _, sig := range signals {
		if signalSeverity(sig, pol) != LevelSafe {
			return true
		}
	}
	return false
}

// withholdSafeDiscount undoes the known-safe-domain discount and swaps
// its factor for a neutral note. External corroboration of risk outranks
// the allowlist.
func withholdSafeDiscount(a heuristic.Analysis) heuristic.Analysis {
	out := a
	out.Score = clampScore(a.Score + a.SafeDiscount)
	out.SafeDiscount = 0

	out.Factors = make([]string, 0, len(a.Factors))
	for _, f := range a.Factors {
		if strings.HasPrefix(f, "Known safe domain") {
			out.Factors = append(out.Factors,
				fmt.Sprintf("Known safe domain (%s): discount withheld, external signals flag risk", a.SafeDomain))
			continue
		}
		out.Factors = append(out.Factors, f)
	}
	return out
}

func strongestReputation(signals []intel.Signal) (int, bool) {
	best, found := 0, false
	for _, sig := range signals {
		if sig.RiskScore != nil && (!found || *sig.RiskScore > best) {
			best, found = *sig.RiskScore, true
		}
	}
	return best, found
}

func strongestRatio(signals []intel.Signal) (float64, bool) {
	best, found := 0.0, false
	for _, sig := range signals {
		if ratio, ok := sig.DetectionRatio(); ok && (!found || ratio > best) {
			best, found = ratio, true
		}
	}
	return best, found
}

func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
