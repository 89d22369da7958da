package intel

import (
	"context"

	"github.com/marthaea/link-guardian-safecheck/internal/target"
)

// The simulated sources stand in for real reputation APIs in demos and
// tests. Scenario selection hashes the input string, so the same input
// always produces the same signal — no randomness anywhere.

// inputHash sums the bytes of a string, matching the scenario selector
// the hosted service used.
func inputHash(s string) int {
	sum := 0
	for _, b := range []byte(s) {
		sum += int(b)
	}
	return sum
}

// SimulatedIPQS fakes an IPQS-style reputation source.
type SimulatedIPQS struct{}

var ipqsScenarios = []Signal{
	{
		Service:       "IPQS (simulated)",
		RiskScore:     intPtr(15),
		DomainAgeDays: intPtr(365 * 3),
		CountryCode:   "US",
	},
	{
		Service:       "IPQS (simulated)",
		RiskScore:     intPtr(85),
		Phishing:      true,
		Suspicious:    true,
		DomainAgeDays: intPtr(30),
		CountryCode:   "RU",
	},
	{
		Service:       "IPQS (simulated)",
		RiskScore:     intPtr(65),
		Suspicious:    true,
		Spamming:      true,
		DomainAgeDays: intPtr(120),
		CountryCode:   "CN",
	},
}

// Name implements Source.
func (SimulatedIPQS) Name() string { return "IPQS (simulated)" }

// Lookup implements Source. It keys the scenario off the domain so that
// different paths on one host agree with each other.
func (SimulatedIPQS) Lookup(_ context.Context, tgt target.Parsed) (Signal, error) {
	return ipqsScenarios[inputHash(tgt.Domain)%len(ipqsScenarios)], nil
}

// SimulatedVirusTotal fakes a VirusTotal-style detection-ratio source.
type SimulatedVirusTotal struct{}

var vtScenarios = []Signal{
	{Service: "VirusTotal (simulated)", Positives: intPtr(0), Total: intPtr(70)},
	{Service: "VirusTotal (simulated)", Positives: intPtr(3), Total: intPtr(70), Suspicious: true},
	{Service: "VirusTotal (simulated)", Positives: intPtr(15), Total: intPtr(70), Suspicious: true},
}

// Name implements Source.
func (SimulatedVirusTotal) Name() string { return "VirusTotal (simulated)" }

// Lookup implements Source.
func (SimulatedVirusTotal) Lookup(_ context.Context, tgt target.Parsed) (Signal, error) {
	return vtScenarios[inputHash(tgt.Normalized)%len(vtScenarios)], nil
}
