package intel

// Signal is one reputation result from an external threat-intelligence
// source, real or simulated. All analytic fields are optional: a missing
// field means "unknown", never "zero risk". A Signal only exists when the
// source call succeeded — failed lookups yield no Signal at all.
type Signal struct {
	Service string `json:"service"`

	// Reputation score, 0-100. Nil when the source does not report one.
	RiskScore *int `json:"risk_score,omitempty"`

	// Engine detection ratio, VirusTotal style.
	Positives *int `json:"positives,omitempty"`
	Total     *int `json:"total,omitempty"`

	Phishing   bool `json:"phishing"`
	Suspicious bool `json:"suspicious"`
	Spamming   bool `json:"spamming"`
	Malware    bool `json:"malware"`

	DomainAgeDays *int   `json:"domain_age_days,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
}

// DetectionRatio returns positives/total, or 0 and false when the source
// reported no engine counts.
func (s Signal) DetectionRatio() (float64, bool) {
	if s.Positives == nil || s.Total == nil || *s.Total == 0 {
		return 0, false
	}
	return float64(*s.Positives) / float64(*s.Total), true
}

// Flagged reports whether the source raised any boolean threat flag.
func (s Signal) Flagged() bool {
	return s.Phishing || s.Suspicious || s.Spamming || s.Malware
}

// intPtr is a small helper for building signals with optional fields.
func intPtr(v int) *int {
	return &v
}
