package heuristic

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/idna"

	"github.com/marthaea/link-guardian-safecheck/internal/target"
)

// Analysis is the output of the rule battery for one input. Factors keep
// rule evaluation order and are never deduplicated. SafeDiscount records
// how many points the known-safe-domain rule subtracted, so the combiner
// can withhold the discount when an external signal disagrees.
type Analysis struct {
	Score        int       `json:"score"`
	Factors      []string  `json:"factors"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Explanation  string    `json:"explanation"`
	SafeDomain   string    `json:"safe_domain,omitempty"`
	SafeDiscount int       `json:"-"`
}

// Scorer runs the fixed battery of pattern checks against an input.
// It is stateless; the zero value is usable.
type Scorer struct{}

// New creates a new Scorer.
func New() *Scorer {
	return &Scorer{}
}

// Score evaluates every rule against the parsed input. Rules are
// independent and additive; the total is clamped to [0,100] at the end,
// not per rule. RiskLevel and Explanation are filled in by Classify.
func (s *Scorer) Score(tgt target.Parsed) Analysis {
	var a Analysis
	raw := strings.ToLower(tgt.Raw)
	domain := tgt.Domain

	s.checkShortener(&a, raw)
	s.checkIPHost(&a, tgt.Normalized)
	s.checkTLD(&a, domain)
	s.checkSubdomains(&a, domain)
	s.checkRandomLabels(&a, domain)
	s.checkPhishingKeywords(&a, raw)
	s.checkFreeHosting(&a, domain)
	s.checkPercentEncoding(&a, raw)
	s.checkLength(&a, tgt.Raw)
	s.checkDomainDigits(&a, domain)
	s.checkTyposquat(&a, domain)
	s.checkSuspiciousExtension(&a, raw)
	s.checkSocialEngineering(&a, raw)
	s.checkScamTerms(&a, raw)
	s.checkHomograph(&a, domain)
	s.checkPlainHTTP(&a, tgt.Normalized, domain)
	s.checkPunycode(&a, domain)
	s.checkKnownSafe(&a, domain)

	a.Score = clamp(a.Score)
	return a
}

func (s *Scorer) add(a *Analysis, points int, format string, args ...any) {
	a.Score += points
	a.Factors = append(a.Factors, fmt.Sprintf(format+": +%d points", append(args, points)...))
}

func (s *Scorer) checkShortener(a *Analysis, raw string) {
	for _, shortener := range urlShorteners {
		if strings.Contains(raw, shortener) {
			s.add(a, pointsShortener, "URL shortener (%s)", shortener)
			return
		}
	}
}

func (s *Scorer) checkIPHost(a *Analysis, normalized string) {
	if ipHostPattern.MatchString(normalized) {
		s.add(a, pointsIPHost, "IP address used as host")
	}
}

func (s *Scorer) checkTLD(a *Analysis, domain string) {
	tld := target.TLD(domain)
	if weight, ok := suspiciousTLDs[tld]; ok {
		a.Score += weight
		a.Factors = append(a.Factors, fmt.Sprintf("Suspicious TLD (%s): +%d points", tld, weight))
	}
}

func (s *Scorer) checkSubdomains(a *Analysis, domain string) {
	subs := target.Subdomains(domain)
	if len(subs) > 3 {
		points := len(subs) * pointsPerSubdomain
		if points > pointsSubdomainCap {
			points = pointsSubdomainCap
		}
		s.add(a, points, "Too many subdomains (%d)", len(subs))
	}
}

func (s *Scorer) checkRandomLabels(a *Analysis, domain string) {
	if looksRandom(target.BaseDomain(domain)) {
		s.add(a, pointsRandomDomain, "Random-looking domain pattern")
	}
	for _, sub := range target.Subdomains(domain) {
		if looksRandom(sub) {
			s.add(a, pointsRandomSubLabel, "Random-looking subdomain (%s)", sub)
		}
	}
}

func (s *Scorer) checkPhishingKeywords(a *Analysis, raw string) {
	var found []string
	for _, kw := range phishingKeywords {
		if strings.Contains(raw, kw) {
			found = append(found, kw)
		}
	}
	if len(found) == 0 {
		return
	}
	points := len(found) * pointsPerKeyword
	if points > pointsKeywordCap {
		points = pointsKeywordCap
	}
	s.add(a, points, "Phishing keywords (%s)", strings.Join(found, ", "))
}

func (s *Scorer) checkFreeHosting(a *Analysis, domain string) {
	for _, platform := range freeHostingPlatforms {
		if strings.Contains(domain, platform) {
			s.add(a, pointsFreeHosting, "Free hosting platform (%s)", platform)
			return
		}
	}
}

func (s *Scorer) checkPercentEncoding(a *Analysis, raw string) {
	if percentEncodedPattern.MatchString(raw) {
		s.add(a, pointsPercentEncoded, "URL-encoded byte sequences present")
	}
}

func (s *Scorer) checkLength(a *Analysis, raw string) {
	switch {
	case len(raw) > 200:
		s.add(a, pointsVeryLongURL, "Very long URL (%d chars)", len(raw))
	case len(raw) > 100:
		s.add(a, pointsLongURL, "Long URL (%d chars)", len(raw))
	}
}

func (s *Scorer) checkDomainDigits(a *Analysis, domain string) {
	if domain == target.UnknownDomain {
		return
	}
	digits := len(digitPattern.FindAllString(domain, -1))
	switch {
	case digits > 3:
		s.add(a, pointsManyDigits, "Multiple digits in domain (%d)", digits)
	case digits > 1:
		s.add(a, pointsSomeDigits, "Digits in domain (%d)", digits)
	}
}

func (s *Scorer) checkTyposquat(a *Analysis, domain string) {
	for _, brand := range popularBrands {
		if strings.Contains(domain, brand) {
			continue // exact brand present, not a squat
		}
		if variant, ok := matchTyposquatVariant(domain, brand); ok {
			s.add(a, pointsTyposquat, "Possible typosquat of %q (%s)", brand, variant)
			return
		}
	}
}

func (s *Scorer) checkSuspiciousExtension(a *Analysis, raw string) {
	for _, ext := range suspiciousExtensions {
		if strings.Contains(raw, ext) {
			s.add(a, pointsSuspiciousExt, "Suspicious file extension (%s)", ext)
			return
		}
	}
}

func (s *Scorer) checkSocialEngineering(a *Analysis, raw string) {
	// URLs spell phrases with -, _ or %20 instead of spaces, so match
	// against a separator-normalized form too.
	spaced := strings.NewReplacer("%20", " ", "+", " ", "-", " ", "_", " ").Replace(raw)
	collapsed := strings.ReplaceAll(spaced, " ", "")
	for _, phrase := range socialEngineeringPhrases {
		if strings.Contains(spaced, phrase) ||
			strings.Contains(collapsed, strings.ReplaceAll(phrase, " ", "")) {
			s.add(a, pointsSocialPhrase, "Social-engineering phrase (%q)", phrase)
			return
		}
	}
}

func (s *Scorer) checkScamTerms(a *Analysis, raw string) {
	for _, term := range cryptoScamTerms {
		if strings.Contains(raw, term) {
			s.add(a, pointsPerScamTerm, "Financial-scam term (%q)", term)
		}
	}
}

func (s *Scorer) checkHomograph(a *Analysis, domain string) {
	for _, r := range domain {
		if r > unicode.MaxASCII && unicode.IsLetter(r) {
			s.add(a, pointsHomograph, "Non-Latin look-alike characters in domain")
			return
		}
	}
}

func (s *Scorer) checkPlainHTTP(a *Analysis, normalized, domain string) {
	if !strings.HasPrefix(normalized, "http://") {
		return
	}
	if domain == "localhost" || strings.HasPrefix(domain, "127.") {
		return
	}
	s.add(a, pointsPlainHTTP, "Plain HTTP (no TLS)")
}

func (s *Scorer) checkPunycode(a *Analysis, domain string) {
	if !strings.Contains(domain, "xn--") {
		return
	}
	decoded, err := idna.ToUnicode(domain)
	if err != nil || decoded == domain {
		s.add(a, pointsPunycode, "Internationalized domain (punycode)")
		return
	}
	s.add(a, pointsPunycode, "Internationalized domain (decodes to %q)", decoded)
}

func (s *Scorer) checkKnownSafe(a *Analysis, domain string) {
	d := strings.TrimPrefix(domain, "www.")
	for _, safe := range knownSafeDomains {
		if d != safe {
			continue
		}
		discount := pointsSafeDiscount
		if discount > a.Score {
			discount = a.Score // score floor is 0
		}
		a.Score -= discount
		a.SafeDomain = safe
		a.SafeDiscount = discount
		a.Factors = append(a.Factors, fmt.Sprintf("Known safe domain (%s): -%d points", safe, discount))
		return
	}
}

// looksRandom reports whether a label resembles a machine-generated name:
// a long hex run, a heavily consonant-skewed spelling, or a repeated
// fragment (abcabcabc).
func looksRandom(label string) bool {
	if label == "" || label == target.UnknownDomain {
		return false
	}
	if hexRunPattern.MatchString(label) {
		return true
	}
	consonants := len(consonantPattern.FindAllString(label, -1))
	vowels := len(vowelPattern.FindAllString(label, -1))
	if consonants > vowels*3 && len(label) > 8 {
		return true
	}
	return hasRepeatedFragment(label)
}

// hasRepeatedFragment reports whether the label contains a fragment of 2+
// chars repeated at least three times in a row. Hand-rolled because RE2
// has no backreferences.
func hasRepeatedFragment(s string) bool {
	for size := 2; size*3 <= len(s); size++ {
		for start := 0; start+size*3 <= len(s); start++ {
			frag := s[start : start+size]
			if s[start+size:start+2*size] == frag && s[start+2*size:start+3*size] == frag {
				return true
			}
		}
	}
	return false
}

// matchTyposquatVariant checks the character-substitution and
// letter-doubling variants of a brand against the domain.
func matchTyposquatVariant(domain, brand string) (string, bool) {
	for _, sub := range typosquatSubstitutions {
		variant := strings.ReplaceAll(brand, sub.from, sub.to)
		if variant != brand && strings.Contains(domain, variant) {
			return variant, true
		}
	}
	// Doubled letter, e.g. gooogle.
	for i := 0; i < len(brand); i++ {
		variant := brand[:i+1] + string(brand[i]) + brand[i+1:]
		if strings.Contains(domain, variant) {
			return variant, true
		}
	}
	return "", false
}

func clamp(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
