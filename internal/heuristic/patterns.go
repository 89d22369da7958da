package heuristic

import "regexp"

// Point values for each rule in the battery. Rules are additive and never
// short-circuit; the total is clamped to [0,100] once, at the end.
const (
	pointsShortener      = 25
	pointsIPHost         = 35
	pointsRandomDomain   = 20
	pointsRandomSubLabel = 15
	pointsPerKeyword     = 10
	pointsKeywordCap     = 30
	pointsFreeHosting    = 15
	pointsPercentEncoded = 12
	pointsVeryLongURL    = 10
	pointsLongURL        = 4
	pointsManyDigits     = 10
	pointsSomeDigits     = 5
	pointsTyposquat      = 35
	pointsSuspiciousExt  = 30
	pointsSocialPhrase   = 25
	pointsPerScamTerm    = 15
	pointsHomograph      = 30
	pointsPlainHTTP      = 10
	pointsPunycode       = 20
	pointsSafeDiscount   = 25
	pointsSubdomainCap   = 25
	pointsPerSubdomain   = 5
)

// urlShorteners are matched as substrings of the raw input.
var urlShorteners = []string{
	"bit.ly",
	"tinyurl.com",
	"t.co",
	"ow.ly",
	"is.gd",
	"buff.ly",
	"adf.ly",
	"short.link",
	"rebrand.ly",
	"tiny.cc",
	"cutt.ly",
	"shorturl.at",
}

// suspiciousTLDs maps a TLD to its risk weight. Only the matching TLD's
// weight is added; the entries are alternatives, not cumulative.
var suspiciousTLDs = map[string]int{
	".tk":       25,
	".ml":       25,
	".ga":       25,
	".cf":       25,
	".gq":       25,
	".loan":     25,
	".ru":       20,
	".click":    20,
	".download": 20,
	".win":      20,
	".racing":   20,
	".cn":       15,
	".xyz":      15,
	".top":      15,
	".review":   15,
	".stream":   15,
	".science":  15,
	".work":     15,
}

// freeHostingPlatforms are legitimate services frequently abused for
// throwaway phishing pages.
var freeHostingPlatforms = []string{
	"weebly.com",
	"wix.com",
	"blogspot.com",
	"wordpress.com",
	"github.io",
	"herokuapp.com",
	"repl.co",
	"glitch.me",
	"000webhostapp.com",
	"netlify.app",
	"vercel.app",
	"surge.sh",
	"firebaseapp.com",
	"web.app",
	"azurewebsites.net",
}

// phishingKeywords are scored per keyword found, capped at pointsKeywordCap.
var phishingKeywords = []string{
	"login", "signin", "secure", "verify", "account", "update", "confirm",
	"suspended", "locked", "expired", "billing", "payment", "bank",
	"banking", "paypal", "amazon", "microsoft", "google", "apple",
	"facebook", "wallet", "password", "security", "alert", "warning",
	"urgent", "immediate", "action", "required", "limited", "offer",
	"free", "winner", "prize",
}

// socialEngineeringPhrases trigger a single flat score when any is present.
var socialEngineeringPhrases = []string{
	"click here",
	"act now",
	"act fast",
	"limited time",
	"urgent action",
	"verify your account",
	"account suspended",
	"you have won",
	"congratulations",
	"claim your",
}

// cryptoScamTerms are scored per term; there is no per-rule cap, the final
// clamp bounds the total.
var cryptoScamTerms = []string{
	"bitcoin",
	"crypto",
	"ethereum",
	"forex",
	"doubler",
	"hyip",
	"binary option",
	"investment return",
	"guaranteed profit",
}

// popularBrands is the fixed list checked for typosquatting variants.
var popularBrands = []string{
	"google", "paypal", "amazon", "microsoft", "apple", "facebook",
	"netflix", "instagram", "twitter", "linkedin", "whatsapp", "ebay",
	"chase", "wellsfargo", "coinbase", "binance",
}

// typosquatSubstitutions are the single-character swaps scammers use to
// imitate a brand while dodging exact-string filters.
var typosquatSubstitutions = []struct{ from, to string }{
	{"o", "0"},
	{"l", "1"},
	{"i", "1"},
	{"e", "3"},
	{"a", "@"},
	{"s", "5"},
}

// knownSafeDomains earn a score discount — unless an external signal has
// already flagged risk, in which case the discount is withheld.
var knownSafeDomains = []string{
	"google.com",
	"youtube.com",
	"microsoft.com",
	"apple.com",
	"amazon.com",
	"facebook.com",
	"github.com",
	"wikipedia.org",
	"twitter.com",
	"linkedin.com",
	"mozilla.org",
	"cloudflare.com",
}

// suspiciousExtensions in a URL path suggest a direct malware download.
var suspiciousExtensions = []string{
	".exe", ".scr", ".bat", ".cmd", ".jar", ".zip", ".rar", ".msi",
	".apk", ".dmg", ".vbs", ".ps1",
}

var (
	// ipHostPattern matches a bare IPv4 address used as the host,
	// anchored at the optional scheme.
	ipHostPattern = regexp.MustCompile(`^(?:https?://)?\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(?:[:/]|$)`)

	// percentEncodedPattern matches URL-encoded byte sequences.
	percentEncodedPattern = regexp.MustCompile(`%[0-9a-fA-F]{2}`)

	// hexRunPattern flags machine-generated labels like a3f9c02d1b.
	hexRunPattern = regexp.MustCompile(`[0-9a-f]{8,}`)

	consonantPattern = regexp.MustCompile(`[bcdfghjklmnpqrstvwxyz]`)
	vowelPattern     = regexp.MustCompile(`[aeiou]`)
	digitPattern     = regexp.MustCompile(`\d`)
)
