package target

import (
	"net/url"
	"strings"
)

// Kind distinguishes the two input types the scanner accepts.
type Kind string

const (
	KindEmail Kind = "email"
	KindLink  Kind = "link"
)

// Parsed is the immutable result of normalizing a raw user input.
// Domain falls back to "unknown" when hostname extraction fails — the
// scan pipeline continues with that low-confidence value rather than
// failing the whole scan.
type Parsed struct {
	Raw        string `json:"raw"`
	Kind       Kind   `json:"kind"`
	Domain     string `json:"domain"`
	Normalized string `json:"normalized"`
}

// UnknownDomain is the sentinel used when parsing cannot recover a hostname.
const UnknownDomain = "unknown"

// Parse classifies and normalizes a raw input string. It never fails:
// malformed input yields Domain == UnknownDomain.
func Parse(raw string) Parsed {
	p := Parsed{
		Raw:        raw,
		Normalized: Normalize(raw),
	}

	if strings.Contains(raw, "@") && strings.Contains(raw, ".") {
		p.Kind = KindEmail
		p.Domain = emailDomain(raw)
		return p
	}

	p.Kind = KindLink
	p.Domain = linkDomain(p.Normalized)
	return p
}

// Normalize trims, lowercases, and strips trailing slashes so that
// "example.com" and "EXAMPLE.com/" map to the same cache key. The
// transform is idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.TrimRight(s, "/")
}

// emailDomain takes everything after the last "@", lowercased.
func emailDomain(raw string) string {
	at := strings.LastIndex(raw, "@")
	domain := strings.ToLower(strings.TrimSpace(raw[at+1:]))
	if domain == "" {
		return UnknownDomain
	}
	return domain
}

// linkDomain extracts the hostname with net/url, prefixing a scheme when
// the input has none. The prefix exists purely for parsing; callers keep
// the user's original string.
func linkDomain(normalized string) string {
	withScheme := normalized
	if !strings.HasPrefix(withScheme, "http://") && !strings.HasPrefix(withScheme, "https://") {
		withScheme = "http://" + withScheme
	}
	u, err := url.Parse(withScheme)
	if err != nil || u.Hostname() == "" {
		return UnknownDomain
	}
	return strings.ToLower(u.Hostname())
}

// Labels splits a hostname into its dot-separated labels.
func Labels(domain string) []string {
	if domain == "" || domain == UnknownDomain {
		return nil
	}
	return strings.Split(domain, ".")
}

// Subdomains returns the labels before the registrable domain (last two
// labels). "a.b.example.com" yields ["a", "b"].
func Subdomains(domain string) []string {
	labels := Labels(domain)
	if len(labels) <= 2 {
		return nil
	}
	return labels[:len(labels)-2]
}

// TLD returns the final label with a leading dot, or "" when the domain
// has no dot.
func TLD(domain string) string {
	labels := Labels(domain)
	if len(labels) < 2 {
		return ""
	}
	return "." + labels[len(labels)-1]
}

// BaseDomain returns the registrable domain (last two labels), or the
// full domain when it has fewer than two labels.
func BaseDomain(domain string) string {
	labels := Labels(domain)
	if len(labels) < 2 {
		return domain
	}
	return labels[len(labels)-2] + "." + labels[len(labels)-1]
}
