// Package urlnorm canonicalizes profile URLs for the target site.
//
// The site has served profiles from a marketing domain (www.kwai.com/@name)
// and a mobile domain (m.kwai.com/u/@name). Everything is rewritten toward
// the mobile form. Normalize never fails: input it cannot make sense of is
// passed through and any problem surfaces later as a fetch error.
package urlnorm

import (
	"net/url"
	"regexp"
	"strings"
)

// Hosts describes the canonical and legacy hosts of the target site.
type Hosts struct {
	Canonical string   // e.g. "m.kwai.com"
	Legacy    []string // marketing hosts rewritten to Canonical
}

// DefaultHosts are the Kwai hosts.
var DefaultHosts = Hosts{
	Canonical: "m.kwai.com",
	Legacy:    []string{"www.kwai.com", "kwai.com"},
}

var (
	atSegmentPattern   = regexp.MustCompile(`@([A-Za-z0-9_.\-]+)`)
	bareSegmentPattern = regexp.MustCompile(`^/(?:u/@?)?([A-Za-z0-9_.\-]+)/?$`)
	schemePattern      = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.\-]*://`)
)

// Normalize rewrites raw into the canonical profile URL using DefaultHosts.
func Normalize(raw string) string {
	return DefaultHosts.Normalize(raw)
}

// Username returns the @segment of a profile URL path, without the "@".
func Username(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}
	if m := atSegmentPattern.FindStringSubmatch(path); len(m) > 1 {
		return m[1]
	}
	return ""
}

// Normalize rewrites raw into the canonical profile URL for h.
func (h Hosts) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if !schemePattern.MatchString(s) {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	host := strings.ToLower(u.Hostname())

	if host == h.Canonical && strings.HasPrefix(u.Path, "/u/@") {
		return forceHTTPS(s)
	}

	if h.isLegacy(host) {
		name := legacyUsername(u)
		if name == "" {
			return s
		}
		return h.profileURL(name)
	}

	if host == h.Canonical {
		if m := atSegmentPattern.FindStringSubmatch(u.Path); len(m) > 1 {
			return h.profileURL(m[1])
		}
	}

	return s
}

func (h Hosts) profileURL(name string) string {
	return "https://" + h.Canonical + "/u/@" + name
}

func (h Hosts) isLegacy(host string) bool {
	for _, l := range h.Legacy {
		if host == l {
			return true
		}
	}
	return false
}

// legacyUsername finds the username in a marketing-site URL: an @segment
// anywhere in the path or query first, then a bare single path segment.
func legacyUsername(u *url.URL) string {
	if m := atSegmentPattern.FindStringSubmatch(u.Path + "?" + u.RawQuery); len(m) > 1 {
		return m[1]
	}
	if m := bareSegmentPattern.FindStringSubmatch(u.Path); len(m) > 1 {
		return m[1]
	}
	return ""
}

func forceHTTPS(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		return "https" + s[i:]
	}
	return s
}
