package auth

import (
	"context"
	"net/http"
	"os"
	"slices"
	"strings"
)

// namedCookieVars maps an env var suffix to the cookie it sets.
var namedCookieVars = map[string]string{
	"DID": "did",
}

// EnvSource reads cookies from environment variables named after the first
// label of the domain: for "kwai.com" it reads KWAI_COOKIES, a raw Cookie
// header value, and KWAI_DID.
type EnvSource struct{}

// Cookies returns cookies for domain from the environment.
func (EnvSource) Cookies(_ context.Context, domain string) (map[string]string, error) {
	prefix := envPrefix(domain)
	if prefix == "" {
		return nil, nil //nolint:nilnil // no prefix means no variables to read
	}

	cookies := make(map[string]string)
	if raw := os.Getenv(prefix + "_COOKIES"); raw != "" {
		parsed, err := http.ParseCookie(raw)
		if err != nil {
			return nil, err
		}
		for _, c := range parsed {
			cookies[c.Name] = c.Value
		}
	}
	for suffix, name := range namedCookieVars {
		if v := os.Getenv(prefix + "_" + suffix); v != "" {
			cookies[name] = v
		}
	}

	if len(cookies) == 0 {
		return nil, nil //nolint:nilnil // no env vars set is not an error
	}
	return cookies, nil
}

// EnvVars returns the sorted environment variable names EnvSource reads for domain.
func EnvVars(domain string) []string {
	prefix := envPrefix(domain)
	if prefix == "" {
		return nil
	}
	vars := []string{prefix + "_COOKIES"}
	for suffix := range namedCookieVars {
		vars = append(vars, prefix+"_"+suffix)
	}
	slices.Sort(vars)
	return vars
}

func envPrefix(domain string) string {
	label, _, _ := strings.Cut(strings.TrimPrefix(domain, "."), ".")
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, label)
	return label
}
