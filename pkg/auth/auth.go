// Package auth supplies optional cookies for profile page requests.
//
// Profile pages render for anonymous visitors; cookies from a logged-in
// browser session only reduce the bot friction served to fresh clients.
package auth

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Source provides cookies for a cookie domain such as "kwai.com".
type Source interface {
	// Cookies returns cookies for domain, or nil if the source has none.
	Cookies(ctx context.Context, domain string) (map[string]string, error)
}

// ChainSources returns cookies from the first source that provides them.
func ChainSources(ctx context.Context, domain string, sources ...Source) (map[string]string, error) {
	for _, src := range sources {
		cookies, err := src.Cookies(ctx, domain)
		if err != nil {
			return nil, err
		}
		if len(cookies) > 0 {
			return cookies, nil
		}
	}
	return nil, nil //nolint:nilnil // no source had cookies, but this is not an error
}

// NewCookieJar creates a cookie jar holding cookies for domain and all of its subdomains.
func NewCookieJar(domain string, cookies map[string]string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	domain = strings.TrimPrefix(domain, ".")
	u, err := url.Parse("https://" + domain)
	if err != nil {
		return nil, err
	}

	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		if value == "" {
			continue
		}
		httpCookies = append(httpCookies, &http.Cookie{
			Name:   name,
			Value:  value,
			Domain: "." + domain,
			Path:   "/",
		})
	}
	jar.SetCookies(u, httpCookies)
	return jar, nil
}
