package auth

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register every supported browser store
	"github.com/browserutils/kooky/browser/firefox"
)

// firefoxProfileGlobs are Firefox-family cookie stores kooky does not discover on its own.
var firefoxProfileGlobs = []string{
	filepath.Join("Library", "Application Support", "zen", "Profiles", "*", "cookies.sqlite"),
	filepath.Join("Library", "Application Support", "Firefox", "Profiles", "*", "cookies.sqlite"),
	filepath.Join(".mozilla", "firefox", "*", "cookies.sqlite"),
	filepath.Join(".zen", "*", "cookies.sqlite"),
}

// BrowserSource reads cookies from local browser cookie stores.
type BrowserSource struct {
	logger *slog.Logger
	home   string
	names  []string
}

// NewBrowserSource creates a browser cookie source. If names is non-empty,
// only cookies with those names are returned.
func NewBrowserSource(logger *slog.Logger, names ...string) *BrowserSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserSource{logger: logger, home: os.Getenv("HOME"), names: names}
}

// Cookies returns valid cookies for domain, trying Firefox-family profiles
// first and then kooky's automatic store detection. Unreadable stores are
// skipped, never reported as errors.
func (s *BrowserSource) Cookies(ctx context.Context, domain string) (map[string]string, error) {
	s.logger.DebugContext(ctx, "reading browser cookies", "domain", domain)

	if cookies := s.fromFirefoxProfiles(ctx, domain); len(cookies) > 0 {
		return cookies, nil
	}

	kookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix(domain))
	if err != nil {
		s.logger.DebugContext(ctx, "failed to read browser cookies", "domain", domain, "error", err)
		if len(kookies) == 0 {
			return nil, nil //nolint:nilnil // failed browser read is not a fatal error
		}
	}
	if cookies := s.filter(kookies); len(cookies) > 0 {
		s.logger.InfoContext(ctx, "browser cookies found", "domain", domain, "count", len(cookies))
		return cookies, nil
	}
	return nil, nil //nolint:nilnil // no browser cookies is not an error
}

func (s *BrowserSource) fromFirefoxProfiles(ctx context.Context, domain string) map[string]string {
	if s.home == "" {
		return nil
	}
	for _, glob := range firefoxProfileGlobs {
		matches, err := filepath.Glob(filepath.Join(s.home, glob))
		if err != nil {
			continue
		}
		for _, f := range matches {
			kookies, err := firefox.ReadCookies(ctx, f, kooky.Valid, kooky.DomainHasSuffix(domain))
			if err != nil {
				s.logger.DebugContext(ctx, "failed to read Firefox cookies",
					"profile", filepath.Base(filepath.Dir(f)), "error", err)
				continue
			}
			if cookies := s.filter(kookies); len(cookies) > 0 {
				s.logger.InfoContext(ctx, "browser cookies found",
					"profile", filepath.Base(filepath.Dir(f)), "domain", domain, "count", len(cookies))
				return cookies
			}
		}
	}
	return nil
}

func (s *BrowserSource) filter(kookies []*kooky.Cookie) map[string]string {
	cookies := make(map[string]string)
	for _, c := range kookies {
		if c == nil || c.Value == "" {
			continue
		}
		if len(s.names) > 0 && !slices.Contains(s.names, c.Name) {
			continue
		}
		cookies[c.Name] = c.Value
	}
	return cookies
}
