package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/fanscope/pkg/auth"
	"github.com/codeGROOVE-dev/fanscope/pkg/engine"
	"github.com/codeGROOVE-dev/fanscope/pkg/fetch"
	"github.com/codeGROOVE-dev/fanscope/pkg/httpcache"
)

type app struct {
	logger *slog.Logger
	cache  *httpcache.Cache
	pages  *httpcache.Fetcher
	s      settings
}

func newRootCmd() *cobra.Command {
	a := &app{s: defaultSettings(), logger: slog.Default()}

	root := &cobra.Command{
		Use:           "fanscope",
		Short:         "fanscope extracts follower and like counts from Kwai profiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if a.s.debug {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return a.s.loadConfig(cmd.Flags())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.cache == nil {
				return nil
			}
			if a.pages != nil {
				st := a.pages.Stats()
				a.logger.InfoContext(cmd.Context(), "page cache stats",
					"hits", st.Hits, "misses", st.Misses, "hit_rate", fmt.Sprintf("%.1f%%", st.HitRate()))
			}
			return a.cache.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.s.debug, "debug", "v", false, "enable debug logging")
	pf.StringVar(&a.s.configPath, "config", a.s.configPath, "config file; a .local variant beside it overrides it")
	pf.BoolVar(&a.s.cache, "cache", false, "cache pages whose counts extract completely")
	pf.DurationVar(&a.s.cacheTTL, "cache-ttl", a.s.cacheTTL, "page cache time-to-live")
	pf.BoolVar(&a.s.browserCookies, "browser-cookies", false,
		"also read site cookies from local browser stores ("+
			strings.Join(auth.EnvVars(cookieDomain(a.s.hosts.Canonical)), ", ")+" are always read)")
	pf.IntVar(&a.s.maxRetries, "retries", a.s.maxRetries, "retries after the first attempt")
	pf.DurationVar(&a.s.timeout, "timeout", a.s.timeout, "per-request timeout")
	pf.DurationVar(&a.s.settleDelay, "settle-delay", a.s.settleDelay, "pause after each page load")
	pf.DurationVar(&a.s.errorDelay, "error-delay", a.s.errorDelay, "pause before retrying a failed fetch")
	pf.DurationVar(&a.s.invalidDelay, "invalid-delay", a.s.invalidDelay, "pause before retrying a page with unresolved counts")

	root.AddCommand(newExtractCmd(a), newBatchCmd(a))
	return root
}

// newEngine wires the fetcher stack: cookies, HTTP client, optional page cache.
func (a *app) newEngine(ctx context.Context) (*engine.Engine, error) {
	fopts := []fetch.Option{
		fetch.WithLogger(a.logger),
		fetch.WithTimeout(a.s.timeout),
		fetch.WithSettleDelay(a.s.settleDelay),
		fetch.WithUserAgent(a.s.userAgent),
		fetch.WithReferer(a.s.referer),
	}

	domain := cookieDomain(a.s.hosts.Canonical)
	a.logger.DebugContext(ctx, "reading cookies", "domain", domain, "env", auth.EnvVars(domain), "browser", a.s.browserCookies)
	sources := []auth.Source{auth.EnvSource{}}
	if a.s.browserCookies {
		sources = append(sources, auth.NewBrowserSource(a.logger))
	}
	cookies, err := auth.ChainSources(ctx, domain, sources...)
	if err != nil {
		return nil, err
	}
	if len(cookies) > 0 {
		jar, err := auth.NewCookieJar(domain, cookies)
		if err != nil {
			return nil, err
		}
		a.logger.DebugContext(ctx, "using cookies", "domain", domain, "count", len(cookies))
		fopts = append(fopts, fetch.WithCookieJar(jar))
	}

	var f fetch.Fetcher = fetch.New(fopts...)
	if a.s.cache {
		var c *httpcache.Cache
		if a.s.cacheDir != "" {
			c, err = httpcache.NewWithPath(a.s.cacheTTL, a.s.cacheDir)
		} else {
			c, err = httpcache.New(a.s.cacheTTL)
		}
		if err != nil {
			a.logger.WarnContext(ctx, "failed to initialize cache, continuing without cache", "error", err)
		} else {
			a.cache = c
			a.pages = httpcache.NewFetcher(f, c, httpcache.WithLogger(a.logger))
			f = a.pages
			a.logger.DebugContext(ctx, "page cache initialized", "ttl", a.s.cacheTTL.String())
		}
	}

	return engine.New(f,
		engine.WithLogger(a.logger),
		engine.WithMaxRetries(a.s.maxRetries),
		engine.WithDelays(a.s.errorDelay, a.s.invalidDelay),
		engine.WithHosts(a.s.hosts),
	), nil
}

// openInput opens path for reading, with "-" meaning the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil //nolint:errcheck,gosec // read-only file
}
