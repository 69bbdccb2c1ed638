package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/codeGROOVE-dev/fanscope/pkg/batch"
	"github.com/codeGROOVE-dev/fanscope/pkg/configutil"
	"github.com/codeGROOVE-dev/fanscope/pkg/engine"
	"github.com/codeGROOVE-dev/fanscope/pkg/fetch"
	"github.com/codeGROOVE-dev/fanscope/pkg/httpcache"
	"github.com/codeGROOVE-dev/fanscope/pkg/urlnorm"
)

// fileConfig is the JSON5 config file layout. Durations use Go syntax ("1.5s").
type fileConfig struct {
	MaxRetries     *int              `json:"maxRetries"`
	CanonicalHost  string            `json:"canonicalHost"`
	UserAgent      string            `json:"userAgent"`
	Referer        string            `json:"referer"`
	Timeout        string            `json:"timeout"`
	SettleDelay    string            `json:"settleDelay"`
	ErrorDelay     string            `json:"errorDelay"`
	InvalidDelay   string            `json:"invalidDelay"`
	Pause          string            `json:"pause"`
	HostDelay      string            `json:"hostDelay"`
	CacheTTL       string            `json:"cacheTtl"`
	CacheDir       string            `json:"cacheDir"`
	LegacyHosts    []string          `json:"legacyHosts"`
	HostDelays     map[string]string `json:"hostDelays"`
	Cache          bool              `json:"cache"`
	BrowserCookies bool              `json:"browserCookies"`
}

// settings are the resolved run parameters: defaults, then the config
// file, then explicitly set flags.
type settings struct {
	hosts          urlnorm.Hosts
	hostDelays     map[string]time.Duration
	configPath     string
	userAgent      string
	referer        string
	cacheDir       string
	timeout        time.Duration
	settleDelay    time.Duration
	errorDelay     time.Duration
	invalidDelay   time.Duration
	pause          time.Duration
	hostDelay      time.Duration
	cacheTTL       time.Duration
	maxRetries     int
	debug          bool
	cache          bool
	browserCookies bool
	jsonOut        bool
}

func defaultSettings() settings {
	return settings{
		hosts:        urlnorm.DefaultHosts,
		configPath:   "fanscope.json5",
		userAgent:    fetch.UserAgent,
		referer:      fetch.DefaultReferer,
		timeout:      fetch.DefaultTimeout,
		settleDelay:  fetch.DefaultSettleDelay,
		errorDelay:   engine.DefaultErrorDelay,
		invalidDelay: engine.DefaultInvalidDelay,
		pause:        batch.DefaultPause,
		hostDelay:    batch.DefaultHostDelay,
		cacheTTL:     httpcache.DefaultTTL,
		maxRetries:   engine.DefaultMaxRetries,
	}
}

// loadConfig reads the config file and applies every value whose flag was
// not set on the command line. Without --config the default name is looked
// up from the working directory upward, and a missing file is not an error.
func (s *settings) loadConfig(flags *pflag.FlagSet) error {
	if s.configPath == "" {
		return nil
	}
	explicit := flags.Changed("config")
	var cfg fileConfig
	var err error
	if explicit || filepath.IsAbs(s.configPath) {
		cfg, err = configutil.ReadConfig[fileConfig](s.configPath)
	} else {
		cfg, err = configutil.ReadRecursively[fileConfig](s.configPath)
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load config %s: %w", s.configPath, err)
	}
	return s.apply(cfg, flags.Changed)
}

func (s *settings) apply(cfg fileConfig, changed func(string) bool) error {
	if cfg.CanonicalHost != "" {
		s.hosts.Canonical = cfg.CanonicalHost
	}
	if len(cfg.LegacyHosts) > 0 {
		s.hosts.Legacy = cfg.LegacyHosts
	}
	if cfg.UserAgent != "" {
		s.userAgent = cfg.UserAgent
	}
	if cfg.Referer != "" {
		s.referer = cfg.Referer
	}
	if cfg.CacheDir != "" {
		s.cacheDir = cfg.CacheDir
	}
	if cfg.MaxRetries != nil && !changed("retries") {
		s.maxRetries = *cfg.MaxRetries
	}
	if cfg.Cache && !changed("cache") {
		s.cache = true
	}
	if cfg.BrowserCookies && !changed("browser-cookies") {
		s.browserCookies = true
	}

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"timeout", cfg.Timeout, &s.timeout},
		{"settle-delay", cfg.SettleDelay, &s.settleDelay},
		{"error-delay", cfg.ErrorDelay, &s.errorDelay},
		{"invalid-delay", cfg.InvalidDelay, &s.invalidDelay},
		{"pause", cfg.Pause, &s.pause},
		{"host-delay", cfg.HostDelay, &s.hostDelay},
		{"cache-ttl", cfg.CacheTTL, &s.cacheTTL},
	}
	for _, d := range durations {
		if d.value == "" || changed(d.flag) {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("config %s: %w", d.flag, err)
		}
		*d.dst = v
	}

	for host, value := range cfg.HostDelays {
		v, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config hostDelays[%s]: %w", host, err)
		}
		if s.hostDelays == nil {
			s.hostDelays = make(map[string]time.Duration)
		}
		s.hostDelays[host] = v
	}
	return nil
}

// cookieDomain returns the registrable domain cookies are scoped to:
// "m.kwai.com" yields "kwai.com".
func cookieDomain(host string) string {
	host, _, _ = strings.Cut(host, ":")
	if net.ParseIP(host) != nil {
		return host
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
