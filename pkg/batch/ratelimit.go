package batch

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/fanscope/pkg/fetch"
)

// HostLimiter enforces a minimum delay between requests to the same host.
// It is safe for concurrent use.
type HostLimiter struct {
	overrides map[string]time.Duration
	last      map[string]time.Time
	logger    *slog.Logger
	now       func() time.Time
	mu        sync.Mutex
	minDelay  time.Duration
}

// NewHostLimiter creates a limiter that spaces requests to one host by at least minDelay.
func NewHostLimiter(minDelay time.Duration, logger *slog.Logger) *HostLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HostLimiter{
		overrides: make(map[string]time.Duration),
		last:      make(map[string]time.Time),
		logger:    logger,
		now:       time.Now,
		minDelay:  minDelay,
	}
}

// SetHostDelay overrides the minimum delay for one host.
func (l *HostLimiter) SetHostDelay(host string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overrides[host] = d
}

// Wait blocks until a request to rawURL's host may proceed, then records it.
// It returns the context error if ctx ends first.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}

	l.mu.Lock()
	delay := l.minDelay
	if d, ok := l.overrides[host]; ok {
		delay = d
	}
	now := l.now()
	next := now
	if last, ok := l.last[host]; ok && now.Sub(last) < delay {
		next = last.Add(delay)
	}
	// Reserve the slot before sleeping so concurrent callers queue behind it.
	l.last[host] = next
	l.mu.Unlock()

	wait := next.Sub(now)
	if wait <= 0 {
		return nil
	}
	l.logger.DebugContext(ctx, "rate limiting request", "host", host, "wait", wait.Round(time.Millisecond))
	return fetch.Sleep(ctx, wait)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
