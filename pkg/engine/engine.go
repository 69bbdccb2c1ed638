// Package engine extracts a profile record from a profile URL, re-running
// the fetch and extraction pipeline until both counts validate or the
// attempts run out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/codeGROOVE-dev/fanscope/pkg/extract"
	"github.com/codeGROOVE-dev/fanscope/pkg/fetch"
	"github.com/codeGROOVE-dev/fanscope/pkg/profile"
	"github.com/codeGROOVE-dev/fanscope/pkg/urlnorm"
)

// Defaults for the retry policy.
const (
	DefaultMaxRetries   = 5
	DefaultErrorDelay   = 3000 * time.Millisecond
	DefaultInvalidDelay = 2000 * time.Millisecond
)

// errIncomplete marks an attempt whose page loaded but left a count unresolved.
var errIncomplete = errors.New("follower or like count unresolved")

// Engine runs extractions. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	fetcher      fetch.Fetcher
	logger       *slog.Logger
	sleep        func(context.Context, time.Duration) error
	hosts        urlnorm.Hosts
	maxRetries   int
	errorDelay   time.Duration
	invalidDelay time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxRetries sets how many times a failed attempt is retried.
// The pipeline runs at most n+1 times.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithDelays sets the pause before retrying after a fetch error and after
// an attempt that loaded but left counts unresolved.
func WithDelays(afterError, afterInvalid time.Duration) Option {
	return func(e *Engine) {
		e.errorDelay = afterError
		e.invalidDelay = afterInvalid
	}
}

// WithHosts sets the hosts used for URL normalization.
func WithHosts(h urlnorm.Hosts) Option {
	return func(e *Engine) { e.hosts = h }
}

// New creates an Engine that retrieves pages with f.
func New(f fetch.Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:      f,
		logger:       slog.Default(),
		sleep:        fetch.Sleep,
		hosts:        urlnorm.DefaultHosts,
		maxRetries:   DefaultMaxRetries,
		errorDelay:   DefaultErrorDelay,
		invalidDelay: DefaultInvalidDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome is the result of one extraction run.
type Outcome struct {
	Record   *profile.Record
	URL      string // normalized profile URL
	Attempts int
	// NotFound is set when the final page loaded but reads as a missing or
	// suspended profile. Record is still returned with unknown counts.
	NotFound bool
}

// Extract normalizes input and returns the extracted record.
//
// A fetch error on the final attempt is returned as an error. Otherwise the
// record from the final attempt is returned, with counts that never
// validated left empty; callers should treat "" as unknown, not zero.
func (e *Engine) Extract(ctx context.Context, input string) (*profile.Record, error) {
	out, err := e.Run(ctx, input)
	if err != nil {
		return nil, err
	}
	return out.Record, nil
}

// Run is Extract, also reporting the attempt count and whether the
// profile page reads as missing.
func (e *Engine) Run(ctx context.Context, input string) (*Outcome, error) {
	url := e.hosts.Normalize(input)
	total := e.maxRetries + 1
	e.logger.InfoContext(ctx, "extracting profile", "input", input, "url", url, "max_attempts", total)

	out := &Outcome{URL: url}
	var (
		last    *profile.Record
		prevErr error
	)
	rec, err := retry.DoWithData(
		func() (*profile.Record, error) {
			if prevErr != nil {
				if err := e.sleep(ctx, e.delay(prevErr)); err != nil {
					return nil, err
				}
			}
			out.Attempts++
			last, out.NotFound = nil, false
			r, err := e.attempt(ctx, url, out, total)
			if r != nil {
				last = r
			}
			prevErr = err
			return r, err
		},
		retry.Context(ctx),
		retry.Attempts(uint(total)), //nolint:gosec // total is at least 1
		retry.DelayType(noDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			e.logger.WarnContext(ctx, "retrying extraction",
				"url", url, "attempt", n+1, "of", total, "delay", e.delay(err), "error", err)
		}),
	)

	switch {
	case err == nil:
		out.Record = rec
		e.logger.InfoContext(ctx, "profile extracted",
			"url", url, "attempts", out.Attempts, "followers", rec.FollowerCount, "likes", rec.LikeCount)
		return out, nil
	case errors.Is(err, errIncomplete) && last != nil:
		last.ClearInvalid()
		out.Record = last
		e.logger.WarnContext(ctx, "profile extracted with unresolved counts",
			"url", url, "attempts", out.Attempts, "not_found", out.NotFound,
			"followers", last.FollowerCount, "likes", last.LikeCount)
		return out, nil
	default:
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}
}

// attempt runs one fetch and cascade. An incomplete record is returned
// together with errIncomplete.
func (e *Engine) attempt(ctx context.Context, url string, out *Outcome, total int) (*profile.Record, error) {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("attempt %d/%d: %w", out.Attempts, total, err)
	}
	d, err := extract.NewDocument(page.Body, url)
	if err != nil {
		return nil, fmt.Errorf("attempt %d/%d: %w", out.Attempts, total, err)
	}
	rec := &profile.Record{}
	extract.Run(ctx, d, rec, e.logger)
	if rec.Complete() {
		return rec, nil
	}
	out.NotFound = d.NotFound()
	return rec, errIncomplete
}

// delay picks the pause before the next attempt from the kind of failure.
func (e *Engine) delay(err error) time.Duration {
	if errors.Is(err, errIncomplete) {
		return e.invalidDelay
	}
	return e.errorDelay
}

// noDelay leaves pacing to the attempt function, which sleeps on the
// Engine's own clock before each retry.
func noDelay(uint, error, *retry.Config) time.Duration { return 0 }
