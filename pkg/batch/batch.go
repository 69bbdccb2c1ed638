// Package batch runs profile extractions for a list of URLs one at a time,
// pacing requests so a run does not trip the site's rate limits.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/fanscope/pkg/engine"
	"github.com/codeGROOVE-dev/fanscope/pkg/fetch"
	"github.com/codeGROOVE-dev/fanscope/pkg/profile"
	"github.com/codeGROOVE-dev/fanscope/pkg/urlnorm"
)

// Defaults for pacing.
const (
	DefaultPause     = 2 * time.Second
	DefaultHostDelay = 3 * time.Second
)

// Extractor extracts one profile. *engine.Engine satisfies it.
type Extractor interface {
	Run(ctx context.Context, input string) (*engine.Outcome, error)
}

// Result is the outcome for one input.
type Result struct {
	Record  *profile.Record `json:"record,omitempty"`
	Err     error           `json:"-"`
	Input   string          `json:"input"`
	URL     string          `json:"url"`
	Error   string          `json:"error,omitempty"`
	Elapsed time.Duration   `json:"-"`
	// InvalidData is set when extraction finished but a count never
	// validated, so the operator should re-check the profile by hand.
	InvalidData bool `json:"invalidData"`
	// NotFound is set instead of InvalidData when the page reads as a
	// missing or suspended profile.
	NotFound bool `json:"notFound"`
}

// OK reports whether the record is usable as-is.
func (r Result) OK() bool {
	return r.Err == nil && !r.InvalidData && !r.NotFound
}

// Runner runs extractions sequentially.
type Runner struct {
	extractor Extractor
	limiter   *HostLimiter
	logger    *slog.Logger
	hosts     urlnorm.Hosts
	pause     time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithPause sets the pause between consecutive extractions.
func WithPause(d time.Duration) Option {
	return func(r *Runner) { r.pause = d }
}

// WithLimiter sets the per-host limiter.
func WithLimiter(l *HostLimiter) Option {
	return func(r *Runner) { r.limiter = l }
}

// WithHosts sets the hosts used to derive the paced host from each input.
func WithHosts(h urlnorm.Hosts) Option {
	return func(r *Runner) { r.hosts = h }
}

// New creates a Runner around ex.
func New(ex Extractor, opts ...Option) *Runner {
	r := &Runner{
		extractor: ex,
		logger:    slog.Default(),
		hosts:     urlnorm.DefaultHosts,
		pause:     DefaultPause,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.limiter == nil {
		r.limiter = NewHostLimiter(DefaultHostDelay, r.logger)
	}
	return r
}

// Run extracts each input in order. Per-input failures are recorded in the
// results; only cancellation stops the run, returning the results so far.
func (r *Runner) Run(ctx context.Context, inputs []string) ([]Result, error) {
	results := make([]Result, 0, len(inputs))
	for i, input := range inputs {
		if i > 0 && r.pause > 0 {
			if err := fetch.Sleep(ctx, r.pause); err != nil {
				return results, err
			}
		}
		url := r.hosts.Normalize(input)
		if err := r.limiter.Wait(ctx, url); err != nil {
			return results, err
		}

		start := time.Now()
		out, err := r.extractor.Run(ctx, input)
		res := Result{Input: input, URL: url, Err: err, Elapsed: time.Since(start)}
		var complete, notFound bool
		if out != nil {
			res.Record = out.Record
			complete = out.Record != nil && out.Record.Complete()
			notFound = out.NotFound
		}
		switch {
		case err != nil:
			res.Error = err.Error()
			r.logger.WarnContext(ctx, "extraction failed", "input", input, "error", err)
		case notFound && !complete:
			res.NotFound = true
			r.logger.WarnContext(ctx, "profile not found", "input", input)
		case !complete:
			res.InvalidData = true
			r.logger.WarnContext(ctx, "invalid data, check profile manually", "input", input)
		default:
			r.logger.InfoContext(ctx, "extracted", "input", input,
				"followers", res.Record.FollowerCount, "likes", res.Record.LikeCount,
				"elapsed", res.Elapsed.Round(time.Millisecond))
		}
		results = append(results, res)

		if ctx.Err() != nil {
			return results, ctx.Err()
		}
	}
	return results, nil
}

// ReadInputs reads one input per line, skipping blank lines and # comments.
func ReadInputs(rd io.Reader) ([]string, error) {
	var inputs []string
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}
	return inputs, nil
}
