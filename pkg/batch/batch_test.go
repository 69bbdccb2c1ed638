package batch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/fanscope/pkg/engine"
	"github.com/codeGROOVE-dev/fanscope/pkg/profile"
)

type stubExtractor struct {
	records  map[string]*profile.Record
	errs     map[string]error
	notFound map[string]bool
	calls    []string
	cancel   context.CancelFunc
}

func (s *stubExtractor) Run(_ context.Context, input string) (*engine.Outcome, error) {
	s.calls = append(s.calls, input)
	if s.cancel != nil {
		s.cancel()
	}
	if err, ok := s.errs[input]; ok {
		return nil, err
	}
	rec := s.records[input]
	if rec == nil {
		rec = &profile.Record{}
	}
	return &engine.Outcome{Record: rec, Attempts: 1, NotFound: s.notFound[input]}, nil
}

func newTestRunner(ex Extractor) *Runner {
	return New(ex, WithPause(0), WithLimiter(NewHostLimiter(0, nil)))
}

func TestRunClassifiesResults(t *testing.T) {
	ex := &stubExtractor{
		records: map[string]*profile.Record{
			"www.kwai.com/@good":    {Username: "good", FollowerCount: "815", LikeCount: "4988"},
			"www.kwai.com/@partial": {Username: "partial", FollowerCount: "12000"},
			"www.kwai.com/@ghost":   {Username: "ghost"},
		},
		errs:     map[string]error{"www.kwai.com/@gone": profile.ErrProfileNotFound},
		notFound: map[string]bool{"www.kwai.com/@ghost": true},
	}
	inputs := []string{"www.kwai.com/@good", "www.kwai.com/@partial", "www.kwai.com/@gone", "www.kwai.com/@ghost"}

	results, err := newTestRunner(ex).Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("Run() returned %d results, want 4", len(results))
	}

	if !results[0].OK() {
		t.Errorf("results[0] = %+v, want OK", results[0])
	}
	if results[0].URL != "https://m.kwai.com/u/@good" {
		t.Errorf("results[0].URL = %q", results[0].URL)
	}

	if !results[1].InvalidData || results[1].OK() {
		t.Errorf("results[1] = %+v, want invalid data", results[1])
	}

	if !errors.Is(results[2].Err, profile.ErrProfileNotFound) {
		t.Errorf("results[2].Err = %v, want ErrProfileNotFound", results[2].Err)
	}
	if results[2].Error == "" || results[2].InvalidData {
		t.Errorf("results[2] = %+v, want error text and no invalid flag", results[2])
	}

	if !results[3].NotFound || results[3].InvalidData || results[3].OK() {
		t.Errorf("results[3] = %+v, want not found only", results[3])
	}

	if diff := cmp.Diff(inputs, ex.calls); diff != "" {
		t.Errorf("extractor calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCompleteRecordIgnoresNotFoundText(t *testing.T) {
	ex := &stubExtractor{
		records:  map[string]*profile.Record{"a": {FollowerCount: "1", LikeCount: "2"}},
		notFound: map[string]bool{"a": true},
	}
	results, err := newTestRunner(ex).Run(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !results[0].OK() {
		t.Errorf("results[0] = %+v, want OK", results[0])
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ex := &stubExtractor{cancel: cancel}

	results, err := New(ex, WithPause(time.Hour)).Run(ctx, []string{"a", "b", "c"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(results) != 1 {
		t.Errorf("Run() returned %d results, want 1", len(results))
	}
	if diff := cmp.Diff([]string{"a"}, ex.calls); diff != "" {
		t.Errorf("extractor calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPausesBetweenCalls(t *testing.T) {
	ex := &stubExtractor{}
	start := time.Now()
	_, err := New(ex, WithPause(20*time.Millisecond), WithLimiter(NewHostLimiter(0, nil))).
		Run(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Run() took %v, want at least 40ms", elapsed)
	}
}

func TestHostLimiter(t *testing.T) {
	l := NewHostLimiter(time.Minute, nil)
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	if err := l.Wait(ctx, "https://m.kwai.com/u/@a"); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}
	if err := l.Wait(ctx, "https://other.example/u/@a"); err != nil {
		t.Errorf("Wait() on another host error = %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Wait(canceled, "https://m.kwai.com/u/@b"); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() within delay error = %v, want context.Canceled", err)
	}

	clock = clock.Add(3 * time.Minute)
	if err := l.Wait(ctx, "https://m.kwai.com/u/@c"); err != nil {
		t.Errorf("Wait() after delay error = %v", err)
	}

	l.SetHostDelay("m.kwai.com", 0)
	if err := l.Wait(ctx, "https://m.kwai.com/u/@d"); err != nil {
		t.Errorf("Wait() with zero host delay error = %v", err)
	}

	if err := l.Wait(ctx, "::bad url"); err != nil {
		t.Errorf("Wait() on unparsable URL error = %v", err)
	}
}

func TestReadInputs(t *testing.T) {
	in := strings.NewReader("# profiles\nhttps://m.kwai.com/u/@a\n\n  www.kwai.com/@b  \n#skip\n")
	got, err := ReadInputs(in)
	if err != nil {
		t.Fatalf("ReadInputs() error = %v", err)
	}
	if diff := cmp.Diff([]string{"https://m.kwai.com/u/@a", "www.kwai.com/@b"}, got); diff != "" {
		t.Errorf("ReadInputs() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTable(t *testing.T) {
	results := []Result{
		{URL: "https://m.kwai.com/u/@good", Record: &profile.Record{DisplayName: "Good Person | Kwai", FollowerCount: "815", LikeCount: "4988"}},
		{URL: "https://m.kwai.com/u/@partial", Record: &profile.Record{FollowerCount: "12000"}, InvalidData: true},
		{URL: "https://m.kwai.com/u/@gone", Err: errors.New("boom"), Error: "boom"},
		{URL: "https://m.kwai.com/u/@ghost", Record: &profile.Record{Username: "ghost"}, NotFound: true},
	}
	var buf bytes.Buffer
	RenderTable(&buf, results)
	out := buf.String()

	for _, want := range []string{"4988", "Good Person", "invalid data", "error: boom", "not found", "1 ok, 1 invalid, 1 not found, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTable() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "| Kwai") {
		t.Errorf("RenderTable() output kept the site suffix:\n%s", out)
	}
}
