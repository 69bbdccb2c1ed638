package httpcache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/fanscope/pkg/fetch"
)

const (
	testURL      = "https://m.kwai.com/u/@johndoe"
	completeHTML = `<html><head><meta property="og:description" content="4988 Curtidas. 815 Seguidores."></head></html>`
	shellHTML    = `<html><body><div id="app"></div></body></html>`
)

type countingFetcher struct {
	calls atomic.Int32
	body  string
	err   error
}

func (c *countingFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &fetch.Page{URL: url, Body: []byte(c.body), StatusCode: 200}, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}
	return c
}

func TestFetcherCachesCompletePages(t *testing.T) {
	next := &countingFetcher{body: completeHTML}
	f := NewFetcher(next, newTestCache(t))

	for i := range 3 {
		page, err := f.Fetch(context.Background(), testURL)
		if err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
		if string(page.Body) != completeHTML {
			t.Errorf("Fetch() #%d body = %q", i, page.Body)
		}
	}
	if got := next.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	if got := f.Stats(); got.Hits != 2 || got.Misses != 1 {
		t.Errorf("Stats() = %+v, want 2 hits 1 miss", got)
	}
}

func TestFetcherSkipsIncompletePages(t *testing.T) {
	next := &countingFetcher{body: shellHTML}
	f := NewFetcher(next, newTestCache(t))

	for range 2 {
		page, err := f.Fetch(context.Background(), testURL)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(page.Body) != shellHTML {
			t.Errorf("Fetch() body = %q, want shell page", page.Body)
		}
	}
	if got := next.calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestFetcherNeverCachesErrors(t *testing.T) {
	wantErr := &fetch.HTTPError{URL: testURL, StatusCode: 503, Status: "503 Service Unavailable"}
	next := &countingFetcher{err: wantErr}
	f := NewFetcher(next, newTestCache(t))

	for range 2 {
		_, err := f.Fetch(context.Background(), testURL)
		var httpErr *fetch.HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("Fetch() error = %v, want *fetch.HTTPError", err)
		}
	}
	if got := next.calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestFetcherNilValidatorCachesAll(t *testing.T) {
	next := &countingFetcher{body: shellHTML}
	f := NewFetcher(next, newTestCache(t), WithValidator(nil))

	for range 2 {
		if _, err := f.Fetch(context.Background(), testURL); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	if got := next.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}

func TestCompleteProfile(t *testing.T) {
	if !CompleteProfile(testURL, []byte(completeHTML)) {
		t.Error("CompleteProfile(complete) = false")
	}
	if CompleteProfile(testURL, []byte(shellHTML)) {
		t.Error("CompleteProfile(shell) = true")
	}
}

func TestURLToKey(t *testing.T) {
	a, b := URLToKey(testURL), URLToKey(testURL+"?x=1")
	if len(a) != 64 {
		t.Errorf("URLToKey() length = %d, want 64", len(a))
	}
	if a == b {
		t.Error("distinct URLs share a key")
	}
}

func TestStatsHitRate(t *testing.T) {
	if got := (Stats{}).HitRate(); got != 0 {
		t.Errorf("HitRate() = %v, want 0", got)
	}
	if got := (Stats{Hits: 3, Misses: 1}).HitRate(); got != 75 {
		t.Errorf("HitRate() = %v, want 75", got)
	}
}
