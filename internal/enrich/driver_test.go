package enrich

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/commentrank/internal/core/comment"
	"github.com/hay-kot/commentrank/internal/report"
	"github.com/hay-kot/commentrank/internal/store/cachelog"
)

// fakeFetcher serves records from a map. Ids mapped to an error fail; ids
// missing from both maps are reported as not found.
type fakeFetcher struct {
	records map[string]comment.Record
	errs    map[string]error
	calls   []string
	onFetch func(id string)
}

func (f *fakeFetcher) Fetch(_ context.Context, id string) (comment.Record, error) {
	f.calls = append(f.calls, id)
	if f.onFetch != nil {
		f.onFetch(id)
	}
	if err, ok := f.errs[id]; ok {
		return comment.Record{}, &comment.FetchError{ID: id, Err: err, Quota: errors.Is(err, comment.ErrQuotaExceeded)}
	}
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	return comment.NotFound(id), nil
}

func exampleFetcher() *fakeFetcher {
	return &fakeFetcher{
		records: map[string]comment.Record{
			"a1": {ID: "a1", Text: "Hi", LikeCount: 5},
			"a3": {ID: "a3", Text: "Yo", LikeCount: 1},
		},
	}
}

func newCache(t *testing.T) *cachelog.Store {
	t.Helper()
	s := cachelog.New(filepath.Join(t.TempDir(), "comments_cache.csv"), zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func reopen(t *testing.T, s *cachelog.Store) *cachelog.Store {
	t.Helper()
	require.NoError(t, s.Close())
	next := cachelog.New(s.Path(), zerolog.Nop())
	t.Cleanup(func() { _ = next.Close() })
	return next
}

type recordingObserver struct {
	total, cached int
	processed     []Outcome
}

func (r *recordingObserver) Started(total, cached int) { r.total, r.cached = total, cached }
func (r *recordingObserver) Processed(o Outcome)       { r.processed = append(r.processed, o) }

func TestRun_Example(t *testing.T) {
	fetcher := exampleFetcher()
	store := newCache(t)

	summary, state, err := New(store, fetcher, Options{}, zerolog.Nop()).
		Run(context.Background(), []string{"a1", "a2", "a3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "a3"}, fetcher.calls)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 1, summary.NotFound)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 3, state.Len())

	rec, ok := state.Get("a2")
	require.True(t, ok)
	assert.True(t, rec.IsNotFound())
}

func TestRun_SecondRunMakesNoCalls(t *testing.T) {
	ids := []string{"a1", "a2", "a3"}
	store := newCache(t)
	_, _, err := New(store, exampleFetcher(), Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)

	fetcher := exampleFetcher()
	summary, state, err := New(reopen(t, store), fetcher, Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)

	assert.Empty(t, fetcher.calls)
	assert.Equal(t, 3, summary.Cached)
	assert.Equal(t, 0, summary.Calls())
	assert.Equal(t, 3, state.Len())
}

func TestRun_SecondRunWritesIdenticalReport(t *testing.T) {
	ids := []string{"a3", "a1", "a2", "a1"}
	store := newCache(t)

	render := func(state *cachelog.State) string {
		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf, report.Build(state, report.Options{})))
		return buf.String()
	}

	_, first, err := New(store, exampleFetcher(), Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)

	fetcher := exampleFetcher()
	_, second, err := New(reopen(t, store), fetcher, Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)

	assert.Empty(t, fetcher.calls)
	assert.Equal(t, render(first), render(second))
}

func TestRun_FreshRecordsMatchReload(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]comment.Record{
		"e1": {ID: "e1", Text: "it&#39;s<br>fine\nreally ", LikeCount: 2},
	}}
	store := newCache(t)

	_, fresh, err := New(store, fetcher, Options{}, zerolog.Nop()).Run(context.Background(), []string{"e1"})
	require.NoError(t, err)

	reloaded, _ := reopen(t, store).Load(context.Background())

	got, _ := fresh.Get("e1")
	want, _ := reloaded.Get("e1")
	assert.Equal(t, want, got)
	assert.Equal(t, "it's\nfine really", got.Text)
}

func TestRun_ResumesAfterInterruption(t *testing.T) {
	ids := []string{"a1", "a2", "a3", "a4", "a5"}
	records := map[string]comment.Record{}
	for i, id := range ids {
		records[id] = comment.Record{ID: id, Text: "c" + id, LikeCount: int64(i)}
	}

	store := newCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	first := &fakeFetcher{records: records, onFetch: func(id string) {
		if id == "a2" {
			cancel()
		}
	}}

	summary, _, err := New(store, first, Options{}, zerolog.Nop()).Run(ctx, ids)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, summary.Fetched, "the in-flight fetch still completes and persists")
	assert.Equal(t, 3, summary.Pending)

	second := &fakeFetcher{records: records}
	summary, state, err := New(reopen(t, store), second, Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, []string{"a3", "a4", "a5"}, second.calls)
	assert.Equal(t, 2, summary.Cached)
	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 5, state.Len())
}

func TestRun_FetchErrorIsSkippedAndRetriedNextRun(t *testing.T) {
	ids := []string{"a1", "bad", "a3"}
	store := newCache(t)
	failing := exampleFetcher()
	failing.errs = map[string]error{"bad": errors.New("connection reset")}

	summary, state, err := New(store, failing, Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Fetched)
	assert.False(t, state.Has("bad"))

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "bad", failures[0].ID)
	assert.Error(t, failures[0].Err)

	healed := exampleFetcher()
	_, _, err = New(reopen(t, store), healed, Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad"}, healed.calls)
}

func TestRun_DuplicatesCollapse(t *testing.T) {
	fetcher := exampleFetcher()
	obs := &recordingObserver{}

	summary, state, err := New(newCache(t), fetcher, Options{Observer: obs}, zerolog.Nop()).
		Run(context.Background(), []string{"a1", "a3", "a1", "a1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a3"}, fetcher.calls)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Unique)
	assert.Equal(t, 2, summary.Cached)
	assert.Equal(t, 2, state.Len())

	assert.Equal(t, 4, obs.total)
	assert.Equal(t, 0, obs.cached)
	assert.Len(t, obs.processed, 4)
}

func TestRun_ObserverCountsCachedUpFront(t *testing.T) {
	ids := []string{"a1", "a2", "a3"}
	store := newCache(t)
	require.NoError(t, store.Append(comment.Record{ID: "a1", Text: "Hi", LikeCount: 5}))

	obs := &recordingObserver{}
	_, _, err := New(reopen(t, store), exampleFetcher(), Options{Observer: obs}, zerolog.Nop()).
		Run(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, 3, obs.total)
	assert.Equal(t, 1, obs.cached)
	require.Len(t, obs.processed, 2)
	assert.Equal(t, "a2", obs.processed[0].ID)
	assert.Equal(t, StatusNotFound, obs.processed[0].Status)
}

func TestRun_NotFoundSentinelPolicy(t *testing.T) {
	ids := []string{"a2", "a2"}
	store := newCache(t)
	require.NoError(t, store.Append(comment.NotFound("a2")))

	t.Run("never retried by default", func(t *testing.T) {
		fetcher := exampleFetcher()
		_, _, err := New(reopen(t, store), fetcher, Options{}, zerolog.Nop()).Run(context.Background(), ids)
		require.NoError(t, err)
		assert.Empty(t, fetcher.calls)
	})

	t.Run("retried once when enabled", func(t *testing.T) {
		fetcher := exampleFetcher()
		fetcher.records["a2"] = comment.Record{ID: "a2", Text: "restored", LikeCount: 3}

		summary, state, err := New(reopen(t, store), fetcher, Options{RetryNotFound: true}, zerolog.Nop()).
			Run(context.Background(), ids)
		require.NoError(t, err)
		assert.Equal(t, []string{"a2"}, fetcher.calls)
		assert.Equal(t, 1, summary.Fetched)
		assert.Equal(t, 1, summary.Cached)

		rec, _ := state.Get("a2")
		assert.Equal(t, int64(3), rec.LikeCount)
	})
}

func TestRun_StopOnQuota(t *testing.T) {
	ids := []string{"a1", "q", "a3", "a4"}
	fetcher := exampleFetcher()
	fetcher.errs = map[string]error{"q": fmt.Errorf("403: %w", comment.ErrQuotaExceeded)}

	summary, _, err := New(newCache(t), fetcher, Options{StopOnQuota: true}, zerolog.Nop()).
		Run(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "q"}, fetcher.calls)
	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 3, summary.Skipped)
	for _, o := range summary.Outcomes[1:] {
		assert.ErrorIs(t, o.Err, comment.ErrQuotaExceeded)
	}
}

func TestRun_QuotaWithoutStopKeepsCalling(t *testing.T) {
	fetcher := exampleFetcher()
	fetcher.errs = map[string]error{"q": comment.ErrQuotaExceeded}

	_, _, err := New(newCache(t), fetcher, Options{}, zerolog.Nop()).
		Run(context.Background(), []string{"q", "a1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "a1"}, fetcher.calls)
}

// failingStore wraps a real store and fails appends for selected ids.
type failingStore struct {
	*cachelog.Store
	fail map[string]error
}

func (f *failingStore) Append(rec comment.Record) error {
	if err, ok := f.fail[rec.ID]; ok {
		return err
	}
	return f.Store.Append(rec)
}

func TestRun_UnencodableRecordIsSkipped(t *testing.T) {
	fetcher := exampleFetcher()
	fetcher.records["weird"] = comment.Record{ID: "weird", Text: "broken", LikeCount: -1}

	summary, state, err := New(newCache(t), fetcher, Options{}, zerolog.Nop()).
		Run(context.Background(), []string{"weird", "a1"})
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, summary.Outcomes[0].Status)
	assert.ErrorIs(t, summary.Outcomes[0].Err, cachelog.ErrUnencodable)
	assert.False(t, state.Has("weird"))
	assert.True(t, state.Has("a1"))
}

func TestRun_SeparatorInTextIsCached(t *testing.T) {
	fetcher := exampleFetcher()
	fetcher.records["sep"] = comment.Record{ID: "sep", Text: "a " + cachelog.Separator + " b", LikeCount: 3}
	store := newCache(t)
	ids := []string{"sep", "a1"}

	summary, _, err := New(store, fetcher, Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, StatusFetched, summary.Outcomes[0].Status)

	fetcher.calls = nil
	summary, state, err := New(reopen(t, store), fetcher, Options{}, zerolog.Nop()).Run(context.Background(), ids)
	require.NoError(t, err)

	assert.Empty(t, fetcher.calls, "second run makes no calls")
	assert.Equal(t, 2, summary.Cached)
	got, ok := state.Get("sep")
	require.True(t, ok)
	assert.Equal(t, "a !SEPERATOR! b", got.Text)
}

func TestRun_WriteFailureStopsRun(t *testing.T) {
	diskFull := errors.New("no space left on device")
	store := &failingStore{Store: newCache(t), fail: map[string]error{"a3": diskFull}}
	fetcher := exampleFetcher()

	summary, state, err := New(store, fetcher, Options{}, zerolog.Nop()).
		Run(context.Background(), []string{"a1", "a3", "a2"})
	require.ErrorIs(t, err, diskFull)

	assert.Equal(t, []string{"a1", "a3"}, fetcher.calls)
	assert.True(t, state.Has("a1"))
	assert.False(t, state.Has("a3"))
	assert.Equal(t, 2, summary.Pending)
}
