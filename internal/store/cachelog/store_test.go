package cachelog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/commentrank/internal/core/comment"
	"github.com/hay-kot/commentrank/internal/core/textnorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "comments_cache.csv"), zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeLog(t *testing.T, s *Store, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	s := newTestStore(t)

	state, report := s.Load(context.Background())

	assert.Equal(t, 0, state.Len())
	assert.False(t, report.Exists)
	assert.NoError(t, report.Err)
}

func TestLoad_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	// A directory at the cache path cannot be read as a file.
	s := New(dir, zerolog.Nop())

	state, report := s.Load(context.Background())

	assert.Equal(t, 0, state.Len())
	assert.True(t, report.Exists)
	assert.Error(t, report.Err)
}

func TestAppendLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	recs := []comment.Record{
		{ID: "a1", Text: "it&#39;s &quot;great&quot;<br>really", LikeCount: 5},
		comment.NotFound("a2"),
		{ID: "a3", Text: "Yo", LikeCount: 1},
	}

	for _, r := range recs {
		require.NoError(t, s.Append(r))
	}

	state, report := New(s.Path(), zerolog.Nop()).Load(context.Background())
	require.NoError(t, report.Err)
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 1, report.NotFound)

	for _, want := range recs {
		got, ok := state.Get(want.ID)
		require.True(t, ok, want.ID)
		want.Text = textnorm.Normalize(want.Text)
		assert.Equal(t, want, got)
	}

	assert.Equal(t, recs[0].ID, state.Records()[0].ID, "load keeps log order")
}

func TestAppend_NewlinesFlattened(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(comment.Record{ID: "a1", Text: "line one\nline two", LikeCount: 2}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "a1!SEPERATOR!line one line two!SEPERATOR!2\n", string(data))
}

func TestAppend_Unencodable(t *testing.T) {
	s := newTestStore(t)

	err := s.Append(comment.Record{ID: "a1" + Separator, Text: "bad"})
	require.ErrorIs(t, err, ErrUnencodable)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "nothing is written for a rejected record")
}

func TestLoad_UnterminatedLastLineIsMalformed(t *testing.T) {
	s := newTestStore(t)
	writeLog(t, s, "a1!SEPERATOR!hello!SEPERATOR!3\na2!SEPERATOR!text!SEPERATOR!1")

	state, report := s.Load(context.Background())
	assert.Equal(t, 2, report.Lines)
	assert.Equal(t, 1, report.Malformed)
	assert.True(t, state.Has("a1"))
	assert.False(t, state.Has("a2"), "like count may have been cut short")
}

func TestAppend_TruncatesTornTail(t *testing.T) {
	s := newTestStore(t)
	writeLog(t, s, "a1!SEPERATOR!hello!SEPERATOR!3\na2!SEPERATOR!text!SEPERATOR!1")

	require.NoError(t, s.Append(comment.Record{ID: "a3", Text: "new", LikeCount: 9}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "a1!SEPERATOR!hello!SEPERATOR!3\na3!SEPERATOR!new!SEPERATOR!9\n", string(data))

	state, report := New(s.Path(), zerolog.Nop()).Load(context.Background())
	assert.Zero(t, report.Malformed)
	assert.Equal(t, 2, state.Len())
	assert.True(t, state.Has("a1"))
	assert.True(t, state.Has("a3"))
	assert.False(t, state.Has("a2"))
}

func TestLoad_MalformedLineResilience(t *testing.T) {
	s := newTestStore(t)
	writeLog(t, s, ""+
		"a1!SEPERATOR!one!SEPERATOR!1\n"+
		"garbage line without separators\n"+
		"\n"+
		"a2!SEPERATOR!two!SEPERATOR!notanumber\n"+
		"a3!SEPERATOR!three!SEPERATOR!3\n"+
		"a4!SEPERATOR!four!SEPERATOR!4\n")

	state, report := s.Load(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, 3, state.Len())
	assert.Equal(t, 2, report.Malformed)
	assert.Equal(t, 6, report.Lines)

	ids := make([]string, 0, state.Len())
	for _, r := range state.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a1", "a3", "a4"}, ids)
}

func TestLoad_LastWriteWins(t *testing.T) {
	s := newTestStore(t)
	writeLog(t, s, ""+
		"a1!SEPERATOR!not found!SEPERATOR!0\n"+
		"a2!SEPERATOR!two!SEPERATOR!2\n"+
		"a1!SEPERATOR!back again!SEPERATOR!8\n")

	state, report := s.Load(context.Background())

	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 0, report.NotFound)

	got, ok := state.Get("a1")
	require.True(t, ok)
	assert.Equal(t, "back again", got.Text)
	assert.Equal(t, "a1", state.Records()[0].ID, "overwrite keeps first position")
}

func TestCompact(t *testing.T) {
	s := newTestStore(t)
	writeLog(t, s, ""+
		"a1!SEPERATOR!not found!SEPERATOR!0\n"+
		"junk\n"+
		"a2!SEPERATOR!it&#39;s<br>two!SEPERATOR!2\n"+
		"a1!SEPERATOR!back!SEPERATOR!8\n")

	report, err := s.Compact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, 1, report.Malformed)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, ""+
		"a1!SEPERATOR!back!SEPERATOR!8\n"+
		"a2!SEPERATOR!it&#39;s<br>two!SEPERATOR!2\n", string(data))

	_, statErr := os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompact_KeepsSeparatorInText(t *testing.T) {
	s := newTestStore(t)
	writeLog(t, s, ""+
		"a1!SEPERATOR!x !SEPERATOR! y!SEPERATOR!7\n"+
		"b2!SEPERATOR!hi!SEPERATOR!2\n")

	before, _ := New(s.Path(), zerolog.Nop()).Load(context.Background())

	report, err := s.Compact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, ""+
		"a1!SEPERATOR!x !SEPERATOR! y!SEPERATOR!7\n"+
		"b2!SEPERATOR!hi!SEPERATOR!2\n", string(data))

	after, _ := New(s.Path(), zerolog.Nop()).Load(context.Background())
	assert.Equal(t, before.Records(), after.Records())
}

func TestCompact_MissingFile(t *testing.T) {
	s := newTestStore(t)

	report, err := s.Compact(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Exists)
}

func TestCompact_ThenAppend(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(comment.Record{ID: "a1", Text: "one", LikeCount: 1}))

	_, err := s.Compact(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Append(comment.Record{ID: "a2", Text: "two", LikeCount: 2}))

	state, _ := New(s.Path(), zerolog.Nop()).Load(context.Background())
	assert.Equal(t, 2, state.Len())
}

func TestAsLoaded_MatchesLoad(t *testing.T) {
	s := newTestStore(t)
	rec := comment.Record{ID: "b1", Text: " line one\r\nline&#39;two<br>three\n", LikeCount: 9}
	require.NoError(t, s.Append(rec))

	state, report := New(s.Path(), zerolog.Nop()).Load(context.Background())
	require.NoError(t, report.Err)

	got, ok := state.Get("b1")
	require.True(t, ok)
	assert.Equal(t, got, AsLoaded(rec))
	assert.Equal(t, "line one line'two\nthree", got.Text)
}

func TestAppend_TornFileWithoutNewline(t *testing.T) {
	s := newTestStore(t)
	writeLog(t, s, "a1!SEPERATOR!cut")

	require.NoError(t, s.Append(comment.Record{ID: "a2", Text: "two", LikeCount: 2}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "a2!SEPERATOR!two!SEPERATOR!2\n", string(data))
}
