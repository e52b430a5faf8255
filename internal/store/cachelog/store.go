// Package cachelog persists enriched comments in an append-only text log so
// an interrupted run can resume without refetching anything it already saved.
//
// Each line is one record: id, raw comment text, and like count joined by
// Separator. Records are appended and synced one at a time; the log is never
// rewritten except by an explicit Compact.
package cachelog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/commentrank/internal/core/comment"
	"github.com/hay-kot/commentrank/internal/core/textnorm"
)

// LoadReport describes what Load found in the log.
type LoadReport struct {
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	Lines      int    `json:"lines"`
	Records    int    `json:"records"`
	Malformed  int    `json:"malformed"`
	Duplicates int    `json:"duplicates"`
	NotFound   int    `json:"not_found"`

	// Err is set when the file existed but could not be read. The returned
	// state is empty in that case.
	Err error `json:"-"`
}

// Store reads and appends to the cache log at a single path. It is not safe
// for concurrent writers.
type Store struct {
	path string
	log  zerolog.Logger
	file *os.File
}

// New creates a store for the log at path. Nothing is opened until the first
// Append.
func New(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, log: logger}
}

// Path returns the log location.
func (s *Store) Path() string {
	return s.path
}

// Load rebuilds the cache state from the log with comment text normalized.
// It never fails: a missing or unreadable file yields an empty state, and
// malformed lines are logged and skipped.
func (s *Store) Load(ctx context.Context) (*State, LoadReport) {
	return s.replay(ctx, textnorm.Normalize)
}

// AsLoaded returns rec as Load would return it after a round trip through
// the log: newlines flattened, text trimmed and normalized.
func AsLoaded(rec comment.Record) comment.Record {
	rec.Text = textnorm.Normalize(strings.TrimSpace(newlines.Replace(rec.Text)))
	return rec
}

func (s *Store) replay(ctx context.Context, transform func(string) string) (*State, LoadReport) {
	report := LoadReport{Path: s.path}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Info().Ctx(ctx).Str("path", s.path).Msg("no cache file found, starting from scratch")
			return NewState(), report
		}
		report.Exists = true
		report.Err = err
		s.log.Warn().Ctx(ctx).Err(err).Str("path", s.path).Msg("cache file unreadable, starting from scratch")
		return NewState(), report
	}
	defer func() { _ = f.Close() }()
	report.Exists = true

	state := NewState()
	r := bufio.NewReader(f)
	for {
		line, readErr := r.ReadString('\n')
		switch {
		case len(line) == 0:
		case readErr == io.EOF && strings.TrimSpace(line) != "":
			// An unterminated last line is a write cut short, even if it
			// happens to parse.
			report.Lines++
			report.Malformed++
			s.log.Warn().Ctx(ctx).
				Str("path", s.path).
				Int("line", report.Lines).
				Msg("skipping unterminated last cache line")
		default:
			report.Lines++
			s.apply(ctx, state, &report, line, transform)
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			report.Err = readErr
			s.log.Warn().Ctx(ctx).Err(readErr).
				Str("path", s.path).
				Int("line", report.Lines).
				Msg("cache file read failed, starting from scratch")
			return NewState(), report
		}
	}

	report.Records = state.Len()
	for _, rec := range state.Records() {
		if rec.IsNotFound() {
			report.NotFound++
		}
	}

	s.log.Debug().Ctx(ctx).
		Str("path", s.path).
		Int("records", report.Records).
		Int("malformed", report.Malformed).
		Msg("cache loaded")

	return state, report
}

func (s *Store) apply(ctx context.Context, state *State, report *LoadReport, line string, transform func(string) string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	rec, err := Decode(line)
	if err != nil {
		report.Malformed++
		s.log.Warn().Ctx(ctx).Err(err).
			Str("path", s.path).
			Int("line", report.Lines).
			Msg("skipping malformed cache line")
		return
	}

	if transform != nil {
		rec.Text = transform(rec.Text)
	}

	if !state.Put(rec) {
		report.Duplicates++
	}
}

// Append writes rec to the end of the log and syncs it to disk before
// returning. Records that cannot be encoded return an error wrapping
// ErrUnencodable and leave the log untouched.
func (s *Store) Append(rec comment.Record) error {
	line, err := Encode(rec)
	if err != nil {
		return err
	}

	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("write cache record: %w", err)
	}

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync cache file: %w", err)
	}

	return nil
}

// open lazily opens the log for appending. If a previous process died
// mid-write and left a partial last line, that line is truncated away so it
// cannot be completed into a valid looking record.
func (s *Store) open() error {
	if s.file != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open cache file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat cache file: %w", err)
	}

	end, err := completeLength(f, info.Size())
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("read cache file tail: %w", err)
	}
	if end < info.Size() {
		s.log.Warn().Str("path", s.path).Int64("bytes", info.Size()-end).Msg("dropping partial last cache line")
		if err := f.Truncate(end); err != nil {
			_ = f.Close()
			return fmt.Errorf("truncate partial cache line: %w", err)
		}
	}

	s.file = f
	return nil
}

// completeLength returns the length of f up to and including its last
// newline, or 0 when it has none.
func completeLength(f *os.File, size int64) (int64, error) {
	const chunk = 4096

	buf := make([]byte, chunk)
	for end := size; end > 0; {
		start := max(end-chunk, 0)
		n, err := f.ReadAt(buf[:end-start], start)
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if i := bytes.LastIndexByte(buf[:n], '\n'); i >= 0 {
			return start + int64(i) + 1, nil
		}
		end = start
	}
	return 0, nil
}

// Close releases the append handle, if open.
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Compact rewrites the log with one line per id, dropping malformed and
// superseded lines. Text is written exactly as it was stored. The rewrite
// goes through a temp file and rename so a crash leaves either the old or
// the new log in place.
func (s *Store) Compact(ctx context.Context) (LoadReport, error) {
	if err := s.Close(); err != nil {
		return LoadReport{}, fmt.Errorf("close cache file: %w", err)
	}

	state, report := s.replay(ctx, nil)
	if report.Err != nil {
		return report, fmt.Errorf("read cache file: %w", report.Err)
	}
	if !report.Exists {
		return report, nil
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return report, fmt.Errorf("create temp cache file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range state.Records() {
		line, err := Encode(rec)
		if err != nil {
			s.log.Warn().Ctx(ctx).Err(err).Str("comment_id", rec.ID).Msg("dropping record during compaction")
			report.Records--
			continue
		}
		if _, err := w.WriteString(line); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return report, fmt.Errorf("write temp cache file: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return report, fmt.Errorf("flush temp cache file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return report, fmt.Errorf("sync temp cache file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return report, fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return report, fmt.Errorf("replace cache file: %w", err)
	}

	return report, nil
}
