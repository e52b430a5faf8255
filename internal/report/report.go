// Package report turns the cache state into the ranked output artifact.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/hay-kot/commentrank/internal/core/comment"
	"github.com/hay-kot/commentrank/internal/store/cachelog"
	"github.com/hay-kot/commentrank/pkg/iojson"
)

const indent = "    "

// Entry is one comment in the ranked output.
type Entry struct {
	ID        string `json:"-"`
	Comment   string `json:"comment"`
	LikeCount int64  `json:"like_count"`
}

// Options controls which records reach the output.
type Options struct {
	// OmitNotFound drops not-found sentinels instead of ranking them last
	// with zero likes.
	OmitNotFound bool
}

// Build ranks every record in state by like count, highest first. Records
// with equal counts keep the order in which they entered the cache.
func Build(state *cachelog.State, opts Options) []Entry {
	records := state.Records()
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		if opts.OmitNotFound && rec.IsNotFound() {
			continue
		}
		entries = append(entries, fromRecord(rec))
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.LikeCount > b.LikeCount:
			return -1
		case a.LikeCount < b.LikeCount:
			return 1
		default:
			return 0
		}
	})
	return entries
}

func fromRecord(rec comment.Record) Entry {
	return Entry{ID: rec.ID, Comment: rec.Text, LikeCount: rec.LikeCount}
}

// Write encodes entries as a single object keyed by comment id, in the order
// given, indented by four spaces and without a trailing newline.
func Write(w io.Writer, entries []Entry) error {
	members := make([]iojson.Member, len(entries))
	for i, e := range entries {
		members[i] = iojson.Member{Key: e.ID, Value: e}
	}
	if err := iojson.WriteObject(w, members, indent); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteFile writes entries to path. The file is replaced atomically so an
// interrupted write never leaves a truncated artifact behind.
func WriteFile(path string, entries []Entry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := Write(tmp, entries); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
