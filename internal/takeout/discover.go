// Package takeout locates the comment CSV files of a Google Takeout export
// and reads the comment ids out of them.
package takeout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// MarkerFile identifies a directory holding exported comment CSVs.
const MarkerFile = "comments.csv"

// ErrNoInputs is returned when no comment CSV files could be found.
var ErrNoInputs = errors.New("no comment csv files found")

// SearchDirs are the directories, relative to the search root, that are
// checked in order for MarkerFile. They cover running from above the
// Takeout folder, from inside it, and from inside the comments folder.
var SearchDirs = []string{
	"Takeout/YouTube and YouTube Music/comments",
	"YouTube and YouTube Music/comments",
	"comments",
	".",
}

// Discover returns every *.csv file in the first of SearchDirs under root
// that contains MarkerFile. Paths listed in exclude are never returned, so a
// cache file living next to the export is not read as input.
func Discover(root string, exclude ...string) ([]string, error) {
	for _, dir := range SearchDirs {
		full := filepath.Join(root, dir)
		if _, err := os.Stat(filepath.Join(full, MarkerFile)); err != nil {
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(full), "*.csv", doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", full, err)
		}

		files := make([]string, 0, len(matches))
		for _, m := range matches {
			files = append(files, filepath.Join(full, m))
		}

		files = without(files, exclude)
		if len(files) > 0 {
			slices.Sort(files)
			return files, nil
		}
	}

	return nil, fmt.Errorf("%w under %s", ErrNoInputs, root)
}

// Expand resolves explicit file patterns (doublestar syntax, e.g.
// "exports/**/*.csv") to a sorted, de-duplicated file list.
func Expand(patterns []string, exclude ...string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	slices.Sort(files)
	files = slices.Compact(files)
	files = without(files, exclude)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w matching %v", ErrNoInputs, patterns)
	}
	return files, nil
}

// Resolve returns the input files for a run: the expansion of patterns when
// any are given, otherwise the files discovered under root.
func Resolve(root string, patterns []string, exclude ...string) ([]string, error) {
	if len(patterns) > 0 {
		return Expand(patterns, exclude...)
	}
	return Discover(root, exclude...)
}

func without(files, exclude []string) []string {
	if len(exclude) == 0 {
		return files
	}

	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if e == "" {
			continue
		}
		skip[absPath(e)] = true
	}

	return slices.DeleteFunc(files, func(f string) bool {
		return skip[absPath(f)]
	})
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
