package takeout

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	headerField = "Comment ID"
	bom         = "\ufeff"
)

// ReadIDs returns the comment ids from files, in file order then row order.
// Only the first column of each row is used; the header row and blank ids
// are skipped. Duplicates are kept; the pipeline collapses them.
//
// A file that cannot be read or parsed is logged and skipped as a whole.
// An error is returned only when none of the files could be read.
func ReadIDs(ctx context.Context, logger zerolog.Logger, files []string) ([]string, error) {
	var (
		ids    []string
		failed int
		errs   []error
	)

	for _, file := range files {
		fileIDs, err := readFile(file)
		if err != nil {
			failed++
			errs = append(errs, err)
			logger.Warn().Ctx(ctx).Err(err).Str("file", file).Msg("error reading comments file, skipping")
			continue
		}

		logger.Debug().Ctx(ctx).Str("file", file).Int("ids", len(fileIDs)).Msg("read comments file")
		ids = append(ids, fileIDs...)
	}

	if len(files) > 0 && failed == len(files) {
		return nil, fmt.Errorf("read comment files: %w", errors.Join(errs...))
	}

	return ids, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parseIDs(f)
}

func parseIDs(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var ids []string
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return ids, nil
		}
		if err != nil {
			return nil, err
		}

		id := strings.TrimSpace(record[0])
		if first {
			first = false
			id = strings.TrimSpace(strings.TrimPrefix(id, bom))
			if strings.EqualFold(id, headerField) {
				continue
			}
		}

		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
}
