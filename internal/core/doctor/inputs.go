package doctor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/hay-kot/commentrank/internal/takeout"
)

// Package-level variables to allow test overrides.
var (
	resolveFunc = takeout.Resolve
	readIDsFunc = takeout.ReadIDs
)

// InputsCheck verifies that comment CSV files can be found and read.
type InputsCheck struct {
	root     string
	patterns []string
	exclude  []string
}

// NewInputsCheck creates an inputs check. Files in exclude are never
// counted as inputs.
func NewInputsCheck(root string, patterns []string, exclude ...string) *InputsCheck {
	return &InputsCheck{root: root, patterns: patterns, exclude: exclude}
}

func (c *InputsCheck) Name() string {
	return "Takeout inputs"
}

func (c *InputsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	files, err := resolveFunc(c.root, c.patterns, c.exclude...)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:   "files",
			Status:  StatusFail,
			Detail:  err.Error(),
			Fixable: true,
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "files",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d in %s", len(files), filepath.Dir(files[0])),
	})

	ids, err := readIDsFunc(ctx, zerolog.Nop(), files)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: "comment ids", Status: StatusFail, Detail: err.Error()})
		return result
	}

	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	item := CheckItem{
		Label:  "comment ids",
		Status: StatusPass,
		Detail: fmt.Sprintf("%s (%s unique)", humanize.Comma(int64(len(ids))), humanize.Comma(int64(len(unique)))),
	}
	if len(ids) == 0 {
		item.Status = StatusWarn
		item.Detail = "files contain no comment ids"
	}
	result.Items = append(result.Items, item)
	return result
}
