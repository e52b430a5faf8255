package doctor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// statFunc is the function used to inspect paths.
// Package-level variable to allow test overrides.
var statFunc = os.Stat

// OutputCheck verifies that the output file can be written.
type OutputCheck struct {
	path string
}

// NewOutputCheck creates an output check.
func NewOutputCheck(path string) *OutputCheck {
	return &OutputCheck{path: path}
}

func (c *OutputCheck) Name() string {
	return "Output"
}

func (c *OutputCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := statFunc(c.path)
	switch {
	case err == nil && info.IsDir():
		result.Items = append(result.Items, CheckItem{Label: "file", Status: StatusFail, Detail: c.path + " is a directory"})
		return result
	case err == nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "file",
			Status: StatusPass,
			Detail: c.path + " written " + humanize.Time(info.ModTime()),
		})
		return result
	case !os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{Label: "file", Status: StatusFail, Detail: err.Error()})
		return result
	}

	dir := filepath.Dir(c.path)
	dirInfo, err := statFunc(dir)
	switch {
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{Label: "file", Status: StatusWarn, Detail: dir + " will be created"})
	case err != nil:
		result.Items = append(result.Items, CheckItem{Label: "file", Status: StatusFail, Detail: err.Error()})
	case !dirInfo.IsDir():
		result.Items = append(result.Items, CheckItem{Label: "file", Status: StatusFail, Detail: dir + " is not a directory"})
	default:
		result.Items = append(result.Items, CheckItem{Label: "file", Status: StatusPass, Detail: c.path + " not written yet"})
	}
	return result
}
