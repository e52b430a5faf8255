package doctor

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/hay-kot/commentrank/internal/store/cachelog"
)

// CacheCheck replays the cache log and reports on its health.
type CacheCheck struct {
	path string
}

// NewCacheCheck creates a cache check for the log at path.
func NewCacheCheck(path string) *CacheCheck {
	return &CacheCheck{path: path}
}

func (c *CacheCheck) Name() string {
	return "Cache"
}

func (c *CacheCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	_, report := cachelog.New(c.path, zerolog.Nop()).Load(ctx)
	switch {
	case report.Err != nil:
		result.Items = append(result.Items, CheckItem{Label: "log", Status: StatusFail, Detail: report.Err.Error()})
		return result
	case !report.Exists:
		result.Items = append(result.Items, CheckItem{Label: "log", Status: StatusPass, Detail: c.path + " not created yet"})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "log",
		Status: StatusPass,
		Detail: fmt.Sprintf("%s records, %s not found", humanize.Comma(int64(report.Records)), humanize.Comma(int64(report.NotFound))),
	})

	if report.Malformed > 0 {
		result.Items = append(result.Items, CheckItem{
			Label:   "malformed lines",
			Status:  StatusWarn,
			Detail:  fmt.Sprintf("%d ignored (cache compact drops them)", report.Malformed),
			Fixable: true,
		})
	}
	if report.Duplicates > 0 {
		result.Items = append(result.Items, CheckItem{
			Label:   "superseded lines",
			Status:  StatusWarn,
			Detail:  fmt.Sprintf("%d (cache compact drops them)", report.Duplicates),
			Fixable: true,
		})
	}
	return result
}
