// Package doctor runs read-only health checks over the configuration, the
// Takeout inputs, the cache log and the output location. No check calls the
// YouTube API.
package doctor

import (
	"context"

	"github.com/hay-kot/commentrank/internal/core/config"
)

// Status is the verdict on one checked item.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is one line of a check's output.
type CheckItem struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
	// Fixable marks problems that init or cache compact resolve.
	Fixable bool `json:"fixable,omitempty"`
}

// Result is the outcome of one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Checks returns the checks for a run configured by cfg, loaded from
// configPath, in the order they are reported.
func Checks(cfg *config.Config, configPath string) []Check {
	return []Check{
		NewConfigCheck(cfg, configPath),
		NewCredentialsCheck(cfg.APIKey),
		NewInputsCheck(cfg.TakeoutDir, cfg.Inputs, cfg.CacheFile, cfg.OutputFile),
		NewCacheCheck(cfg.CacheFile),
		NewOutputCheck(cfg.OutputFile),
	}
}

// Report holds every result with item counts by status. Fixable counts only
// items that are not passing.
type Report struct {
	Healthy bool     `json:"healthy"`
	Passed  int      `json:"passed"`
	Warned  int      `json:"warned"`
	Failed  int      `json:"failed"`
	Fixable int      `json:"fixable"`
	Results []Result `json:"checks"`
}

// Run executes checks in order. A run is healthy when nothing failed;
// warnings do not block it.
func Run(ctx context.Context, checks []Check) Report {
	var r Report
	for _, check := range checks {
		result := check.Run(ctx)
		for _, item := range result.Items {
			r.add(item)
		}
		r.Results = append(r.Results, result)
	}
	r.Healthy = r.Failed == 0
	return r
}

func (r *Report) add(item CheckItem) {
	switch item.Status {
	case StatusPass:
		r.Passed++
		return
	case StatusWarn:
		r.Warned++
	case StatusFail:
		r.Failed++
	}
	if item.Fixable {
		r.Fixable++
	}
}
