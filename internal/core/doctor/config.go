package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/commentrank/internal/core/config"
)

// ConfigCheck validates the loaded configuration against the file system.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

// NewConfigCheck creates a config check for cfg, loaded from path.
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch _, err := statFunc(c.path); {
	case c.path == "":
		result.Items = append(result.Items, CheckItem{Label: "config file", Status: StatusPass, Detail: "none, using defaults"})
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{
			Label:   "config file",
			Status:  StatusWarn,
			Detail:  c.path + " not found, using defaults (run init to create one)",
			Fixable: true,
		})
	default:
		result.Items = append(result.Items, CheckItem{Label: "config file", Status: StatusPass, Detail: c.path})
	}

	err := c.cfg.ValidateDeep(c.path)
	if err == nil {
		result.Items = append(result.Items, CheckItem{Label: "settings", Status: StatusPass, Detail: "valid"})
		return result
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		result.Items = append(result.Items, CheckItem{Label: "settings", Status: StatusFail, Detail: err.Error()})
		return result
	}
	for _, fe := range fieldErrs {
		result.Items = append(result.Items, CheckItem{Label: fe.Field, Status: StatusFail, Detail: fe.Err.Error()})
	}
	return result
}
