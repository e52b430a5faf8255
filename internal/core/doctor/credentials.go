package doctor

import (
	"context"
	"strings"
)

// CredentialsCheck verifies that an API key is configured. It never calls
// the API, so it costs no quota.
type CredentialsCheck struct {
	apiKey string
}

// NewCredentialsCheck creates a credentials check.
func NewCredentialsCheck(apiKey string) *CredentialsCheck {
	return &CredentialsCheck{apiKey: apiKey}
}

func (c *CredentialsCheck) Name() string {
	return "Credentials"
}

func (c *CredentialsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.apiKey == "" {
		result.Items = append(result.Items, CheckItem{
			Label:   "api key",
			Status:  StatusFail,
			Detail:  "not set (use --api-key, YOUTUBE_V3_API_KEY or api_key in the config file)",
			Fixable: true,
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "api key",
		Status: StatusPass,
		Detail: maskKey(c.apiKey),
	})
	return result
}

// maskKey keeps the last four characters of key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
