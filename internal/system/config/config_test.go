package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
servicem8:
  email: user@example.com
  password: secret
highlevel:
  api_key: key
`

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Addr.Port)
	assert.Equal(t, "INFO", cfg.Log.LogLevel)
	assert.Equal(t, "https://api.servicem8.com/api_1.0", cfg.ServiceM8.BaseURL)
	assert.Equal(t, float64(3), cfg.ServiceM8.RateLimitRPS)
	assert.Equal(t, "sync_state.json", cfg.Sync.StateFile)
	assert.Equal(t, 20, cfg.Sync.LookbackMinutes)
	assert.Equal(t, 5, cfg.Sync.ContactPollMinutes)
	assert.Equal(t, 10, cfg.Sync.PaymentPollMinutes)
	assert.Equal(t, 5, cfg.Sync.IntakeDebounceSeconds)
}

func TestLoadConfig_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("SM8_PASSWORD", "from-env")

	cfg, err := LoadConfig(writeConfig(t, `
servicem8:
  email: user@example.com
  password: ${SM8_PASSWORD}
highlevel:
  api_key: key
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ServiceM8.Password)
}

func TestLoadConfig_MissingCredentialsRejected(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
highlevel:
  api_key: key
`))
	assert.Error(t, err)
}

func TestLoadConfig_MissingApiKeyRejected(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
servicem8:
  email: user@example.com
  password: secret
`))
	assert.Error(t, err)
}

func TestLoadConfig_BadgeGateNeedsBadgeUuid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
sync:
  require_badge: true
`))
	assert.Error(t, err)
}

func TestLoadConfig_CutoffMustParse(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
sync:
  require_cutoff: true
  completion_cutoff: not-a-date
`))
	assert.Error(t, err)
}

func TestCompletionCutoffDate(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig+`
sync:
  require_cutoff: true
  completion_cutoff: "2026-01-01"
`))
	require.NoError(t, err)

	cutoff := cfg.CompletionCutoffDate()
	assert.Equal(t, 2026, cutoff.Year())
	assert.Equal(t, 1, int(cutoff.Month()))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
