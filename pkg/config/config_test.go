package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, VerifySize, cfg.Settings.Verify)
	assert.Equal(t, DefaultConcurrency, cfg.Settings.Concurrency)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.NotEmpty(t, cfg.Settings.OutputDir)
	assert.False(t, cfg.HasCredentials())
}

func TestLoadConfigFromReader(t *testing.T) {
	yaml := `
auth:
  email: user@example.com
  password: hunter2
settings:
  output_dir: /data/vault
  verify: checksum
  concurrency: 5
  days: 7
  groups: [eodLevel2, archive]
  log_level: debug
`
	cfg, err := LoadConfigFromReader(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", cfg.Auth.Email)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "/data/vault", cfg.Settings.OutputDir)
	assert.Equal(t, VerifyChecksum, cfg.Settings.Verify)
	assert.Equal(t, 5, cfg.Settings.Concurrency)
	assert.Equal(t, 7, cfg.Settings.Days)
	assert.Equal(t, []string{"eodLevel2", "archive"}, cfg.Settings.Groups)

	// unset fields get defaults
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultDownloadTimeout, cfg.Settings.DownloadTimeout)
}

func TestLoadConfigFromReader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad verify mode",
			yaml: "settings:\n  verify: maybe\n",
		},
		{
			name: "negative days",
			yaml: "settings:\n  days: -2\n",
		},
		{
			name: "not yaml",
			yaml: "{{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, VerifySize, cfg.Settings.Verify)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DNFV_EMAIL", "env@example.com")
	t.Setenv("DNFV_PASSWORD", "envpass")
	t.Setenv("DNFV_OUT_DIR", "/env/out")
	t.Setenv("DNFV_BASE_URL", "https://api.example.com/")
	t.Setenv("DNFV_DAYS", "3")
	t.Setenv("DNFV_GROUPS", "eodLevel2, eodLevel3 ,")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "env@example.com", cfg.Auth.Email)
	assert.Equal(t, "envpass", cfg.Auth.Password)
	assert.Equal(t, "/env/out", cfg.Settings.OutputDir)
	assert.Equal(t, "https://api.example.com", cfg.Settings.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 3, cfg.Settings.Days)
	assert.Equal(t, []string{"eodLevel2", "eodLevel3"}, cfg.Settings.Groups)
}

func TestApplyEnv_BadDaysIgnored(t *testing.T) {
	t.Setenv("DNFV_DAYS", "soon")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, 0, cfg.Settings.Days)
}

func TestGroupWanted(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.GroupWanted("anything"), "no filter admits everything")

	cfg.Settings.Groups = []string{"eodLevel2", "Archive"}
	assert.True(t, cfg.GroupWanted("eodlevel2"))
	assert.True(t, cfg.GroupWanted("ARCHIVE"))
	assert.False(t, cfg.GroupWanted("other"))
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Auth.Email = "save@example.com"
	cfg.Auth.Password = "secret"
	cfg.Settings.Days = 14
	cfg.Settings.HTTPTimeout = 30 * time.Second

	require.NoError(t, cfg.SaveConfig(path))

	// config file holds credentials, check it is not world-readable
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "save@example.com", loaded.Auth.Email)
	assert.Equal(t, 14, loaded.Settings.Days)
	assert.Equal(t, 30*time.Second, loaded.Settings.HTTPTimeout)

	// no temp file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Settings.Concurrency = 0
	assert.Error(t, cfg.Validate())
}
