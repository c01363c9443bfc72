package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultsWithoutSettingsFile(t *testing.T) {
	t.Setenv("GRAMMARCHECK_SETTINGS", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("LANGUAGETOOL_SERVER_LOCAL", "")
	t.Setenv("LANGUAGETOOL_DEFAULT_SERVER", "")
	t.Setenv("LANGUAGETOOL_LANGUAGE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081/v2/check", cfg.ServerLocal)
	assert.Equal(t, ServerRemote, cfg.DefaultServer)
	assert.Equal(t, "auto", cfg.Language)
	assert.True(t, cfg.SplitReplacements)
	assert.Zero(t, cfg.CheckTimeout)
}

func TestLoad_Layering(t *testing.T) {
	path := writeSettings(t, `
server_local = "http://127.0.0.1:9000/v2/check"
default_server = "local"
display_mode = "statusbar"
language = "en-gb"
ignored_scopes = ["comment.*", "string.*"]
check_timeout = "5s"
split_replacements = false
`)
	t.Setenv("GRAMMARCHECK_SETTINGS", path)
	t.Setenv("LANGUAGETOOL_SERVER_LOCAL", "http://override:8081/v2/check")
	t.Setenv("LANGUAGETOOL_DEFAULT_SERVER", "")
	t.Setenv("LANGUAGETOOL_LANGUAGE", "")
	t.Setenv("GRAMMARCHECK_IGNORED_SCOPES", "")
	t.Setenv("WORKER_COUNT", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://override:8081/v2/check", cfg.ServerLocal)
	assert.Equal(t, ServerLocal, cfg.DefaultServer)
	assert.Equal(t, "statusbar", cfg.DisplayMode)
	assert.Equal(t, "en-GB", cfg.Language)
	assert.Equal(t, []string{"comment.*", "string.*"}, cfg.IgnoredScopes)
	assert.Equal(t, 5*time.Second, cfg.CheckTimeout)
	assert.False(t, cfg.SplitReplacements)
	assert.Equal(t, 2, cfg.WorkerCount)
}

func TestLoad_InvalidSettings(t *testing.T) {
	cases := map[string]string{
		"language":      `language = "!!"`,
		"display_mode":  `display_mode = "popup"`,
		"method":        `request_method = "PUT"`,
		"format":        `response_format = "yaml"`,
		"syntax":        `language = `,
		"ignore_store":  `ignore_store = "redis"`,
		"neg_timeout":   `check_timeout = "-1s"`,
		"server_choice": `default_server = "mirror"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("GRAMMARCHECK_SETTINGS", writeSettings(t, body))
			t.Setenv("LANGUAGETOOL_LANGUAGE", "")
			t.Setenv("LANGUAGETOOL_DEFAULT_SERVER", "")
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestServerURL(t *testing.T) {
	cfg := Defaults()

	u, err := cfg.ServerURL("")
	require.NoError(t, err)
	assert.Equal(t, cfg.ServerRemote, u)

	u, err = cfg.ServerURL("local")
	require.NoError(t, err)
	assert.Equal(t, cfg.ServerLocal, u)

	cfg.DefaultServer = ServerLocal
	u, err = cfg.ServerURL("")
	require.NoError(t, err)
	assert.Equal(t, cfg.ServerLocal, u)

	_, err = cfg.ServerURL("mirror")
	assert.Error(t, err)
}

func TestValidate_NormalizesMethod(t *testing.T) {
	cfg := Defaults()
	cfg.RequestMethod = "get"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "GET", cfg.RequestMethod)
}
