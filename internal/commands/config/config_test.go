package config

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-glide/internal/commands/shared"
	"github.com/tombee/conductor-glide/internal/config"
)

func useSettings(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	shared.SetConfigPathForTest(path)
	t.Cleanup(func() { shared.SetConfigPathForTest("") })
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigSetAndShow(t *testing.T) {
	path := useSettings(t)

	_, err := execute(t, "set", "glide.app_id", "app-1")
	require.NoError(t, err)
	_, err = execute(t, "set", "glide.timeout", "45s")
	require.NoError(t, err)
	_, err = execute(t, "set", "shippo.base_urls.test", "https://shippo.example.test")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "app-1", cfg.Glide.AppID)
	assert.Equal(t, 45*time.Second, cfg.Glide.Timeout)
	assert.Equal(t, "https://shippo.example.test", cfg.Shippo.BaseURLs["test"])

	out, err := execute(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "app_id: app-1")
}

func TestConfigShowJSON(t *testing.T) {
	useSettings(t)
	_, err := execute(t, "set", "log.level", "DEBUG")
	require.NoError(t, err)
	_, err = execute(t, "set", "glide.timeout", "30s")
	require.NoError(t, err)

	shared.SetJSONForTest(true)
	defer shared.SetJSONForTest(false)

	out, err := execute(t, "show")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "debug", doc["log"].(map[string]interface{})["level"])
	assert.Equal(t, "30s", doc["glide"].(map[string]interface{})["timeout"])
	assert.NotContains(t, doc["shippo"].(map[string]interface{}), "timeout")
}

func TestConfigSetRejectsInvalid(t *testing.T) {
	path := useSettings(t)

	tests := []struct {
		key, value string
	}{
		{"glide.environment", "staging"},
		{"glide.base_url", "ftp://example.com"},
		{"glide.rate_limit", "fast"},
		{"glide.timeout", "soon"},
		{"unknown.key", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := execute(t, "set", tt.key, tt.value)
			require.Error(t, err)
			assert.Equal(t, shared.ExitConfigError, shared.ExitCode(err))
		})
	}

	assert.NoFileExists(t, path)
}

func TestConfigPath(t *testing.T) {
	path := useSettings(t)

	out, err := execute(t, "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}
