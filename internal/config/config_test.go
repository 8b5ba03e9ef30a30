package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.Equal(t, 2*time.Second, cfg.Autosave.Delay)
	assert.True(t, cfg.View.ServerSide)
	assert.Empty(t, cfg.Refresh.Spec)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "skudash.yaml")
	content := `
api:
  base_url: http://api.internal:9000
  timeout: 5s
session:
  backend: sqlite
autosave:
  delay: 1500ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// 环境变量覆盖文件
	t.Setenv("SKUDASH_API_BASE_URL", "http://override:1234")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://override:1234", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendSQLite, cfg.Session.Backend)
	assert.Equal(t, 1500*time.Millisecond, cfg.Autosave.Delay)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法", func(c *Config) {}, false},
		{"缺少 base_url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"未知后端", func(c *Config) { c.Session.Backend = "redis" }, true},
		{"延迟为 0", func(c *Config) { c.Autosave.Delay = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				API:      APIConfig{BaseURL: "http://x"},
				Session:  SessionConfig{Backend: BackendFile},
				Autosave: AutosaveConfig{Delay: time.Second},
			}
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
