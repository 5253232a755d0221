package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "openai", cfg.Provider.Default)
	assert.Equal(t, 5*time.Second, cfg.Check.Timeout)
	assert.Equal(t, 3, cfg.Check.Retries)
	assert.Equal(t, []int{500, 502, 503, 504}, cfg.Check.RetryStatuses)
	assert.Equal(t, 500*time.Millisecond, cfg.Check.MinInterval)
	assert.Len(t, cfg.Check.Regions, 9)
	assert.Equal(t, "National", cfg.Check.Regions[0])
	assert.Equal(t, 50, cfg.Summary.MinWords)
	assert.Equal(t, 4*time.Second, cfg.Summary.MinInterval)
	assert.Equal(t, "warn", cfg.Log.ConsoleLevel)
}

func TestLoadFromFile(t *testing.T) {
	tomlContent := `
[site]
api_url = "https://wiki.example.org/api.php"
page_url = "https://wiki.example.org/"
username = "LinkBot"
password_source = "config"
password = "hunter2"

[files]
work_dir = "/data/wiki"
batch = "batch_07.txt"

[check]
timeout = "10s"
min_interval = "1s"
regions = ["National", "Tasmania"]

[log]
level = "debug"
`
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(tomlContent), 0644))

	cfg, err := Load(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.org/api.php", cfg.Site.APIURL)
	assert.Equal(t, "LinkBot", cfg.Site.Username)
	assert.Equal(t, "/data/wiki/batch_07.txt", cfg.Files.Path(cfg.Files.Batch))
	// Unset names keep their defaults.
	assert.Equal(t, "/data/wiki/pages_done.txt", cfg.Files.Path(cfg.Files.PagesDone))
	assert.Equal(t, 10*time.Second, cfg.Check.Timeout)
	assert.Equal(t, time.Second, cfg.Check.MinInterval)
	assert.Equal(t, []string{"National", "Tasmania"}, cfg.Check.Regions)
	assert.Equal(t, 3, cfg.Check.Retries)
	assert.Equal(t, "debug", cfg.Log.Level)

	pw, err := cfg.SitePassword()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

func TestLoadOpenAICompatibleProviders(t *testing.T) {
	tomlContent := `
[provider]
default = "perplexity"
model = "sonar"

[[provider.openai_compatible]]
name = "openai"
base_url = "https://api.openai.com/v1"
api_key_source = "env"

[[provider.openai_compatible]]
name = "perplexity"
base_url = "https://api.perplexity.ai"
api_key_source = "env"
extra_headers = { X-Title = "wikimaint" }
`
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(tomlContent), 0644))

	cfg, err := Load(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "perplexity", cfg.Provider.Default)
	require.Len(t, cfg.Provider.OpenAI, 2)
	assert.Equal(t, "openai", cfg.Provider.OpenAI[0].Name)
	assert.Equal(t, "perplexity", cfg.Provider.OpenAI[1].Name)
	assert.Equal(t, "https://api.perplexity.ai", cfg.Provider.OpenAI[1].BaseURL)
	assert.Equal(t, "wikimaint", cfg.Provider.OpenAI[1].ExtraHeaders["X-Title"])
}

func TestLoadYAML(t *testing.T) {
	yamlContent := `
site:
  api_url: https://wiki.example.org/api.php
check:
  timeout: 7s
  retry_statuses: [502, 503]
summary:
  min_words: 80
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(yamlContent), 0644))

	cfg, err := Load(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.org/api.php", cfg.Site.APIURL)
	assert.Equal(t, 7*time.Second, cfg.Check.Timeout)
	assert.Equal(t, []int{502, 503}, cfg.Check.RetryStatuses)
	assert.Equal(t, 80, cfg.Summary.MinWords)
	assert.Equal(t, 4*time.Second, cfg.Summary.MinInterval)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadInvalidTOML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("[invalid toml..."), 0644))

	_, err := Load(tmpFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.toml", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := DefaultConfig()
			cfg.Site.APIURL = "https://wiki.example.org/api.php"
			cfg.Check.Timeout = 12 * time.Second
			cfg.Check.Regions = []string{"Victoria"}

			require.NoError(t, Save(path, cfg))
			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestFilesPath(t *testing.T) {
	f := FilesConfig{WorkDir: "/work"}
	assert.Equal(t, "/work/a.txt", f.Path("a.txt"))
	assert.Equal(t, "/abs/a.txt", f.Path("/abs/a.txt"))
	assert.Equal(t, "", f.Path(""))
}

func TestSitePasswordWithoutUser(t *testing.T) {
	pw, err := DefaultConfig().SitePassword()
	require.NoError(t, err)
	assert.Empty(t, pw)
}
