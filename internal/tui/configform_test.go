package tui

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/wikimaint/internal/config"
)

func TestConfigFormCreation(t *testing.T) {
	cfg := config.DefaultConfig()
	form := NewConfigForm(cfg, "/tmp/test-config.toml", nil)
	assert.NotNil(t, form)
	assert.NotNil(t, form.Form())
	assert.Equal(t, 3, form.GroupCount())
	assert.False(t, form.IsCompleted())
	assert.False(t, form.IsAborted())
}

func TestConfigFormWithModelChoices(t *testing.T) {
	cfg := config.DefaultConfig()
	form := NewConfigForm(cfg, "/tmp/test-config.toml", []string{"llama3.2:latest", "mistral:7b"})
	assert.NotNil(t, form.Form())
}

func TestConfigFormSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := config.DefaultConfig()
	cfg.Provider.Default = "ollama"
	cfg.Site.APIURL = "https://wiki.example.org/api.php"

	form := NewConfigForm(cfg, path, nil)
	form.minWordsStr = "80"
	require.NoError(t, form.Save())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", loaded.Provider.Default)
	assert.Equal(t, "https://wiki.example.org/api.php", loaded.Site.APIURL)
	assert.Equal(t, 80, loaded.Summary.MinWords)
}

func TestConfigFormSaveIgnoresBadWordCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	form := NewConfigForm(cfg, path, nil)
	form.minWordsStr = "many"
	require.NoError(t, form.Save())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Summary.MinWords, loaded.Summary.MinWords)
}
