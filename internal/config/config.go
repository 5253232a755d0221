package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level application configuration.
type Config struct {
	Site     SiteConfig     `toml:"site" yaml:"site"`
	Files    FilesConfig    `toml:"files" yaml:"files"`
	Provider ProviderConfig `toml:"provider" yaml:"provider"`
	Check    CheckConfig    `toml:"check" yaml:"check"`
	Summary  SummaryConfig  `toml:"summary" yaml:"summary"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// SiteConfig locates the wiki and the bot account used to edit it.
type SiteConfig struct {
	APIURL         string        `toml:"api_url" yaml:"api_url"`
	PageURL        string        `toml:"page_url" yaml:"page_url"`
	Username       string        `toml:"username" yaml:"username"`
	PasswordSource string        `toml:"password_source" yaml:"password_source"`
	Password       string        `toml:"password,omitempty" yaml:"password,omitempty"`
	Timeout        time.Duration `toml:"timeout" yaml:"timeout"`
	Retries        int           `toml:"retries" yaml:"retries"`
}

// FilesConfig names the working files. Relative names are resolved against
// WorkDir.
type FilesConfig struct {
	WorkDir        string `toml:"work_dir" yaml:"work_dir"`
	ReferencePages string `toml:"reference_pages" yaml:"reference_pages"`
	Batch          string `toml:"batch" yaml:"batch"`
	PagesDone      string `toml:"pages_done" yaml:"pages_done"`
	Dump           string `toml:"dump" yaml:"dump"`
	Exceptions     string `toml:"exceptions" yaml:"exceptions"`
	BrokenLinks    string `toml:"broken_links" yaml:"broken_links"`
	Summaries      string `toml:"summaries" yaml:"summaries"`
	Store          string `toml:"store" yaml:"store"`
}

// Path resolves name against the work directory.
func (f FilesConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) || f.WorkDir == "" {
		return name
	}
	return filepath.Join(f.WorkDir, name)
}

// ProviderConfig holds settings for the LLM used to write summaries.
type ProviderConfig struct {
	Default     string                   `toml:"default" yaml:"default"`
	Model       string                   `toml:"model" yaml:"model"`
	MaxTokens   int                      `toml:"max_tokens" yaml:"max_tokens"`
	Temperature float64                  `toml:"temperature" yaml:"temperature"`
	OpenAI      []OpenAICompatibleConfig `toml:"openai_compatible" yaml:"openai_compatible"`
	Ollama      OllamaConfig             `toml:"ollama" yaml:"ollama"`
}

// OpenAICompatibleConfig holds settings for an OpenAI-compatible provider.
type OpenAICompatibleConfig struct {
	Name         string            `toml:"name" yaml:"name"`
	BaseURL      string            `toml:"base_url" yaml:"base_url"`
	APIKeySource string            `toml:"api_key_source" yaml:"api_key_source"`
	APIKey       string            `toml:"api_key,omitempty" yaml:"api_key,omitempty"`
	ExtraHeaders map[string]string `toml:"extra_headers,omitempty" yaml:"extra_headers,omitempty"`
}

// OllamaConfig holds settings for a local Ollama server.
type OllamaConfig struct {
	BaseURL string `toml:"base_url" yaml:"base_url"`
}

// CheckConfig controls external link checking.
type CheckConfig struct {
	Timeout       time.Duration `toml:"timeout" yaml:"timeout"`
	Retries       int           `toml:"retries" yaml:"retries"`
	Backoff       time.Duration `toml:"backoff" yaml:"backoff"`
	RetryStatuses []int         `toml:"retry_statuses" yaml:"retry_statuses"`
	MinInterval   time.Duration `toml:"min_interval" yaml:"min_interval"`
	Regions       []string      `toml:"regions" yaml:"regions"`
}

// SummaryConfig controls page summarisation.
type SummaryConfig struct {
	MinWords    int           `toml:"min_words" yaml:"min_words"`
	MinInterval time.Duration `toml:"min_interval" yaml:"min_interval"`
}

// LogConfig controls logging.
type LogConfig struct {
	File         string `toml:"file" yaml:"file"`
	Level        string `toml:"level" yaml:"level"`
	ConsoleLevel string `toml:"console_level" yaml:"console_level"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			PasswordSource: "env",
			Timeout:        30 * time.Second,
			Retries:        3,
		},
		Files: FilesConfig{
			WorkDir:        ".",
			ReferencePages: "pages.txt",
			Batch:          "batch.txt",
			PagesDone:      "pages_done.txt",
			Dump:           "wiki.xml",
			Exceptions:     "link_exceptions.txt",
			BrokenLinks:    "broken_links_wiki.txt",
			Summaries:      "summaries.txt",
			Store:          "wikimaint.db",
		},
		Provider: ProviderConfig{
			Default:   "openai",
			Model:     "gpt-4o-mini",
			MaxTokens: 200,
			OpenAI: []OpenAICompatibleConfig{
				{Name: "openai", BaseURL: "https://api.openai.com/v1", APIKeySource: "env"},
			},
			Ollama: OllamaConfig{BaseURL: "http://localhost:11434"},
		},
		Check: CheckConfig{
			Timeout:       5 * time.Second,
			Retries:       3,
			Backoff:       500 * time.Millisecond,
			RetryStatuses: []int{500, 502, 503, 504},
			MinInterval:   500 * time.Millisecond,
			Regions: []string{
				"National", "New South Wales", "Queensland", "Victoria", "Tasmania",
				"South Australia", "Australian Capital Territory", "Western Australia",
				"Northern Territory",
			},
		},
		Summary: SummaryConfig{
			MinWords:    50,
			MinInterval: 4 * time.Second,
		},
		Log: LogConfig{
			File:         "wikimaint.log",
			Level:        "info",
			ConsoleLevel: "warn",
		},
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the config file at path over the defaults. A missing file
// yields the defaults. Files ending in .yaml or .yml are read as YAML,
// anything else as TOML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, choosing the format from the file extension.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		return enc.Close()
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// SitePassword resolves the bot password from its configured source.
func (c *Config) SitePassword() (string, error) {
	if c.Site.Username == "" {
		return "", nil
	}
	return ResolveAPIKey(c.Site.PasswordSource, c.Site.Password, "WIKI_PASSWORD")
}
