package tui

import (
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/julianshen/wikimaint/internal/config"
)

// ConfigForm wraps a Huh form for editing the wikimaint configuration.
type ConfigForm struct {
	form        *huh.Form
	cfg         *config.Config
	savePath    string
	minWordsStr string
}

// NewConfigForm creates a config editor form populated from the given
// config. When models is non-empty the model field becomes a picker over
// those names.
func NewConfigForm(cfg *config.Config, savePath string, models []string) *ConfigForm {
	cf := &ConfigForm{
		cfg:         cfg,
		savePath:    savePath,
		minWordsStr: strconv.Itoa(cfg.Summary.MinWords),
	}

	siteGroup := huh.NewGroup(
		huh.NewInput().
			Title("API URL").
			Placeholder("https://wiki.example.org/api.php").
			Value(&cfg.Site.APIURL),
		huh.NewInput().
			Title("Page URL").
			Placeholder("https://wiki.example.org/").
			Value(&cfg.Site.PageURL),
		huh.NewInput().
			Title("Bot Username").
			Value(&cfg.Site.Username),
		huh.NewSelect[string]().
			Title("Password Source").
			Options(
				huh.NewOption("Environment (WIKI_PASSWORD)", "env"),
				huh.NewOption("Password File", "file"),
				huh.NewOption("Config File", "config"),
			).
			Value(&cfg.Site.PasswordSource),
	).Title("Wiki")

	filesGroup := huh.NewGroup(
		huh.NewInput().
			Title("Work Directory").
			Value(&cfg.Files.WorkDir),
		huh.NewInput().
			Title("Reference Pages").
			Value(&cfg.Files.ReferencePages),
		huh.NewInput().
			Title("XML Dump").
			Value(&cfg.Files.Dump),
	).Title("Files")

	var model huh.Field
	if len(models) > 0 {
		model = huh.NewSelect[string]().
			Title("Model").
			Options(huh.NewOptions(models...)...).
			Value(&cfg.Provider.Model)
	} else {
		model = huh.NewInput().
			Title("Model").
			Value(&cfg.Provider.Model)
	}
	summaryGroup := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Provider").
			Options(
				huh.NewOption("OpenAI Compatible", "openai"),
				huh.NewOption("Ollama", "ollama"),
			).
			Value(&cfg.Provider.Default),
		model,
		huh.NewInput().
			Title("Minimum Words").
			Placeholder("50").
			Value(&cf.minWordsStr),
	).Title("Summaries")

	cf.form = huh.NewForm(siteGroup, filesGroup, summaryGroup)

	return cf
}

// GroupCount returns the number of form groups.
func (c *ConfigForm) GroupCount() int { return 3 }

// Save persists the config to disk. It parses the minimum word count back
// to an int before saving.
func (c *ConfigForm) Save() error {
	if v, err := strconv.Atoi(c.minWordsStr); err == nil && v > 0 {
		c.cfg.Summary.MinWords = v
	}
	return config.Save(c.savePath, c.cfg)
}

// Form returns the underlying huh.Form.
func (c *ConfigForm) Form() *huh.Form { return c.form }

// Run shows the form and saves the config once it is completed.
func (c *ConfigForm) Run() error {
	if err := c.form.Run(); err != nil {
		return err
	}
	return c.Save()
}

// IsCompleted returns true if the form has been completed (submitted).
func (c *ConfigForm) IsCompleted() bool { return c.form.State == huh.StateCompleted }

// IsAborted returns true if the form has been aborted (cancelled).
func (c *ConfigForm) IsAborted() bool { return c.form.State == huh.StateAborted }
