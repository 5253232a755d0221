// cmd/wikimaint/configcmd.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/julianshen/wikimaint/internal/config"
	"github.com/julianshen/wikimaint/internal/provider/ollama"
	"github.com/julianshen/wikimaint/internal/tui"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration",
	}
	cmd.AddCommand(configPathCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configEditCmd())
	return cmd
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// Never echo a stored secret.
			cfg.Site.Password = redact(cfg.Site.Password)
			for i := range cfg.Provider.OpenAI {
				cfg.Provider.OpenAI[i].APIKey = redact(cfg.Provider.OpenAI[i].APIKey)
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func configEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration in an interactive form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !tui.IsTerminal(os.Stdin) {
				return tui.ErrNotTerminal
			}
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			form := tui.NewConfigForm(cfg, path, localModels(cmd.Context(), cfg))
			if err := form.Run(); err != nil {
				return fmt.Errorf("editing config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
}

// localModels lists the models of a running Ollama server so the form can
// offer them. It returns nil when Ollama is not the provider or not running.
func localModels(ctx context.Context, cfg *config.Config) []string {
	if cfg.Provider.Default != "ollama" {
		return nil
	}
	client := ollama.NewClient(cfg.Provider.Ollama.BaseURL)
	if !client.IsRunning(ctx) {
		return nil
	}
	models, err := client.ListModels(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	return names
}
