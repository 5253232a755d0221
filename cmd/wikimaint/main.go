// cmd/wikimaint/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/config"
	"github.com/julianshen/wikimaint/internal/logging"
	"github.com/julianshen/wikimaint/internal/runner"
	"github.com/julianshen/wikimaint/internal/store"
	"github.com/julianshen/wikimaint/internal/wikiapi"

	// Register providers via init() side effects.
	_ "github.com/julianshen/wikimaint/internal/provider/ollama"
	_ "github.com/julianshen/wikimaint/internal/provider/openai"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath   string
	logLevelFlag string
	workDirFlag  string
)

func versionString() string {
	return fmt.Sprintf("wikimaint %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wikimaint",
		Short: "Wiki maintenance toolkit",
		Long: `wikimaint keeps a MediaWiki site in shape: it reports dead external links
found in an XML dump, suggests internal cross-links for an operator to
review, and writes short page summaries with a language model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override log file level")
	rootCmd.PersistentFlags().StringVar(&workDirFlag, "work-dir", "", "override the working file directory")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(crosslinkCmd())
	rootCmd.AddCommand(checkLinksCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(modelsCmd())

	return rootCmd
}

// resolveConfigPath returns the --config flag or
// ~/.config/wikimaint/config.toml.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "wikimaint", "config.toml"), nil
}

// loadConfig resolves the config path, loads the config, and applies any
// flag overrides.
func loadConfig() (*config.Config, error) {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if workDirFlag != "" {
		cfg.Files.WorkDir = workDirFlag
	}

	return cfg, nil
}

// app holds what every maintenance command builds from the config.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	closeLog func()
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := logging.New(logging.Options{
		File:         cfg.Files.Path(cfg.Log.File),
		Level:        cfg.Log.Level,
		ConsoleLevel: cfg.Log.ConsoleLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	s, err := store.NewStore(cfg.Files.Path(cfg.Files.Store))
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening run history: %w", err)
	}
	return &app{cfg: cfg, logger: logger, store: s, closeLog: closeLog}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close run history", zap.Error(err))
	}
	a.closeLog()
}

// startRun records the start of command. A history failure is logged and
// yields an empty run id; it never stops the command.
func (a *app) startRun(command string) string {
	id, err := a.store.StartRun(command)
	if err != nil {
		a.logger.Warn("start run", zap.Error(err))
		return ""
	}
	a.logger.Info("run started", zap.String("command", command), zap.String("run", id))
	return id
}

func (a *app) finishRun(id, status string, pages, items int) {
	if id == "" {
		return
	}
	if err := a.store.FinishRun(id, status, pages, items); err != nil {
		a.logger.Warn("finish run", zap.String("run", id), zap.Error(err))
	}
}

// runStatus maps a command's outcome to a stored run status.
func runStatus(err error, quit bool) string {
	switch {
	case err != nil:
		return store.StatusFailed
	case quit:
		return store.StatusQuit
	default:
		return store.StatusDone
	}
}

func newWikiClient(cfg *config.Config, logger *zap.Logger) (*wikiapi.Client, error) {
	password, err := cfg.SitePassword()
	if err != nil {
		return nil, fmt.Errorf("resolving wiki password: %w", err)
	}
	return wikiapi.New(wikiapi.Options{
		APIURL:   cfg.Site.APIURL,
		Username: cfg.Site.Username,
		Password: password,
		Timeout:  cfg.Site.Timeout,
		Retries:  cfg.Site.Retries,
		Logger:   logger,
	})
}

// pipedStdin returns os.Stdin when it is a pipe or file, nil for a TTY.
func pipedStdin() io.Reader {
	if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		return os.Stdin
	}
	return nil
}
