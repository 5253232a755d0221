// cmd/wikimaint/summarize.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/ledger"
	"github.com/julianshen/wikimaint/internal/markup"
	"github.com/julianshen/wikimaint/internal/provider"
	"github.com/julianshen/wikimaint/internal/provider/ollama"
	"github.com/julianshen/wikimaint/internal/refpages"
	"github.com/julianshen/wikimaint/internal/runner"
	"github.com/julianshen/wikimaint/internal/summarize"
)

func summarizeCmd() *cobra.Command {
	var (
		titlesFlag   string
		batchFlag    string
		modelFlag    string
		minWordsFlag int
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Write short page summaries with a language model",
		Long: `Fetch each page of the batch, strip its markup and ask the configured
language model for a one or two sentence summary. Pages too short to
summarise get a stand-in built from their opening text. Results are
appended to the summaries file; pages already there are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.cfg
			ctx := cmd.Context()

			if modelFlag != "" {
				cfg.Provider.Model = modelFlag
			}
			if minWordsFlag > 0 {
				cfg.Summary.MinWords = minWordsFlag
			}

			// Titles are looked up in the reference list when one is present.
			var ref *refpages.List
			if titlesFlag != "" || pipedStdin() != nil {
				ref, err = refpages.Load(cfg.Files.Path(cfg.Files.ReferencePages), refpages.ReferenceFields, a.logger)
				if err != nil {
					return fmt.Errorf("loading reference pages: %w", err)
				}
			}
			batchPath := batchFlag
			if batchPath == "" {
				batchPath = cfg.Files.Path(cfg.Files.Batch)
			}
			batch, err := runner.ResolveBatch(titlesFlag, pipedStdin(), batchPath, ref, a.logger)
			if err != nil {
				return err
			}

			if cfg.Provider.Default == "ollama" {
				if err := ollama.NewClient(cfg.Provider.Ollama.BaseURL).CheckModel(ctx, cfg.Provider.Model); err != nil {
					return err
				}
			}
			p, err := provider.NewProvider(cfg)
			if err != nil {
				return fmt.Errorf("creating provider: %w", err)
			}
			llm := provider.NewCompleter(p, cfg.Provider.Model, cfg.Provider.MaxTokens)
			if cfg.Provider.Temperature > 0 {
				llm = llm.WithTemperature(cfg.Provider.Temperature)
			}

			client, err := newWikiClient(cfg, a.logger)
			if err != nil {
				return err
			}
			out, err := ledger.Open(cfg.Files.Path(cfg.Files.Summaries))
			if err != nil {
				return fmt.Errorf("opening summaries file: %w", err)
			}

			s := &summarize.Summarizer{
				Source:   client,
				LLM:      llm,
				Stripper: markup.New(markup.PagePasses(), a.logger),
				Out:      out,
				MinWords: cfg.Summary.MinWords,
				Limiter:  summarize.NewLimiter(cfg.Summary.MinInterval),
				Logger:   a.logger,
			}

			runID := a.startRun("summarize")
			a.logger.Info("summarising batch",
				zap.Int("pages", len(batch)),
				zap.String("provider", cfg.Provider.Default),
				zap.String("model", cfg.Provider.Model))
			st, runErr := s.Run(ctx, batch)
			a.finishRun(runID, runStatus(runErr, false), st.Pages, st.Summarized)

			fmt.Fprintf(cmd.OutOrStdout(), "%d pages: %d summarised, %d too short (%d skipped, %d failed)\n",
				st.Pages, st.Summarized, st.TooShort, st.Skipped, st.Failed)
			if runErr != nil {
				return fmt.Errorf("summarize: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&titlesFlag, "titles", "", "comma-separated page titles instead of the batch file")
	cmd.Flags().StringVar(&batchFlag, "batch", "", "batch file (default: files.batch)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "override model name")
	cmd.Flags().IntVar(&minWordsFlag, "min-words", 0, "override the shortest page sent to the model")

	return cmd
}
