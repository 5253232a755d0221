// cmd/wikimaint/crosslink.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/crosslink"
	"github.com/julianshen/wikimaint/internal/ledger"
	"github.com/julianshen/wikimaint/internal/markup"
	"github.com/julianshen/wikimaint/internal/refpages"
	"github.com/julianshen/wikimaint/internal/runner"
	"github.com/julianshen/wikimaint/internal/tui"
)

// reportOnlyLedger answers from the pages-done file but never adds to it,
// so a headless pass leaves every page for a later interactive review.
type reportOnlyLedger struct {
	*ledger.Ledger
}

func (reportOnlyLedger) Append(string) error { return nil }

func crosslinkCmd() *cobra.Command {
	var (
		titlesFlag    string
		batchFlag     string
		headlessFlag  bool
		outputFlag    string
		noConfirmFlag bool
	)

	cmd := &cobra.Command{
		Use:   "crosslink",
		Short: "Suggest internal links and insert the ones you accept",
		Long: `Walk a batch of pages, find mentions of other pages from the reference
list and review each suggestion in the terminal. Pages with accepted links
are saved back to the wiki and recorded in the pages-done file.

With --headless the suggestions are printed instead and nothing is saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.cfg

			ref, err := refpages.Load(cfg.Files.Path(cfg.Files.ReferencePages), refpages.ReferenceFields, a.logger)
			if err != nil {
				return fmt.Errorf("loading reference pages: %w", err)
			}
			batchPath := batchFlag
			if batchPath == "" {
				batchPath = cfg.Files.Path(cfg.Files.Batch)
			}
			batch, err := runner.ResolveBatch(titlesFlag, pipedStdin(), batchPath, ref, a.logger)
			if err != nil {
				return err
			}

			client, err := newWikiClient(cfg, a.logger)
			if err != nil {
				return err
			}
			done, err := ledger.Open(cfg.Files.Path(cfg.Files.PagesDone))
			if err != nil {
				return fmt.Errorf("opening pages-done file: %w", err)
			}

			session := &crosslink.Session{
				Source:   client,
				Finder:   crosslink.NewFinder(ref.Entries, a.logger),
				Stripper: markup.New(markup.PagePasses(), a.logger),
				Done:     done,
				Logger:   a.logger,
			}

			var headless *runner.HeadlessReviewer
			if headlessFlag {
				headless = runner.NewHeadlessReviewer()
				session.Reviewer = headless
				session.Done = reportOnlyLedger{done}
			} else {
				term, err := tui.NewTerminal(os.Stdin, cmd.OutOrStdout(), cfg.Site.PageURL)
				if err != nil {
					return fmt.Errorf("%w; use --headless to list suggestions", err)
				}
				session.Reviewer = term
				session.Recorder = a.store
				if !noConfirmFlag {
					session.Confirm = term.ConfirmUpload()
				}
			}

			runID := a.startRun("crosslink")
			session.RunID = runID
			a.logger.Info("reviewing batch", zap.Int("pages", len(batch)), zap.Int("reference", len(ref.Entries)))

			st, runErr := session.Run(cmd.Context(), batch)
			a.finishRun(runID, runStatus(runErr, st.Quit), st.Pages, st.Links)

			out := cmd.OutOrStdout()
			if headless != nil {
				if err := runner.WriteProposals(out, headless.Proposals(), outputFlag); err != nil {
					return fmt.Errorf("writing suggestions: %w", err)
				}
			} else {
				fmt.Fprintf(out, "%d pages reviewed, %d saved with %d new links (%d skipped, %d failed)\n",
					st.Pages, st.Uploaded, st.Links, st.Skipped, st.Failed)
			}
			if runErr != nil {
				return fmt.Errorf("crosslink: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&titlesFlag, "titles", "", "comma-separated page titles to review instead of the batch file")
	cmd.Flags().StringVar(&batchFlag, "batch", "", "batch file (default: files.batch)")
	cmd.Flags().BoolVar(&headlessFlag, "headless", false, "list suggestions without reviewing or saving")
	cmd.Flags().StringVar(&outputFlag, "output", "table", "headless output format: table, json")
	cmd.Flags().BoolVar(&noConfirmFlag, "no-confirm", false, "save reviewed pages without asking")

	return cmd
}
