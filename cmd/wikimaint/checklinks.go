// cmd/wikimaint/checklinks.go
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/dump"
	"github.com/julianshen/wikimaint/internal/linkcheck"
	"github.com/julianshen/wikimaint/internal/markup"
	"github.com/julianshen/wikimaint/internal/output"
	"github.com/julianshen/wikimaint/internal/refpages"
	"github.com/julianshen/wikimaint/internal/runner"
	"github.com/julianshen/wikimaint/internal/tui"
)

func checkLinksCmd() *cobra.Command {
	var (
		dumpFlag         string
		formatFlag       string
		outputFlag       string
		pageListFlag     string
		failOnBrokenFlag bool
	)

	cmd := &cobra.Command{
		Use:   "checklinks",
		Short: "Report external links that no longer load",
		Long: `Read every content page of an XML dump, check each external link and
write a report of newly broken links grouped by region. Links already
listed in the exceptions file are not reported again.

With --page-list every checked page is also written as a reference list
line: reformatted title, title, categories, last edit month and lifespan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.cfg

			formatter, err := newFormatter(formatFlag)
			if err != nil {
				return err
			}

			dumpPath := dumpFlag
			if dumpPath == "" {
				dumpPath = cfg.Files.Path(cfg.Files.Dump)
			}
			f, err := os.Open(dumpPath)
			if err != nil {
				return fmt.Errorf("opening dump: %w", err)
			}
			defer f.Close()

			ref, err := refpages.Load(cfg.Files.Path(cfg.Files.ReferencePages), refpages.ReferenceFields, a.logger)
			if errors.Is(err, fs.ErrNotExist) {
				a.logger.Warn("no reference page list; broken links will have no region")
				ref = nil
			} else if err != nil {
				return fmt.Errorf("loading reference pages: %w", err)
			}

			exceptions, err := linkcheck.OpenExceptions(cfg.Files.Path(cfg.Files.Exceptions))
			if err != nil {
				return fmt.Errorf("opening exceptions: %w", err)
			}

			checker := linkcheck.NewChecker(linkcheck.CheckerOptions{
				Timeout:       cfg.Check.Timeout,
				Retries:       cfg.Check.Retries,
				Backoff:       cfg.Check.Backoff,
				RetryStatuses: cfg.Check.RetryStatuses,
				Logger:        a.logger,
			})

			runID := a.startRun("checklinks")
			rn := &linkcheck.Runner{
				Checker:    checker,
				Exceptions: exceptions,
				Stripper:   markup.New(markup.DumpPasses(), a.logger),
				Pages:      ref,
				Regions:    cfg.Check.Regions,
				Limiter:    linkcheck.NewLimiter(cfg.Check.MinInterval),
				Recorder:   a.store,
				RunID:      runID,
				Logger:     a.logger,
			}
			var pageList *bufio.Writer
			if pageListFlag != "" {
				pl, err := os.Create(pageListFlag)
				if err != nil {
					return fmt.Errorf("creating page list: %w", err)
				}
				defer pl.Close()
				pageList = bufio.NewWriter(pl)
				rn.PageList = pageList
			}
			a.logger.Info("checking links", zap.String("dump", dumpPath), zap.Int("exceptions", exceptions.Len()))

			report, runErr := rn.Run(cmd.Context(), dump.NewReader(bufio.NewReader(f)))
			if pageList != nil {
				if err := pageList.Flush(); err != nil && runErr == nil {
					runErr = fmt.Errorf("write page list: %w", err)
				}
			}
			if runErr != nil {
				report.Error = runErr.Error()
			}
			a.finishRun(runID, runStatus(runErr, false), report.Pages, len(report.Broken))

			data, err := formatter.Format(report)
			if err != nil {
				return fmt.Errorf("formatting output: %w", err)
			}
			target := outputFlag
			if target == "" && formatFlag == "wiki" {
				target = cfg.Files.Path(cfg.Files.BrokenLinks)
			}
			if err := writeReport(cmd.OutOrStdout(), target, formatFlag, data); err != nil {
				return err
			}

			if runErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: checking links: %v\n", runErr)
			}
			if code := runner.ExitCodeFromReport(report, failOnBrokenFlag); code != 0 {
				return &runner.ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dumpFlag, "dump", "", "XML dump file (default: files.dump)")
	cmd.Flags().StringVar(&formatFlag, "format", "wiki", "report format: wiki, markdown, json")
	cmd.Flags().StringVar(&outputFlag, "output", "", "report file, - for stdout (default: files.broken_links for wiki, stdout otherwise)")
	cmd.Flags().StringVar(&pageListFlag, "page-list", "", "also write a reference list line for every checked page to this file")
	cmd.Flags().BoolVar(&failOnBrokenFlag, "fail-on-broken", false, "exit 1 when broken links are found")

	return cmd
}

func newFormatter(format string) (output.Formatter, error) {
	switch format {
	case "wiki":
		return output.NewWikiFormatter(), nil
	case "markdown":
		return output.NewMarkdownFormatter(), nil
	case "json":
		return output.NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// writeReport writes data to path, or to stdout when path is "" or "-".
// Markdown shown on a terminal is rendered with Glamour.
func writeReport(stdout io.Writer, path, format string, data []byte) error {
	if path != "" && path != "-" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil
	}
	if f, ok := stdout.(*os.File); ok && format == "markdown" && tui.IsTerminal(f) {
		if md, err := tui.NewMarkdownRenderer(100); err == nil {
			if rendered, err := md.Render(string(data)); err == nil {
				data = []byte(rendered)
			}
		}
	}
	_, err := stdout.Write(data)
	return err
}
