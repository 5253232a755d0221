// cmd/wikimaint/history.go
package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/julianshen/wikimaint/internal/store"
)

func historyCmd() *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Long:  "Display the most recent crosslink, checklinks and summarize runs recorded in the run history.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.store.RecentRuns(limitFlag)
			if err != nil {
				return err
			}
			return writeRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVar(&limitFlag, "limit", 20, "number of runs to show")

	cmd.AddCommand(historyShowCmd())
	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the links committed and broken links found in a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.store.GetRun(args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no run with id %q", args[0])
			}
			commits, err := a.store.CommitsForRun(run.ID)
			if err != nil {
				return err
			}
			broken, err := a.store.LinkResultsForRun(run.ID, true)
			if err != nil {
				return err
			}
			return writeRunDetail(cmd.OutOrStdout(), run, commits, broken)
		},
	}
}

func writeRuns(w io.Writer, runs []store.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMMAND\tSTATUS\tPAGES\tITEMS\tSTARTED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.Command, r.Status, r.Pages, r.Items,
			r.StartedAt.Format(time.RFC3339),
			runDuration(r),
		)
	}
	return tw.Flush()
}

func runDuration(r store.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).String()
}

func writeRunDetail(w io.Writer, run *store.Run, commits []store.Commit, broken []store.LinkResult) error {
	fmt.Fprintf(w, "Run %s: %s, %s, %d pages\n", run.ID, run.Command, run.Status, run.Pages)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(commits) > 0 {
		fmt.Fprintln(tw, "\nPAGE\tTARGET\tLABEL")
		for _, c := range commits {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Page, c.Target, c.Label)
		}
	}
	if len(broken) > 0 {
		fmt.Fprintln(tw, "\nPAGE\tCODE\tURL\tKNOWN")
		for _, b := range broken {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", b.Page, b.Code, b.URL, b.Excepted)
		}
	}
	return tw.Flush()
}
