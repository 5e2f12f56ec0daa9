package cli

import (
	"fmt"

	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/service"
	"github.com/spf13/cobra"
)

func newIssueCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Report or remove segment issues",
	}

	cmd.AddCommand(
		newIssueReportCmd(app),
		newIssueRemoveCmd(app),
	)

	return cmd
}

func newIssueReportCmd(app *App) *cobra.Command {
	var issueType, side, level, note string
	var start, end int

	cmd := &cobra.Command{
		Use:   "report <segment-id>",
		Short: "Report an issue against a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			si, err := app.Issues.Report(cmd.Context(), service.ReportIssueRequest{
				SegmentID:      args[0],
				IssueID:        issueType,
				Side:           domain.Side(side),
				Level:          domain.Severity(level),
				Note:           note,
				HighlightStart: start,
				HighlightEnd:   end,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Issue reported (id %s).\n", si.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&issueType, "type", "", "Catalog issue type (required)")
	cmd.Flags().StringVar(&side, "side", "target", "source or target")
	cmd.Flags().StringVar(&level, "level", "minor", "neutral, minor, major, or critical")
	cmd.Flags().StringVar(&note, "note", "", "Free-text note")
	cmd.Flags().IntVar(&start, "start", 0, "Highlight start offset")
	cmd.Flags().IntVar(&end, "end", 0, "Highlight end offset")

	return cmd
}

func newIssueRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <issue-id>",
		Short: "Remove a reported segment issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Issues.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Issue removed.")
			return nil
		},
	}
}
