package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/calinbraic/lqa/internal/domain"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report <project-id>",
		Short: "Show per-issue counts for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Reports.Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}
}

func newScoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "score <project-id>",
		Short: "Compute the overall quality score for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := app.Reports.Score(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", score)
			return nil
		},
	}
}

// writeReport renders the report vectors as a table with stable issue order.
func writeReport(out io.Writer, report domain.Report) error {
	ids := make([]string, 0, len(report))
	for id := range report {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ISSUE\tSRC N/MI/MA/CR\tSRC TOTAL\tTGT N/MI/MA/CR\tTGT TOTAL\tTOTAL")
	for _, id := range ids {
		v := report[id]
		fmt.Fprintf(w, "%s\t%d/%d/%d/%d\t%d\t%d/%d/%d/%d\t%d\t%d\n",
			id,
			v[domain.VecSourceNeutral], v[domain.VecSourceMinor], v[domain.VecSourceMajor], v[domain.VecSourceCritical],
			v[domain.VecSourceTotal],
			v[domain.VecTargetNeutral], v[domain.VecTargetMinor], v[domain.VecTargetMajor], v[domain.VecTargetCritical],
			v[domain.VecTargetTotal],
			v[domain.VecGrandTotal],
		)
	}
	return w.Flush()
}
