package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/calinbraic/lqa/internal/service"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage review projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectUpdateCmd(app),
		newProjectListCmd(app),
		newProjectInspectCmd(app),
		newProjectRemoveCmd(app),
		newProjectAssignCmd(app),
		newProjectUnassignCmd(app),
	)

	return cmd
}

// readUpload loads a file argument into an upload, keeping only the base name.
func readUpload(path string) (*service.FileUpload, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	name := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		name = path[idx+1:]
	}
	return &service.FileUpload{Name: name, Data: data}, nil
}

func newProjectAddCmd(app *App) *cobra.Command {
	var name, bitextPath, metricPath, specsPath string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new review project",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.UpsertRequest{
				Name:         &name,
				CallerRole:   app.Role,
				CallerUserID: app.UserID,
			}

			var err error
			if req.BitextFile, err = readUpload(bitextPath); err != nil {
				return err
			}
			if req.MetricFile, err = readUpload(metricPath); err != nil {
				return err
			}
			if req.SpecificationsFile, err = readUpload(specsPath); err != nil {
				return err
			}

			res, err := app.Projects.Upsert(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", res.Message, res.ProjectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (required)")
	cmd.Flags().StringVar(&bitextPath, "bitext", "", "Bitext file (required)")
	cmd.Flags().StringVar(&metricPath, "metric", "", "Metric file (required)")
	cmd.Flags().StringVar(&specsPath, "specs", "", "Specifications file")

	return cmd
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var name, bitextPath, metricPath, specsPath string
	var finished bool
	var segmentNum int

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update an existing review project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.UpsertRequest{
				ProjectID:    args[0],
				CallerRole:   app.Role,
				CallerUserID: app.UserID,
			}

			// Only flags the caller actually set become part of the
			// partial update.
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("finished") {
				req.Finished = &finished
			}
			if cmd.Flags().Changed("segment") {
				req.SegmentNum = &segmentNum
			}

			var err error
			if req.BitextFile, err = readUpload(bitextPath); err != nil {
				return err
			}
			if req.MetricFile, err = readUpload(metricPath); err != nil {
				return err
			}
			if req.SpecificationsFile, err = readUpload(specsPath); err != nil {
				return err
			}

			res, err := app.Projects.Upsert(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New project name (elevated roles only)")
	cmd.Flags().BoolVar(&finished, "finished", false, "Mark review finished or unfinished")
	cmd.Flags().IntVar(&segmentNum, "segment", 0, "Last reviewed segment number")
	cmd.Flags().StringVar(&bitextPath, "bitext", "", "Replacement bitext file")
	cmd.Flags().StringVar(&metricPath, "metric", "", "Replacement metric file")
	cmd.Flags().StringVar(&specsPath, "specs", "", "Replacement specifications file")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List review projects visible to the caller",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context(), app.Role, app.UserID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSEGMENT\tWORDS (SRC/TGT)\tFINISHED")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%v\n",
					p.DisplayID(), p.Name, p.LastSegment,
					p.SourceWordCount, p.TargetWordCount, p.Finished)
			}
			return w.Flush()
		},
	}
}

func newProjectInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <project-id>",
		Short: "Show a project with its report and score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := app.Projects.GetDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := detail.Project
			fmt.Fprintf(out, "Project: %s (%s)\n", p.Name, p.ID)
			fmt.Fprintf(out, "Bitext: %s  Metric: %s\n", p.BitextFile, p.MetricFile)
			fmt.Fprintf(out, "Words: %d source / %d target\n", p.SourceWordCount, p.TargetWordCount)
			fmt.Fprintf(out, "Segments: %d  Reviewers: %s\n", len(detail.Segments), strings.Join(detail.Users, ", "))
			if detail.Scored {
				fmt.Fprintf(out, "Score: %.2f\n", detail.Score)
			} else {
				fmt.Fprintln(out, "Score: n/a (no word counts)")
			}
			if p.Specifications != "" {
				fmt.Fprintf(out, "Specifications:\n%s\n", p.Specifications)
			}

			fmt.Fprintln(out)
			return writeReport(out, detail.Report)
		},
	}
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project-id>",
		Short: "Delete a project and everything belonging to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Projects.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Project removed.")
			return nil
		},
	}
}

func newProjectAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <project-id> <user-id>",
		Short: "Assign a reviewer to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Projects.AssignUser(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reviewer assigned.")
			return nil
		},
	}
}

func newProjectUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <project-id> <user-id>",
		Short: "Remove a reviewer from a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Projects.RemoveUser(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reviewer removed.")
			return nil
		},
	}
}
