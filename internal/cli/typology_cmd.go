package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTypologyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typology",
		Short: "Manage the global issue catalog",
	}

	cmd.AddCommand(
		newTypologyImportCmd(app),
		newTypologyListCmd(app),
	)

	return cmd
}

func newTypologyImportCmd(app *App) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a typology XML document into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			res, err := app.Typology.Import(cmd.Context(), string(data), replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d issue types.\n", res.Imported)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Clear the existing catalog first")

	return cmd
}

func newTypologyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog issue types",
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := app.Typology.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPARENT\tNAME")
			for _, issue := range issues {
				parent := issue.Parent
				if parent == "" {
					parent = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", issue.ID, parent, issue.Name)
			}
			return w.Flush()
		},
	}
}
