package cli

import (
	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands,
// plus the caller identity resolved by the entrypoint. Authentication is
// an external concern; the CLI trusts its environment.
type App struct {
	Projects service.ProjectService
	Reports  service.ReportService
	Typology service.TypologyService
	Issues   service.SegmentIssueService

	Role   domain.Role
	UserID string
}

// NewRootCmd creates the top-level "lqa" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "lqa",
		Short:         "Translation quality review projects and scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newTypologyCmd(app),
		newReportCmd(app),
		newScoreCmd(app),
		newIssueCmd(app),
	)

	return root
}
