package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/calinbraic/lqa/internal/cli"
	"github.com/calinbraic/lqa/internal/db"
	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/repository"
	"github.com/calinbraic/lqa/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env in the working directory; real env wins.
	_ = godotenv.Load()

	// Determine DB path: env var or default ~/.lqa/lqa.db
	dbPath := os.Getenv("LQA_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".lqa", "lqa.db")
	}

	// Caller identity. Authentication itself is out of scope; the CLI
	// trusts its environment the way the services trust their caller.
	role := domain.Role(os.Getenv("LQA_ROLE"))
	if role == "" {
		role = domain.RoleUser
	}
	userID := os.Getenv("LQA_USER")
	if userID == "" {
		userID = "local"
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	catalogRepo := repository.NewSQLiteCatalogRepo(database)
	segmentRepo := repository.NewSQLiteSegmentRepo(database)
	segmentIssueRepo := repository.NewSQLiteSegmentIssueRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if os.Getenv("LQA_LOG") != "" {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}

	app := &cli.App{
		Projects: service.NewProjectService(projectRepo, catalogRepo, segmentRepo, segmentIssueRepo, uow, observer),
		Reports:  service.NewReportService(projectRepo, segmentIssueRepo, observer),
		Typology: service.NewTypologyService(catalogRepo, uow, observer),
		Issues:   service.NewSegmentIssueService(segmentRepo, segmentIssueRepo, projectRepo, observer),
		Role:     role,
		UserID:   userID,
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
