package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/repository"
	"github.com/calinbraic/lqa/internal/testutil"
)

// seedScoringProject inserts a project with the given word counts, enables
// grammar and mistranslation, and creates one segment to hang issues on.
func seedScoringProject(t *testing.T, database *sql.DB, srcWords, tgtWords int) (projectID, segmentID string) {
	t.Helper()
	ctx := context.Background()
	testutil.SeedTypology(t, database)

	projects := repository.NewSQLiteProjectRepo(database)
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:              uuid.New().String(),
		Name:            "Scoring",
		LastSegment:     1,
		SourceWordCount: srcWords,
		TargetWordCount: tgtWords,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, projects.Create(ctx, p))
	for _, issueID := range []string{"grammar", "mistranslation"} {
		require.NoError(t, projects.CreateProjectIssue(ctx, &domain.ProjectIssue{
			ProjectID: p.ID, IssueID: issueID, Display: true,
		}))
	}

	segments := repository.NewSQLiteSegmentRepo(database)
	segs := []*domain.Segment{{Seq: 1, SourceText: "hello", TargetText: "salut"}}
	require.NoError(t, segments.CreateBatch(ctx, segs, p.ID))
	return p.ID, segs[0].ID
}

func newReportService(database *sql.DB) ReportService {
	return NewReportService(
		repository.NewSQLiteProjectRepo(database),
		repository.NewSQLiteSegmentIssueRepo(database),
	)
}

func TestScore_WorkedExample(t *testing.T) {
	database := testutil.NewTestDB(t)
	projectID, segmentID := seedScoringProject(t, database, 1000, 800)
	svc := newReportService(database)

	// APT = 1 + 25 = 26, ONPT = 26*1000/800 = 32.5,
	// OQF = 1 - 32.5/1000 = 0.9675, OQS = 96.75
	testutil.ReportIssue(t, database, segmentID,
		testutil.WithIssueType("grammar"), testutil.WithLevel(domain.SeverityMinor))
	testutil.ReportIssue(t, database, segmentID,
		testutil.WithIssueType("mistranslation"), testutil.WithLevel(domain.SeverityCritical))

	score, err := svc.Score(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, 96.75, score)
}

func TestScore_FlawlessProject(t *testing.T) {
	database := testutil.NewTestDB(t)
	projectID, _ := seedScoringProject(t, database, 1000, 800)
	svc := newReportService(database)

	score, err := svc.Score(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), score)
}

func TestScore_NeutralIssuesAreFree(t *testing.T) {
	database := testutil.NewTestDB(t)
	projectID, segmentID := seedScoringProject(t, database, 1000, 800)
	svc := newReportService(database)

	testutil.ReportIssue(t, database, segmentID,
		testutil.WithIssueType("grammar"), testutil.WithLevel(domain.SeverityNeutral))

	score, err := svc.Score(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), score)
}

func TestScore_ZeroWordCounts(t *testing.T) {
	database := testutil.NewTestDB(t)
	projectID, _ := seedScoringProject(t, database, 0, 800)
	svc := newReportService(database)

	_, err := svc.Score(context.Background(), projectID)
	require.ErrorIs(t, err, ErrNoWordCounts)
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestScore_ReadFailureClassifiedAsStorage(t *testing.T) {
	database := testutil.NewTestDB(t)
	projectID, _ := seedScoringProject(t, database, 1000, 800)
	svc := newReportService(database)
	require.NoError(t, database.Close())

	_, err := svc.Score(context.Background(), projectID)
	require.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Report(context.Background(), projectID)
	require.ErrorIs(t, err, ErrStorage)
}

func TestScore_UnknownProject(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newReportService(database)

	_, err := svc.Score(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReport_EndToEnd(t *testing.T) {
	database := testutil.NewTestDB(t)
	projectID, segmentID := seedScoringProject(t, database, 1000, 800)
	svc := newReportService(database)

	testutil.ReportIssue(t, database, segmentID,
		testutil.WithIssueType("grammar"), testutil.WithLevel(domain.SeverityMinor), testutil.WithSide(domain.SideSource))
	testutil.ReportIssue(t, database, segmentID,
		testutil.WithIssueType("grammar"), testutil.WithLevel(domain.SeverityMajor), testutil.WithSide(domain.SideTarget))

	report, err := svc.Report(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, domain.ReportVector{0, 1, 0, 0, 1, 0, 0, 1, 0, 1, 2}, report["grammar"])

	// enabled but unreported issues still appear, as zero vectors
	assert.Equal(t, domain.ReportVector{}, report["mistranslation"])
}

func TestReport_UnknownProject(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newReportService(database)

	_, err := svc.Report(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAggregateReport(t *testing.T) {
	rows := []repository.ReportRow{
		{
			IssueID: "grammar",
			Levels:  []domain.Severity{domain.SeverityMinor, domain.SeverityCritical, domain.SeverityNeutral},
			Sides:   []domain.Side{domain.SideSource, domain.SideTarget, domain.SideTarget},
		},
		{
			IssueID: "omission",
			Levels:  []domain.Severity{""},
			Sides:   []domain.Side{""},
		},
	}

	report := aggregateReport(rows)
	require.Len(t, report, 2)
	assert.Equal(t, domain.ReportVector{0, 1, 0, 0, 1, 1, 0, 0, 1, 2, 3}, report["grammar"])
	assert.Equal(t, domain.ReportVector{}, report["omission"])
}

func TestScoreFromRows_NullEntriesContributeNothing(t *testing.T) {
	p := &domain.Project{SourceWordCount: 100, TargetWordCount: 100}
	rows := []repository.ReportRow{
		{IssueID: "grammar", Levels: []domain.Severity{""}, Sides: []domain.Side{""}},
	}

	score, err := scoreFromRows(p, rows)
	require.NoError(t, err)
	assert.Equal(t, float64(100), score)
}

func TestScoreFromRows_Rounding(t *testing.T) {
	// APT = 1, ONPT = 1*3/7, OQF = 1 - (3/7)/3 = 1 - 1/7 -> 85.71
	p := &domain.Project{SourceWordCount: 3, TargetWordCount: 7}
	rows := []repository.ReportRow{
		{IssueID: "grammar", Levels: []domain.Severity{domain.SeverityMinor}, Sides: []domain.Side{domain.SideTarget}},
	}

	score, err := scoreFromRows(p, rows)
	require.NoError(t, err)
	assert.Equal(t, 85.71, score)
}
