package service

import (
	"context"
	"math"
	"time"

	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/repository"
)

// maxScoreValue is the score of a flawless translation.
const maxScoreValue = 100

type reportService struct {
	projects      repository.ProjectRepo
	segmentIssues repository.SegmentIssueRepo
	observer      UseCaseObserver
}

// NewReportService creates the read-side report aggregator and score engine.
// Reads never open a transaction; they observe whatever committed state
// exists at call time.
func NewReportService(
	projects repository.ProjectRepo,
	segmentIssues repository.SegmentIssueRepo,
	observers ...UseCaseObserver,
) ReportService {
	return &reportService{
		projects:      projects,
		segmentIssues: segmentIssues,
		observer:      useCaseObserverOrNoop(observers),
	}
}

func (s *reportService) Report(ctx context.Context, projectID string) (domain.Report, error) {
	start := time.Now()

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		observe(ctx, s.observer, "project_report", start, err, nil)
		return nil, classifyReadErr(err)
	}
	rows, err := s.segmentIssues.ReportRows(ctx, projectID)
	observe(ctx, s.observer, "project_report", start, err, map[string]any{"project_id": projectID})
	if err != nil {
		return nil, classifyReadErr(err)
	}
	return aggregateReport(rows), nil
}

func (s *reportService) Score(ctx context.Context, projectID string) (float64, error) {
	start := time.Now()
	score, err := s.score(ctx, projectID)
	observe(ctx, s.observer, "project_score", start, err, map[string]any{"project_id": projectID})
	return score, err
}

func (s *reportService) score(ctx context.Context, projectID string) (float64, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return 0, classifyReadErr(err)
	}
	rows, err := s.segmentIssues.ReportRows(ctx, projectID)
	if err != nil {
		return 0, classifyReadErr(err)
	}
	return scoreFromRows(p, rows)
}

// aggregateReport converts grouped occurrence rows into per-issue count
// vectors. Null entries (issues with no reported occurrence) contribute
// nothing but still yield a zero vector, so every enabled issue appears.
func aggregateReport(rows []repository.ReportRow) domain.Report {
	report := make(domain.Report, len(rows))
	for _, row := range rows {
		var vec domain.ReportVector
		for i, level := range row.Levels {
			if level == "" {
				continue
			}
			vec.Add(row.Sides[i], level)
		}
		report[row.IssueID] = vec
	}
	return report
}

// scoreFromRows computes the overall quality score:
//
//	APT  = sum of severity weights over all reported issues
//	ONPT = APT * sourceWordCount / targetWordCount
//	OQF  = 1 - ONPT / sourceWordCount
//	OQS  = OQF * 100, rounded to 2 decimals
//
// Projects with a zero source or target word count are rejected with
// ErrNoWordCounts rather than producing a non-finite score.
func scoreFromRows(p *domain.Project, rows []repository.ReportRow) (float64, error) {
	if p.SourceWordCount == 0 || p.TargetWordCount == 0 {
		return 0, ErrNoWordCounts
	}

	apt := 0
	for _, row := range rows {
		for _, level := range row.Levels {
			if level == "" {
				continue
			}
			apt += domain.SeverityWeights[level]
		}
	}

	onpt := float64(apt) * float64(p.SourceWordCount) / float64(p.TargetWordCount)
	oqf := 1 - onpt/float64(p.SourceWordCount)
	return math.Round(oqf*maxScoreValue*100) / 100, nil
}
