package service

import (
	"context"
	"fmt"
	"time"

	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/repository"
	"github.com/google/uuid"
)

type segmentIssueService struct {
	segments      repository.SegmentRepo
	segmentIssues repository.SegmentIssueRepo
	projects      repository.ProjectRepo
	observer      UseCaseObserver
}

// NewSegmentIssueService creates the reviewer issue-reporting workflow.
// It runs independently of the upsert pipeline; the coordinator only
// consumes its rows for the file-lock precondition and for scoring.
func NewSegmentIssueService(
	segments repository.SegmentRepo,
	segmentIssues repository.SegmentIssueRepo,
	projects repository.ProjectRepo,
	observers ...UseCaseObserver,
) SegmentIssueService {
	return &segmentIssueService{
		segments:      segments,
		segmentIssues: segmentIssues,
		projects:      projects,
		observer:      useCaseObserverOrNoop(observers),
	}
}

func (s *segmentIssueService) Report(ctx context.Context, req ReportIssueRequest) (*domain.SegmentIssue, error) {
	start := time.Now()
	si, err := s.report(ctx, req)
	observe(ctx, s.observer, "segment_issue_report", start, err, map[string]any{"segment_id": req.SegmentID})
	return si, err
}

func (s *segmentIssueService) report(ctx context.Context, req ReportIssueRequest) (*domain.SegmentIssue, error) {
	if !domain.ValidSides[string(req.Side)] {
		return nil, validationf("invalid issue side %q", req.Side)
	}
	if !domain.ValidSeverities[string(req.Level)] {
		return nil, validationf("invalid severity level %q", req.Level)
	}
	if req.HighlightStart < 0 || req.HighlightEnd < req.HighlightStart {
		return nil, validationf("invalid highlight range [%d, %d]", req.HighlightStart, req.HighlightEnd)
	}

	seg, err := s.segments.GetByID(ctx, req.SegmentID)
	if err != nil {
		return nil, classifyReadErr(err)
	}

	// Only issue types enabled for the segment's project may be reported.
	enabled, err := s.projects.ListProjectIssues(ctx, seg.ProjectID)
	if err != nil {
		return nil, classifyReadErr(err)
	}
	found := false
	for _, pi := range enabled {
		if pi.IssueID == req.IssueID {
			found = true
			break
		}
	}
	if !found {
		return nil, validationf("issue type %q is not part of this project's metric", req.IssueID)
	}

	si := &domain.SegmentIssue{
		ID:             uuid.New().String(),
		SegmentID:      req.SegmentID,
		IssueID:        req.IssueID,
		Side:           req.Side,
		Level:          req.Level,
		Note:           req.Note,
		HighlightStart: req.HighlightStart,
		HighlightEnd:   req.HighlightEnd,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.segmentIssues.Create(ctx, si); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return si, nil
}

func (s *segmentIssueService) Delete(ctx context.Context, issueID string) error {
	start := time.Now()
	err := s.delete(ctx, issueID)
	observe(ctx, s.observer, "segment_issue_delete", start, err, map[string]any{"issue_id": issueID})
	return err
}

func (s *segmentIssueService) delete(ctx context.Context, issueID string) error {
	if _, err := s.segmentIssues.GetByID(ctx, issueID); err != nil {
		return classifyReadErr(err)
	}
	if err := s.segmentIssues.Delete(ctx, issueID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}
