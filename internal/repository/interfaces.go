package repository

import (
	"context"

	"github.com/calinbraic/lqa/internal/domain"
)

// Field is one (column, value) pair of a partial project update. The upsert
// coordinator accumulates present-and-permitted inputs into an ordered field
// list and applies them as a single batched UPDATE.
type Field struct {
	Column string
	Value  any
}

// ReportRow is a joined view of one enabled project issue with the parallel
// severity/side sequences of its reported occurrences. An issue with no
// reported occurrences carries a single null entry (empty Severity and Side),
// which contributes nothing to aggregation or scoring.
type ReportRow struct {
	IssueID string
	Levels  []domain.Severity
	Sides   []domain.Side
}

type CatalogRepo interface {
	Create(ctx context.Context, issue *domain.CatalogIssue) error
	GetByID(ctx context.Context, id string) (*domain.CatalogIssue, error)
	GetAll(ctx context.Context) ([]*domain.CatalogIssue, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Project, error)
	UpdateAttributes(ctx context.Context, id string, fields []Field) error
	Delete(ctx context.Context, id string) error
	AssignUser(ctx context.Context, projectID, userID string) error
	RemoveUser(ctx context.Context, projectID, userID string) error
	ListUsers(ctx context.Context, projectID string) ([]string, error)
	CreateProjectIssue(ctx context.Context, pi *domain.ProjectIssue) error
	DeleteProjectIssues(ctx context.Context, projectID string) error
	ListProjectIssues(ctx context.Context, projectID string) ([]*domain.ProjectIssue, error)
}

type SegmentRepo interface {
	CreateBatch(ctx context.Context, segments []*domain.Segment, projectID string) error
	DeleteByProject(ctx context.Context, projectID string) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.Segment, error)
	GetByID(ctx context.Context, id string) (*domain.Segment, error)
}

type SegmentIssueRepo interface {
	Create(ctx context.Context, si *domain.SegmentIssue) error
	GetByID(ctx context.Context, id string) (*domain.SegmentIssue, error)
	Delete(ctx context.Context, id string) error
	ListBySegment(ctx context.Context, segmentID string) ([]*domain.SegmentIssue, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
	ReportRows(ctx context.Context, projectID string) ([]ReportRow, error)
}
