package service

import (
	"context"

	"github.com/calinbraic/lqa/internal/domain"
)

// FileUpload is the raw content of an uploaded file. Transport and storage
// of uploads belong to the excluded web layer; the services only see bytes.
type FileUpload struct {
	Name string
	Data []byte
}

// UpsertRequest carries the inputs of one project create or update call.
// A nil pointer means the field was absent from the request. An empty
// ProjectID selects the creation branch.
type UpsertRequest struct {
	ProjectID          string
	Name               *string
	Finished           *bool
	SegmentNum         *int
	BitextFile         *FileUpload
	MetricFile         *FileUpload
	SpecificationsFile *FileUpload
	CallerRole         domain.Role
	CallerUserID       string
}

// UpsertResult reports the outcome of a successful upsert.
type UpsertResult struct {
	ProjectID string
	Created   bool
	Message   string
}

// SegmentDetail is a segment with its reported issues split by side.
type SegmentDetail struct {
	Segment      *domain.Segment
	SourceIssues []*domain.SegmentIssue
	TargetIssues []*domain.SegmentIssue
}

// ProjectDetail is the composite read model of one project: stored state
// plus the derived report and score, recomputed on every read.
type ProjectDetail struct {
	Project  *domain.Project
	Users    []string
	Segments []*SegmentDetail
	Issues   []*domain.ProjectIssue
	Report   domain.Report
	Score    float64
	Scored   bool
}

type ProjectService interface {
	Upsert(ctx context.Context, req UpsertRequest) (*UpsertResult, error)
	GetDetail(ctx context.Context, projectID string) (*ProjectDetail, error)
	List(ctx context.Context, role domain.Role, userID string) ([]*domain.Project, error)
	Delete(ctx context.Context, projectID string) error
	AssignUser(ctx context.Context, projectID, userID string) error
	RemoveUser(ctx context.Context, projectID, userID string) error
}

type ReportService interface {
	Report(ctx context.Context, projectID string) (domain.Report, error)
	Score(ctx context.Context, projectID string) (float64, error)
}

// TypologyImportResult reports the outcome of a catalog import.
type TypologyImportResult struct {
	Imported int
	Replaced bool
}

type TypologyService interface {
	Import(ctx context.Context, raw string, replace bool) (*TypologyImportResult, error)
	List(ctx context.Context) ([]*domain.CatalogIssue, error)
}

// ReportIssueRequest carries the inputs of one reviewer issue report.
type ReportIssueRequest struct {
	SegmentID      string
	IssueID        string
	Side           domain.Side
	Level          domain.Severity
	Note           string
	HighlightStart int
	HighlightEnd   int
}

type SegmentIssueService interface {
	Report(ctx context.Context, req ReportIssueRequest) (*domain.SegmentIssue, error)
	Delete(ctx context.Context, issueID string) error
}
