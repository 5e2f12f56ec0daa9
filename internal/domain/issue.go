package domain

import "time"

// CatalogIssue is one entry of the global typology: the project-independent
// tree of reportable issue types. Root categories have an empty Parent.
type CatalogIssue struct {
	ID     string
	Parent string
	Name   string
}

// Root reports whether the entry is a top-level category.
func (c *CatalogIssue) Root() bool {
	return c.Parent == ""
}

// MetricEntry is one parsed line of an uploaded metric file: a declaration
// that a catalog issue (with the stated parent) applies to a project.
type MetricEntry struct {
	IssueID string
	Parent  string
	Name    string
	Display bool
}

// ProjectIssue enables one catalog issue for one project. Created only while
// processing an uploaded metric file; never orphaned from a catalog entry.
type ProjectIssue struct {
	ProjectID string
	IssueID   string
	Display   bool
}

// SegmentIssue is a reviewer-reported issue instance attached to a segment.
type SegmentIssue struct {
	ID             string
	SegmentID      string
	IssueID        string
	Side           Side
	Level          Severity
	Note           string
	HighlightStart int
	HighlightEnd   int
	CreatedAt      time.Time
}

// Weight returns the penalty weight of the reported severity.
func (s *SegmentIssue) Weight() int {
	return SeverityWeights[s.Level]
}
