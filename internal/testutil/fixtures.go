package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/calinbraic/lqa/internal/domain"
	"github.com/google/uuid"
)

// MetricXML is a small typology/metric document: two root categories with
// children, one of them hidden.
const MetricXML = `<issues>
	<issue type="accuracy" name="Accuracy">
		<issue type="mistranslation" name="Mistranslation"/>
		<issue type="omission" name="Omission"/>
	</issue>
	<issue type="fluency" name="Fluency">
		<issue type="grammar" name="Grammar"/>
		<issue type="spelling" name="Spelling" display="no"/>
	</issue>
</issues>`

// BitextTSV is a three-segment bitext: 12 source words, 12 target words.
const BitextTSV = "The cat sat on the mat\tLe chat est sur le tapis\n" +
	"Good morning everyone\tBonjour tout le monde\n" +
	"See you tomorrow\tA demain\n"

// SpecificationsXML is a minimal specifications document.
const SpecificationsXML = `<specifications>
	<section title="Audience">General public</section>
	<section title="Register">Informal</section>
</specifications>`

// SeedTypology inserts the MetricXML issue types directly into the catalog.
// Raw SQL keeps testutil free of a repository dependency, so repository
// tests can use it without an import cycle.
func SeedTypology(t *testing.T, database *sql.DB) {
	t.Helper()

	type issue struct{ id, parent, name string }
	issues := []issue{
		{"accuracy", "", "Accuracy"},
		{"mistranslation", "accuracy", "Mistranslation"},
		{"omission", "accuracy", "Omission"},
		{"fluency", "", "Fluency"},
		{"grammar", "fluency", "Grammar"},
		{"spelling", "fluency", "Spelling"},
	}
	for _, is := range issues {
		var parent any
		if is.parent != "" {
			parent = is.parent
		}
		if _, err := database.Exec(`INSERT INTO issues (id, parent, name) VALUES (?, ?, ?)`,
			is.id, parent, is.name); err != nil {
			t.Fatalf("seeding typology issue %q: %v", is.id, err)
		}
	}
}

// SegmentIssueOption mutates a fixture segment issue.
type SegmentIssueOption func(*domain.SegmentIssue)

func WithLevel(level domain.Severity) SegmentIssueOption {
	return func(si *domain.SegmentIssue) {
		si.Level = level
	}
}

func WithSide(side domain.Side) SegmentIssueOption {
	return func(si *domain.SegmentIssue) {
		si.Side = side
	}
}

func WithIssueType(issueID string) SegmentIssueOption {
	return func(si *domain.SegmentIssue) {
		si.IssueID = issueID
	}
}

// ReportIssue inserts one reported segment issue. Defaults: minor grammar
// issue on the target side.
func ReportIssue(t *testing.T, database *sql.DB, segmentID string, opts ...SegmentIssueOption) *domain.SegmentIssue {
	t.Helper()
	si := &domain.SegmentIssue{
		ID:        uuid.New().String(),
		SegmentID: segmentID,
		IssueID:   "grammar",
		Side:      domain.SideTarget,
		Level:     domain.SeverityMinor,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(si)
	}

	_, err := database.Exec(`INSERT INTO segment_issues
		(id, segment_id, issue_id, type, level, note, highlight_start, highlight_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		si.ID, si.SegmentID, si.IssueID, string(si.Side), string(si.Level),
		si.Note, si.HighlightStart, si.HighlightEnd, si.CreatedAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("reporting fixture issue: %v", err)
	}
	return si
}
