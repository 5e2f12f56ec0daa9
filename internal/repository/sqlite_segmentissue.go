package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calinbraic/lqa/internal/db"
	"github.com/calinbraic/lqa/internal/domain"
)

// segmentIssueColumns is the canonical SELECT column list for segment_issues.
const segmentIssueColumns = `id, segment_id, issue_id, type, level, note,
		highlight_start, highlight_end, created_at`

// SQLiteSegmentIssueRepo implements SegmentIssueRepo using a SQLite database.
type SQLiteSegmentIssueRepo struct {
	db db.DBTX
}

// NewSQLiteSegmentIssueRepo creates a new SQLiteSegmentIssueRepo over the
// given connection or transaction.
func NewSQLiteSegmentIssueRepo(conn db.DBTX) *SQLiteSegmentIssueRepo {
	return &SQLiteSegmentIssueRepo{db: conn}
}

func (r *SQLiteSegmentIssueRepo) Create(ctx context.Context, si *domain.SegmentIssue) error {
	query := `INSERT INTO segment_issues (id, segment_id, issue_id, type, level, note,
		highlight_start, highlight_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		si.ID,
		si.SegmentID,
		si.IssueID,
		string(si.Side),
		string(si.Level),
		si.Note,
		si.HighlightStart,
		si.HighlightEnd,
		si.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting segment issue: %w", err)
	}
	return nil
}

func (r *SQLiteSegmentIssueRepo) GetByID(ctx context.Context, id string) (*domain.SegmentIssue, error) {
	query := `SELECT ` + segmentIssueColumns + ` FROM segment_issues WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	si, err := scanSegmentIssue(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("segment issue %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return si, nil
}

func (r *SQLiteSegmentIssueRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM segment_issues WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting segment issue: %w", err)
	}
	return nil
}

func (r *SQLiteSegmentIssueRepo) ListBySegment(ctx context.Context, segmentID string) ([]*domain.SegmentIssue, error) {
	query := `SELECT ` + segmentIssueColumns + ` FROM segment_issues WHERE segment_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, segmentID)
	if err != nil {
		return nil, fmt.Errorf("listing segment issues: %w", err)
	}
	defer rows.Close()

	var issues []*domain.SegmentIssue
	for rows.Next() {
		si, err := scanSegmentIssue(rows.Scan)
		if err != nil {
			return nil, err
		}
		issues = append(issues, si)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segment issues: %w", err)
	}
	return issues, nil
}

// CountByProject counts reported issues across all of a project's segments.
// The upsert coordinator uses a non-zero count to lock bitext/metric files.
func (r *SQLiteSegmentIssueRepo) CountByProject(ctx context.Context, projectID string) (int, error) {
	query := `SELECT COUNT(*) FROM segment_issues si
		JOIN segments s ON s.id = si.segment_id
		WHERE s.project_id = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, projectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting segment issues: %w", err)
	}
	return count, nil
}

// ReportRows returns, per enabled project issue, the parallel level/side
// sequences of its reported occurrences. Issues with no occurrences yield a
// single null entry so every enabled issue appears in the report.
func (r *SQLiteSegmentIssueRepo) ReportRows(ctx context.Context, projectID string) ([]ReportRow, error) {
	query := `SELECT pi.issue_id, si.level, si.type
		FROM project_issues pi
		LEFT JOIN segment_issues si ON si.issue_id = pi.issue_id
			AND si.segment_id IN (SELECT id FROM segments WHERE project_id = pi.project_id)
		WHERE pi.project_id = ?
		ORDER BY pi.issue_id, si.created_at, si.id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying report rows: %w", err)
	}
	defer rows.Close()

	var report []ReportRow
	var current *ReportRow
	for rows.Next() {
		var issueID string
		var level, side sql.NullString
		if err := rows.Scan(&issueID, &level, &side); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}

		if current == nil || current.IssueID != issueID {
			report = append(report, ReportRow{IssueID: issueID})
			current = &report[len(report)-1]
		}
		current.Levels = append(current.Levels, domain.Severity(level.String))
		current.Sides = append(current.Sides, domain.Side(side.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}
	return report, nil
}

// scanSegmentIssue scans one segment issue row via the given Scan function.
func scanSegmentIssue(scan func(...any) error) (*domain.SegmentIssue, error) {
	var si domain.SegmentIssue
	var side, level, createdAtStr string

	err := scan(
		&si.ID, &si.SegmentID, &si.IssueID, &side, &level, &si.Note,
		&si.HighlightStart, &si.HighlightEnd, &createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning segment issue: %w", err)
	}

	si.Side = domain.Side(side)
	si.Level = domain.Severity(level)

	var parseErr error
	si.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return &si, nil
}
