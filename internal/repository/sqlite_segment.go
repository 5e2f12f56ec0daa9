package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/calinbraic/lqa/internal/db"
	"github.com/calinbraic/lqa/internal/domain"
	"github.com/google/uuid"
)

// SQLiteSegmentRepo implements SegmentRepo using a SQLite database.
type SQLiteSegmentRepo struct {
	db db.DBTX
}

// NewSQLiteSegmentRepo creates a new SQLiteSegmentRepo over the given
// connection or transaction.
func NewSQLiteSegmentRepo(conn db.DBTX) *SQLiteSegmentRepo {
	return &SQLiteSegmentRepo{db: conn}
}

// CreateBatch inserts the parsed segments for a project in sequence order.
// Missing IDs are assigned here so parsed segments can stay ID-free.
func (r *SQLiteSegmentRepo) CreateBatch(ctx context.Context, segments []*domain.Segment, projectID string) error {
	if len(segments) == 0 {
		return nil
	}

	q := sq.Insert("segments").Columns("id", "project_id", "seq", "source_text", "target_text")
	for _, seg := range segments {
		if seg.ID == "" {
			seg.ID = uuid.New().String()
		}
		seg.ProjectID = projectID
		q = q.Values(seg.ID, projectID, seg.Seq, seg.SourceText, seg.TargetText)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building segment insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting segments: %w", err)
	}
	return nil
}

func (r *SQLiteSegmentRepo) DeleteByProject(ctx context.Context, projectID string) error {
	query, args, err := sq.Delete("segments").Where(sq.Eq{"project_id": projectID}).ToSql()
	if err != nil {
		return fmt.Errorf("building segment delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting segments: %w", err)
	}
	return nil
}

func (r *SQLiteSegmentRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Segment, error) {
	query := `SELECT id, project_id, seq, source_text, target_text
		FROM segments WHERE project_id = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing segments: %w", err)
	}
	defer rows.Close()

	var segments []*domain.Segment
	for rows.Next() {
		var seg domain.Segment
		if err := rows.Scan(&seg.ID, &seg.ProjectID, &seg.Seq, &seg.SourceText, &seg.TargetText); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		segments = append(segments, &seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}
	return segments, nil
}

func (r *SQLiteSegmentRepo) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	query := `SELECT id, project_id, seq, source_text, target_text FROM segments WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var seg domain.Segment
	if err := row.Scan(&seg.ID, &seg.ProjectID, &seg.Seq, &seg.SourceText, &seg.TargetText); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("segment %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning segment: %w", err)
	}
	return &seg, nil
}
