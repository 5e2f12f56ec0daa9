package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/calinbraic/lqa/internal/db"
	"github.com/calinbraic/lqa/internal/domain"
)

// SQLiteCatalogRepo implements CatalogRepo using a SQLite database.
type SQLiteCatalogRepo struct {
	db db.DBTX
}

// NewSQLiteCatalogRepo creates a new SQLiteCatalogRepo over the given
// connection or transaction.
func NewSQLiteCatalogRepo(conn db.DBTX) *SQLiteCatalogRepo {
	return &SQLiteCatalogRepo{db: conn}
}

func (r *SQLiteCatalogRepo) Create(ctx context.Context, issue *domain.CatalogIssue) error {
	query := `INSERT INTO issues (id, parent, name) VALUES (?, ?, ?)`
	var parent any
	if issue.Parent != "" {
		parent = issue.Parent
	}
	_, err := r.db.ExecContext(ctx, query, issue.ID, parent, issue.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("catalog issue %q: %w", issue.ID, ErrDuplicate)
		}
		return fmt.Errorf("inserting catalog issue: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) GetByID(ctx context.Context, id string) (*domain.CatalogIssue, error) {
	query := `SELECT id, parent, name FROM issues WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var issue domain.CatalogIssue
	var parent sql.NullString
	if err := row.Scan(&issue.ID, &parent, &issue.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("catalog issue %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning catalog issue: %w", err)
	}
	issue.Parent = parent.String
	return &issue, nil
}

func (r *SQLiteCatalogRepo) GetAll(ctx context.Context) ([]*domain.CatalogIssue, error) {
	query := `SELECT id, parent, name FROM issues ORDER BY parent IS NOT NULL, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing catalog issues: %w", err)
	}
	defer rows.Close()

	var issues []*domain.CatalogIssue
	for rows.Next() {
		var issue domain.CatalogIssue
		var parent sql.NullString
		if err := rows.Scan(&issue.ID, &parent, &issue.Name); err != nil {
			return nil, fmt.Errorf("scanning catalog issue row: %w", err)
		}
		issue.Parent = parent.String
		issues = append(issues, &issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog issues: %w", err)
	}
	return issues, nil
}

func (r *SQLiteCatalogRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting catalog issues: %w", err)
	}
	return count, nil
}

func (r *SQLiteCatalogRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM issues`); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}
	return nil
}
