package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/calinbraic/lqa/internal/db"
	"github.com/calinbraic/lqa/internal/domain"
)

// projectColumns is the canonical SELECT column list for projects.
const projectColumns = `id, name, finished, last_segment, bitext_file, metric_file,
		specifications_file, specifications, source_word_count, target_word_count,
		created_at, updated_at`

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo over the given
// connection or transaction.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (id, name, finished, last_segment, bitext_file, metric_file,
		specifications_file, specifications, source_word_count, target_word_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		boolToInt(p.Finished),
		p.LastSegment,
		p.BitextFile,
		p.MetricFile,
		p.SpecificationsFile,
		p.Specifications,
		p.SourceWordCount,
		p.TargetWordCount,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	p, err := scanProject(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at`
	return r.queryProjects(ctx, query)
}

func (r *SQLiteProjectRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	query := `SELECT p.id, p.name, p.finished, p.last_segment, p.bitext_file, p.metric_file,
		p.specifications_file, p.specifications, p.source_word_count, p.target_word_count,
		p.created_at, p.updated_at
		FROM projects p
		JOIN project_users pu ON pu.project_id = p.id
		WHERE pu.user_id = ?
		ORDER BY p.created_at`
	return r.queryProjects(ctx, query, userID)
}

// UpdateAttributes applies the ordered field list as one batched partial
// update. An empty list is a no-op; updated_at is always refreshed.
func (r *SQLiteProjectRepo) UpdateAttributes(ctx context.Context, id string, fields []Field) error {
	if len(fields) == 0 {
		return nil
	}

	q := sq.Update("projects")
	for _, f := range fields {
		q = q.Set(f.Column, f.Value)
	}
	q = q.Set("updated_at", nowUTC()).Where(sq.Eq{"id": id})

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building project update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating project attributes: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) AssignUser(ctx context.Context, projectID, userID string) error {
	query := `INSERT INTO project_users (project_id, user_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q on project %q: %w", userID, projectID, ErrDuplicate)
		}
		return fmt.Errorf("assigning user to project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) RemoveUser(ctx context.Context, projectID, userID string) error {
	query := `DELETE FROM project_users WHERE project_id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("removing user from project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) ListUsers(ctx context.Context, projectID string) ([]string, error) {
	query := `SELECT user_id FROM project_users WHERE project_id = ? ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning project user: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project users: %w", err)
	}
	return users, nil
}

func (r *SQLiteProjectRepo) CreateProjectIssue(ctx context.Context, pi *domain.ProjectIssue) error {
	query := `INSERT INTO project_issues (project_id, issue_id, display) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, pi.ProjectID, pi.IssueID, boolToInt(pi.Display))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project issue %q: %w", pi.IssueID, ErrDuplicate)
		}
		return fmt.Errorf("inserting project issue: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) DeleteProjectIssues(ctx context.Context, projectID string) error {
	query, args, err := sq.Delete("project_issues").Where(sq.Eq{"project_id": projectID}).ToSql()
	if err != nil {
		return fmt.Errorf("building project issue delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting project issues: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) ListProjectIssues(ctx context.Context, projectID string) ([]*domain.ProjectIssue, error) {
	query := `SELECT project_id, issue_id, display FROM project_issues WHERE project_id = ? ORDER BY issue_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project issues: %w", err)
	}
	defer rows.Close()

	var issues []*domain.ProjectIssue
	for rows.Next() {
		var pi domain.ProjectIssue
		var display int
		if err := rows.Scan(&pi.ProjectID, &pi.IssueID, &display); err != nil {
			return nil, fmt.Errorf("scanning project issue: %w", err)
		}
		pi.Display = intToBool(display)
		issues = append(issues, &pi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project issues: %w", err)
	}
	return issues, nil
}

func (r *SQLiteProjectRepo) queryProjects(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// scanProject scans one project row via the given Scan function.
func scanProject(scan func(...any) error) (*domain.Project, error) {
	var p domain.Project
	var finished int
	var createdAtStr, updatedAtStr string

	err := scan(
		&p.ID, &p.Name, &finished, &p.LastSegment,
		&p.BitextFile, &p.MetricFile, &p.SpecificationsFile, &p.Specifications,
		&p.SourceWordCount, &p.TargetWordCount,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Finished = intToBool(finished)

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &p, nil
}
