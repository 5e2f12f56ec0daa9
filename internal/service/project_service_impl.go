package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calinbraic/lqa/internal/db"
	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/parser"
	"github.com/calinbraic/lqa/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects      repository.ProjectRepo
	catalog       repository.CatalogRepo
	segments      repository.SegmentRepo
	segmentIssues repository.SegmentIssueRepo
	uow           db.UnitOfWork
	observer      UseCaseObserver

	// Parser collaborators, overridable in tests.
	parseBitext         func(raw string) (*parser.Bitext, error)
	parseMetric         func(raw string) ([]*domain.MetricEntry, error)
	parseSpecifications func(raw string) (string, error)
}

// NewProjectService creates the project upsert coordinator and read-side
// project operations.
func NewProjectService(
	projects repository.ProjectRepo,
	catalog repository.CatalogRepo,
	segments repository.SegmentRepo,
	segmentIssues repository.SegmentIssueRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects:            projects,
		catalog:             catalog,
		segments:            segments,
		segmentIssues:       segmentIssues,
		uow:                 uow,
		observer:            useCaseObserverOrNoop(observers),
		parseBitext:         parser.ParseBitext,
		parseMetric:         parser.ParseMetric,
		parseSpecifications: parser.ParseSpecifications,
	}
}

// upsertPlan is the validated, parsed input of the mutation phase. Building
// it completely before the transaction opens keeps parse and precondition
// failures free of database effects.
type upsertPlan struct {
	isUpdate      bool
	fields        []repository.Field
	metricEntries []*domain.MetricEntry
	metricName    string
	bitext        *parser.Bitext
	bitextName    string
	specsName     string
	specsText     string
	hasSpecs      bool
}

func (s *projectService) Upsert(ctx context.Context, req UpsertRequest) (*UpsertResult, error) {
	start := time.Now()
	res, err := s.upsert(ctx, req)
	fields := map[string]any{"update": req.ProjectID != ""}
	if res != nil {
		fields["project_id"] = res.ProjectID
	}
	observe(ctx, s.observer, "project_upsert", start, err, fields)
	return res, err
}

func (s *projectService) upsert(ctx context.Context, req UpsertRequest) (*UpsertResult, error) {
	plan, err := s.planUpsert(ctx, req)
	if err != nil {
		return nil, err
	}

	projectID := req.ProjectID
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txSegments := repository.NewSQLiteSegmentRepo(tx)
		txCatalog := repository.NewSQLiteCatalogRepo(tx)

		if !plan.isUpdate {
			now := time.Now().UTC()
			p := &domain.Project{
				ID:              uuid.New().String(),
				Name:            *req.Name,
				LastSegment:     1,
				BitextFile:      plan.bitextName,
				MetricFile:      plan.metricName,
				SourceWordCount: plan.bitext.SourceWordCount,
				TargetWordCount: plan.bitext.TargetWordCount,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if plan.hasSpecs {
				p.SpecificationsFile = plan.specsName
				p.Specifications = plan.specsText
			}
			if err := txProjects.Create(ctx, p); err != nil {
				return err
			}
			projectID = p.ID

			// The creating user is mapped exactly once.
			if err := txProjects.AssignUser(ctx, projectID, req.CallerUserID); err != nil {
				return err
			}
		}

		if len(plan.metricEntries) > 0 {
			if err := validateMetricEntries(ctx, txCatalog, plan.metricEntries); err != nil {
				return err
			}
			if plan.isUpdate {
				if err := txProjects.DeleteProjectIssues(ctx, projectID); err != nil {
					return err
				}
			}
			for _, entry := range plan.metricEntries {
				pi := &domain.ProjectIssue{
					ProjectID: projectID,
					IssueID:   entry.IssueID,
					Display:   entry.Display,
				}
				if err := txProjects.CreateProjectIssue(ctx, pi); err != nil {
					return err
				}
			}
		}

		if plan.bitext != nil {
			if plan.isUpdate {
				if err := txSegments.DeleteByProject(ctx, projectID); err != nil {
					return err
				}
			}
			if err := txSegments.CreateBatch(ctx, plan.bitext.Segments, projectID); err != nil {
				return err
			}
		}

		if plan.isUpdate {
			if err := txProjects.UpdateAttributes(ctx, projectID, plan.fields); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classifyTxErr(err)
	}

	res := &UpsertResult{ProjectID: projectID, Created: !plan.isUpdate}
	if plan.isUpdate {
		res.Message = "Project updated successfully."
	} else {
		res.Message = "Project created successfully."
	}
	return res, nil
}

// planUpsert runs every precondition and parse step that must precede the
// transaction. Each check returns a distinct typed error; the first failure
// stops processing.
func (s *projectService) planUpsert(ctx context.Context, req UpsertRequest) (*upsertPlan, error) {
	plan := &upsertPlan{isUpdate: req.ProjectID != ""}

	if !plan.isUpdate && (req.Name == nil || *req.Name == "" || req.BitextFile == nil || req.MetricFile == nil) {
		return nil, validationf("project creation requires a name, a metric file, and a bitext file")
	}
	if req.CallerUserID == "" {
		return nil, validationf("caller user id is required")
	}

	catalogCount, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if catalogCount == 0 {
		return nil, ErrTypologyNotImported
	}

	if plan.isUpdate {
		if _, err := s.projects.GetByID(ctx, req.ProjectID); err != nil {
			return nil, classifyReadErr(err)
		}
		if req.BitextFile != nil || req.MetricFile != nil {
			issueCount, err := s.segmentIssues.CountByProject(ctx, req.ProjectID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrStorage, err)
			}
			if issueCount > 0 {
				return nil, ErrFilesLocked
			}
		}
	}

	// On creation the caller necessarily supplies the files; on update,
	// name and file mutations require an elevated role and are otherwise
	// silently ignored, not rejected.
	mayMutateFiles := !plan.isUpdate || req.CallerRole.Elevated()

	if req.Name != nil && req.CallerRole.Elevated() {
		plan.fields = append(plan.fields, repository.Field{Column: "name", Value: *req.Name})
	}
	if req.Finished != nil {
		plan.fields = append(plan.fields, repository.Field{Column: "finished", Value: *req.Finished})
	}
	if req.SegmentNum != nil {
		plan.fields = append(plan.fields, repository.Field{Column: "last_segment", Value: *req.SegmentNum})
	}

	if req.MetricFile != nil && mayMutateFiles {
		entries, err := s.parseMetric(string(req.MetricFile.Data))
		if err != nil {
			return nil, validationf("problem parsing metric file: %v", err)
		}
		plan.metricEntries = entries
		plan.metricName = req.MetricFile.Name
		plan.fields = append(plan.fields, repository.Field{Column: "metric_file", Value: req.MetricFile.Name})
	}

	if req.BitextFile != nil && mayMutateFiles {
		bt, err := s.parseBitext(string(req.BitextFile.Data))
		if err != nil {
			return nil, validationf("problem parsing bitext file: %v", err)
		}
		plan.bitext = bt
		plan.bitextName = req.BitextFile.Name
		plan.fields = append(plan.fields,
			repository.Field{Column: "bitext_file", Value: req.BitextFile.Name},
			repository.Field{Column: "last_segment", Value: 1},
			repository.Field{Column: "source_word_count", Value: bt.SourceWordCount},
			repository.Field{Column: "target_word_count", Value: bt.TargetWordCount},
		)
	}

	if req.SpecificationsFile != nil && mayMutateFiles {
		text, err := s.parseSpecifications(string(req.SpecificationsFile.Data))
		if err != nil {
			return nil, validationf("problem parsing specifications file: %v", err)
		}
		plan.hasSpecs = true
		plan.specsName = req.SpecificationsFile.Name
		plan.specsText = text
		plan.fields = append(plan.fields,
			repository.Field{Column: "specifications_file", Value: req.SpecificationsFile.Name},
			repository.Field{Column: "specifications", Value: text},
		)
	}

	return plan, nil
}

// classifyReadErr maps read-phase failures onto the error taxonomy: missing
// rows pass through as not-found, anything else is a storage failure.
func classifyReadErr(err error) error {
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// classifyTxErr maps mutation-phase failures onto the error taxonomy. The
// transaction has already been rolled back.
func classifyTxErr(err error) error {
	var mismatch *TypologyMismatchError
	switch {
	case errors.As(err, &mismatch):
		return err
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repository.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}

func (s *projectService) GetDetail(ctx context.Context, projectID string) (*ProjectDetail, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, classifyReadErr(err)
	}

	users, err := s.projects.ListUsers(ctx, projectID)
	if err != nil {
		return nil, classifyReadErr(err)
	}
	issues, err := s.projects.ListProjectIssues(ctx, projectID)
	if err != nil {
		return nil, classifyReadErr(err)
	}
	segments, err := s.segments.ListByProject(ctx, projectID)
	if err != nil {
		return nil, classifyReadErr(err)
	}

	detail := &ProjectDetail{Project: p, Users: users, Issues: issues}
	for _, seg := range segments {
		segIssues, err := s.segmentIssues.ListBySegment(ctx, seg.ID)
		if err != nil {
			return nil, classifyReadErr(err)
		}
		sd := &SegmentDetail{Segment: seg}
		for _, si := range segIssues {
			if si.Side == domain.SideSource {
				sd.SourceIssues = append(sd.SourceIssues, si)
			} else {
				sd.TargetIssues = append(sd.TargetIssues, si)
			}
		}
		detail.Segments = append(detail.Segments, sd)
	}

	rows, err := s.segmentIssues.ReportRows(ctx, projectID)
	if err != nil {
		return nil, classifyReadErr(err)
	}
	detail.Report = aggregateReport(rows)

	score, err := scoreFromRows(p, rows)
	if err != nil {
		if errors.Is(err, ErrNoWordCounts) {
			detail.Score, detail.Scored = 0, false
			return detail, nil
		}
		return nil, err
	}
	detail.Score, detail.Scored = score, true
	return detail, nil
}

func (s *projectService) List(ctx context.Context, role domain.Role, userID string) ([]*domain.Project, error) {
	if role == domain.RoleSuperadmin {
		return s.projects.List(ctx)
	}
	return s.projects.ListByUser(ctx, userID)
}

func (s *projectService) Delete(ctx context.Context, projectID string) error {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return classifyReadErr(err)
	}
	return s.projects.Delete(ctx, projectID)
}

func (s *projectService) AssignUser(ctx context.Context, projectID, userID string) error {
	if userID == "" {
		return validationf("user id is required")
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return classifyReadErr(err)
	}
	if err := s.projects.AssignUser(ctx, projectID, userID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: user %q has already been assigned to this project", ErrConflict, userID)
		}
		return err
	}
	return nil
}

func (s *projectService) RemoveUser(ctx context.Context, projectID, userID string) error {
	return s.projects.RemoveUser(ctx, projectID, userID)
}
