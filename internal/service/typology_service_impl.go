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
)

type typologyService struct {
	catalog  repository.CatalogRepo
	uow      db.UnitOfWork
	observer UseCaseObserver

	parseMetric func(raw string) ([]*domain.MetricEntry, error)
}

// NewTypologyService creates the global catalog import/list operations.
func NewTypologyService(catalog repository.CatalogRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TypologyService {
	return &typologyService{
		catalog:     catalog,
		uow:         uow,
		observer:    useCaseObserverOrNoop(observers),
		parseMetric: parser.ParseMetric,
	}
}

// Import loads a typology XML document into the global catalog. The document
// lists parents before children (depth-first order), so each entry's parent
// must already exist either in the batch or in the stored catalog. With
// replace set, the existing catalog is cleared first; clearing fails while
// any project still references it.
func (t *typologyService) Import(ctx context.Context, raw string, replace bool) (*TypologyImportResult, error) {
	start := time.Now()
	res, err := t.doImport(ctx, raw, replace)
	observe(ctx, t.observer, "typology_import", start, err, map[string]any{"replace": replace})
	return res, err
}

func (t *typologyService) doImport(ctx context.Context, raw string, replace bool) (*TypologyImportResult, error) {
	entries, err := t.parseMetric(raw)
	if err != nil {
		return nil, validationf("problem parsing typology file: %v", err)
	}

	err = t.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txCatalog := repository.NewSQLiteCatalogRepo(tx)

		if replace {
			if err := txCatalog.DeleteAll(ctx); err != nil {
				return err
			}
		}

		seen := make(map[string]bool, len(entries))
		for _, entry := range entries {
			if entry.Parent != "" && !seen[entry.Parent] {
				if _, err := txCatalog.GetByID(ctx, entry.Parent); err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return validationf("issue type %q references unknown parent %q", entry.IssueID, entry.Parent)
					}
					return err
				}
			}
			issue := &domain.CatalogIssue{ID: entry.IssueID, Parent: entry.Parent, Name: entry.Name}
			if err := txCatalog.Create(ctx, issue); err != nil {
				return err
			}
			seen[entry.IssueID] = true
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			return nil, err
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	return &TypologyImportResult{Imported: len(entries), Replaced: replace}, nil
}

func (t *typologyService) List(ctx context.Context) ([]*domain.CatalogIssue, error) {
	return t.catalog.GetAll(ctx)
}
