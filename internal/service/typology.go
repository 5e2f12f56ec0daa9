package service

import (
	"context"
	"errors"

	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/repository"
)

// validateMetricEntries checks every parsed metric entry against the global
// catalog: the issue must exist, and its recorded parent must equal the
// declared one. The first failing entry aborts the whole batch; partial
// acceptance is never permitted.
func validateMetricEntries(ctx context.Context, catalog repository.CatalogRepo, entries []*domain.MetricEntry) error {
	for _, entry := range entries {
		issue, err := catalog.GetByID(ctx, entry.IssueID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &TypologyMismatchError{IssueID: entry.IssueID, Unknown: true}
			}
			return err
		}
		if issue.Parent != entry.Parent {
			return &TypologyMismatchError{
				IssueID:        entry.IssueID,
				DeclaredParent: entry.Parent,
				WantParent:     issue.Parent,
			}
		}
	}
	return nil
}
