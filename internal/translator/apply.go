package translator

import (
	"context"
	"fmt"

	"github.com/goliatone/go-translate/internal/ledger"
)

// ApplyJob writes a preview job through to the content store using the
// translations captured at preview time, so no provider calls are repeated.
// The job transitions to completed and its preview snapshot is dropped.
func (s *Service) ApplyJob(ctx context.Context, jobID string) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != ledger.StatusPreview {
		return ErrJobNotPreview
	}

	r := &run{
		jobID:  jobID,
		kind:   job.Type,
		target: job.TargetLanguage,
		mode:   ledger.ModeApply,
	}

	for _, entity := range job.Entities {
		if err := s.applyEntity(ctx, r, entity); err != nil {
			s.logger.Error("preview apply failed", "job_id", jobID, "entity", entity.ID, "error", err)
			s.recordError(ctx, jobID, fmt.Sprintf("apply %s %s: %v", entity.Type, entity.ID, err))
		}
	}

	if err := s.jobs.SetStatus(ctx, jobID, ledger.StatusCompleted); err != nil {
		return err
	}
	if err := s.previews.Clear(ctx, jobID); err != nil {
		s.logger.Warn("preview snapshot clear failed", "job_id", jobID, "error", err)
	}
	return nil
}

func (s *Service) applyEntity(ctx context.Context, r *run, entity ledger.EntityRecord) error {
	switch entity.Type {
	case entityDocumentPreview:
		source, err := s.documents.GetItem(ctx, entity.ID)
		if err != nil {
			return fmt.Errorf("load source: %w", err)
		}
		existing, err := s.documents.TranslationOf(ctx, entity.ID, r.target)
		if err != nil {
			return fmt.Errorf("resolve translation: %w", err)
		}
		if existing != "" {
			s.logger.Debug("translation appeared since preview", "id", entity.ID, "translation", existing)
			return nil
		}
		return s.createTranslation(ctx, r, source, entity.Preview)
	case entityUpdatePreview:
		return s.applyFieldUpdates(ctx, r, entity.ID, entity.Preview)
	case entityNavigationPreview:
		structure, err := s.navigation.GetStructure(ctx, entity.ID)
		if err != nil {
			return fmt.Errorf("load structure: %w", err)
		}
		exists, err := s.parallelStructureExists(ctx, structure.Name, r.target)
		if err != nil {
			return fmt.Errorf("resolve structure: %w", err)
		}
		if exists {
			s.logger.Debug("parallel structure appeared since preview", "structure", structure.Name, "target", r.target)
			return nil
		}
		return s.buildParallelStructure(ctx, r, structure, entity.Preview)
	default:
		s.logger.Warn("skipping non-preview entity during apply", "type", entity.Type, "id", entity.ID)
		return nil
	}
}
