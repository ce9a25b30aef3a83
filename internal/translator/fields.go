package translator

import (
	"context"
	"fmt"

	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// TranslateFields updates the structured fields of documents that already
// have a linked translation. Keys listed in syncedKeys are never machine
// translated; their source values are copied to the translation verbatim.
func (s *Service) TranslateFields(ctx context.Context, req RunRequest, syncedKeys []string) (string, error) {
	r, err := s.openRun(ctx, KindFields, req)
	if err != nil {
		return "", err
	}

	synced := make(map[string]struct{}, len(syncedKeys))
	for _, key := range syncedKeys {
		synced[key] = struct{}{}
	}

	for _, contentType := range s.cfg.Rules.IncludeTypes {
		items, err := s.documents.ListItems(ctx, contentType, "")
		if err != nil {
			s.recordError(ctx, r.jobID, fmt.Sprintf("list %s: %v", contentType, err))
			continue
		}
		for _, item := range items {
			if err := s.updateTranslatedFields(ctx, r, item, synced); err != nil {
				s.logger.Error("field translation failed", "job_id", r.jobID, "id", item.ID, "error", err)
				s.recordError(ctx, r.jobID, fmt.Sprintf("document %s: %v", item.ID, err))
			}
		}
	}

	return r.jobID, s.closeRun(ctx, r)
}

func (s *Service) updateTranslatedFields(ctx context.Context, r *run, item *interfaces.ContentItem, synced map[string]struct{}) error {
	if s.rules.ShouldSkipContent(item) {
		return nil
	}

	translationID, err := s.documents.TranslationOf(ctx, item.ID, r.target)
	if err != nil {
		return fmt.Errorf("resolve translation: %w", err)
	}
	if translationID == "" {
		s.logger.Debug("no linked translation to update", "id", item.ID, "target", r.target)
		return nil
	}

	diffs := s.translateFields(ctx, r, item.Fields, func(key string) bool {
		_, isSynced := synced[key]
		return isSynced
	})

	// Synced keys bypass translation but still propagate to the linked
	// document, so both languages stay aligned on shared values.
	for key := range synced {
		value, ok := item.Fields[key]
		if !ok {
			continue
		}
		diffs[key] = ledger.FieldDiff{Original: value, Translated: value}
	}

	if len(diffs) == 0 {
		return nil
	}

	if r.mode == ledger.ModePreview {
		return s.jobs.AddEntity(ctx, r.jobID, entityUpdatePreview, translationID, diffs)
	}
	return s.applyFieldUpdates(ctx, r, translationID, diffs)
}

// applyFieldUpdates backs up the translation's current values and writes
// the new ones. The backup always precedes the overwrite.
func (s *Service) applyFieldUpdates(ctx context.Context, r *run, translationID string, diffs map[string]ledger.FieldDiff) error {
	prior := make(map[string]string, len(diffs))
	for key := range diffs {
		value, err := s.documents.GetField(ctx, translationID, key)
		if err != nil {
			return fmt.Errorf("read prior %s: %w", key, err)
		}
		prior[key] = value
	}
	if err := s.jobs.AddBackup(ctx, r.jobID, ledger.BackupDocument, translationID, prior); err != nil {
		return err
	}

	for key, diff := range diffs {
		if err := s.documents.WriteField(ctx, translationID, key, diff.Translated); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return nil
}
