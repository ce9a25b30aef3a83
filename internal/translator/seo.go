package translator

import (
	"context"
	"fmt"

	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// DefaultSEOKeys are the field keys the SEO run translates when the caller
// does not name its own set.
var DefaultSEOKeys = []string{"seo_title", "seo_description", "seo_keywords"}

// TranslateSEO translates the named SEO fields on documents that already
// have a linked translation, writing them onto the translated document.
func (s *Service) TranslateSEO(ctx context.Context, req RunRequest, seoKeys []string) (string, error) {
	r, err := s.openRun(ctx, KindSEO, req)
	if err != nil {
		return "", err
	}

	if len(seoKeys) == 0 {
		seoKeys = DefaultSEOKeys
	}
	wanted := make(map[string]struct{}, len(seoKeys))
	for _, key := range seoKeys {
		wanted[key] = struct{}{}
	}

	for _, contentType := range s.cfg.Rules.IncludeTypes {
		items, err := s.documents.ListItems(ctx, contentType, "")
		if err != nil {
			s.recordError(ctx, r.jobID, fmt.Sprintf("list %s: %v", contentType, err))
			continue
		}
		for _, item := range items {
			if err := s.updateSEOFields(ctx, r, item, wanted); err != nil {
				s.logger.Error("seo translation failed", "job_id", r.jobID, "id", item.ID, "error", err)
				s.recordError(ctx, r.jobID, fmt.Sprintf("document %s: %v", item.ID, err))
			}
		}
	}

	return r.jobID, s.closeRun(ctx, r)
}

func (s *Service) updateSEOFields(ctx context.Context, r *run, item *interfaces.ContentItem, wanted map[string]struct{}) error {
	if s.rules.ShouldSkipContent(item) {
		return nil
	}

	translationID, err := s.documents.TranslationOf(ctx, item.ID, r.target)
	if err != nil {
		return fmt.Errorf("resolve translation: %w", err)
	}
	if translationID == "" {
		return nil
	}

	diffs := s.translateFields(ctx, r, item.Fields, func(key string) bool {
		_, ok := wanted[key]
		return !ok
	})
	if len(diffs) == 0 {
		return nil
	}

	if r.mode == ledger.ModePreview {
		return s.jobs.AddEntity(ctx, r.jobID, entityUpdatePreview, translationID, diffs)
	}
	return s.applyFieldUpdates(ctx, r, translationID, diffs)
}
