package translator

import (
	"context"
	"fmt"
)

const templateContentType = "template"

// TranslateTemplates translates template documents. Templates honor the
// template exclusion list in addition to the shared content rules.
func (s *Service) TranslateTemplates(ctx context.Context, req RunRequest) (string, error) {
	r, err := s.openRun(ctx, KindTemplates, req)
	if err != nil {
		return "", err
	}

	items, err := s.documents.ListItems(ctx, templateContentType, "")
	if err != nil {
		s.recordError(ctx, r.jobID, fmt.Sprintf("list templates: %v", err))
		return r.jobID, s.closeRun(ctx, r)
	}

	for _, item := range items {
		if s.rules.ShouldSkipTemplate(item.ID) {
			s.logger.Debug("template excluded", "id", item.ID)
			continue
		}
		if err := s.translateEligibleDocument(ctx, r, item); err != nil {
			s.logger.Error("template translation failed", "job_id", r.jobID, "id", item.ID, "error", err)
			s.recordError(ctx, r.jobID, fmt.Sprintf("document %s: %v", item.ID, err))
		}
	}

	return r.jobID, s.closeRun(ctx, r)
}
