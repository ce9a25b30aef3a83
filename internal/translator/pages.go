package translator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

const (
	pageContentType = "page"
	statusPublished = "published"

	// publishedAtMetadataKey orders items for TranslateRecent when the host
	// store provides it.
	publishedAtMetadataKey = "published_at"
)

// TranslatePublished translates every published page that has no linked
// translation in the target language yet.
func (s *Service) TranslatePublished(ctx context.Context, req RunRequest) (string, error) {
	r, err := s.openRun(ctx, KindPages, req)
	if err != nil {
		return "", err
	}

	items, err := s.documents.ListItems(ctx, pageContentType, statusPublished)
	if err != nil {
		s.recordError(ctx, r.jobID, fmt.Sprintf("list pages: %v", err))
		return r.jobID, s.closeRun(ctx, r)
	}

	s.processDocuments(ctx, r, items)
	return r.jobID, s.closeRun(ctx, r)
}

// TranslateRecent translates the most recently published pages, at most
// limit of them. Recency follows the published_at metadata timestamp when
// present, falling back to listing order.
func (s *Service) TranslateRecent(ctx context.Context, req RunRequest, limit int) (string, error) {
	r, err := s.openRun(ctx, KindPages, req)
	if err != nil {
		return "", err
	}

	items, err := s.documents.ListItems(ctx, pageContentType, statusPublished)
	if err != nil {
		s.recordError(ctx, r.jobID, fmt.Sprintf("list pages: %v", err))
		return r.jobID, s.closeRun(ctx, r)
	}

	s.processDocuments(ctx, r, mostRecent(items, limit))
	return r.jobID, s.closeRun(ctx, r)
}

// TranslatePages translates the named pages only.
func (s *Service) TranslatePages(ctx context.Context, req RunRequest, ids []string) (string, error) {
	r, err := s.openRun(ctx, KindPages, req)
	if err != nil {
		return "", err
	}

	for _, id := range ids {
		item, err := s.documents.GetItem(ctx, id)
		if err != nil {
			s.logger.Error("page lookup failed", "job_id", r.jobID, "id", id, "error", err)
			s.recordError(ctx, r.jobID, fmt.Sprintf("document %s: %v", id, err))
			continue
		}
		if err := s.translateDocument(ctx, r, item); err != nil {
			s.logger.Error("document translation failed", "job_id", r.jobID, "id", id, "error", err)
			s.recordError(ctx, r.jobID, fmt.Sprintf("document %s: %v", id, err))
		}
	}

	return r.jobID, s.closeRun(ctx, r)
}

func mostRecent(items []*interfaces.ContentItem, limit int) []*interfaces.ContentItem {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	sorted := append([]*interfaces.ContentItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return publishedAt(sorted[i]).After(publishedAt(sorted[j]))
	})
	return sorted[:limit]
}

func publishedAt(item *interfaces.ContentItem) time.Time {
	raw, ok := item.Metadata[publishedAtMetadataKey]
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}
