package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

// ContentStore is an in-memory document store for scaffolding/tests. It
// implements the full capability surface the translation runtime consumes,
// including cross-language linking.
type ContentStore struct {
	mu    sync.RWMutex
	items map[string]*interfaces.ContentItem
	// links maps item id to its translation group; a group maps language to
	// item id and is shared by every linked item.
	links map[string]map[string]string
}

var _ interfaces.ContentStore = (*ContentStore)(nil)

// NewContentStore constructs the store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		items: make(map[string]*interfaces.ContentItem),
		links: make(map[string]map[string]string),
	}
}

// Seed inserts an item with a caller-chosen id, for tests and bootstrap.
func (s *ContentStore) Seed(item *interfaces.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = cloneItem(item)
}

// GetItem returns the document by identifier.
func (s *ContentStore) GetItem(_ context.Context, id string) (*interfaces.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("content item %q not found", id)
	}
	return cloneItem(item), nil
}

// ListItems returns documents of the given type, optionally filtered by status.
func (s *ContentStore) ListItems(_ context.Context, contentType, status string) ([]*interfaces.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*interfaces.ContentItem
	for _, item := range s.items {
		if contentType != "" && item.Type != contentType {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		out = append(out, cloneItem(item))
	}
	return out, nil
}

// CreateItem stores a new document, assigning an id when none is set.
func (s *ContentStore) CreateItem(_ context.Context, item *interfaces.ContentItem) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := cloneItem(item)
	if copied.ID == "" {
		copied.ID = uuid.NewString()
	}
	s.items[copied.ID] = copied
	return copied.ID, nil
}

// WriteField overwrites one translatable field.
func (s *ContentStore) WriteField(_ context.Context, id, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("content item %q not found", id)
	}
	if item.Fields == nil {
		item.Fields = make(map[string]string)
	}
	item.Fields[key] = value
	return nil
}

// GetField reads one field value.
func (s *ContentStore) GetField(_ context.Context, id, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return "", fmt.Errorf("content item %q not found", id)
	}
	return item.Fields[key], nil
}

// DeleteItem removes the document permanently.
func (s *ContentStore) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("content item %q not found", id)
	}
	delete(s.items, id)
	if group, ok := s.links[id]; ok {
		for lang, linked := range group {
			if linked == id {
				delete(group, lang)
			}
		}
		delete(s.links, id)
	}
	return nil
}

// TranslationOf resolves the linked translation of id in lang.
func (s *ContentStore) TranslationOf(_ context.Context, id, lang string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.links[id]
	if !ok {
		return "", nil
	}
	linked := group[lang]
	if linked == id {
		return "", nil
	}
	return linked, nil
}

// LinkTranslations records the language linkage between documents. Every
// item in the group shares the same map so later lookups see all members.
func (s *ContentStore) LinkTranslations(_ context.Context, group map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make(map[string]string, len(group))
	for _, id := range group {
		if existing, ok := s.links[id]; ok {
			for l, linked := range existing {
				merged[l] = linked
			}
		}
	}
	for lang, id := range group {
		merged[lang] = id
	}
	for _, id := range merged {
		s.links[id] = merged
	}
	return nil
}

// LanguageOf returns the language a document is assigned to.
func (s *ContentStore) LanguageOf(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return "", fmt.Errorf("content item %q not found", id)
	}
	return item.Language, nil
}

func cloneItem(in *interfaces.ContentItem) *interfaces.ContentItem {
	out := *in
	if in.Fields != nil {
		out.Fields = make(map[string]string, len(in.Fields))
		for k, v := range in.Fields {
			out.Fields[k] = v
		}
	}
	if in.Metadata != nil {
		out.Metadata = make(map[string]string, len(in.Metadata))
		for k, v := range in.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
