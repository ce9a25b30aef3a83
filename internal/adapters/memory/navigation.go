package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

// NavigationStore is an in-memory menu store for scaffolding/tests.
type NavigationStore struct {
	mu         sync.RWMutex
	structures map[string]*interfaces.NavigationStructure
	order      []string
}

var _ interfaces.NavigationStore = (*NavigationStore)(nil)

// NewNavigationStore constructs the store.
func NewNavigationStore() *NavigationStore {
	return &NavigationStore{
		structures: make(map[string]*interfaces.NavigationStructure),
	}
}

// Seed inserts a structure with caller-chosen ids, for tests and bootstrap.
func (s *NavigationStore) Seed(structure *interfaces.NavigationStructure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.structures[structure.ID] = cloneStructure(structure)
	s.order = append(s.order, structure.ID)
}

// ListStructures returns every structure in insertion order.
func (s *NavigationStore) ListStructures(_ context.Context) ([]*interfaces.NavigationStructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*interfaces.NavigationStructure, 0, len(s.order))
	for _, id := range s.order {
		if structure, ok := s.structures[id]; ok {
			out = append(out, cloneStructure(structure))
		}
	}
	return out, nil
}

// GetStructure returns the structure by identifier.
func (s *NavigationStore) GetStructure(_ context.Context, id string) (*interfaces.NavigationStructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	structure, ok := s.structures[id]
	if !ok {
		return nil, fmt.Errorf("navigation structure %q not found", id)
	}
	return cloneStructure(structure), nil
}

// CreateStructure stores a new empty structure and returns its id.
func (s *NavigationStore) CreateStructure(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.structures[id] = &interfaces.NavigationStructure{ID: id, Name: name}
	s.order = append(s.order, id)
	return id, nil
}

// AddItem appends an item to the structure and returns the item id.
func (s *NavigationStore) AddItem(_ context.Context, structureID string, item interfaces.NavigationItem) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	structure, ok := s.structures[structureID]
	if !ok {
		return "", fmt.Errorf("navigation structure %q not found", structureID)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	structure.Items = append(structure.Items, item)
	return item.ID, nil
}

// SetItemParent rewires an item under a new parent.
func (s *NavigationStore) SetItemParent(_ context.Context, structureID, itemID, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	structure, ok := s.structures[structureID]
	if !ok {
		return fmt.Errorf("navigation structure %q not found", structureID)
	}
	for i := range structure.Items {
		if structure.Items[i].ID == itemID {
			structure.Items[i].ParentID = parentID
			return nil
		}
	}
	return fmt.Errorf("navigation item %q not found", itemID)
}

// SetItemLabel rewrites an item's label.
func (s *NavigationStore) SetItemLabel(_ context.Context, structureID, itemID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	structure, ok := s.structures[structureID]
	if !ok {
		return fmt.Errorf("navigation structure %q not found", structureID)
	}
	for i := range structure.Items {
		if structure.Items[i].ID == itemID {
			structure.Items[i].Label = label
			return nil
		}
	}
	return fmt.Errorf("navigation item %q not found", itemID)
}

// DeleteStructure removes the structure permanently.
func (s *NavigationStore) DeleteStructure(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.structures[id]; !ok {
		return fmt.Errorf("navigation structure %q not found", id)
	}
	delete(s.structures, id)
	for i, stored := range s.order {
		if stored == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneStructure(in *interfaces.NavigationStructure) *interfaces.NavigationStructure {
	out := *in
	out.Items = append([]interfaces.NavigationItem(nil), in.Items...)
	return &out
}
