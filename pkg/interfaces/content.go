package interfaces

import "context"

// ContentItem is the projection of a stored document the translation runtime
// works with. Fields holds the translatable values keyed by field name;
// Metadata carries non-translatable values the runtime copies verbatim.
type ContentItem struct {
	ID       string
	Type     string
	Status   string
	Language string
	Fields   map[string]string
	Metadata map[string]string
}

// ContentStore is the capability interface the translation runtime consumes.
// The host CMS implements it; the runtime never talks to storage directly.
type ContentStore interface {
	// GetItem returns the document by identifier.
	GetItem(ctx context.Context, id string) (*ContentItem, error)
	// ListItems returns documents of the given type and status. Status may be
	// empty to list all.
	ListItems(ctx context.Context, contentType, status string) ([]*ContentItem, error)
	// CreateItem stores a new document and returns its assigned identifier.
	CreateItem(ctx context.Context, item *ContentItem) (string, error)
	// WriteField overwrites a single translatable field.
	WriteField(ctx context.Context, id, key, value string) error
	// GetField reads a single field value.
	GetField(ctx context.Context, id, key string) (string, error)
	// DeleteItem removes the document permanently.
	DeleteItem(ctx context.Context, id string) error

	// TranslationOf resolves the linked translation of id in lang, returning
	// an empty string when none is linked.
	TranslationOf(ctx context.Context, id, lang string) (string, error)
	// LinkTranslations records the language linkage between documents.
	LinkTranslations(ctx context.Context, group map[string]string) error
	// LanguageOf returns the language a document is assigned to.
	LanguageOf(ctx context.Context, id string) (string, error)
}

// NavigationItem is one entry of a navigation structure.
type NavigationItem struct {
	ID       string
	ParentID string
	Label    string
	TargetID string
}

// NavigationStructure is a named menu with ordered items.
type NavigationStructure struct {
	ID    string
	Name  string
	Items []NavigationItem
}

// NavigationStore exposes the menu surface the runtime translates.
type NavigationStore interface {
	ListStructures(ctx context.Context) ([]*NavigationStructure, error)
	GetStructure(ctx context.Context, id string) (*NavigationStructure, error)
	CreateStructure(ctx context.Context, name string) (string, error)
	AddItem(ctx context.Context, structureID string, item NavigationItem) (string, error)
	SetItemParent(ctx context.Context, structureID, itemID, parentID string) error
	SetItemLabel(ctx context.Context, structureID, itemID, label string) error
	DeleteStructure(ctx context.Context, id string) error
}
