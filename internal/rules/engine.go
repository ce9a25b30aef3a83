package rules

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

// RuleSet is the predicate configuration for one run. It is validated once
// at load time and immutable afterwards.
type RuleSet struct {
	IncludeTypes       []string `yaml:"include_types" json:"include_types"`
	ExcludeContentIDs  []string `yaml:"exclude_content_ids" json:"exclude_content_ids"`
	ExcludeTemplateIDs []string `yaml:"exclude_template_ids" json:"exclude_template_ids"`
	ExcludeFieldKeys   []string `yaml:"exclude_field_keys" json:"exclude_field_keys"`
	ExcludeSelectors   []string `yaml:"exclude_selectors" json:"exclude_selectors"`
}

// Validate checks the rule set is usable for a run.
func (r RuleSet) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IncludeTypes, validation.Required, validation.Each(validation.By(nonBlank))),
		validation.Field(&r.ExcludeFieldKeys, validation.Each(validation.By(nonBlank))),
		validation.Field(&r.ExcludeSelectors, validation.Each(validation.By(nonBlank))),
	)
}

func nonBlank(value any) error {
	if s, ok := value.(string); !ok || strings.TrimSpace(s) == "" {
		return validation.NewError("translate.rules.entry_blank", "rule entries must not be blank")
	}
	return nil
}

// Engine evaluates scope predicates. Pure, no side effects.
type Engine struct {
	includeTypes       map[string]struct{}
	excludeContentIDs  map[string]struct{}
	excludeTemplateIDs map[string]struct{}
	excludeFieldKeys   map[string]struct{}
	excludeSelectors   map[string]struct{}
}

// NewEngine compiles the rule set into lookup sets.
func NewEngine(rules RuleSet) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		includeTypes:       toSet(rules.IncludeTypes),
		excludeContentIDs:  toSet(rules.ExcludeContentIDs),
		excludeTemplateIDs: toSet(rules.ExcludeTemplateIDs),
		excludeFieldKeys:   toSet(rules.ExcludeFieldKeys),
		excludeSelectors:   toSet(rules.ExcludeSelectors),
	}, nil
}

// ShouldSkipContent reports whether the item is out of scope, either because
// its type is not included or its id is excluded.
func (e *Engine) ShouldSkipContent(item *interfaces.ContentItem) bool {
	if item == nil {
		return true
	}
	if _, ok := e.includeTypes[item.Type]; !ok {
		return true
	}
	_, excluded := e.excludeContentIDs[item.ID]
	return excluded
}

// ShouldSkipTemplate reports whether the template id is excluded.
func (e *Engine) ShouldSkipTemplate(id string) bool {
	_, ok := e.excludeTemplateIDs[id]
	return ok
}

// ShouldSkipField reports whether the field key is excluded.
func (e *Engine) ShouldSkipField(key string) bool {
	_, ok := e.excludeFieldKeys[key]
	return ok
}

// ShouldSkipSelector reports whether the selector is excluded.
func (e *Engine) ShouldSkipSelector(selector string) bool {
	_, ok := e.excludeSelectors[selector]
	return ok
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, v := range in {
		out[strings.TrimSpace(v)] = struct{}{}
	}
	return out
}
