package provider

import (
	"sync"

	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// DefaultKey is the hardcoded primary provider used when the configured
// choice is absent from the registry.
const DefaultKey = "deepl"

// OverrideHook lets hosts rewrite the configured provider choice before
// resolution, mirroring a filter extension point.
type OverrideHook func(choice string) string

// RegistryOption mutates the registry configuration.
type RegistryOption func(*Registry)

// WithOverrideHook installs a resolution hook.
func WithOverrideHook(hook OverrideHook) RegistryOption {
	return func(r *Registry) {
		r.hook = hook
	}
}

// WithRegistryLogger overrides the registry logger.
func WithRegistryLogger(logger interfaces.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry holds named providers and resolves the active one per run.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]interfaces.TranslationProvider
	hook      OverrideHook
	logger    interfaces.Logger
}

// NewRegistry constructs an empty provider registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		providers: make(map[string]interfaces.TranslationProvider),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores the provider under its own key, replacing any previous
// registration.
func (r *Registry) Register(p interfaces.TranslationProvider) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Key()] = p
}

// Get returns the provider registered under key.
func (r *Registry) Get(key string) (interfaces.TranslationProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[key]
	return p, ok
}

// All returns the registered providers keyed by identifier.
func (r *Registry) All() map[string]interfaces.TranslationProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]interfaces.TranslationProvider, len(r.providers))
	for key, p := range r.providers {
		out[key] = p
	}
	return out
}

// Default resolves the configured provider choice, applying the override hook
// when present, and falls back to the primary provider key when the choice is
// not registered.
func (r *Registry) Default(configuredKey string) interfaces.TranslationProvider {
	choice := configuredKey
	if choice == "" {
		choice = DefaultKey
	}
	if r.hook != nil {
		if rewritten := r.hook(choice); rewritten != "" {
			choice = rewritten
		}
	}
	if p, ok := r.Get(choice); ok {
		return p
	}
	if choice != DefaultKey {
		r.logger.Warn("configured provider not registered, falling back",
			"configured", choice,
			"fallback", DefaultKey,
		)
	}
	p, _ := r.Get(DefaultKey)
	return p
}

// Resolve returns the provider for a per-run override, superseding the
// configured default when the override names a registered provider.
func (r *Registry) Resolve(overrideKey, configuredKey string) interfaces.TranslationProvider {
	if overrideKey != "" {
		if p, ok := r.Get(overrideKey); ok {
			return p
		}
		r.logger.Warn("override provider not registered, using default", "override", overrideKey)
	}
	return r.Default(configuredKey)
}
