package batcher

import (
	"context"
	"unicode/utf8"

	"github.com/goliatone/go-translate/internal/cache"
	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// DefaultMaxCharsPerRequest bounds the cumulative character length of a
// single provider call.
const DefaultMaxCharsPerRequest = 5000

// Transform rewrites a string before or after translation. A nil transform
// is the identity.
type Transform func(text string) string

// Option mutates the batcher configuration.
type Option func(*Batcher)

// WithCache attaches the dedup cache consulted before provider dispatch.
func WithCache(store *cache.Cache) Option {
	return func(b *Batcher) {
		b.cache = store
	}
}

// WithMaxCharsPerRequest overrides the per-chunk character budget.
func WithMaxCharsPerRequest(max int) Option {
	return func(b *Batcher) {
		if max > 0 {
			b.maxChars = max
		}
	}
}

// WithLogger overrides the batcher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Batcher) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithPreTransform installs a hook applied to each string before cache
// lookup and dispatch.
func WithPreTransform(fn Transform) Option {
	return func(b *Batcher) {
		b.pre = fn
	}
}

// WithPostTransform installs a hook applied to each translated string
// before it is cached and returned.
func WithPostTransform(fn Transform) Option {
	return func(b *Batcher) {
		b.post = fn
	}
}

// Batcher is the dispatch core. It deduplicates inputs against the cache,
// chunks the remainder under a character budget, invokes the provider once
// per chunk, and degrades failed chunks to their original text so one bad
// call never aborts the run.
type Batcher struct {
	provider interfaces.TranslationProvider
	cache    *cache.Cache
	maxChars int
	pre      Transform
	post     Transform
	logger   interfaces.Logger
}

// New constructs a batcher bound to the resolved provider for one run.
func New(provider interfaces.TranslationProvider, opts ...Option) *Batcher {
	b := &Batcher{
		provider: provider,
		maxChars: DefaultMaxCharsPerRequest,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TranslateBatch resolves every input to a translation, returning a map with
// exactly one entry per input index. Cache hits skip the provider; misses
// are dispatched in order-preserving chunks. Any chunk error leaves that
// chunk's items untranslated.
func (b *Batcher) TranslateBatch(ctx context.Context, items []string, target, source string, opts interfaces.TranslateOptions) map[int]string {
	results := make(map[int]string, len(items))
	if len(items) == 0 {
		return results
	}

	pendingIdx := make([]int, 0, len(items))
	pendingText := make([]string, 0, len(items))

	for i, item := range items {
		text := item
		if b.pre != nil {
			text = b.pre(text)
		}
		if b.cache != nil {
			if hit, ok := b.cache.Get(ctx, b.unit(text, target, source)); ok {
				results[i] = hit
				continue
			}
		}
		pendingIdx = append(pendingIdx, i)
		pendingText = append(pendingText, text)
	}

	if len(pendingIdx) == 0 {
		return results
	}

	translated := b.dispatch(ctx, pendingText, target, source, opts)

	for pos, i := range pendingIdx {
		out := translated[pos]
		if b.post != nil {
			out = b.post(out)
		}
		results[i] = out
		if b.cache != nil && out != pendingText[pos] {
			b.cache.Set(ctx, b.unit(pendingText[pos], target, source), out)
		}
	}

	return results
}

// dispatch sends pending strings to the provider in character-budgeted
// chunks, returning a slice positionally aligned with the input. Failed
// chunks fall back to their original text.
func (b *Batcher) dispatch(ctx context.Context, pending []string, target, source string, opts interfaces.TranslateOptions) []string {
	out := make([]string, 0, len(pending))
	for _, chunk := range splitChunks(pending, b.maxChars) {
		translated, err := b.provider.TranslateBatch(ctx, chunk, target, source, opts)
		if err != nil || len(translated) != len(chunk) {
			if err != nil {
				b.logger.Error("chunk translation failed",
					"provider", b.provider.Key(),
					"target", target,
					"items", len(chunk),
					"error", err,
				)
			} else {
				b.logger.Error("chunk translation returned wrong item count",
					"provider", b.provider.Key(),
					"want", len(chunk),
					"got", len(translated),
				)
			}
			out = append(out, chunk...)
			continue
		}
		out = append(out, translated...)
	}
	return out
}

func (b *Batcher) unit(text, target, source string) cache.Unit {
	return cache.Unit{
		Text:        text,
		SourceLang:  source,
		TargetLang:  target,
		ProviderKey: b.provider.Key(),
	}
}

// splitChunks groups strings in order so each group's cumulative rune count
// stays at or under max. A single string over the budget still forms its own
// group; strings are never split.
func splitChunks(items []string, max int) [][]string {
	var chunks [][]string
	var current []string
	size := 0

	for _, item := range items {
		length := utf8.RuneCountInString(item)
		if len(current) > 0 && size+length > max {
			chunks = append(chunks, current)
			current = nil
			size = 0
		}
		current = append(current, item)
		size += length
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
