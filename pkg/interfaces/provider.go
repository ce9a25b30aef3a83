package interfaces

import "context"

// TranslateOptions carries vendor style hints for a translation request.
// Zero values mean "use the vendor default"; providers ignore hints they do
// not support.
type TranslateOptions struct {
	// TagHandling tells the vendor how to treat markup, e.g. "html".
	TagHandling string
	// PreserveFormatting asks the vendor not to normalize whitespace.
	PreserveFormatting bool
	// Formality selects a register where the vendor supports one
	// ("default", "more", "less").
	Formality string
	// GlossaryID references a vendor-side glossary to apply.
	GlossaryID string
	// Extra holds vendor-specific parameters merged into the request body.
	Extra map[string]string
}

// TranslationProvider is the closed capability set every vendor adapter
// implements. Implementations must preserve input order in batch output and
// consult their injected rate limiter before any network call.
type TranslationProvider interface {
	// Key returns the stable provider identifier, e.g. "deepl" or "google".
	Key() string
	// TranslateBatch translates items into target preserving input order.
	// source may be empty to request vendor-side language detection.
	TranslateBatch(ctx context.Context, items []string, target, source string, opts TranslateOptions) ([]string, error)
	// TranslateText translates a single string. Providers may implement it by
	// delegating to TranslateBatch with a one-element input.
	TranslateText(ctx context.Context, text, target, source string, opts TranslateOptions) (string, error)
}

// ProviderTester is an optional extension used by operator tooling to verify
// credentials and connectivity without mutating anything.
type ProviderTester interface {
	Test(ctx context.Context) error
}
