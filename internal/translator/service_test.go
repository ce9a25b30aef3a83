package translator

import (
	"context"
	"errors"
	"strings"
	"testing"

	adapters "github.com/goliatone/go-translate/internal/adapters/memory"
	"github.com/goliatone/go-translate/internal/cache"
	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/internal/preview"
	"github.com/goliatone/go-translate/internal/provider"
	"github.com/goliatone/go-translate/internal/rules"
	"github.com/goliatone/go-translate/internal/runtimeconfig"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

type fakeProvider struct {
	key   string
	calls int
	fail  bool
}

func (f *fakeProvider) Key() string { return f.key }

func (f *fakeProvider) TranslateBatch(_ context.Context, items []string, _, _ string, _ interfaces.TranslateOptions) ([]string, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("vendor unavailable")
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "DE:" + strings.ToUpper(item)
	}
	return out, nil
}

func (f *fakeProvider) TranslateText(ctx context.Context, text, target, source string, opts interfaces.TranslateOptions) (string, error) {
	out, err := f.TranslateBatch(ctx, []string{text}, target, source, opts)
	if err != nil {
		return "", err
	}
	return out[0], nil
}

type harness struct {
	svc      *Service
	docs     *adapters.ContentStore
	nav      *adapters.NavigationStore
	provider *fakeProvider
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := runtimeconfig.DefaultConfig()
	cfg.Provider = "fake"

	p := &fakeProvider{key: "fake"}
	registry := provider.NewRegistry()
	registry.Register(p)

	docs := adapters.NewContentStore()
	nav := adapters.NewNavigationStore()

	jobs := ledger.NewService(ledger.NewMemoryRepository(),
		ledger.WithContentStore(docs),
		ledger.WithNavigationStore(nav),
	)
	previews := preview.NewStore(adapters.NewCacheProvider())

	engine, err := rules.NewEngine(rules.RuleSet{IncludeTypes: cfg.Rules.IncludeTypes})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	svc := NewService(cfg, docs, nav, registry, jobs, previews, engine, cache.New())
	return &harness{svc: svc, docs: docs, nav: nav, provider: p}
}

func seedPage(h *harness, id, title, body string) {
	h.docs.Seed(&interfaces.ContentItem{
		ID:       id,
		Type:     "page",
		Status:   "published",
		Language: "en",
		Fields:   map[string]string{"title": title, "body": body},
	})
}

func TestTranslatePublishedCreatesLinkedTranslations(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedPage(h, "doc-1", "Home", "Welcome")

	jobID, err := h.svc.TranslatePublished(ctx, RunRequest{TargetLanguage: "de", SourceLanguage: "en"})
	if err != nil {
		t.Fatalf("TranslatePublished() error = %v", err)
	}

	translationID, err := h.docs.TranslationOf(ctx, "doc-1", "de")
	if err != nil {
		t.Fatalf("TranslationOf() error = %v", err)
	}
	if translationID == "" {
		t.Fatal("no translation was linked")
	}

	title, _ := h.docs.GetField(ctx, translationID, "title")
	if title != "DE:HOME" {
		t.Fatalf("translated title = %q", title)
	}
	lang, _ := h.docs.LanguageOf(ctx, translationID)
	if lang != "de" {
		t.Fatalf("translation language = %q", lang)
	}

	job, err := h.svc.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if job.Status != ledger.StatusCompleted {
		t.Fatalf("job status = %q, want completed", job.Status)
	}
	if len(job.Entities) != 1 || job.Entities[0].Type != ledger.EntityDocument {
		t.Fatalf("entities = %+v", job.Entities)
	}
}

func TestExistingTranslationIsSkipped(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedPage(h, "doc-1", "Home", "Welcome")

	if _, err := h.svc.TranslatePublished(ctx, RunRequest{TargetLanguage: "de"}); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	callsAfterFirst := h.provider.calls

	jobID, err := h.svc.TranslatePublished(ctx, RunRequest{TargetLanguage: "de"})
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if h.provider.calls != callsAfterFirst {
		t.Fatalf("second run made %d extra provider calls", h.provider.calls-callsAfterFirst)
	}

	job, _ := h.svc.GetJob(ctx, jobID)
	if len(job.Entities) != 0 {
		t.Fatalf("second run recorded entities: %+v", job.Entities)
	}
}

func TestPreviewModeNeverWrites(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedPage(h, "doc-1", "Home", "Welcome")

	jobID, err := h.svc.TranslatePublished(ctx, RunRequest{TargetLanguage: "de", Mode: ledger.ModePreview})
	if err != nil {
		t.Fatalf("TranslatePublished() error = %v", err)
	}

	if translationID, _ := h.docs.TranslationOf(ctx, "doc-1", "de"); translationID != "" {
		t.Fatal("preview run created a translation")
	}
	items, _ := h.docs.ListItems(ctx, "page", "")
	if len(items) != 1 {
		t.Fatalf("preview run changed the store: %d items", len(items))
	}

	job, err := h.svc.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if job.Status != ledger.StatusPreview {
		t.Fatalf("job status = %q, want preview", job.Status)
	}
	for _, entity := range job.Entities {
		if !entity.IsPreview() {
			t.Fatalf("non-preview entity recorded: %+v", entity)
		}
	}
	diff := job.Entities[0].Preview["title"]
	if diff.Original != "Home" || diff.Translated != "DE:HOME" {
		t.Fatalf("preview diff = %+v", diff)
	}

	if _, ok, _ := h.svc.PreviewSnapshot(ctx, jobID); !ok {
		t.Fatal("preview snapshot not stored")
	}
}

func TestApplyJobWritesPreviewWithoutRetranslating(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedPage(h, "doc-1", "Home", "Welcome")

	jobID, err := h.svc.TranslatePublished(ctx, RunRequest{TargetLanguage: "de", Mode: ledger.ModePreview})
	if err != nil {
		t.Fatalf("preview run error = %v", err)
	}
	callsAfterPreview := h.provider.calls

	if err := h.svc.ApplyJob(ctx, jobID); err != nil {
		t.Fatalf("ApplyJob() error = %v", err)
	}
	if h.provider.calls != callsAfterPreview {
		t.Fatal("apply re-invoked the provider")
	}

	translationID, _ := h.docs.TranslationOf(ctx, "doc-1", "de")
	if translationID == "" {
		t.Fatal("apply did not create the translation")
	}
	title, _ := h.docs.GetField(ctx, translationID, "title")
	if title != "DE:HOME" {
		t.Fatalf("applied title = %q", title)
	}

	job, _ := h.svc.GetJob(ctx, jobID)
	if job.Status != ledger.StatusCompleted {
		t.Fatalf("job status = %q, want completed", job.Status)
	}
	if _, ok, _ := h.svc.PreviewSnapshot(ctx, jobID); ok {
		t.Fatal("preview snapshot survived apply")
	}
}

func TestApplyRequiresPreviewStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedPage(h, "doc-1", "Home", "Welcome")

	jobID, err := h.svc.TranslatePublished(ctx, RunRequest{TargetLanguage: "de"})
	if err != nil {
		t.Fatalf("TranslatePublished() error = %v", err)
	}
	if err := h.svc.ApplyJob(ctx, jobID); !errors.Is(err, ErrJobNotPreview) {
		t.Fatalf("ApplyJob() error = %v, want ErrJobNotPreview", err)
	}
}

func TestTranslatePagesByID(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedPage(h, "doc-1", "Home", "Welcome")
	seedPage(h, "doc-2", "About", "Team")

	if _, err := h.svc.TranslatePages(ctx, RunRequest{TargetLanguage: "de"}, []string{"doc-2"}); err != nil {
		t.Fatalf("TranslatePages() error = %v", err)
	}

	if id, _ := h.docs.TranslationOf(ctx, "doc-2", "de"); id == "" {
		t.Fatal("named page not translated")
	}
	if id, _ := h.docs.TranslationOf(ctx, "doc-1", "de"); id != "" {
		t.Fatal("unrequested page was translated")
	}
}

func TestProviderFailureDegradesToOriginalText(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.provider.fail = true
	seedPage(h, "doc-1", "Home", "Welcome")

	jobID, err := h.svc.TranslatePublished(ctx, RunRequest{TargetLanguage: "de"})
	if err != nil {
		t.Fatalf("TranslatePublished() error = %v", err)
	}

	// Degraded output equals the source text, so the created translation
	// carries the original values rather than aborting the run.
	translationID, _ := h.docs.TranslationOf(ctx, "doc-1", "de")
	if translationID == "" {
		t.Fatal("degraded run did not create the translation")
	}
	title, _ := h.docs.GetField(ctx, translationID, "title")
	if title != "Home" {
		t.Fatalf("degraded title = %q, want original", title)
	}

	job, _ := h.svc.GetJob(ctx, jobID)
	if job.Status != ledger.StatusCompleted {
		t.Fatalf("job status = %q", job.Status)
	}
}

func TestMissingTargetLanguageRejected(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.TranslatePublished(context.Background(), RunRequest{}); !errors.Is(err, ErrTargetLangRequired) {
		t.Fatalf("TranslatePublished() error = %v, want ErrTargetLangRequired", err)
	}
}

func TestRollbackJobSurfacesNotFound(t *testing.T) {
	h := newHarness(t)
	var notFound *ledger.NotFoundError
	if err := h.svc.RollbackJob(context.Background(), "missing"); !errors.As(err, &notFound) {
		t.Fatalf("RollbackJob() error = %v, want NotFoundError", err)
	}
}
