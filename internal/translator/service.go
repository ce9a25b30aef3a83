package translator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-translate/internal/batcher"
	"github.com/goliatone/go-translate/internal/cache"
	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/internal/preview"
	"github.com/goliatone/go-translate/internal/provider"
	"github.com/goliatone/go-translate/internal/rules"
	"github.com/goliatone/go-translate/internal/runtimeconfig"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

var (
	ErrNoProviderAvailable = errors.New("translator: no translation provider is registered")
	ErrTargetLangRequired  = errors.New("translator: target language is required")
	ErrJobNotPreview       = errors.New("translator: job is not an applicable preview")
)

// Run kinds recorded on jobs.
const (
	KindPages     = "pages"
	KindTemplates = "templates"
	KindMenus     = "menus"
	KindFields    = "fields"
	KindSEO       = "seo"
)

// Entity types the orchestration writes into the ledger, beyond the
// document/navigation types rollback understands. Update previews stage
// field overwrites on an existing translation rather than a new document.
const (
	entityDocumentPreview   = ledger.EntityDocument + ledger.PreviewSuffix
	entityUpdatePreview     = "document_update" + ledger.PreviewSuffix
	entityNavigationPreview = ledger.EntityNavigation + ledger.PreviewSuffix
)

// RunRequest carries the operator's choices for one translation run.
type RunRequest struct {
	TargetLanguage string
	SourceLanguage string
	Mode           ledger.Mode
	// ProviderOverride picks a provider for this run only; empty uses the
	// configured default.
	ProviderOverride string
}

// Option mutates the service configuration.
type Option func(*Service)

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithTranslateOptions overrides the vendor options applied to every batch.
func WithTranslateOptions(opts interfaces.TranslateOptions) Option {
	return func(s *Service) {
		s.translateOpts = opts
	}
}

// Service stitches the dispatch core to the content store. One service
// instance handles every content kind; each public method opens one job.
type Service struct {
	cfg        runtimeconfig.Config
	documents  interfaces.ContentStore
	navigation interfaces.NavigationStore
	registry   *provider.Registry
	jobs       *ledger.Service
	previews   *preview.Store
	rules      *rules.Engine
	cache      *cache.Cache
	logger     interfaces.Logger
	now        func() time.Time

	translateOpts interfaces.TranslateOptions
}

// NewService constructs the orchestration service.
func NewService(
	cfg runtimeconfig.Config,
	documents interfaces.ContentStore,
	navigation interfaces.NavigationStore,
	registry *provider.Registry,
	jobs *ledger.Service,
	previews *preview.Store,
	engine *rules.Engine,
	translationCache *cache.Cache,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:        cfg,
		documents:  documents,
		navigation: navigation,
		registry:   registry,
		jobs:       jobs,
		previews:   previews,
		rules:      engine,
		cache:      translationCache,
		logger:     logging.NoOp(),
		now:        time.Now,
		// HTML handling and formatting preservation are on for every kind;
		// content fields routinely carry markup.
		translateOpts: interfaces.TranslateOptions{
			TagHandling:        "html",
			PreserveFormatting: true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run bundles the per-job state every content kind operates on.
type run struct {
	jobID    string
	kind     string
	target   string
	source   string
	mode     ledger.Mode
	provider interfaces.TranslationProvider
	batch    *batcher.Batcher
}

func (s *Service) openRun(ctx context.Context, kind string, req RunRequest) (*run, error) {
	if req.TargetLanguage == "" {
		return nil, ErrTargetLangRequired
	}
	if req.Mode == "" {
		req.Mode = ledger.ModeApply
	}

	active := s.registry.Resolve(req.ProviderOverride, s.cfg.Provider)
	if active == nil {
		return nil, ErrNoProviderAvailable
	}

	jobID, err := s.jobs.Create(ctx, kind, req.TargetLanguage, req.Mode, active.Key())
	if err != nil {
		return nil, err
	}

	s.logger.Info("translation run opened",
		"job_id", jobID,
		"kind", kind,
		"target", req.TargetLanguage,
		"mode", string(req.Mode),
		"provider", active.Key(),
	)

	return &run{
		jobID:    jobID,
		kind:     kind,
		target:   req.TargetLanguage,
		source:   req.SourceLanguage,
		mode:     req.Mode,
		provider: active,
		batch: batcher.New(active,
			batcher.WithCache(s.cache),
			batcher.WithMaxCharsPerRequest(s.cfg.Batch.MaxCharsPerRequest),
			batcher.WithLogger(s.logger),
		),
	}, nil
}

// closeRun finalizes the job status and, for previews, stores the full
// payload for operator inspection.
func (s *Service) closeRun(ctx context.Context, r *run) error {
	status := ledger.StatusCompleted
	if r.mode == ledger.ModePreview {
		status = ledger.StatusPreview
	}
	if err := s.jobs.SetStatus(ctx, r.jobID, status); err != nil {
		return err
	}
	if r.mode != ledger.ModePreview {
		return nil
	}
	job, err := s.jobs.Get(ctx, r.jobID)
	if err != nil {
		return err
	}
	if err := s.previews.Put(ctx, job); err != nil {
		s.logger.Warn("preview snapshot store failed", "job_id", r.jobID, "error", err)
	}
	return nil
}

// translateFields runs the batcher over the given fields, skipping excluded
// keys, and returns per-field diffs keyed by field name. Keys are processed
// in sorted order so chunking is deterministic.
func (s *Service) translateFields(ctx context.Context, r *run, fields map[string]string, skip func(key string) bool) map[string]ledger.FieldDiff {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		if skip != nil && skip(key) {
			continue
		}
		if s.rules.ShouldSkipField(key) {
			continue
		}
		if fields[key] == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	texts := make([]string, len(keys))
	for i, key := range keys {
		texts[i] = fields[key]
	}

	translated := r.batch.TranslateBatch(ctx, texts, r.target, r.source, s.translateOpts)

	diffs := make(map[string]ledger.FieldDiff, len(keys))
	for i, key := range keys {
		diffs[key] = ledger.FieldDiff{Original: texts[i], Translated: translated[i]}
	}
	return diffs
}

// createTranslation writes a new document in the target language, links it
// to the source, and records it on the job.
func (s *Service) createTranslation(ctx context.Context, r *run, source *interfaces.ContentItem, diffs map[string]ledger.FieldDiff) error {
	fields := make(map[string]string, len(source.Fields))
	for key, value := range source.Fields {
		fields[key] = value
	}
	for key, diff := range diffs {
		fields[key] = diff.Translated
	}

	metadata := make(map[string]string, len(source.Metadata))
	for key, value := range source.Metadata {
		metadata[key] = value
	}

	newID, err := s.documents.CreateItem(ctx, &interfaces.ContentItem{
		Type:     source.Type,
		Status:   source.Status,
		Language: r.target,
		Fields:   fields,
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("create translation of %s: %w", source.ID, err)
	}

	sourceLang := source.Language
	if sourceLang == "" {
		if lang, err := s.documents.LanguageOf(ctx, source.ID); err == nil {
			sourceLang = lang
		}
	}
	group := map[string]string{r.target: newID}
	if sourceLang != "" {
		group[sourceLang] = source.ID
	}
	if err := s.documents.LinkTranslations(ctx, group); err != nil {
		return fmt.Errorf("link translation of %s: %w", source.ID, err)
	}

	return s.jobs.AddEntity(ctx, r.jobID, ledger.EntityDocument, newID, nil)
}

// translateDocument handles one source document end to end for the create
// path used by pages. Templates skip the content-type inclusion rule and go
// through translateEligibleDocument directly.
func (s *Service) translateDocument(ctx context.Context, r *run, item *interfaces.ContentItem) error {
	if s.rules.ShouldSkipContent(item) {
		s.logger.Debug("document out of scope", "id", item.ID, "type", item.Type)
		return nil
	}
	return s.translateEligibleDocument(ctx, r, item)
}

func (s *Service) translateEligibleDocument(ctx context.Context, r *run, item *interfaces.ContentItem) error {
	existing, err := s.documents.TranslationOf(ctx, item.ID, r.target)
	if err != nil {
		return fmt.Errorf("resolve translation of %s: %w", item.ID, err)
	}
	if existing != "" {
		s.logger.Debug("translation already exists", "id", item.ID, "target", r.target, "translation", existing)
		return nil
	}

	diffs := s.translateFields(ctx, r, item.Fields, nil)
	if len(diffs) == 0 {
		return nil
	}

	if r.mode == ledger.ModePreview {
		return s.jobs.AddEntity(ctx, r.jobID, entityDocumentPreview, item.ID, diffs)
	}
	return s.createTranslation(ctx, r, item, diffs)
}

// processDocuments runs the document path over a set of items, degrading
// per-item errors to job error entries.
func (s *Service) processDocuments(ctx context.Context, r *run, items []*interfaces.ContentItem) {
	for _, item := range items {
		if err := s.translateDocument(ctx, r, item); err != nil {
			s.logger.Error("document translation failed", "job_id", r.jobID, "id", item.ID, "error", err)
			s.recordError(ctx, r.jobID, fmt.Sprintf("document %s: %v", item.ID, err))
		}
	}
}

func (s *Service) recordError(ctx context.Context, jobID, message string) {
	if err := s.jobs.AddError(ctx, jobID, message); err != nil {
		s.logger.Error("job error append failed", "job_id", jobID, "error", err)
	}
}

// GetJob returns the ledger record for the job id.
func (s *Service) GetJob(ctx context.Context, jobID string) (*ledger.Job, error) {
	return s.jobs.Get(ctx, jobID)
}

// ListJobs returns all retained jobs, oldest first.
func (s *Service) ListJobs(ctx context.Context) ([]*ledger.Job, error) {
	return s.jobs.List(ctx)
}

// PreviewSnapshot returns the held preview payload for the job, if any.
func (s *Service) PreviewSnapshot(ctx context.Context, jobID string) (*ledger.Job, bool, error) {
	return s.previews.Get(ctx, jobID)
}

// RollbackJob undoes a job's writes. Unknown ids surface
// ledger.NotFoundError to the caller.
func (s *Service) RollbackJob(ctx context.Context, jobID string) error {
	if err := s.jobs.Rollback(ctx, jobID); err != nil {
		return err
	}
	if err := s.previews.Clear(ctx, jobID); err != nil {
		s.logger.Warn("preview snapshot clear failed", "job_id", jobID, "error", err)
	}
	return nil
}
