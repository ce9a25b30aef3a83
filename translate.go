package translate

import (
	"context"

	"github.com/goliatone/go-translate/internal/di"
	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/internal/translator"
)

// TranslatorService exports the orchestration service contract.
type TranslatorService = *translator.Service

// RunRequest carries the operator's choices for one translation run.
type RunRequest = translator.RunRequest

// Job is the ledger record for one translation run.
type Job = ledger.Job

type (
	Mode   = ledger.Mode
	Status = ledger.Status
)

const (
	ModePreview = ledger.ModePreview
	ModeApply   = ledger.ModeApply

	StatusPending    = ledger.StatusPending
	StatusPreview    = ledger.StatusPreview
	StatusCompleted  = ledger.StatusCompleted
	StatusRolledBack = ledger.StatusRolledBack
)

// Module represents the top level translation runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a translation module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Translator returns the configured orchestration service.
func (m *Module) Translator() TranslatorService {
	return m.container.Translator()
}

// CreateRun opens a translation run for the given kind. It dispatches to the
// per-kind entry points; unknown kinds fall back to the pages run.
func (m *Module) CreateRun(ctx context.Context, kind string, req RunRequest) (string, error) {
	svc := m.container.Translator()
	switch kind {
	case translator.KindTemplates:
		return svc.TranslateTemplates(ctx, req)
	case translator.KindMenus:
		return svc.TranslateMenus(ctx, req)
	case translator.KindFields:
		return svc.TranslateFields(ctx, req, nil)
	case translator.KindSEO:
		return svc.TranslateSEO(ctx, req, nil)
	default:
		return svc.TranslatePublished(ctx, req)
	}
}

// GetJob returns the ledger record for the job id.
func (m *Module) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return m.container.Translator().GetJob(ctx, jobID)
}

// ApplyJob writes a preview job through to the content store.
func (m *Module) ApplyJob(ctx context.Context, jobID string) error {
	return m.container.Translator().ApplyJob(ctx, jobID)
}

// RollbackJob undoes a job's writes.
func (m *Module) RollbackJob(ctx context.Context, jobID string) error {
	return m.container.Translator().RollbackJob(ctx, jobID)
}
