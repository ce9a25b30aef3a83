package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	adapters "github.com/goliatone/go-translate/internal/adapters/memory"
	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

var fixedTime = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts ...ledger.Option) *ledger.Service {
	t.Helper()
	base := []ledger.Option{ledger.WithClock(func() time.Time { return fixedTime })}
	return ledger.NewService(ledger.NewMemoryRepository(), append(base, opts...)...)
}

func createJob(t *testing.T, svc *ledger.Service, mode ledger.Mode) string {
	t.Helper()
	id, err := svc.Create(context.Background(), "pages", "de", mode, "deepl")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return id
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", "de", ledger.ModeApply, "deepl"); !errors.Is(err, ledger.ErrJobTypeRequired) {
		t.Fatalf("Create() error = %v, want ErrJobTypeRequired", err)
	}
	if _, err := svc.Create(ctx, "pages", "", ledger.ModeApply, "deepl"); !errors.Is(err, ledger.ErrTargetLangRequired) {
		t.Fatalf("Create() error = %v, want ErrTargetLangRequired", err)
	}
	if _, err := svc.Create(ctx, "pages", "de", ledger.Mode("dry"), "deepl"); !errors.Is(err, ledger.ErrModeInvalid) {
		t.Fatalf("Create() error = %v, want ErrModeInvalid", err)
	}
}

func TestJobLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	jobID := createJob(t, svc, ledger.ModeApply)

	job, err := svc.Get(ctx, jobID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.Status != ledger.StatusPending {
		t.Fatalf("new job status = %q, want pending", job.Status)
	}

	if err := svc.AddEntity(ctx, jobID, ledger.EntityDocument, "doc-1", nil); err != nil {
		t.Fatalf("AddEntity() error = %v", err)
	}
	if err := svc.AddBackup(ctx, jobID, ledger.BackupDocument, "doc-2", map[string]string{"title": "Original"}); err != nil {
		t.Fatalf("AddBackup() error = %v", err)
	}
	if err := svc.AddError(ctx, jobID, "chunk 2 failed"); err != nil {
		t.Fatalf("AddError() error = %v", err)
	}
	if err := svc.SetStatus(ctx, jobID, ledger.StatusCompleted); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	job, err = svc.Get(ctx, jobID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(job.Entities) != 1 || job.Entities[0].ID != "doc-1" {
		t.Fatalf("entities = %+v", job.Entities)
	}
	if len(job.Backups) != 1 || job.Backups[0].Data["title"] != "Original" {
		t.Fatalf("backups = %+v", job.Backups)
	}
	if len(job.Errors) != 1 {
		t.Fatalf("errors = %v", job.Errors)
	}
	if job.Status != ledger.StatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
}

func TestGetUnknownJobReturnsNotFound(t *testing.T) {
	svc := newService(t)

	var notFound *ledger.NotFoundError
	_, err := svc.Get(context.Background(), "no-such-job")
	if !errors.As(err, &notFound) {
		t.Fatalf("Get() error = %v, want NotFoundError", err)
	}
}

func TestFirstBackupWinsPerField(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	jobID := createJob(t, svc, ledger.ModeApply)

	if err := svc.AddBackup(ctx, jobID, ledger.BackupDocument, "doc-1", map[string]string{"title": "Original"}); err != nil {
		t.Fatalf("AddBackup() error = %v", err)
	}
	// Second overwrite of the same field backs up the already translated
	// value; it must not displace the pre-job snapshot.
	if err := svc.AddBackup(ctx, jobID, ledger.BackupDocument, "doc-1", map[string]string{"title": "Translated", "body": "Body"}); err != nil {
		t.Fatalf("AddBackup() error = %v", err)
	}

	job, err := svc.Get(ctx, jobID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(job.Backups) != 1 {
		t.Fatalf("backups = %+v, want single merged record", job.Backups)
	}
	if got := job.Backups[0].Data["title"]; got != "Original" {
		t.Fatalf("title backup = %q, want Original", got)
	}
	if got := job.Backups[0].Data["body"]; got != "Body" {
		t.Fatalf("body backup = %q, want Body", got)
	}
}

func TestRollbackRestoresPriorState(t *testing.T) {
	ctx := context.Background()
	docs := adapters.NewContentStore()
	docs.Seed(&interfaces.ContentItem{
		ID:     "doc-42",
		Type:   "page",
		Fields: map[string]string{"title": "Uebersetzt"},
	})
	docs.Seed(&interfaces.ContentItem{
		ID:     "doc-99",
		Type:   "page",
		Fields: map[string]string{"title": "Neu"},
	})

	svc := newService(t, ledger.WithContentStore(docs))
	jobID := createJob(t, svc, ledger.ModeApply)

	if err := svc.AddBackup(ctx, jobID, ledger.BackupDocument, "doc-42", map[string]string{"title": "X"}); err != nil {
		t.Fatalf("AddBackup() error = %v", err)
	}
	if err := svc.AddEntity(ctx, jobID, ledger.EntityDocument, "doc-99", nil); err != nil {
		t.Fatalf("AddEntity() error = %v", err)
	}

	if err := svc.Rollback(ctx, jobID); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	restored, err := docs.GetField(ctx, "doc-42", "title")
	if err != nil {
		t.Fatalf("GetField() error = %v", err)
	}
	if restored != "X" {
		t.Fatalf("restored field = %q, want X", restored)
	}
	if _, err := docs.GetItem(ctx, "doc-99"); err == nil {
		t.Fatal("created document survived rollback")
	}

	job, err := svc.Get(ctx, jobID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.Status != ledger.StatusRolledBack {
		t.Fatalf("status = %q, want rolled_back", job.Status)
	}
}

func TestRollbackRestoresNavigationLabels(t *testing.T) {
	ctx := context.Background()
	nav := adapters.NewNavigationStore()
	nav.Seed(&interfaces.NavigationStructure{
		ID:   "menu-1",
		Name: "Main",
		Items: []interfaces.NavigationItem{
			{ID: "item-1", Label: "Startseite"},
		},
	})

	svc := newService(t, ledger.WithNavigationStore(nav))
	jobID := createJob(t, svc, ledger.ModeApply)

	if err := svc.AddBackup(ctx, jobID, ledger.BackupNavigation, "menu-1", map[string]string{"item-1": "Home"}); err != nil {
		t.Fatalf("AddBackup() error = %v", err)
	}

	if err := svc.Rollback(ctx, jobID); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	structure, err := nav.GetStructure(ctx, "menu-1")
	if err != nil {
		t.Fatalf("GetStructure() error = %v", err)
	}
	if structure.Items[0].Label != "Home" {
		t.Fatalf("label = %q, want Home", structure.Items[0].Label)
	}
}

func TestRollbackSkipsPreviewEntities(t *testing.T) {
	ctx := context.Background()
	docs := adapters.NewContentStore()
	docs.Seed(&interfaces.ContentItem{ID: "doc-1", Type: "page"})

	svc := newService(t, ledger.WithContentStore(docs))
	jobID := createJob(t, svc, ledger.ModePreview)

	if err := svc.AddEntity(ctx, jobID, ledger.EntityDocument+ledger.PreviewSuffix, "doc-1", map[string]ledger.FieldDiff{
		"title": {Original: "Home", Translated: "Startseite"},
	}); err != nil {
		t.Fatalf("AddEntity() error = %v", err)
	}

	if err := svc.Rollback(ctx, jobID); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if _, err := docs.GetItem(ctx, "doc-1"); err != nil {
		t.Fatalf("preview entity was deleted by rollback: %v", err)
	}
}

func TestRollbackUnknownJobSurfacesNotFound(t *testing.T) {
	svc := newService(t)

	var notFound *ledger.NotFoundError
	err := svc.Rollback(context.Background(), "3b4c1c70-0000-0000-0000-000000000000")
	if !errors.As(err, &notFound) {
		t.Fatalf("Rollback() error = %v, want NotFoundError", err)
	}
}

func TestRolledBackJobIsFrozen(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	jobID := createJob(t, svc, ledger.ModeApply)

	if err := svc.Rollback(ctx, jobID); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if err := svc.Rollback(ctx, jobID); !errors.Is(err, ledger.ErrJobRolledBack) {
		t.Fatalf("second Rollback() error = %v, want ErrJobRolledBack", err)
	}
	if err := svc.SetStatus(ctx, jobID, ledger.StatusCompleted); !errors.Is(err, ledger.ErrJobRolledBack) {
		t.Fatalf("SetStatus() error = %v, want ErrJobRolledBack", err)
	}
	if err := svc.AddError(ctx, jobID, "late"); !errors.Is(err, ledger.ErrJobRolledBack) {
		t.Fatalf("AddError() error = %v, want ErrJobRolledBack", err)
	}
}

func TestRetentionEvictsOldestJobs(t *testing.T) {
	current := fixedTime
	svc := ledger.NewService(ledger.NewMemoryRepository(),
		ledger.WithMaxJobs(20),
		ledger.WithClock(func() time.Time {
			current = current.Add(time.Second)
			return current
		}),
	)
	ctx := context.Background()

	ids := make([]string, 0, 21)
	for i := 0; i < 21; i++ {
		id, err := svc.Create(ctx, fmt.Sprintf("pages-%d", i), "de", ledger.ModeApply, "deepl")
		if err != nil {
			t.Fatalf("Create() %d error = %v", i, err)
		}
		ids = append(ids, id)
	}

	jobs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(jobs) != 20 {
		t.Fatalf("retained %d jobs, want 20", len(jobs))
	}

	var notFound *ledger.NotFoundError
	if _, err := svc.Get(ctx, ids[0]); !errors.As(err, &notFound) {
		t.Fatalf("oldest job still present, Get() error = %v", err)
	}
	if _, err := svc.Get(ctx, ids[20]); err != nil {
		t.Fatalf("newest job missing: %v", err)
	}
}
