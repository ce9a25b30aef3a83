package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// DefaultMaxJobs bounds retained job history.
const DefaultMaxJobs = 20

// Option mutates the service configuration.
type Option func(*Service)

// WithMaxJobs overrides the retention cap.
func WithMaxJobs(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxJobs = max
		}
	}
}

// WithLogger overrides the ledger logger.
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

// WithIDGenerator overrides how job ids are minted.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithContentStore attaches the document store rollback writes through.
func WithContentStore(store interfaces.ContentStore) Option {
	return func(s *Service) {
		s.documents = store
	}
}

// WithNavigationStore attaches the menu store rollback writes through.
func WithNavigationStore(store interfaces.NavigationStore) Option {
	return func(s *Service) {
		s.navigation = store
	}
}

// Service owns the job ledger. Mutations are serialized so concurrent
// entity processing within one run never interleaves partial appends.
type Service struct {
	mu         sync.Mutex
	repo       Repository
	maxJobs    int
	logger     interfaces.Logger
	now        func() time.Time
	newID      func() uuid.UUID
	documents  interfaces.ContentStore
	navigation interfaces.NavigationStore
}

// NewService constructs the ledger service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		maxJobs: DefaultMaxJobs,
		logger:  logging.NoOp(),
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new pending job and returns its id. Creation enforces the
// retention cap by evicting the oldest jobs beyond it.
func (s *Service) Create(ctx context.Context, jobType, targetLang string, mode Mode, providerKey string) (string, error) {
	if jobType == "" {
		return "", ErrJobTypeRequired
	}
	if targetLang == "" {
		return "", ErrTargetLangRequired
	}
	if mode != ModePreview && mode != ModeApply {
		return "", ErrModeInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	job := &Job{
		ID:             s.newID(),
		Type:           jobType,
		Mode:           mode,
		TargetLanguage: targetLang,
		ProviderKey:    providerKey,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return "", err
	}

	if err := s.enforceRetention(ctx); err != nil {
		s.logger.Warn("job retention sweep failed", "error", err)
	}

	return created.ID.String(), nil
}

// enforceRetention evicts the oldest-created jobs over the cap. Caller holds
// the service lock.
func (s *Service) enforceRetention(ctx context.Context) error {
	jobs, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for len(jobs) > s.maxJobs {
		oldest := jobs[0]
		if err := s.repo.Delete(ctx, oldest.ID); err != nil {
			return err
		}
		s.logger.Debug("evicted job over retention cap", "job_id", oldest.ID.String())
		jobs = jobs[1:]
	}
	return nil
}

// AddEntity appends a created or staged entity to the job.
func (s *Service) AddEntity(ctx context.Context, jobID, entityType, entityID string, preview map[string]FieldDiff) error {
	return s.mutate(ctx, jobID, func(job *Job) error {
		job.Entities = append(job.Entities, EntityRecord{
			Type:      entityType,
			ID:        entityID,
			Preview:   preview,
			CreatedAt: s.now(),
		})
		return nil
	})
}

// AddBackup records prior values before an overwrite. Only the first backup
// per (type, id, field) within a job is kept, so replaying backups in
// recorded order restores the true pre-job value even when two services
// overwrite the same field.
func (s *Service) AddBackup(ctx context.Context, jobID, backupType, entityID string, data map[string]string) error {
	return s.mutate(ctx, jobID, func(job *Job) error {
		for i := range job.Backups {
			existing := &job.Backups[i]
			if existing.Type != backupType || existing.ID != entityID {
				continue
			}
			for key, value := range data {
				if _, seen := existing.Data[key]; !seen {
					existing.Data[key] = value
				}
			}
			return nil
		}
		copied := make(map[string]string, len(data))
		for key, value := range data {
			copied[key] = value
		}
		job.Backups = append(job.Backups, BackupRecord{
			Type:       backupType,
			ID:         entityID,
			Data:       copied,
			RecordedAt: s.now(),
		})
		return nil
	})
}

// SetStatus moves the job to the given status. Rolled-back jobs are frozen.
func (s *Service) SetStatus(ctx context.Context, jobID string, status Status) error {
	switch status {
	case StatusPending, StatusPreview, StatusCompleted, StatusRolledBack:
	default:
		return ErrStatusInvalid
	}
	return s.mutate(ctx, jobID, func(job *Job) error {
		job.Status = status
		return nil
	})
}

// AddError appends a non-fatal error message to the job log.
func (s *Service) AddError(ctx context.Context, jobID, message string) error {
	return s.mutate(ctx, jobID, func(job *Job) error {
		job.Errors = append(job.Errors, message)
		return nil
	})
}

// Get returns the job by id.
func (s *Service) Get(ctx context.Context, jobID string) (*Job, error) {
	id, err := parseJobID(jobID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all retained jobs, oldest first.
func (s *Service) List(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// Rollback undoes the job: replays backups in recorded order, deletes
// entities the job created, and freezes the job as rolled back. An unknown
// id surfaces NotFoundError to the caller.
func (s *Service) Rollback(ctx context.Context, jobID string) error {
	id, err := parseJobID(jobID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status == StatusRolledBack {
		return ErrJobRolledBack
	}

	for _, backup := range job.Backups {
		if err := s.replayBackup(ctx, backup); err != nil {
			return err
		}
	}

	for _, entity := range job.Entities {
		if entity.IsPreview() {
			continue
		}
		if err := s.deleteEntity(ctx, entity); err != nil {
			return err
		}
	}

	job.Status = StatusRolledBack
	job.UpdatedAt = s.now()
	if _, err := s.repo.Update(ctx, job); err != nil {
		return err
	}

	s.logger.Info("job rolled back",
		"job_id", jobID,
		"backups", len(job.Backups),
		"entities", len(job.Entities),
	)
	return nil
}

func (s *Service) replayBackup(ctx context.Context, backup BackupRecord) error {
	switch backup.Type {
	case BackupDocument:
		if s.documents == nil {
			return ErrContentStoreRequired
		}
		for key, value := range backup.Data {
			if err := s.documents.WriteField(ctx, backup.ID, key, value); err != nil {
				return fmt.Errorf("restore document %s field %s: %w", backup.ID, key, err)
			}
		}
	case BackupNavigation:
		if s.navigation == nil {
			return ErrNavigationUnavailable
		}
		for itemID, label := range backup.Data {
			if err := s.navigation.SetItemLabel(ctx, backup.ID, itemID, label); err != nil {
				return fmt.Errorf("restore navigation %s item %s: %w", backup.ID, itemID, err)
			}
		}
	default:
		s.logger.Warn("skipping backup of unknown type", "type", backup.Type, "id", backup.ID)
	}
	return nil
}

func (s *Service) deleteEntity(ctx context.Context, entity EntityRecord) error {
	switch entity.Type {
	case EntityDocument:
		if s.documents == nil {
			return ErrContentStoreRequired
		}
		if err := s.documents.DeleteItem(ctx, entity.ID); err != nil {
			return fmt.Errorf("delete document %s: %w", entity.ID, err)
		}
	case EntityNavigation:
		if s.navigation == nil {
			return ErrNavigationUnavailable
		}
		if err := s.navigation.DeleteStructure(ctx, entity.ID); err != nil {
			return fmt.Errorf("delete navigation %s: %w", entity.ID, err)
		}
	default:
		s.logger.Warn("skipping entity of unknown type", "type", entity.Type, "id", entity.ID)
	}
	return nil
}

// mutate loads, changes, and persists one job under the service lock.
func (s *Service) mutate(ctx context.Context, jobID string, apply func(*Job) error) error {
	id, err := parseJobID(jobID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status == StatusRolledBack {
		return ErrJobRolledBack
	}
	if err := apply(job); err != nil {
		return err
	}
	job.UpdatedAt = s.now()
	_, err = s.repo.Update(ctx, job)
	return err
}

func parseJobID(jobID string) (uuid.UUID, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return uuid.Nil, &NotFoundError{ID: jobID}
	}
	return id, nil
}
