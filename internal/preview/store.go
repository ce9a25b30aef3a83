package preview

import (
	"context"
	"time"

	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// DefaultTTL bounds how long a preview payload stays inspectable.
const DefaultTTL = time.Hour

const keyPrefix = "translate_preview_"

// Option mutates the store configuration.
type Option func(*Store)

// WithTTL overrides the snapshot expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger overrides the store logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is a short-lived holding area for a preview job's full payload,
// written once per job so an operator can inspect it before applying.
type Store struct {
	backend interfaces.CacheProvider
	ttl     time.Duration
	logger  interfaces.Logger
}

// NewStore constructs the preview store on top of a TTL key-value backend.
func NewStore(backend interfaces.CacheProvider, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ttl:     DefaultTTL,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores the full job snapshot under its id.
func (s *Store) Put(ctx context.Context, job *ledger.Job) error {
	return s.backend.Set(ctx, keyPrefix+job.ID.String(), job, s.ttl)
}

// Get returns the snapshot for the job id, reporting whether one is still
// held. Expired or missing snapshots return ok=false, not an error.
func (s *Store) Get(ctx context.Context, jobID string) (*ledger.Job, bool, error) {
	raw, err := s.backend.Get(ctx, keyPrefix+jobID)
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}
	job, ok := raw.(*ledger.Job)
	if !ok {
		s.logger.Warn("preview snapshot has unexpected type", "job_id", jobID)
		return nil, false, nil
	}
	return job, true, nil
}

// Clear drops the snapshot, typically after the job is applied or discarded.
func (s *Store) Clear(ctx context.Context, jobID string) error {
	return s.backend.Delete(ctx, keyPrefix+jobID)
}
