package ledger

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewJobRepository builds the low-level bun repository for jobs.
func NewJobRepository(db *bun.DB) repository.Repository[*Job] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Job]{
		NewRecord: func() *Job { return &Job{} },
		GetID: func(j *Job) uuid.UUID {
			return j.ID
		},
		SetID: func(j *Job, id uuid.UUID) {
			j.ID = id
		},
		GetIdentifier: func() string {
			return ""
		},
		GetIdentifierValue: func(*Job) string {
			return ""
		},
	})
}

// BunRepository persists jobs in a relational store.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Job]
}

var _ Repository = (*BunRepository)(nil)

// NewBunRepository constructs a job repository backed by bun.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a job repository backed by bun with
// optional read-through caching.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewJobRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunRepository{db: db, repo: base}
}

func (r *BunRepository) Create(ctx context.Context, job *Job) (*Job, error) {
	created, err := r.repo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("job repository error: %w", err)
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return result, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Job, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("tj.created_at ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("job repository error: %w", err)
	}
	return records, nil
}

func (r *BunRepository) Update(ctx context.Context, job *Job) (*Job, error) {
	updated, err := r.repo.Update(ctx, job,
		repository.UpdateByID(job.ID.String()),
		repository.UpdateColumns(
			"status",
			"entities",
			"backups",
			"errors",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, job.ID.String())
	}
	return updated, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Job{ID: id}); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{ID: key}
	}
	return fmt.Errorf("job repository error: %w", err)
}
