package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Mode distinguishes dry runs from runs that write the content store.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeApply   Mode = "apply"
)

// Status tracks a job through its lifecycle. RolledBack is terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPreview    Status = "preview"
	StatusCompleted  Status = "completed"
	StatusRolledBack Status = "rolled_back"
)

// Backup types recognized by rollback.
const (
	BackupDocument   = "document"
	BackupNavigation = "navigation_structure"
)

// Entity types recognized by rollback. Preview entities carry the
// PreviewSuffix and are never written to the content store.
const (
	EntityDocument   = "document"
	EntityNavigation = "navigation_structure"
	PreviewSuffix    = "_preview"
)

// FieldDiff pairs a source value with its translation for operator review.
type FieldDiff struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
}

// EntityRecord tracks one entity a job created or staged. Preview records
// exist only for review and are skipped by rollback deletion.
type EntityRecord struct {
	Type      string               `json:"type"`
	ID        string               `json:"id"`
	Preview   map[string]FieldDiff `json:"preview,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// IsPreview reports whether the record was staged for review only.
func (e EntityRecord) IsPreview() bool {
	return strings.HasSuffix(e.Type, PreviewSuffix)
}

// BackupRecord snapshots prior values sufficient to undo one write. For
// documents Data maps field key to prior value; for navigation structures it
// maps item id to prior label.
type BackupRecord struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Data       map[string]string `json:"data"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// Job is the ledger record for one translation run.
type Job struct {
	bun.BaseModel `bun:"table:translation_jobs,alias:tj"`

	ID             uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Type           string         `bun:"type,notnull" json:"type"`
	Mode           Mode           `bun:"mode,notnull" json:"mode"`
	TargetLanguage string         `bun:"target_language,notnull" json:"target_language"`
	ProviderKey    string         `bun:"provider_key,notnull" json:"provider_key"`
	Status         Status         `bun:"status,notnull,default:'pending'" json:"status"`
	Entities       []EntityRecord `bun:"entities,type:jsonb" json:"entities,omitempty"`
	Backups        []BackupRecord `bun:"backups,type:jsonb" json:"backups,omitempty"`
	Errors         []string       `bun:"errors,type:jsonb" json:"errors,omitempty"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (j *Job) clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	out.Entities = cloneEntities(j.Entities)
	out.Backups = cloneBackups(j.Backups)
	out.Errors = append([]string(nil), j.Errors...)
	return &out
}

func cloneEntities(in []EntityRecord) []EntityRecord {
	if in == nil {
		return nil
	}
	out := make([]EntityRecord, len(in))
	for i, rec := range in {
		out[i] = rec
		if rec.Preview != nil {
			preview := make(map[string]FieldDiff, len(rec.Preview))
			for k, v := range rec.Preview {
				preview[k] = v
			}
			out[i].Preview = preview
		}
	}
	return out
}

func cloneBackups(in []BackupRecord) []BackupRecord {
	if in == nil {
		return nil
	}
	out := make([]BackupRecord, len(in))
	for i, rec := range in {
		out[i] = rec
		if rec.Data != nil {
			data := make(map[string]string, len(rec.Data))
			for k, v := range rec.Data {
				data[k] = v
			}
			out[i].Data = data
		}
	}
	return out
}

// Repository persists jobs. List returns jobs ordered by creation time,
// oldest first.
type Repository interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context) ([]*Job, error)
	Update(ctx context.Context, job *Job) (*Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
