package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BuildRecord captures the outcome of one generator run. Records are derived
// state: losing them only costs the next build its incremental skips.
type BuildRecord struct {
	bun.BaseModel `bun:"table:build_records,alias:br"`

	ID            uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	OutputDir     string        `bun:"output_dir,notnull" json:"output_dir"`
	Documents     int           `bun:"documents,notnull,default:0" json:"documents"`
	PagesBuilt    int           `bun:"pages_built,notnull,default:0" json:"pages_built"`
	PagesSkipped  int           `bun:"pages_skipped,notnull,default:0" json:"pages_skipped"`
	AssetsBuilt   int           `bun:"assets_built,notnull,default:0" json:"assets_built"`
	AssetsSkipped int           `bun:"assets_skipped,notnull,default:0" json:"assets_skipped"`
	ErrorCount    int           `bun:"error_count,notnull,default:0" json:"error_count"`
	ManifestHash  string        `bun:"manifest_hash" json:"manifest_hash,omitempty"`
	DryRun        bool          `bun:"dry_run,notnull,default:false" json:"dry_run"`
	Duration      time.Duration `bun:"duration_ns" json:"duration_ns"`
	StartedAt     time.Time     `bun:"started_at,nullzero" json:"started_at"`
	CreatedAt     time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Succeeded reports whether the recorded build finished without failures.
func (r *BuildRecord) Succeeded() bool {
	return r != nil && r.ErrorCount == 0
}

func cloneRecord(record *BuildRecord) *BuildRecord {
	if record == nil {
		return nil
	}
	cloned := *record
	return &cloned
}
