package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/sisterblooms/storefront-backend/pkg/logger"
	"github.com/sisterblooms/storefront-backend/pkg/metrics"
)

const (
	pruneJobName     = "storage-prune"
	defaultRetention = 30 * 24 * time.Hour
)

type pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PruneJobParams struct {
	Logger    *logger.Logger
	Storage   pruner
	Metrics   *metrics.JanitorMetrics
	Retention time.Duration
}

// PruneJob deletes carts and delivery choices nobody has touched within the
// retention window.
type PruneJob struct {
	logg      *logger.Logger
	storage   pruner
	metrics   *metrics.JanitorMetrics
	retention time.Duration
	now       func() time.Time
}

func NewPruneJob(params PruneJobParams) (*PruneJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	return &PruneJob{
		logg:      params.Logger,
		storage:   params.Storage,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

func (j *PruneJob) Name() string { return pruneJobName }

func (j *PruneJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	removed, err := j.storage.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("storage prune: %w", err)
	}
	j.metrics.AddRemoved(pruneJobName, removed)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": removed,
	}), "idle storage pruned")
	return nil
}
