package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type fragmentPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error)
}

// RetentionJob removes fragments of repositories that were ingested
// longer ago than the retention window, so stale code does not keep
// answering questions forever.
type RetentionJob struct {
	fragments fragmentPruner
	maxAge    time.Duration
}

func NewRetentionJob(fragments fragmentPruner, maxAgeDays int) *RetentionJob {
	return &RetentionJob{
		fragments: fragments,
		maxAge:    time.Duration(maxAgeDays) * 24 * time.Hour,
	}
}

func (j *RetentionJob) Name() string {
	return "fragment_retention"
}

func (j *RetentionJob) Run(ctx context.Context) error {
	if j.fragments == nil || j.maxAge <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-j.maxAge).Unix()
	deleted, err := j.fragments.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("stale fragments pruned",
			zap.Int64("deleted", deleted),
			zap.Int64("cutoff", cutoff),
		)
	}
	return nil
}
