package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/attachment"
	"github.com/dharsanguruparan/coedash/internal/queue"
)

// Sweeper removes unreferenced attachment objects.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	purger  attachment.Purger
	sweeper Sweeper
	logger  *zap.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(purger attachment.Purger, sweeper Sweeper, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{purger: purger, sweeper: sweeper, logger: logger.Named("worker")}
}

// Handler registers the attachment job handlers.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.PurgeAttachmentTask, p.handlePurge)
	mux.HandleFunc(queue.ReconcileAttachmentsTask, p.handleReconcile)
	return mux
}

func (p *Processor) handlePurge(ctx context.Context, task *asynq.Task) error {
	var payload queue.PurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
	}
	if payload.ObjectKey == "" {
		return fmt.Errorf("empty object key: %w", asynq.SkipRetry)
	}
	if err := p.purger.Purge(ctx, payload.ObjectKey); err != nil {
		p.logger.Warn("purge failed", zap.String("key", payload.ObjectKey), zap.Error(err))
		return err
	}
	p.logger.Info("object purged", zap.String("key", payload.ObjectKey))
	return nil
}

func (p *Processor) handleReconcile(ctx context.Context, _ *asynq.Task) error {
	removed, err := p.sweeper.Sweep(ctx)
	if err != nil {
		p.logger.Error("reconcile failed", zap.Error(err))
		return err
	}
	p.logger.Debug("reconcile done", zap.Int("removed", removed))
	return nil
}
