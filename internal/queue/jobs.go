package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// PurgeAttachmentTask removes an object that a record stopped linking to.
	PurgeAttachmentTask = "attachment:purge"
	// ReconcileAttachmentsTask sweeps objects that no record links to.
	ReconcileAttachmentsTask = "attachment:reconcile"
)

// PurgePayload names the object to remove.
type PurgePayload struct {
	ObjectKey string `json:"object_key"`
}

// TaskClient is the subset of *asynq.Client used for enqueueing.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer defers purges to the worker. It satisfies attachment.Purger.
type Enqueuer struct {
	client TaskClient
}

// NewEnqueuer wraps an asynq client.
func NewEnqueuer(client TaskClient) *Enqueuer {
	return &Enqueuer{client: client}
}

// Purge enqueues a purge job for key.
func (e *Enqueuer) Purge(ctx context.Context, key string) error {
	task, err := NewPurgeTask(key)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Timeout(time.Minute)); err != nil {
		return fmt.Errorf("enqueue purge task: %w", err)
	}
	return nil
}

// NewPurgeTask builds the purge task for key.
func NewPurgeTask(key string) (*asynq.Task, error) {
	data, err := json.Marshal(PurgePayload{ObjectKey: key})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(PurgeAttachmentTask, data), nil
}

// NewReconcileTask builds the periodic sweep task. Only one sweep is queued
// at a time.
func NewReconcileTask(interval time.Duration) *asynq.Task {
	return asynq.NewTask(ReconcileAttachmentsTask, nil, asynq.MaxRetry(0), asynq.Unique(interval))
}
