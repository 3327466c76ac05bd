package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "1", Type: task.Type()}, nil
}

func TestEnqueuerPurge(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, NewEnqueuer(client).Purge(context.Background(), "pdfs/u1/a.pdf"))
	require.Len(t, client.tasks, 1)
	assert.Equal(t, PurgeAttachmentTask, client.tasks[0].Type())

	var payload PurgePayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, "pdfs/u1/a.pdf", payload.ObjectKey)
}

func TestEnqueuerPurgeError(t *testing.T) {
	client := &fakeClient{err: errors.New("redis down")}
	err := NewEnqueuer(client).Purge(context.Background(), "k")
	assert.ErrorContains(t, err, "redis down")
}

func TestReconcileTask(t *testing.T) {
	task := NewReconcileTask(time.Hour)
	assert.Equal(t, ReconcileAttachmentsTask, task.Type())
	assert.Empty(t, task.Payload())
}
