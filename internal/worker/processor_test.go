package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/coedash/internal/queue"
)

type recordingPurger struct {
	keys []string
	err  error
}

func (r *recordingPurger) Purge(_ context.Context, key string) error {
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, key)
	return nil
}

type countingSweeper struct {
	calls int
	err   error
}

func (c *countingSweeper) Sweep(context.Context) (int, error) {
	c.calls++
	return 2, c.err
}

func TestPurgeHandler(t *testing.T) {
	purger := &recordingPurger{}
	mux := NewProcessor(purger, &countingSweeper{}, nil).Handler()

	task, err := queue.NewPurgeTask("pdfs/u1/old.pdf")
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"pdfs/u1/old.pdf"}, purger.keys)
}

func TestPurgeHandlerBadPayloadSkipsRetry(t *testing.T) {
	mux := NewProcessor(&recordingPurger{}, &countingSweeper{}, nil).Handler()
	err := mux.ProcessTask(context.Background(), asynq.NewTask(queue.PurgeAttachmentTask, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = mux.ProcessTask(context.Background(), asynq.NewTask(queue.PurgeAttachmentTask, []byte(`{}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPurgeHandlerPropagatesFailure(t *testing.T) {
	purger := &recordingPurger{err: errors.New("minio down")}
	mux := NewProcessor(purger, &countingSweeper{}, nil).Handler()
	task, err := queue.NewPurgeTask("k")
	require.NoError(t, err)
	assert.ErrorContains(t, mux.ProcessTask(context.Background(), task), "minio down")
}

func TestReconcileHandler(t *testing.T) {
	sweeper := &countingSweeper{}
	mux := NewProcessor(&recordingPurger{}, sweeper, nil).Handler()
	require.NoError(t, mux.ProcessTask(context.Background(), queue.NewReconcileTask(0)))
	assert.Equal(t, 1, sweeper.calls)

	sweeper.err = errors.New("boom")
	assert.Error(t, mux.ProcessTask(context.Background(), queue.NewReconcileTask(0)))
}
