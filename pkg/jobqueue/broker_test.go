package jobqueue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	mr := miniredis.RunT(t)
	b, err := NewBroker("redis://" + mr.Addr())
	require.NoError(t, err)
	return b
}

func TestEnqueueDequeueAck(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker(t)

	taskID, err := b.Enqueue(ctx, "job-1")
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	task, err := b.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Equal(t, "job-1", task.JobID)
	require.Equal(t, 0, task.Attempts)

	require.NoError(t, b.Ack(ctx, task))

	task2, err := b.Dequeue(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, task2)
}

func TestNackRequeuesBelowMaxAttempts(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker(t)

	_, err := b.Enqueue(ctx, "job-2")
	require.NoError(t, err)

	task, err := b.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	dead, err := b.Nack(ctx, task)
	require.NoError(t, err)
	require.False(t, dead)

	requeued, err := b.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, requeued)
	require.Equal(t, 1, requeued.Attempts)
}

func TestNackDeadLettersAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker(t)

	_, err := b.Enqueue(ctx, "job-3")
	require.NoError(t, err)

	var dead bool
	for i := 0; i < maxAttempts; i++ {
		task, err := b.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, task)
		dead, err = b.Nack(ctx, task)
		require.NoError(t, err)
	}
	require.True(t, dead)

	none, err := b.Dequeue(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestRevokeSkipsDequeue(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker(t)

	taskID, err := b.Enqueue(ctx, "job-4")
	require.NoError(t, err)
	require.NoError(t, b.Revoke(ctx, taskID))

	task, err := b.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Nil(t, task)
}
