package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/errs"

	"github.com/goesarchive/goescat/pkg/log"
)

// Class groups this package's errors (§10.2).
var Class = errs.Class("jobqueue")

const (
	queueKey      = "goescat:jobqueue:pending"
	processingKey = "goescat:jobqueue:processing"
	taskHashKey   = "goescat:jobqueue:tasks"
	revokedKey    = "goescat:jobqueue:revoked"
)

// maxAttempts is the dead-letter threshold from §4.4 ("after 3 attempts
// they are marked failed").
const maxAttempts = 3

// Task is one unit of work dispatched through the broker. JobID is the
// catalog job this task drives; the broker itself is job-type agnostic.
type Task struct {
	ID       string `json:"id"`
	JobID    string `json:"job_id"`
	Attempts int    `json:"attempts"`
}

// Broker is the Redis-backed reliable queue: Enqueue pushes to a pending
// list, Dequeue atomically moves one task to a processing list
// (prefetch-one, acknowledge-late per §4.4), Ack removes it, Nack
// requeues or dead-letters it depending on attempt count.
type Broker struct {
	rdb *redis.Client
}

// NewBroker connects to redisURL (a redis:// connection string).
func NewBroker(redisURL string) (*Broker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, Class.Wrap(err)
	}
	return &Broker{rdb: redis.NewClient(opts)}, nil
}

// Enqueue dispatches a new task for jobID and returns the assigned task
// id, which the caller stores on the Job row before the first progress
// publish (§3 invariant, §4.4 lifecycle).
func (b *Broker) Enqueue(ctx context.Context, jobID string) (string, error) {
	task := Task{ID: fmt.Sprintf("%s-%d", jobID, time.Now().UnixNano()), JobID: jobID, Attempts: 0}
	payload, err := json.Marshal(task)
	if err != nil {
		return "", err
	}
	pipe := b.rdb.TxPipeline()
	pipe.HSet(ctx, taskHashKey, task.ID, payload)
	pipe.LPush(ctx, queueKey, task.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", Class.Wrap(err)
	}
	return task.ID, nil
}

// Dequeue blocks up to timeout for one task. It does not itself limit how
// many tasks a caller holds; prefetch-one comes from pkg/jobrun's worker
// loops, each of which holds one task at a time.
func (b *Broker) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	taskID, err := b.rdb.BLMove(ctx, queueKey, processingKey, "right", "left", timeout).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, Class.Wrap(err)
	}

	revoked, err := b.rdb.SIsMember(ctx, revokedKey, taskID).Result()
	if err != nil {
		return nil, Class.Wrap(err)
	}
	if revoked {
		b.rdb.LRem(ctx, processingKey, 1, taskID)
		b.rdb.SRem(ctx, revokedKey, taskID)
		return nil, nil
	}

	raw, err := b.rdb.HGet(ctx, taskHashKey, taskID).Result()
	if err != nil {
		return nil, Class.Wrap(err)
	}
	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Ack acknowledges successful completion; only called after the task
// finishes, implementing the acknowledge-late guarantee from §4.4.
func (b *Broker) Ack(ctx context.Context, task *Task) error {
	pipe := b.rdb.TxPipeline()
	pipe.LRem(ctx, processingKey, 1, task.ID)
	pipe.HDel(ctx, taskHashKey, task.ID)
	_, err := pipe.Exec(ctx)
	return Class.Wrap(err)
}

// Nack reports that task failed. Below maxAttempts it is re-queued;
// otherwise it is dropped from processing and the caller (pkg/jobrun)
// marks the job failed (dead-letter, §4.4).
func (b *Broker) Nack(ctx context.Context, task *Task) (deadLettered bool, err error) {
	task.Attempts++
	payload, err := json.Marshal(task)
	if err != nil {
		return false, err
	}

	pipe := b.rdb.TxPipeline()
	pipe.LRem(ctx, processingKey, 1, task.ID)
	if task.Attempts >= maxAttempts {
		pipe.HDel(ctx, taskHashKey, task.ID)
	} else {
		pipe.HSet(ctx, taskHashKey, task.ID, payload)
		pipe.LPush(ctx, queueKey, task.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, Class.Wrap(err)
	}
	return task.Attempts >= maxAttempts, nil
}

// Revoke best-effort-signals that taskID should not run (or should stop
// cooperatively); Dequeue checks this set before returning a task (§4.4
// cancellation step 1).
func (b *Broker) Revoke(ctx context.Context, taskID string) error {
	if err := b.rdb.SAdd(ctx, revokedKey, taskID).Err(); err != nil {
		return Class.Wrap(err)
	}
	b.rdb.Expire(ctx, revokedKey, 24*time.Hour)
	return nil
}

// IsRevoked lets a long-running task body poll for cooperative
// cancellation between steps.
func (b *Broker) IsRevoked(ctx context.Context, taskID string) bool {
	ok, err := b.rdb.SIsMember(ctx, revokedKey, taskID).Result()
	if err != nil {
		log.WithComponent("jobqueue").Debug().Err(err).Msg("revoke check failed")
		return false
	}
	return ok
}

// RequeueOrphaned moves every task in the processing list back to
// pending, whether or not a worker still holds it. Nothing in this
// repository calls it; the stale-job reaper in pkg/jobrun does not.
func (b *Broker) RequeueOrphaned(ctx context.Context) (int, error) {
	ids, err := b.rdb.LRange(ctx, processingKey, 0, -1).Result()
	if err != nil {
		return 0, Class.Wrap(err)
	}
	n := 0
	for range ids {
		if _, err := b.rdb.LMove(ctx, processingKey, queueKey, "right", "left").Result(); err == nil {
			n++
		}
	}
	return n, nil
}

// Close releases the Redis connection.
func (b *Broker) Close() error {
	return b.rdb.Close()
}
