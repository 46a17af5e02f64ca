package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/errs"

	"github.com/goesarchive/goescat/pkg/log"
)

// Class groups this package's errors (§10.2).
var Class = errs.Class("events")

// GlobalTopic carries terminal job_{status} messages for the global
// WebSocket endpoint (§4.4, §4.8).
const GlobalTopic = "goescat:events:global"

// JobTopic returns the per-job topic name a progress message is
// published to.
func JobTopic(jobID string) string {
	return "goescat:events:job:" + jobID
}

// ProgressMessage is the ephemeral per-job message published on
// JobTopic(jobID) (§4.4).
type ProgressMessage struct {
	JobID    string `json:"job_id"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Status   string `json:"status"`
}

// TerminalMessage is published on GlobalTopic when a job reaches a
// terminal status (§4.4).
type TerminalMessage struct {
	Type    string `json:"type"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// Publisher publishes JSON-encoded messages to Redis pub/sub topics.
// Publishing failures are logged at debug level and never returned as
// fatal by callers (§4.4: "Publishing failures ... never abort the
// job").
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher wraps an existing Redis client (shared with pkg/jobqueue's
// connection pool at the cmd/* wiring layer).
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// PublishProgress sends msg to JobTopic(msg.JobID). Errors are logged and
// swallowed; see package doc.
func (p *Publisher) PublishProgress(ctx context.Context, msg ProgressMessage) {
	p.publish(ctx, JobTopic(msg.JobID), msg)
}

// PublishTerminal sends msg to GlobalTopic.
func (p *Publisher) PublishTerminal(ctx context.Context, msg TerminalMessage) {
	p.publish(ctx, GlobalTopic, msg)
}

func (p *Publisher) publish(ctx context.Context, topic string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.WithComponent("events").Debug().Err(err).Msg("marshal failed")
		return
	}
	if err := p.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		log.WithComponent("events").Debug().Err(err).Str("topic", topic).Msg("publish failed")
	}
}

// Subscription wraps a Redis pub/sub subscription for one topic, used by
// the live events bridge (C8).
type Subscription struct {
	ps *redis.PubSub
}

// Subscribe opens a subscription to topic. Callers must call Close when
// done.
func Subscribe(ctx context.Context, rdb *redis.Client, topic string) *Subscription {
	return &Subscription{ps: rdb.Subscribe(ctx, topic)}
}

// Receive polls for the next message, returning (nil, nil) on timeout so
// the bridge's writer loop can interleave ping checks (§4.8 step 5).
func (s *Subscription) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	msg, err := s.ps.ReceiveMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, Class.Wrap(err)
	}
	return []byte(msg.Payload), nil
}

// Close unsubscribes and releases the connection.
func (s *Subscription) Close() error {
	return s.ps.Close()
}
