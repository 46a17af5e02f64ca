// Package jobrun is the worker-pool job runtime (C4): it dequeues tasks
// from pkg/jobqueue, drives the registered handler for the job's type,
// reports progress over a durable (catalog) and an ephemeral (pkg/events)
// channel, and owns cancellation and stale-job reaping (§4.4).
//
// The dequeue/dispatch loop follows the ticker-plus-stopCh shape the pack
// uses for its own background loops (cuemby-warren's pkg/worker
// heartbeat/executor loops), generalized from a fixed poll interval to a
// blocking broker Dequeue call.
package jobrun
