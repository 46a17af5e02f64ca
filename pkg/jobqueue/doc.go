// Package jobqueue is the Redis-backed broker behind the C4 job runtime:
// a task queue with acknowledge-late semantics, prefetch-one delivery,
// and dead-lettering after repeated failed attempts (§4.4, §5).
//
// The Broker type is modeled on the pack's own Redis work-queue
// abstraction (Enqueue/Dequeue/Ack/Nack), narrowed to what pkg/jobrun
// actually needs: no consumer groups, no backend migration, no
// pluggable-backend factory, since this system only ever runs one
// backend (Redis) and one consumer group (a plain worker pool).
package jobqueue
