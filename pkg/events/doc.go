// Package events is the pub/sub transport shared by the job runtime (C4,
// producer) and the live events bridge (C8, consumer): a JSON message on
// topic job:{job_id} per progress update, plus a job_{status} message on
// the global topic for terminal transitions (§4.4, §4.8).
//
// It is adapted from the pack's own in-process Broker/Subscriber
// (cuemby-warren's pkg/events) but backed by Redis pub/sub so that the
// API, worker, and beat processes — each its own binary — share topics
// across process boundaries.
package events
