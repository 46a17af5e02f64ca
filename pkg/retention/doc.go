// Package retention is the C6 retention engine: given the active
// CleanupRules it computes a set of frame ids to delete (per-rule
// max_age_days / max_storage_gb, each narrowed by a protect_collections
// set), then exposes a dry-run Preview and a mutating Run (§4.6).
//
// Both entry points stream ids from pkg/catalog.Store rather than
// loading full GoesFrame rows, mirroring the streaming-id-list
// discipline the spec calls out explicitly to avoid OOM on large
// catalogs; the teacher has no equivalent cleanup pass to ground this
// against; the stream-ids-not-rows shape is taken directly from the
// Store interface's already-streaming ListFrameIDsForRetention/
// ListAllFrameIDsOrderedByAge methods (§4.1).
package retention
