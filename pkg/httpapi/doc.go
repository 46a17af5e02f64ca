// Package httpapi is the C10 component: thin HTTP handlers over the
// catalog store, job runtime, retention engine, and composite/animation
// pipelines, plus the C8 WebSocket live-events bridge. Validation,
// pagination and error envelopes live here; the actual work is always
// delegated to pkg/catalog, pkg/jobrun, pkg/retention, pkg/composite and
// pkg/animation (§6, §4.8).
package httpapi
