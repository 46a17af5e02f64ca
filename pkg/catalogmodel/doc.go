// Package catalogmodel defines the entities persisted by the catalog store
// (pkg/catalog): jobs and their logs, catalogued GOES frames, collections,
// tags, the reusable preset kinds, fetch schedules, cleanup rules, derived
// animation/composite artifacts, share links, notifications and settings.
//
// Types here carry json tags because they are the wire shape returned by
// the HTTP API (pkg/httpapi) as well as the row shape stored by
// pkg/catalog/catalogdb. Nothing in this package talks to a database or a
// socket — it is pure data plus the small validation helpers that apply
// regardless of storage backend.
package catalogmodel
