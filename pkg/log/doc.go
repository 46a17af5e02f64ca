// Package log is the single place every binary in this repository
// (cmd/api, cmd/worker, cmd/beat) configures and obtains its zerolog
// logger. Call Init once at startup, then either log through the
// package-level Logger directly or through a WithComponent/WithJobID/
// WithRequestID child logger so lines stay attributable once several
// subsystems are writing to the same stream.
//
// Log lines are not copied into the catalog: GET /api/jobs/{id}/logs
// serves only JobLog rows written through catalog.Store.AppendJobLog, and
// nothing in this repository (jobrun included) calls it.
package log
