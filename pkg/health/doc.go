/*
Package health provides the dependency checkers behind GET /api/health and
GET /api/health/detailed.

Five checker kinds implement the common Checker interface:

  - HTTPChecker: GET a URL, accept a status range (unused today, kept for
    probing an optional downstream webhook endpoint).
  - TCPChecker: dial an address (not wired by cmd/api; its Postgres and
    Redis checks are FuncCheckers).
  - ExecChecker: run a local command and check its exit code — used to
    confirm the external video encoder the animation pipeline (C7) shells
    out to is on PATH.
  - DiskChecker: statfs a path against a minimum free-bytes threshold — the
    same check the ingestion pipeline (C3) runs before every download.
  - FuncChecker: adapts an arbitrary probe (a catalog.Store ping, a
    directory-exists check) when none of the above fit.

/api/health/detailed runs one checker per dependency and reports each
dependency's healthy flag and message under its name, plus an overall
status that is "unhealthy" (HTTP 503) when any dependency is unhealthy.
*/
package health
