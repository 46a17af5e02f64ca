// Package catalog is the C1 component: a transactional relational store
// over every entity in pkg/catalogmodel. HTTP handlers use it from async
// request-scoped contexts; pkg/jobrun, pkg/beat and pkg/retention use it
// from long-lived background goroutines. Every method threads a
// context.Context so both call styles share one cancellation story.
package catalog
