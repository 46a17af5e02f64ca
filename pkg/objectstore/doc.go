// Package objectstore is the C2 component: a read-only client against
// public, unsigned HTTP object stores, wrapping minio-go/v7 with the
// retry policy and circuit breaker from §4.2.
package objectstore
