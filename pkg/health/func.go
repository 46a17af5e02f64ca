package health

import (
	"context"
	"time"
)

// FuncChecker adapts an arbitrary probe function (a Postgres ping, a Redis
// PING, a directory-exists check) to the Checker interface so /api/health/detailed
// can report on dependencies that have no generic protocol-level checker.
type FuncChecker struct {
	Name string
	Fn   func(ctx context.Context) error
}

// NewFuncChecker creates a new function-based health checker.
func NewFuncChecker(name string, fn func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{Name: name, Fn: fn}
}

// Check performs the probe.
func (f *FuncChecker) Check(ctx context.Context) Result {
	start := time.Now()
	err := f.Fn(ctx)
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   f.Name + ": " + err.Error(),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	return Result{
		Healthy:   true,
		Message:   f.Name + ": ok",
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Type returns the health check type.
func (f *FuncChecker) Type() CheckType {
	return CheckTypeFunc
}
