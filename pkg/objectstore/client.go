package objectstore

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/zeebo/errs"

	"github.com/goesarchive/goescat/pkg/log"
	"github.com/goesarchive/goescat/pkg/metrics"
)

// Class groups this package's errors (§10.2).
var Class = errs.Class("objectstore")

// ErrNotFound means the object store reported the key doesn't exist; this
// is non-retryable per §4.2.
var ErrNotFound = Class.New("object not found")

// ErrPermissionDenied is non-retryable per §4.2.
var ErrPermissionDenied = Class.New("permission denied")

const (
	maxAttempts  = 3
	backoffBase  = time.Second
	minReadChunk = 1 << 20 // 1 MB, §4.2
)

// Object is one entry returned by List.
type Object struct {
	Key  string
	Size int64
}

// Client is a read-only client against a public, unsigned HTTP object
// store (§4.2), built on minio-go/v7 the way storj's own object-storage
// services do.
type Client struct {
	mc      *minio.Client
	breaker *circuitBreaker
}

// NewClient dials endpoint anonymously — GOES buckets are public and
// require no signing (§9 Open Question: signed access).
func NewClient(endpoint string, secure bool) (*Client, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewAnonymous(),
		Secure: secure,
	})
	if err != nil {
		return nil, Class.Wrap(err)
	}
	return &Client{
		mc:      mc,
		breaker: newCircuitBreaker(5, 30*time.Second),
	}, nil
}

// List enumerates objects under prefix in bucket, paginated internally by
// minio-go, returning a flat slice of (key, size) pairs (§4.2).
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	var objects []Object
	err := c.withBreaker(ctx, "list", func() error {
		objects = nil
		opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
		for info := range c.mc.ListObjects(ctx, bucket, opts) {
			if info.Err != nil {
				return classifyErr(info.Err)
			}
			objects = append(objects, Object{Key: info.Key, Size: info.Size})
		}
		return nil
	})
	return objects, err
}

// Get streams the object body. Callers must Close the returned reader.
// The body is intended to be consumed in >=1 MB chunks (§4.2); callers
// that need a buffered reader should wrap with bufio.NewReaderSize(r,
// minReadChunk) — exported as Get's documented contract rather than
// forced here so callers can stream straight to disk.
func (c *Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	var obj *minio.Object
	err := c.withBreaker(ctx, "get", func() error {
		o, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return classifyErr(err)
		}
		if _, err := o.Stat(); err != nil {
			o.Close()
			return classifyErr(err)
		}
		obj = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// withBreaker runs fn with the retry policy and circuit breaker from
// §4.2, recording throughput/error metrics.
func (c *Client) withBreaker(ctx context.Context, op string, fn func() error) error {
	if _, err := c.breaker.allow(); err != nil {
		return err
	}

	timer := metricsTimer()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			c.breaker.recordSuccess()
			metrics.ObjectStoreRequestDuration.WithLabelValues(op).Observe(timer())
			metrics.CircuitBreakerState.Set(c.breaker.gaugeValue())
			return nil
		}
		if !isRetryable(lastErr) {
			break
		}
		if attempt < maxAttempts {
			wait := time.Duration(float64(backoffBase) * math.Pow(2, float64(attempt-1)))
			log.WithComponent("objectstore").Debug().Msg("retrying object store request after transient error")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = maxAttempts
			}
		}
	}
	c.breaker.recordFailure()
	metrics.CircuitBreakerState.Set(c.breaker.gaugeValue())
	return lastErr
}

func metricsTimer() func() float64 {
	start := time.Now()
	return func() float64 { return time.Since(start).Seconds() }
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "AccessDenied":
		return false
	case "SlowDown", "RequestTimeout", "InternalError", "ServiceUnavailable":
		return true
	}
	return true
}

func classifyErr(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	case "AccessDenied":
		return ErrPermissionDenied
	}
	return Class.Wrap(err)
}
