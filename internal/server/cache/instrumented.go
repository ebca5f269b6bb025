package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented counts operations of the wrapped cache by outcome in ops,
// a counter vector labelled (operation, status).
type Instrumented struct {
	next Cache
	ops  *prometheus.CounterVec
}

func NewInstrumented(next Cache, ops *prometheus.CounterVec) *Instrumented {
	return &Instrumented{next: next, ops: ops}
}

func (c *Instrumented) observe(op string, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrCacheMiss):
		status = "miss"
	case err != nil:
		status = "error"
	}
	c.ops.WithLabelValues(op, status).Inc()
}

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.next.Get(ctx, key)
	c.observe("get", err)
	return v, err
}

func (c *Instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.next.Set(ctx, key, value, ttl)
	c.observe("set", err)
	return err
}

func (c *Instrumented) Delete(ctx context.Context, keys ...string) error {
	err := c.next.Delete(ctx, keys...)
	c.observe("delete", err)
	return err
}

func (c *Instrumented) DeleteByPattern(ctx context.Context, pattern string) error {
	err := c.next.DeleteByPattern(ctx, pattern)
	c.observe("invalidate", err)
	return err
}
