package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumented_CountsOutcomes(t *testing.T) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ops"}, []string{"operation", "status"})
	c := NewInstrumented(mapCache{}, ops)
	ctx := context.Background()

	_, _ = c.Get(ctx, "k")
	_ = c.Set(ctx, "k", []byte("v"), time.Second)
	_, _ = c.Get(ctx, "k")
	_ = c.Delete(ctx, "k")
	_ = c.DeleteByPattern(ctx, "k*")

	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("set", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("delete", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("invalidate", "ok")))
}
