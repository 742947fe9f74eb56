package scheduler

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLeaseSingleHolder(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	first := NewRedisLease(client, "worker-lease", time.Minute)
	second := NewRedisLease(client, "worker-lease", time.Minute)

	held, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, held)

	// Re-acquiring extends the holder's claim
	mr.FastForward(40 * time.Second)
	held, err = first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, time.Minute, mr.TTL("worker-lease"))

	// A non-holder cannot release someone else's lease
	require.NoError(t, second.Release(ctx))
	assert.True(t, mr.Exists("worker-lease"))

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("worker-lease"))

	held, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestRedisLeaseExpires(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	first := NewRedisLease(client, "worker-lease", time.Minute)
	second := NewRedisLease(client, "worker-lease", time.Minute)

	held, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, held)

	// Holder crashed and never released
	mr.FastForward(61 * time.Second)

	held, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = first.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, held)
}

// handoverHook runs fn once, just before the holder's extend command reaches Redis
type handoverHook struct {
	once sync.Once
	fn   func()
}

func (h *handoverHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *handoverHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		switch cmd.Name() {
		case "pexpire", "evalsha", "eval":
			h.once.Do(h.fn)
		}
		return next(ctx, cmd)
	}
}

func (h *handoverHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisLeaseExtendAfterHandover(t *testing.T) {
	mr, client := newRedis(t)
	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = other.Close() })
	ctx := context.Background()

	first := NewRedisLease(client, "worker-lease", time.Minute)
	second := NewRedisLease(other, "worker-lease", time.Minute)

	held, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, held)

	// The lease lapses and another process claims it while the holder is extending
	var secondHeld bool
	client.AddHook(&handoverHook{fn: func() {
		mr.FastForward(61 * time.Second)
		secondHeld, err = second.Acquire(ctx)
	}})

	held, herr := first.Acquire(ctx)
	require.NoError(t, herr)
	require.NoError(t, err)
	assert.True(t, secondHeld)
	assert.False(t, held)

	owner, gerr := mr.Get("worker-lease")
	require.NoError(t, gerr)
	assert.Equal(t, second.owner, owner)
	assert.Equal(t, time.Minute, mr.TTL("worker-lease"))
}

func TestRedisLeaseUnreachable(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	held, err := NewRedisLease(client, "worker-lease", time.Minute).Acquire(context.Background())
	assert.False(t, held)
	assert.Error(t, err)
}
