package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T, size int) *Pool {
	t.Helper()
	pool, err := NewPool(DefaultConfig(), size)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestPoolAcquireRelease(t *testing.T) {
	pool := newPool(t, 2)
	ctx := context.Background()

	runtime, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, PoolStats{Size: 2, Available: 1, InUse: 1}, pool.Stats())

	result, err := runtime.Execute(ctx, "42", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.Value)

	require.NoError(t, pool.Release(runtime))
	assert.Equal(t, PoolStats{Size: 2, Available: 2}, pool.Stats())
}

func TestPoolExecute(t *testing.T) {
	pool := newPool(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := pool.Execute(ctx, "6 * 7", nil)
		require.NoError(t, err, "iteration %d", i)
		assert.Equal(t, int64(42), result.Value)
	}
}

func TestPoolResetsBetweenRuns(t *testing.T) {
	pool := newPool(t, 1)
	ctx := context.Background()

	_, err := pool.Execute(ctx, "var leaked = 1", nil)
	require.NoError(t, err)

	result, err := pool.Execute(ctx, "typeof leaked", nil)
	require.NoError(t, err)
	assert.Equal(t, "undefined", result.Value)
}

func TestPoolLoad(t *testing.T) {
	pool := newPool(t, 1)

	page, err := ParsePage(`<html><body><script>document.body.textContent = 'loaded'</script></body></html>`)
	require.NoError(t, err)

	result, err := pool.Load(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, []string{"loaded"}, result.Output)
}

func TestPoolAcquireTimeout(t *testing.T) {
	pool := newPool(t, 1)
	pool.SetAcquireTimeout(20 * time.Millisecond)
	ctx := context.Background()

	held, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer pool.Release(held)

	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestPoolAcquireContextCancelled(t *testing.T) {
	pool := newPool(t, 1)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer pool.Release(held)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoolClosed(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 1)
	require.NoError(t, err)
	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())

	_, err = pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.True(t, pool.Stats().Closed)
}
