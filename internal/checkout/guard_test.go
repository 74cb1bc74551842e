package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuardAcquireRelease(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "checkout:a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, "checkout:a")
	require.NoError(t, err)
	assert.False(t, ok)

	g.Release(ctx, "checkout:a")

	ok, err = g.Acquire(ctx, "checkout:a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryGuardKeysAreIndependent(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "checkout:a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, "checkout:b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryGuardExpiredHoldIsReacquirable(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "checkout:a")
	require.NoError(t, err)
	require.True(t, ok)

	// Backdate the hold past its TTL.
	g.mu.Lock()
	g.held["checkout:a"] = time.Now().Add(-time.Second)
	g.mu.Unlock()

	ok, err = g.Acquire(ctx, "checkout:a")
	require.NoError(t, err)
	assert.True(t, ok)
}
