package rescore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueOrderAndDedup(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, "c1", "c2"))
	require.NoError(t, q.Push(ctx, "c2", "c3")) // c2 already waiting

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ids, err := q.Pop(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)

	// Popped ids may be queued again.
	require.NoError(t, q.Push(ctx, "c1"))
	ids, err = q.Pop(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "c1"}, ids)

	_, err = q.Pop(ctx, 1)
	assert.ErrorIs(t, err, ErrEmpty)
}
