package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_PreservesInputOrder(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	pool := NewPool[int, int](3, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})

	var calls []int
	pool.OnProgress(func(done, total int) {
		calls = append(calls, done)
		assert.Equal(t, len(inputs), total)
	})

	tasks := pool.Execute(context.Background(), inputs)
	require.Len(t, tasks, len(inputs))
	for i, task := range tasks {
		assert.Equal(t, inputs[i], task.Input)
		assert.Equal(t, inputs[i]*inputs[i], task.Result)
		assert.NoError(t, task.Err)
		assert.False(t, task.Skipped)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, calls)
}

func TestPool_ErrorsStayWithTheirInput(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool[string, int](2, func(_ context.Context, s string) (int, error) {
		if s == "bad" {
			return 0, boom
		}
		return len(s), nil
	})

	tasks := pool.Execute(context.Background(), []string{"ok", "bad", "fine"})
	assert.NoError(t, tasks[0].Err)
	assert.ErrorIs(t, tasks[1].Err, boom)
	assert.Equal(t, 4, tasks[2].Result)
}

func TestPool_CancelledContextSkips(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var processed atomic.Int32
	pool := NewPool[int, int](0, func(context.Context, int) (int, error) {
		processed.Add(1)
		return 0, nil
	})

	tasks := pool.Execute(ctx, []int{1, 2, 3})
	require.Len(t, tasks, 3)
	skipped := 0
	for _, task := range tasks {
		if task.Skipped {
			skipped++
		}
	}
	assert.Equal(t, 3-int(processed.Load()), skipped)
}
