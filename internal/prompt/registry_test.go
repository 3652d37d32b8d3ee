package prompt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySingleFlight(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	first, ok := r.begin("p:v", now, func() {})
	require.True(t, ok)
	require.NotNil(t, first)

	second, ok := r.begin("p:v", now, func() {})
	assert.False(t, ok)
	assert.Nil(t, second)

	got, ok := r.lookup("p:v")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistryRemoveOwnership(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	first, _ := r.begin("p:v", now, func() {})
	assert.True(t, r.remove(first), "first removal owns the outcome")
	assert.False(t, r.remove(first), "second removal of the same task does not")

	// A replacement task under the same key is not confused with the
	// old one.
	replacement, ok := r.begin("p:v", now, func() {})
	require.True(t, ok)
	assert.False(t, r.remove(first))
	assert.True(t, r.remove(replacement))
	assert.Equal(t, 0, r.size())
}

func TestRegistryReap(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	oldCtx, oldCancel := context.WithCancel(context.Background())
	old, _ := r.begin("p:old", now.Add(-10*time.Second), oldCancel)

	_, youngCancel := context.WithCancel(context.Background())
	defer youngCancel()
	r.begin("p:young", now, youngCancel)

	reaped := r.reap(5*time.Second, now)
	assert.Equal(t, []string{"p:old"}, reaped)
	assert.Equal(t, 1, r.size())

	// The evicted task was canceled and no longer owns its key.
	assert.Error(t, oldCtx.Err())
	assert.False(t, r.remove(old))

	_, ok := r.lookup("p:young")
	assert.True(t, ok)
}

func TestTaskFinishWakesWaiters(t *testing.T) {
	r := NewRegistry()
	task, _ := r.begin("p:v", time.Now(), func() {})

	go task.finish("value", nil)

	select {
	case <-task.done:
		assert.Equal(t, "value", task.value)
		assert.NoError(t, task.err)
	case <-time.After(time.Second):
		t.Fatal("done was not closed")
	}
}
