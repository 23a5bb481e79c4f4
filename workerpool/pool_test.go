package workerpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitRunsTask(t *testing.T) {
	p := New(4)
	defer p.Close()

	done := make(chan struct{})
	err := p.Submit(func() { close(done) })
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted task never ran")
	}
}

func TestPool_ManyTasks(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 2_000
	var count int32
	for i := 0; i < n; i++ {
		require.NoError(t, p.Submit(func() { atomic.AddInt32(&count, 1) }))
	}

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == n
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPool_SubmitAfterCloseFails(t *testing.T) {
	p := New(2)
	require.NoError(t, p.Close())

	err := p.Submit(func() {})
	assert.Error(t, err)
}

func TestPool_PanicInTaskDoesNotKillWorker(t *testing.T) {
	p := New(1)
	defer p.Close()

	require.NoError(t, p.Submit(func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, p.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not recover from a panicking task")
	}
}

func TestPool_NumWorkers(t *testing.T) {
	p := New(6)
	defer p.Close()
	assert.Equal(t, 6, p.NumWorkers())
}
