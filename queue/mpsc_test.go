package queue

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMPSC_SingleProducer(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		q.Enqueue(i)
	}
	for i := 0; i < 100; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

// TestMPSC_ManyProducersOneConsumer mirrors the teacher's concurrent ring
// buffer property test: many writers, every value observed exactly once.
func TestMPSC_ManyProducersOneConsumer(t *testing.T) {
	q := New[int]()
	const producers = 8
	const perProducer = 5_000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(base*perProducer + i)
			}
		}(p)
	}

	seen := make([]int, 0, producers*perProducer)
	for len(seen) < producers*perProducer {
		if v, ok := q.Dequeue(); ok {
			seen = append(seen, v)
		}
	}
	wg.Wait()

	sort.Ints(seen)
	for i, v := range seen {
		assert.Equal(t, i, v)
	}
}

func TestMPSC_DrainBatch(t *testing.T) {
	q := New[int]()
	for i := 0; i < 10; i++ {
		q.Enqueue(i)
	}

	var got []int
	n := q.DrainBatch(4, func(v int) { got = append(got, v) })
	assert.Equal(t, 4, n)
	assert.Equal(t, []int{0, 1, 2, 3}, got)

	rest := q.DrainBatch(100, func(v int) { got = append(got, v) })
	assert.Equal(t, 6, rest)
	assert.Len(t, got, 10)
}

func TestMPSC_DrainAll(t *testing.T) {
	q := New[int]()
	for i := 0; i < 7; i++ {
		q.Enqueue(i)
	}
	var got []int
	n := q.DrainAll(func(v int) { got = append(got, v) })
	assert.Equal(t, 7, n)
	assert.Len(t, got, 7)
	assert.Equal(t, 0, q.DrainAll(func(int) {}))
}
