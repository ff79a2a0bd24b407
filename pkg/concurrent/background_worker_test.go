package concurrent

import (
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	wp := NewWorkerPool(3, 10, func(n int) int {
		return n * n
	})
	wp.Start()
	for i := 1; i <= 5; i++ {
		wp.AddJob(i)
	}
	wp.Close()

	got := []int{}
	for res := range wp.CollectResults() {
		got = append(got, res)
	}
	sort.Ints(got)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, got)
}

func TestRun(t *testing.T) {
	t.Run("bounded concurrency", func(t *testing.T) {
		var running, maxRunning int32
		jobs := make([]int, 50)
		for i := range jobs {
			jobs[i] = i
		}

		results := Run(4, jobs, func(n int) int {
			cur := atomic.AddInt32(&running, 1)
			for {
				prev := atomic.LoadInt32(&maxRunning)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxRunning, prev, cur) {
					break
				}
			}
			atomic.AddInt32(&running, -1)
			return n
		})

		assert.Len(t, results, 50)
		assert.LessOrEqual(t, atomic.LoadInt32(&maxRunning), int32(4))
	})

	t.Run("no jobs", func(t *testing.T) {
		results := Run(4, []string{}, func(s string) string { return s })
		assert.Empty(t, results)
	})

	t.Run("zero workers still runs", func(t *testing.T) {
		results := Run(0, []string{"a"}, func(s string) string { return s + s })
		assert.Equal(t, []string{"aa"}, results)
	})
}
