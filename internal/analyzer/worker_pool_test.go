package analyzer

import (
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewWorkerPool_ZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	if pool.Workers() != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), pool.Workers())
	}
}

func TestWorkerPool_SubmitAndWait(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Start() // idempotent
	defer pool.Close()

	var counter atomic.Int64
	for i := 0; i < 5; i++ {
		if !pool.Submit(func() { counter.Add(1) }) {
			t.Fatal("Expected submit to succeed on an open pool")
		}
	}
	pool.Wait()

	if counter.Load() != 5 {
		t.Errorf("Expected counter to be 5, got %d", counter.Load())
	}

	stats := pool.GetStats()
	if stats.TotalJobs != 5 || stats.CompletedJobs != 5 {
		t.Errorf("Expected 5/5 jobs, got %d/%d", stats.TotalJobs, stats.CompletedJobs)
	}
	if stats.ActiveWorkers != 0 {
		t.Errorf("Expected 0 active workers, got %d", stats.ActiveWorkers)
	}
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Close()
	pool.Close() // idempotent

	if pool.Submit(func() {}) {
		t.Error("Expected submit to fail after close")
	}
}

func TestWorkerPool_RunAll(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	results := make([]int, 10)
	jobs := make([]func(), len(results))
	for i := range jobs {
		jobs[i] = func() { results[i] = i * 2 }
	}
	pool.RunAll(jobs)

	for i, v := range results {
		if v != i*2 {
			t.Errorf("Expected results[%d]=%d, got %d", i, i*2, v)
		}
	}
}

func TestWorkerPool_RunAllAfterCloseRunsInline(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	var counter atomic.Int64
	pool.RunAll([]func(){
		func() { counter.Add(1) },
		func() { counter.Add(1) },
	})

	if counter.Load() != 2 {
		t.Errorf("Expected both jobs to run, got %d", counter.Load())
	}
}

func TestWorkerPool_RunAllPropagatesPanic(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic to reach the caller")
		}
		if !strings.Contains(r.(string), "boom") {
			t.Errorf("Expected panic message to carry the cause, got %v", r)
		}
	}()

	pool.RunAll([]func(){
		func() {},
		func() { panic("boom") },
	})
}

func TestWorkerPool_ConcurrentRunAll(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var wg sync.WaitGroup
	var total atomic.Int64
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobs := make([]func(), 8)
			for i := range jobs {
				jobs[i] = func() { total.Add(1) }
			}
			pool.RunAll(jobs)
		}()
	}
	wg.Wait()

	if total.Load() != 32 {
		t.Errorf("Expected 32 jobs to run, got %d", total.Load())
	}
}

func TestSplitRows(t *testing.T) {
	testCases := []struct {
		height, n int
		want      []rowStrip
	}{
		{0, 4, nil},
		{10, 1, []rowStrip{{0, 10}}},
		{10, 3, []rowStrip{{0, 4}, {4, 8}, {8, 10}}},
		{2, 8, []rowStrip{{0, 1}, {1, 2}}},
		{5, 0, []rowStrip{{0, 5}}},
	}

	for _, tc := range testCases {
		got := splitRows(tc.height, tc.n)
		if len(got) != len(tc.want) {
			t.Errorf("splitRows(%d, %d): expected %v, got %v", tc.height, tc.n, tc.want, got)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("splitRows(%d, %d): expected %v, got %v", tc.height, tc.n, tc.want, got)
				break
			}
		}
	}
}

func TestFirstSampledRow(t *testing.T) {
	testCases := []struct{ start, stride, want int }{
		{0, 2, 0},
		{1, 2, 2},
		{4, 2, 4},
		{5, 4, 8},
		{7, 1, 7},
	}
	for _, tc := range testCases {
		if got := firstSampledRow(tc.start, tc.stride); got != tc.want {
			t.Errorf("firstSampledRow(%d, %d): expected %d, got %d", tc.start, tc.stride, tc.want, got)
		}
	}
}

func TestScanRows_ParallelMatchesSequential(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	count := func(startY, endY int) int { return endY - startY }

	sum := func(parts []int) int {
		total := 0
		for _, p := range parts {
			total += p
		}
		return total
	}

	sequential := scanRows(nil, 100, 37, 0, count)
	parallel := scanRows(pool, 100, 37, 0, count)

	if len(sequential) != 1 {
		t.Errorf("Expected one strip without a pool, got %d", len(sequential))
	}
	if len(parallel) != 4 {
		t.Errorf("Expected 4 strips, got %d", len(parallel))
	}
	if sum(sequential) != 37 || sum(parallel) != 37 {
		t.Errorf("Expected every row once, got %d and %d", sum(sequential), sum(parallel))
	}

	small := scanRows(pool, 10, 10, 1000, count)
	if len(small) != 1 {
		t.Errorf("Expected small images to stay sequential, got %d strips", len(small))
	}
}
