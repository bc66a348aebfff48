package server

import (
	"sync"
	"testing"
	"time"
)

func TestExecutorPreservesSubmissionOrder(t *testing.T) {
	exec := NewExecutor(64)
	exec.Start()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	for i := 0; i < 32; i++ {
		i := i
		exec.Submit(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == 31 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("executor did not drain")
	}
	exec.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 32 {
		t.Fatalf("ran %d of 32 tasks", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken at %d: got %d", i, v)
		}
	}
}

func TestExecutorCloseDrainsAdmitted(t *testing.T) {
	exec := NewExecutor(64)
	var mu sync.Mutex
	count := 0
	for i := 0; i < 10; i++ {
		exec.Submit(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}
	exec.Start()
	exec.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Fatalf("drained %d of 10 admitted tasks", count)
	}

	// Post-close submissions are dropped and reported as not admitted.
	if exec.Submit(func() { panic("task ran after close") }) {
		t.Fatalf("post-close submit reported admission")
	}
}
