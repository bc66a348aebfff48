package server

import "sync"

// Submitter accepts deferred work for the authoritative context. Submit
// reports whether the task was admitted; callers that must observe the
// task's effect check the result instead of waiting forever.
type Submitter interface {
	Submit(task func()) bool
}

// Executor is the single authoritative execution context. One goroutine
// drains a FIFO queue that owns every mutation of shared network and session
// state, so handlers never lock. Submission is fire-and-forget and never
// awaited by the decode path.
type Executor struct {
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewExecutor creates an executor with the given queue depth. Admission
// control happens at the transport; the queue only smooths bursts.
func NewExecutor(depth int) *Executor {
	if depth <= 0 {
		depth = 1024
	}
	return &Executor{
		tasks: make(chan func(), depth),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the drain goroutine.
func (e *Executor) Start() {
	go e.run()
}

func (e *Executor) run() {
	defer close(e.done)
	for {
		select {
		case task := <-e.tasks:
			task()
		case <-e.quit:
			// Drain what was already admitted, then stop.
			for {
				select {
				case task := <-e.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// Submit enqueues task in submission order. Tasks submitted after Close are
// dropped and reported as not admitted.
func (e *Executor) Submit(task func()) bool {
	select {
	case <-e.quit:
		return false
	case e.tasks <- task:
		return true
	}
}

// Close stops the executor after draining admitted tasks.
func (e *Executor) Close() {
	e.once.Do(func() { close(e.quit) })
	<-e.done
}
