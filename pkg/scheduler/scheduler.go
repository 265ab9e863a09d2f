// Package scheduler runs multi-step tasks cooperatively, one step per frame tick.
package scheduler

import "errors"

// ErrQueueFull is returned by Submit when the scheduler already holds its capacity.
var ErrQueueFull = errors.New("scheduler: queue full")

// Task is a unit of work split into steps. Step runs the next step and reports
// whether the task has finished.
type Task interface {
	Step() (done bool)
}

// TaskFunc adapts a function to Task.
type TaskFunc func() bool

// Step calls f.
func (f TaskFunc) Step() bool { return f() }

// Scheduler is a FIFO of tasks driven by Tick. Only the head task advances, so a task
// never starts before the previous one has finished. Not safe for concurrent use: it
// belongs to the frame loop that ticks it.
type Scheduler struct {
	queue    []Task
	capacity int
	ticks    uint64
}

// New creates a scheduler holding at most capacity tasks, including the running one.
// A capacity of 0 means unbounded.
func New(capacity int) *Scheduler {
	if capacity < 0 {
		capacity = 0
	}
	return &Scheduler{capacity: capacity}
}

// Submit appends a task to the queue.
func (s *Scheduler) Submit(t Task) error {
	if t == nil {
		return errors.New("scheduler: nil task")
	}
	if s.capacity > 0 && len(s.queue) >= s.capacity {
		return ErrQueueFull
	}
	s.queue = append(s.queue, t)
	return nil
}

// Tick advances the head task by one step. It reports whether any work ran.
func (s *Scheduler) Tick() bool {
	if len(s.queue) == 0 {
		return false
	}
	s.ticks++
	if s.queue[0].Step() {
		s.queue[0] = nil
		s.queue = s.queue[1:]
	}
	return true
}

// Drain ticks until the queue is empty and returns the number of ticks it took.
func (s *Scheduler) Drain() int {
	n := 0
	for s.Tick() {
		n++
	}
	return n
}

// Last returns the most recently queued task, or nil when the queue is empty.
func (s *Scheduler) Last() Task {
	if len(s.queue) == 0 {
		return nil
	}
	return s.queue[len(s.queue)-1]
}

// Pending returns the number of unfinished tasks, including the running one.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Busy reports whether a task is in progress or queued.
func (s *Scheduler) Busy() bool {
	return len(s.queue) > 0
}

// Ticks returns the number of ticks that ran work since creation.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}

// Reset drops every queued task, including a partially run one.
func (s *Scheduler) Reset() {
	for i := range s.queue {
		s.queue[i] = nil
	}
	s.queue = s.queue[:0]
}
