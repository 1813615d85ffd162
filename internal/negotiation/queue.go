package negotiation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Clock reports the current time. Tests drive the queue with a ManualClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// ManualClock is a Clock that only moves when Advance is called.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type task struct {
	key string
	due time.Time
	seq uint64
	fn  func()
}

// Queue is a single ordered queue of deferred tasks. Tasks run after their
// delay, ordered by due time and then by enqueue order. Each task carries a
// key (normally a session ID) so that all pending work for a session can be
// cancelled at once.
type Queue struct {
	clock Clock

	mu    sync.Mutex
	tasks []*task
	seq   uint64
	wake  chan struct{}
}

// NewQueue creates a Queue driven by clock. A nil clock means SystemClock.
func NewQueue(clock Clock) *Queue {
	if clock == nil {
		clock = SystemClock
	}
	return &Queue{
		clock: clock,
		wake:  make(chan struct{}, 1),
	}
}

// Clock returns the queue's clock.
func (q *Queue) Clock() Clock { return q.clock }

// Schedule enqueues fn to run delay from now under key.
func (q *Queue) Schedule(key string, delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	q.mu.Lock()
	q.seq++
	t := &task{key: key, due: q.clock.Now().Add(delay), seq: q.seq, fn: fn}
	// Insert after every task due at or before t, keeping FIFO among equals.
	i := sort.Search(len(q.tasks), func(i int) bool {
		return q.tasks[i].due.After(t.due)
	})
	q.tasks = append(q.tasks, nil)
	copy(q.tasks[i+1:], q.tasks[i:])
	q.tasks[i] = t
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Cancel removes every pending task scheduled under key and returns how many
// were removed.
func (q *Queue) Cancel(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.tasks[:0]
	removed := 0
	for _, t := range q.tasks {
		if t.key == key {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(q.tasks); i++ {
		q.tasks[i] = nil
	}
	q.tasks = kept
	return removed
}

// Pending returns the number of tasks waiting under key.
func (q *Queue) Pending(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, t := range q.tasks {
		if t.key == key {
			n++
		}
	}
	return n
}

// Len returns the total number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// RunDue runs every task whose due time has passed, in queue order, and
// returns how many ran. Tasks run without the queue lock held, so they may
// schedule or cancel further work.
func (q *Queue) RunDue() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 || q.tasks[0].due.After(q.clock.Now()) {
			q.mu.Unlock()
			return ran
		}
		t := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		t.fn()
		ran++
	}
}

// next returns the due time of the head task.
func (q *Queue) next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return time.Time{}, false
	}
	return q.tasks[0].due, true
}

// Run drives the queue in real time until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.RunDue()

		var timer *time.Timer
		var fire <-chan time.Time
		if due, ok := q.next(); ok {
			timer = time.NewTimer(due.Sub(q.clock.Now()))
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-q.wake:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}
