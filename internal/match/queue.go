package match

import "sync"

// Queue is a thread-safe FIFO of upcoming matches.
//
// Upcoming matches may be enqueued from any goroutine (bracket poller, UI)
// while commands dequeue the head to advance. Consumers must use TryDequeue
// rather than peek-and-mutate.
type Queue struct {
	mu      sync.Mutex
	matches []MatchState
}

// NewQueue creates a queue holding the given matches in order.
func NewQueue(initial ...MatchState) *Queue {
	q := &Queue{matches: make([]MatchState, 0, len(initial)+8)}
	for _, m := range initial {
		q.matches = append(q.matches, m.clone())
	}
	return q
}

// Enqueue adds a match to the back of the queue.
func (q *Queue) Enqueue(m MatchState) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.matches = append(q.matches, m.clone())
}

// PushFront puts a match back at the head of the queue.
// Used to restore queue order when advancing is undone.
func (q *Queue) PushFront(m MatchState) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.matches = append(q.matches, MatchState{})
	copy(q.matches[1:], q.matches)
	q.matches[0] = m.clone()
}

// TryDequeue removes and returns the head of the queue.
// Returns (MatchState{}, false) if the queue is empty.
func (q *Queue) TryDequeue() (MatchState, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.matches) == 0 {
		return MatchState{}, false
	}

	m := q.matches[0]
	// Clear the slot so the backing array does not pin character slices.
	q.matches[0] = MatchState{}
	if len(q.matches) == 1 {
		q.matches = q.matches[:0]
	} else {
		q.matches = q.matches[1:]
	}
	return m, true
}

// Len returns the number of queued matches.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.matches)
}

// Snapshot returns a copy of the queued matches, head first.
func (q *Queue) Snapshot() []MatchState {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]MatchState, len(q.matches))
	for i, m := range q.matches {
		out[i] = m.clone()
	}
	return out
}
