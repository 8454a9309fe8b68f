package match

// Tournament owns the current match, the queue of upcoming matches and the
// name of the active scene.
//
// Not safe for concurrent writers. The dispatcher runs one command at a time
// and callers must await each submission before the next.
type Tournament struct {
	current MatchState
	queue   *Queue
	scene   string
}

// NewTournament creates a tournament showing current with an optional
// queue. A nil queue is replaced with an empty one.
func NewTournament(current MatchState, queue *Queue) *Tournament {
	if queue == nil {
		queue = NewQueue()
	}
	return &Tournament{current: current.clone(), queue: queue}
}

// Current returns a copy of the current match.
func (t *Tournament) Current() MatchState {
	return t.current.clone()
}

// SetCurrent replaces the current match wholesale.
func (t *Tournament) SetCurrent(m MatchState) {
	t.current = m.clone()
}

// Queue returns the queue of upcoming matches.
func (t *Tournament) Queue() *Queue {
	return t.queue
}

// Scene returns the name of the scene last switched to, or "".
func (t *Tournament) Scene() string {
	return t.scene
}

// SetScene records the active scene name.
func (t *Tournament) SetScene(name string) {
	t.scene = name
}
