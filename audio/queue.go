package audio

import "errors"

// ErrQueueFull is returned when a track cannot be added to the music ring.
var ErrQueueFull = errors.New("audio: music queue is full")

// State is the playback state derived from the music queue.
type State int

const (
	// StateEmpty means there is no current track.
	StateEmpty State = iota
	// StatePlaying means a current track exists and is advancing.
	StatePlaying
	// StatePaused means a current track exists but its cursor is frozen.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}
	return "unknown"
}

// historyLimit is how many already played entries QueueView reports.
const historyLimit = 7

type queueSlot struct {
	track *MusicTrack
	// data is the track's samples captured at enqueue time so the mixer
	// never touches MusicTrack fields that Release may write.
	data []int16
	pos  int
}

// musicQueue is a circular buffer of track slots. Entries from head up to
// tail are live; occupied slots behind head are history that PreviousTrack
// can return to. It is not safe for concurrent use; Engine guards it.
type musicQueue struct {
	slots  []queueSlot
	head   int
	tail   int
	paused bool
}

func newMusicQueue(capacity int) *musicQueue {
	return &musicQueue{slots: make([]queueSlot, capacity)}
}

func (q *musicQueue) wrap(i int) int {
	return (i + len(q.slots)) % len(q.slots)
}

// current returns the head slot, or nil if the queue is empty. head ==
// tail is the only empty state; the slot there may still hold history.
func (q *musicQueue) current() *queueSlot {
	if q.head == q.tail {
		return nil
	}
	return &q.slots[q.head]
}

func (q *musicQueue) state() State {
	if q.current() == nil {
		return StateEmpty
	}
	if q.paused {
		return StatePaused
	}
	return StatePlaying
}

// live is the number of entries from head up to tail.
func (q *musicQueue) live() int {
	return q.wrap(q.tail - q.head)
}

// push appends t at tail. One slot always separates tail from head, so a
// ring of n slots holds at most n-1 live entries. A history entry left at
// tail is the oldest one and is overwritten.
func (q *musicQueue) push(t *MusicTrack) error {
	if q.wrap(q.tail+1) == q.head {
		return ErrQueueFull
	}
	if q.state() == StateEmpty {
		q.paused = false
	}
	q.slots[q.tail] = queueSlot{track: t, data: t.data}
	q.tail = q.wrap(q.tail + 1)
	return nil
}

// next moves head forward. The old head keeps its track so it stays
// reachable as history.
func (q *musicQueue) next() bool {
	s := q.current()
	if s == nil {
		return false
	}
	s.pos = 0
	s.track.active.Store(false)
	q.head = q.wrap(q.head + 1)
	return true
}

// previous moves head back onto the newest history entry. The slot at
// tail is never reachable: stepping onto it would make head == tail.
func (q *musicQueue) previous() bool {
	prev := q.wrap(q.head - 1)
	if prev == q.tail || q.slots[prev].track == nil {
		return false
	}
	if s := q.current(); s != nil {
		s.pos = 0
		s.track.active.Store(false)
	}
	q.head = prev
	return true
}

func (q *musicQueue) restart() {
	if s := q.current(); s != nil {
		s.pos = 0
	}
}

// finish handles a track reaching its end on its own. The slot is cleared
// so it does not appear as history.
func (q *musicQueue) finish() {
	s := &q.slots[q.head]
	if s.track != nil {
		s.track.active.Store(false)
	}
	*s = queueSlot{}
	q.head = q.wrap(q.head + 1)
}

func (q *musicQueue) clear() {
	for i := range q.slots {
		if t := q.slots[i].track; t != nil {
			t.active.Store(false)
		}
		q.slots[i] = queueSlot{}
	}
	q.head = 0
	q.tail = 0
}

// upcoming returns up to n live entries starting with the current track.
func (q *musicQueue) upcoming(n int) []*MusicTrack {
	n = min(n, q.live())
	out := make([]*MusicTrack, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, q.slots[q.wrap(q.head+i)].track)
	}
	return out
}

// view returns up to historyLimit played entries followed by live entries,
// n entries in total at most, and the index of the current track within
// the result. selected is -1 when the queue is empty.
func (q *musicQueue) view(n int) (tracks []*MusicTrack, selected int) {
	if n <= 0 {
		return nil, -1
	}
	live := q.live()
	maxBack := min(historyLimit, len(q.slots)-live-1, n-1)
	back := 0
	for back < maxBack && q.slots[q.wrap(q.head-back-1)].track != nil {
		back++
	}
	total := min(n, back+live)
	tracks = make([]*MusicTrack, 0, total)
	for i := 0; i < total; i++ {
		tracks = append(tracks, q.slots[q.wrap(q.head-back+i)].track)
	}
	if live == 0 {
		return tracks, -1
	}
	return tracks, back
}
