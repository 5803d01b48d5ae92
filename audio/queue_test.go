package audio

import "testing"

func titles(tracks []*MusicTrack) []string {
	out := make([]string, len(tracks))
	for i, tr := range tracks {
		out[i] = tr.Metadata().Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateEmpty:   "empty",
		StatePlaying: "playing",
		StatePaused:  "paused",
		State(42):    "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestQueueReservesOneSlot(t *testing.T) {
	q := newMusicQueue(4)
	for _, name := range []string{"a", "b", "c"} {
		if err := q.push(constTrack(name, 1, 0)); err != nil {
			t.Fatalf("push(%s): %v", name, err)
		}
	}
	if err := q.push(constTrack("d", 1, 0)); err != ErrQueueFull {
		t.Fatalf("push into full ring = %v, want %v", err, ErrQueueFull)
	}

	q.next()
	if err := q.push(constTrack("d", 1, 0)); err != nil {
		t.Fatalf("push after skip: %v", err)
	}
	// Three live entries fill a ring of four.
	if err := q.push(constTrack("e", 1, 0)); err != ErrQueueFull {
		t.Fatalf("push into full ring = %v, want %v", err, ErrQueueFull)
	}
	if got := titles(q.upcoming(10)); !equalStrings(got, []string{"b", "c", "d"}) {
		t.Errorf("upcoming = %v, want [b c d]", got)
	}
}

func TestQueuePreviousStopsAtTail(t *testing.T) {
	q := newMusicQueue(4)
	for _, name := range []string{"a", "b", "c"} {
		q.push(constTrack(name, 1, 0))
	}
	q.next()
	q.next()
	if err := q.push(constTrack("d", 1, 0)); err != nil {
		t.Fatalf("push(d): %v", err)
	}
	// a is history in the tail slot now.

	if !q.previous() {
		t.Fatal("previous() = false, want true")
	}
	if got := q.current().track.Metadata().Title; got != "b" {
		t.Fatalf("current = %q, want b", got)
	}
	for i := 0; i < 3; i++ {
		if q.previous() {
			t.Fatalf("previous() #%d at the earliest reachable track = true, want false", i)
		}
	}
	if got := q.current().track.Metadata().Title; got != "b" {
		t.Errorf("current = %q, want b", got)
	}
	if got := q.live(); got != 3 {
		t.Errorf("live() = %d, want 3", got)
	}
	if got := titles(q.upcoming(10)); !equalStrings(got, []string{"b", "c", "d"}) {
		t.Errorf("upcoming = %v, want [b c d]", got)
	}
}

func TestQueuePushOverwritesOldestHistory(t *testing.T) {
	q := newMusicQueue(4)
	for _, name := range []string{"a", "b", "c"} {
		q.push(constTrack(name, 1, 0))
	}
	q.next()
	q.next()
	q.next()
	if q.state() != StateEmpty {
		t.Fatalf("state = %v, want %v", q.state(), StateEmpty)
	}
	for _, name := range []string{"d", "e", "f"} {
		if err := q.push(constTrack(name, 1, 0)); err != nil {
			t.Fatalf("push(%s): %v", name, err)
		}
	}
	if got := titles(q.upcoming(10)); !equalStrings(got, []string{"d", "e", "f"}) {
		t.Errorf("upcoming = %v, want [d e f]", got)
	}
	got, sel := q.view(10)
	if want := []string{"d", "e", "f"}; !equalStrings(titles(got), want) || sel != 0 {
		t.Errorf("view = %v (selected %d), want %v (selected 0)", titles(got), sel, want)
	}
}

func TestQueueUpcoming(t *testing.T) {
	q := newMusicQueue(30)
	if got := q.upcoming(5); len(got) != 0 {
		t.Fatalf("upcoming on empty queue = %v, want none", titles(got))
	}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		q.push(constTrack(name, 1, 0))
	}
	if got := titles(q.upcoming(3)); !equalStrings(got, []string{"a", "b", "c"}) {
		t.Errorf("upcoming(3) = %v, want [a b c]", got)
	}
	q.next()
	q.next()
	if got := titles(q.upcoming(10)); !equalStrings(got, []string{"c", "d", "e"}) {
		t.Errorf("upcoming(10) after two skips = %v, want [c d e]", got)
	}
	if got := q.upcoming(0); len(got) != 0 {
		t.Errorf("upcoming(0) = %v, want none", titles(got))
	}
}

func TestQueueView(t *testing.T) {
	q := newMusicQueue(30)
	names := []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10", "t11"}
	for _, name := range names {
		q.push(constTrack(name, 1, 0))
	}

	got, sel := q.view(20)
	if sel != 0 || len(got) != len(names) {
		t.Fatalf("view at start = %v (selected %d), want all tracks with selected 0", titles(got), sel)
	}

	for i := 0; i < 9; i++ {
		q.next()
	}
	got, sel = q.view(20)
	want := []string{"t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10", "t11"}
	if !equalStrings(titles(got), want) {
		t.Errorf("view = %v, want %v", titles(got), want)
	}
	if sel != 7 {
		t.Errorf("selected = %d, want 7", sel)
	}

	got, sel = q.view(4)
	if want := []string{"t6", "t7", "t8", "t9"}; !equalStrings(titles(got), want) || sel != 3 {
		t.Errorf("view(4) = %v (selected %d), want %v (selected 3)", titles(got), sel, want)
	}
}

func TestQueueViewSkipsFinishedTracks(t *testing.T) {
	q := newMusicQueue(30)
	for _, name := range []string{"a", "b", "c"} {
		q.push(constTrack(name, 1, 0))
	}
	q.finish()
	q.next()
	got, sel := q.view(10)
	if want := []string{"b", "c"}; !equalStrings(titles(got), want) || sel != 1 {
		t.Errorf("view = %v (selected %d), want %v (selected 1)", titles(got), sel, want)
	}

	q.next()
	got, sel = q.view(10)
	if want := []string{"b", "c"}; !equalStrings(titles(got), want) || sel != -1 {
		t.Errorf("view of exhausted queue = %v (selected %d), want %v (selected -1)", titles(got), sel, want)
	}
}
