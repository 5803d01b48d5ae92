// Package input turns GPIO edges into jukebox commands. The button and
// rotary encoder logic are explicit transition tables; the poller that
// feeds them lives in gpio_linux.go.
package input

// Edge is a level change on an input line. With the usual pull-up wiring
// a press pulls the line low, so Falling means pressed.
type Edge int

const (
	Rising Edge = iota
	Falling
)

func (e Edge) String() string {
	if e == Falling {
		return "falling"
	}
	return "rising"
}

// EdgeOf returns the edge that leads to the given line level.
func EdgeOf(high bool) Edge {
	if high {
		return Rising
	}
	return Falling
}

type ButtonState int

const (
	NotPressed ButtonState = iota
	Pressed
)

type buttonTransition struct {
	next ButtonState
	fire bool
}

// buttonTable[state][edge]. The action fires on release.
var buttonTable = [2][2]buttonTransition{
	NotPressed: {
		Rising:  {next: NotPressed},
		Falling: {next: Pressed},
	},
	Pressed: {
		Rising:  {next: NotPressed, fire: true},
		Falling: {next: Pressed},
	},
}

// Button fires onRelease when a press is followed by a release. It is not
// safe for concurrent use; feed it from one goroutine.
type Button struct {
	state     ButtonState
	onRelease func()
}

func NewButton(onRelease func()) *Button {
	return &Button{onRelease: onRelease}
}

func (b *Button) State() ButtonState { return b.state }

func (b *Button) Feed(e Edge) {
	t := buttonTable[b.state][e]
	b.state = t.next
	if t.fire && b.onRelease != nil {
		b.onRelease()
	}
}
