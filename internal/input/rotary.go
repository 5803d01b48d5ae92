package input

// Line identifies one of the two encoder outputs.
type Line int

const (
	LineA Line = iota
	LineB
)

type rotaryState int

const (
	atRest rotaryState = iota
	rotary1
	rotary2
	rotary3
)

type rotaryAction int

const (
	noAction rotaryAction = iota
	startCW
	startCCW
	finishCW
	finishCCW
)

type rotaryTransition struct {
	next   rotaryState
	action rotaryAction
}

// rotaryTable[state][line][edge]. A clockwise detent walks
// rest -> 1 -> 2 -> 3 -> rest, counter-clockwise walks the other way.
// The direction is latched when leaving rest and reported only when the
// walk completes in that direction.
var rotaryTable = [4][2][2]rotaryTransition{
	atRest: {
		LineA: {Rising: {atRest, noAction}, Falling: {rotary1, startCW}},
		LineB: {Rising: {atRest, noAction}, Falling: {rotary3, startCCW}},
	},
	rotary1: {
		LineA: {Rising: {atRest, finishCCW}, Falling: {rotary1, noAction}},
		LineB: {Rising: {rotary1, noAction}, Falling: {rotary2, noAction}},
	},
	rotary2: {
		LineA: {Rising: {rotary3, noAction}, Falling: {rotary2, noAction}},
		LineB: {Rising: {rotary1, noAction}, Falling: {rotary2, noAction}},
	},
	rotary3: {
		LineA: {Rising: {rotary3, noAction}, Falling: {rotary2, noAction}},
		LineB: {Rising: {atRest, finishCW}, Falling: {rotary3, noAction}},
	},
}

// Rotary decodes quadrature edges into clockwise and counter-clockwise
// steps. It is not safe for concurrent use.
type Rotary struct {
	state   rotaryState
	cw, ccw bool
	onCW    func()
	onCCW   func()
}

func NewRotary(onCW, onCCW func()) *Rotary {
	return &Rotary{onCW: onCW, onCCW: onCCW}
}

func (r *Rotary) Feed(line Line, e Edge) {
	t := rotaryTable[r.state][line][e]
	r.state = t.next
	switch t.action {
	case startCW:
		r.cw, r.ccw = true, false
	case startCCW:
		r.cw, r.ccw = false, true
	case finishCW:
		if r.cw && r.onCW != nil {
			r.onCW()
		}
		r.cw, r.ccw = false, false
	case finishCCW:
		if r.ccw && r.onCCW != nil {
			r.onCCW()
		}
		r.cw, r.ccw = false, false
	}
}
