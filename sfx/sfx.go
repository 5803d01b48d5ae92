package sfx

import (
	"math"
	"time"

	"github.com/rayhong24/MP3-Embedded-System/audio"
)

// Sfx is one named effect with one or more recorded variations. Play picks
// a variation at random, weighted by Probability.
type Sfx struct {
	Id           Id
	Volume       float32
	ThrottlingMs int
	Variations   []*SfxVariant
	lastPlayed   time.Time
}

type SfxVariant struct {
	Path         string
	Probability  float64
	Volume       float32
	ThrottlingMs int
	clip         *audio.SoundClip
	lastPlayed   time.Time
}

func (e *Sfx) pick(now time.Time, random float64) *SfxVariant {
	if len(e.Variations) == 0 {
		return nil
	}
	if now.Sub(e.lastPlayed) <= time.Duration(e.ThrottlingMs)*time.Millisecond {
		return nil
	}

	unThrottled := make([]*SfxVariant, 0, len(e.Variations))
	probabilitySum := 0.0
	for _, v := range e.Variations {
		if v.clip == nil {
			continue
		}
		if now.Sub(v.lastPlayed) > time.Duration(v.ThrottlingMs)*time.Millisecond {
			unThrottled = append(unThrottled, v)
			probabilitySum += v.Probability
		}
	}
	if len(unThrottled) == 0 {
		return nil
	}

	r := random * probabilitySum
	for _, v := range unThrottled {
		if r <= v.Probability+0.001 {
			return v
		}
		r -= v.Probability
	}
	return unThrottled[len(unThrottled)-1]
}

// gain returns the combined volume of effect and variation. Zero means
// unset and counts as full volume.
func gain(effect, variant float32) float64 {
	g := 1.0
	if effect != 0 {
		g *= float64(effect)
	}
	if variant != 0 {
		g *= float64(variant)
	}
	return g
}

// scaled returns a copy of data multiplied by g, or data itself when g is 1.
func scaled(data []int16, g float64) []int16 {
	if g == 1 {
		return data
	}
	out := make([]int16, len(data))
	for i, v := range data {
		s := math.Round(float64(v) * g)
		out[i] = int16(max(math.MinInt16, min(math.MaxInt16, s)))
	}
	return out
}
