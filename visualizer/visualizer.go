// Package visualizer drives an 8 LED strip from the level of the music
// being mixed. The mixer pushes samples through Observe; a separate loop
// turns the latest sample into a bar pattern and cycles the bar colour.
package visualizer

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

const NumLEDs = 8

// Levels are the bar patterns, quietest first. Negative samples light the
// right half, positive ones the left half.
var Levels = [9][NumLEDs]uint32{
	{0, 0, 0, 0, 1, 1, 1, 1},
	{0, 0, 0, 0, 1, 1, 1, 0},
	{0, 0, 0, 0, 1, 1, 0, 0},
	{0, 0, 0, 0, 1, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 1, 0, 0, 0, 0},
	{0, 0, 1, 1, 0, 0, 0, 0},
	{0, 1, 1, 1, 0, 0, 0, 0},
	{1, 1, 1, 1, 0, 0, 0, 0},
}

// Colors are the strip firmware's colour codes, in cycling order.
var Colors = []uint32{1, 2, 3, 6, 7, 8}

const (
	DefaultRefresh     = 30 * time.Millisecond
	DefaultColorPeriod = 3 * time.Second
)

// Level maps a sample onto a row of Levels.
func Level(v int16) int {
	l := int((float64(v) - math.MinInt16) / (math.MaxInt16 - math.MinInt16) * float64(len(Levels)))
	return min(l, len(Levels)-1)
}

// Frame lights the LEDs of level in color.
func Frame(level int, color uint32) [NumLEDs]uint32 {
	var out [NumLEDs]uint32
	for i, on := range Levels[level] {
		if on == 1 {
			out[i] = color
		}
	}
	return out
}

// Strip is an LED output.
type Strip interface {
	Set(leds [NumLEDs]uint32) error
	Close() error
}

type Options struct {
	// Refresh is how often the strip is redrawn.
	Refresh time.Duration

	// ColorPeriod is how long each colour is shown.
	ColorPeriod time.Duration

	Logger *slog.Logger
}

// Visualizer implements audio.LevelSink.
type Visualizer struct {
	strip       Strip
	refresh     time.Duration
	colorPeriod time.Duration
	logger      *slog.Logger

	latest atomic.Int32
}

func New(strip Strip, options Options) *Visualizer {
	if options.Refresh <= 0 {
		options.Refresh = DefaultRefresh
	}
	if options.ColorPeriod <= 0 {
		options.ColorPeriod = DefaultColorPeriod
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Visualizer{
		strip:       strip,
		refresh:     options.Refresh,
		colorPeriod: options.ColorPeriod,
		logger:      options.Logger,
	}
}

// Observe records the most recent sample. It never blocks.
func (v *Visualizer) Observe(sample int16) {
	v.latest.Store(int32(sample))
}

// Run redraws the strip until ctx is cancelled, then turns every LED off.
func (v *Visualizer) Run(ctx context.Context) error {
	redraw := time.NewTicker(v.refresh)
	defer redraw.Stop()
	cycle := time.NewTicker(v.colorPeriod)
	defer cycle.Stop()

	colorIndex := 0
	failing := false
	for {
		select {
		case <-ctx.Done():
			return v.strip.Set([NumLEDs]uint32{})
		case <-cycle.C:
			colorIndex = (colorIndex + 1) % len(Colors)
		case <-redraw.C:
			level := Level(int16(v.latest.Load()))
			err := v.strip.Set(Frame(level, Colors[colorIndex]))
			if err != nil && !failing {
				v.logger.Warn("visualizer: strip write failed", "err", err)
			}
			failing = err != nil
		}
	}
}

// Close releases the strip. Call it after Run has returned.
func (v *Visualizer) Close() error {
	return v.strip.Close()
}

// NopStrip discards frames.
type NopStrip struct{}

func (NopStrip) Set([NumLEDs]uint32) error { return nil }

func (NopStrip) Close() error { return nil }
