// Package playback is the single entry point UI and input code use to
// control the jukebox: transport commands, volume, and read-only views of
// the current track and queue.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rayhong24/MP3-Embedded-System/audio"
)

// ErrVolumeOutOfRange is returned by SetVolume for values outside 0-100.
var ErrVolumeOutOfRange = errors.New("playback: volume out of range")

const (
	MinVolume = 0
	MaxVolume = 100

	DefaultVolume     = 80
	DefaultVolumeStep = 5
)

// VolumeControl is the platform mixer. *audio.MixerControl implements it.
type VolumeControl interface {
	SetVolume(percent int) error
}

type nopVolume struct{}

func (nopVolume) SetVolume(int) error { return nil }

// Options represents options for New.
type Options struct {
	// Volume is the hardware mixer. Nil keeps volume as a cached value only.
	Volume VolumeControl

	// InitialVolume is applied at construction. Zero means DefaultVolume.
	InitialVolume int

	// VolumeStep is used by VolumeUp and VolumeDown. Zero means
	// DefaultVolumeStep.
	VolumeStep int

	Logger *slog.Logger
}

// Facade serializes commands onto an audio.Engine and caches the volume.
//
// All the functions of a Facade are concurrent-safe.
type Facade struct {
	engine  *audio.Engine
	control VolumeControl
	step    int
	logger  *slog.Logger

	m      sync.Mutex
	volume int
}

// New wraps engine and applies the initial volume. A failure to reach the
// mixer is logged; the cached volume is still set.
func New(engine *audio.Engine, options Options) *Facade {
	if options.Volume == nil {
		options.Volume = nopVolume{}
	}
	if options.InitialVolume == 0 {
		options.InitialVolume = DefaultVolume
	}
	if options.VolumeStep == 0 {
		options.VolumeStep = DefaultVolumeStep
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	f := &Facade{
		engine:  engine,
		control: options.Volume,
		step:    options.VolumeStep,
		logger:  options.Logger,
		volume:  max(MinVolume, min(MaxVolume, options.InitialVolume)),
	}
	if err := f.control.SetVolume(f.volume); err != nil {
		f.logger.Warn("playback: could not apply initial volume", "volume", f.volume, "err", err)
	}
	return f
}

// Play resumes the current track.
func (f *Facade) Play() {
	f.m.Lock()
	defer f.m.Unlock()
	f.engine.Resume()
}

// Pause freezes the current track. Effects keep playing.
func (f *Facade) Pause() {
	f.m.Lock()
	defer f.m.Unlock()
	f.engine.Pause()
}

// TogglePlayback switches between playing and paused and returns the new
// state. It does nothing when the queue is empty.
func (f *Facade) TogglePlayback() audio.State {
	f.m.Lock()
	defer f.m.Unlock()
	switch f.engine.State() {
	case audio.StatePlaying:
		f.engine.Pause()
		return audio.StatePaused
	case audio.StatePaused:
		f.engine.Resume()
		return audio.StatePlaying
	}
	return audio.StateEmpty
}

// Skip moves to the next queued track.
func (f *Facade) Skip() bool {
	f.m.Lock()
	defer f.m.Unlock()
	return f.engine.NextTrack()
}

// Previous moves back to the track played before the current one.
func (f *Facade) Previous() bool {
	f.m.Lock()
	defer f.m.Unlock()
	return f.engine.PreviousTrack()
}

// Restart rewinds the current track.
func (f *Facade) Restart() {
	f.m.Lock()
	defer f.m.Unlock()
	f.engine.RestartTrack()
}

// Enqueue adds track to the end of the queue.
func (f *Facade) Enqueue(track *audio.MusicTrack) bool {
	f.m.Lock()
	defer f.m.Unlock()
	return f.engine.QueueTrack(track)
}

// SetVolume forwards percent to the mixer and caches it. Out of range
// values are rejected without touching the mixer or the cache.
func (f *Facade) SetVolume(percent int) error {
	f.m.Lock()
	defer f.m.Unlock()
	return f.setVolume(percent)
}

func (f *Facade) setVolume(percent int) error {
	if percent < MinVolume || percent > MaxVolume {
		f.logger.Error("playback: volume out of range", "volume", percent)
		return fmt.Errorf("%w: %d", ErrVolumeOutOfRange, percent)
	}
	if err := f.control.SetVolume(percent); err != nil {
		return fmt.Errorf("playback: set volume %d: %w", percent, err)
	}
	f.volume = percent
	return nil
}

// VolumeUp raises the volume by one step, stopping at MaxVolume.
func (f *Facade) VolumeUp() (int, error) {
	return f.stepVolume(1)
}

// VolumeDown lowers the volume by one step, stopping at MinVolume.
func (f *Facade) VolumeDown() (int, error) {
	return f.stepVolume(-1)
}

func (f *Facade) stepVolume(dir int) (int, error) {
	f.m.Lock()
	defer f.m.Unlock()
	next := max(MinVolume, min(MaxVolume, f.volume+dir*f.step))
	if next == f.volume {
		f.logger.Info("playback: volume at limit", "volume", f.volume)
		return f.volume, nil
	}
	err := f.setVolume(next)
	return f.volume, err
}

// Volume returns the last volume successfully applied.
func (f *Facade) Volume() int {
	f.m.Lock()
	defer f.m.Unlock()
	return f.volume
}

func (f *Facade) State() audio.State {
	return f.engine.State()
}

// CurrentTrack returns the metadata of the track at the head of the queue.
func (f *Facade) CurrentTrack() (audio.Metadata, bool) {
	t := f.engine.Current()
	if t == nil {
		return audio.Metadata{}, false
	}
	return t.Metadata(), true
}

func (f *Facade) ElapsedSeconds() float64 {
	return f.engine.ElapsedSeconds()
}

// Upcoming returns metadata for up to n tracks starting with the current
// one. Each call takes a fresh snapshot of the queue.
func (f *Facade) Upcoming(n int) []audio.Metadata {
	return metadataOf(f.engine.Upcoming(n))
}

// QueueView returns up to n entries around the current track for the queue
// page: recently played ones, then the current and upcoming ones. selected
// is the index of the current track, or -1.
func (f *Facade) QueueView(n int) (entries []audio.Metadata, selected int) {
	tracks, selected := f.engine.QueueView(n)
	return metadataOf(tracks), selected
}

// Status is a snapshot for status lines and displays.
type Status struct {
	State    audio.State
	Track    audio.Metadata
	HasTrack bool
	// Audible reports that the mixer has started on Track, as opposed to a
	// track that was just queued or stepped to.
	Audible bool
	Elapsed float64
	Volume  int
}

// Status reads state, track and position in one engine snapshot.
func (f *Facade) Status() Status {
	snap := f.engine.Snapshot()
	st := Status{
		State:   snap.State,
		Elapsed: snap.Elapsed,
		Volume:  f.Volume(),
	}
	if snap.Track != nil {
		st.Track = snap.Track.Metadata()
		st.HasTrack = true
		st.Audible = snap.Track.Active()
	}
	return st
}

func metadataOf(tracks []*audio.MusicTrack) []audio.Metadata {
	out := make([]audio.Metadata, len(tracks))
	for i, t := range tracks {
		out[i] = t.Metadata()
	}
	return out
}
