// Copyright 2021 The Oto Authors
// Copyright 2025 Lundis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rayhong24/MP3-Embedded-System/internal/observe"
)

// Engine mixes effect clips and one queued music track into interleaved
// stereo buffers.
//
// Every field below m is guarded by m. Each exported method takes the lock
// for a single mutation or, in FillBuffer, for one full mixing pass, so a
// command is visible to the very next buffer. Nothing blocks while the lock
// is held.
//
// All the functions of an Engine are concurrent-safe.
type Engine struct {
	sampleRate   int
	periodFrames int
	levels       LevelSink
	metrics      *observe.Metrics
	logger       *slog.Logger

	m       sync.Mutex
	effects []effectSlot
	queue   *musicQueue
}

type effectSlot struct {
	clip *SoundClip
	data []int16
	pos  int
}

// NewEngine creates an Engine with a free effect pool and an empty queue.
func NewEngine(options EngineOptions) (*Engine, error) {
	options.setDefaults()
	if err := options.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		sampleRate:   options.SampleRate,
		periodFrames: options.PeriodFrames,
		levels:       options.Levels,
		metrics:      options.Metrics,
		logger:       options.Logger,
		effects:      make([]effectSlot, options.EffectSlots),
		queue:        newMusicQueue(options.QueueCapacity),
	}, nil
}

func (e *Engine) SampleRate() int { return e.sampleRate }

// PeriodFrames is the number of frames one FillBuffer call is sized for.
func (e *Engine) PeriodFrames() int { return e.periodFrames }

// NewBuffer allocates a buffer holding one period of interleaved samples.
func (e *Engine) NewBuffer() []int16 {
	return make([]int16, e.periodFrames*ChannelCount)
}

// QueueEffect starts clip in the first free effect slot. If every slot is
// busy the request is dropped and QueueEffect returns false.
func (e *Engine) QueueEffect(clip *SoundClip) bool {
	if clip == nil || len(clip.data) == 0 {
		panic("audio: QueueEffect called with an empty clip")
	}

	e.m.Lock()
	for i := range e.effects {
		if e.effects[i].clip == nil {
			e.effects[i] = effectSlot{clip: clip, data: clip.data}
			e.m.Unlock()
			return true
		}
	}
	e.m.Unlock()

	e.logger.Warn("audio: effect dropped, no free slot", "clip", clip.name, "slots", len(e.effects))
	e.metrics.RecordEffectDropped(context.Background(), clip.name)
	return false
}

// QueueTrack appends track to the music queue. If the queue was empty the
// track becomes current and starts playing on the next buffer. It returns
// false when the queue is full.
func (e *Engine) QueueTrack(track *MusicTrack) bool {
	if track == nil || len(track.data) == 0 {
		panic("audio: QueueTrack called with an empty track")
	}

	e.m.Lock()
	err := e.queue.push(track)
	e.m.Unlock()

	if err != nil {
		e.logger.Warn("audio: track dropped", "title", track.meta.Title, "err", err)
		e.metrics.RecordTrackRejected(context.Background())
		return false
	}
	return true
}

// NextTrack skips the current track. The skipped track stays behind head so
// PreviousTrack can return to it. It reports whether head moved.
func (e *Engine) NextTrack() bool {
	e.m.Lock()
	defer e.m.Unlock()
	return e.queue.next()
}

// PreviousTrack moves head back one entry. It is a no-op at the earliest
// track still held in the ring.
func (e *Engine) PreviousTrack() bool {
	e.m.Lock()
	defer e.m.Unlock()
	return e.queue.previous()
}

// RestartTrack rewinds the current track to its first frame.
func (e *Engine) RestartTrack() {
	e.m.Lock()
	e.queue.restart()
	e.m.Unlock()
}

// ClearEffects frees every effect slot.
func (e *Engine) ClearEffects() {
	e.m.Lock()
	clear(e.effects)
	e.m.Unlock()
}

// ClearQueue drops every track, including history, and resets head and
// tail. Tracks may be released once this returns.
func (e *Engine) ClearQueue() {
	e.m.Lock()
	e.queue.clear()
	e.m.Unlock()
}

func (e *Engine) Pause() {
	e.m.Lock()
	e.queue.paused = true
	e.m.Unlock()
}

func (e *Engine) Resume() {
	e.m.Lock()
	e.queue.paused = false
	e.m.Unlock()
}

func (e *Engine) State() State {
	e.m.Lock()
	defer e.m.Unlock()
	return e.queue.state()
}

// ElapsedSeconds returns the playback position of the current track, or 0
// when nothing is queued.
func (e *Engine) ElapsedSeconds() float64 {
	e.m.Lock()
	defer e.m.Unlock()
	s := e.queue.current()
	if s == nil {
		return 0
	}
	return float64(s.pos) / ChannelCount / float64(e.sampleRate)
}

// Snapshot is the queue state as seen by one mixing pass.
type Snapshot struct {
	State   State
	Track   *MusicTrack
	Elapsed float64
}

// Snapshot returns state, current track and position under one lock, so
// the three always describe the same moment.
func (e *Engine) Snapshot() Snapshot {
	e.m.Lock()
	defer e.m.Unlock()
	snap := Snapshot{State: e.queue.state()}
	if s := e.queue.current(); s != nil {
		snap.Track = s.track
		snap.Elapsed = float64(s.pos) / ChannelCount / float64(e.sampleRate)
	}
	return snap
}

// Current returns the track at head, or nil.
func (e *Engine) Current() *MusicTrack {
	e.m.Lock()
	defer e.m.Unlock()
	if s := e.queue.current(); s != nil {
		return s.track
	}
	return nil
}

// Upcoming returns up to n queued tracks, current one first. The result is
// a copy taken under the lock; call again for a fresh view.
func (e *Engine) Upcoming(n int) []*MusicTrack {
	e.m.Lock()
	defer e.m.Unlock()
	return e.queue.upcoming(n)
}

// QueueView returns recently played tracks followed by the current and
// upcoming ones, at most n in total, plus the index of the current track
// in the result (-1 if there is none).
func (e *Engine) QueueView(n int) ([]*MusicTrack, int) {
	e.m.Lock()
	defer e.m.Unlock()
	return e.queue.view(n)
}

// QueueLen is the number of tracks from the current one to the tail.
func (e *Engine) QueueLen() int {
	e.m.Lock()
	defer e.m.Unlock()
	return e.queue.live()
}

// ActiveEffects is the number of occupied effect slots.
func (e *Engine) ActiveEffects() int {
	e.m.Lock()
	defer e.m.Unlock()
	n := 0
	for i := range e.effects {
		if e.effects[i].clip != nil {
			n++
		}
	}
	return n
}

// FillBuffer overwrites buf with the next len(buf)/ChannelCount frames of
// mixed output. Effects always mix; the current track mixes unless the
// engine is paused and runs on into the next queued track when it ends.
func (e *Engine) FillBuffer(buf []int16) {
	if len(buf)%ChannelCount != 0 {
		panic(fmt.Sprintf("audio: buffer length %d is not a whole number of frames", len(buf)))
	}

	e.m.Lock()
	defer e.m.Unlock()

	clear(buf)
	e.mixEffects(buf)
	if !e.queue.paused {
		e.mixMusic(buf)
	}
}

func (e *Engine) mixEffects(buf []int16) {
	for i := range e.effects {
		s := &e.effects[i]
		if s.clip == nil {
			continue
		}
		n := min(len(buf), len(s.data)-s.pos)
		mixInto(buf[:n], s.data[s.pos:s.pos+n])
		s.pos += n
		if s.pos >= len(s.data) {
			*s = effectSlot{}
		}
	}
}

func (e *Engine) mixMusic(buf []int16) {
	for len(buf) > 0 {
		s := e.queue.current()
		if s == nil {
			return
		}
		s.track.active.Store(true)

		n := min(len(buf), len(s.data)-s.pos)
		src := s.data[s.pos : s.pos+n]
		for i, v := range src {
			buf[i] = SaturatingAdd(buf[i], v)
			e.levels.Observe(buf[i])
		}
		s.pos += n
		buf = buf[n:]

		if s.pos >= len(s.data) {
			e.queue.finish()
		}
	}
}
