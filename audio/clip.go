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
	"sync/atomic"
	"time"
)

// SoundClip is a short decoded effect held entirely in memory.
//
//	[data]      = [frame 1] [frame 2] [frame 3] ...
//	[frame *]   = [left] [right]
//	[channel *] = [int16]
//
// A SoundClip is never modified after it is created, so any number of
// effect slots may play the same clip at once.
type SoundClip struct {
	name string
	data []int16
}

// NewSoundClip wraps interleaved stereo samples. The slice is owned by the
// clip from here on; callers must not write to it afterwards.
func NewSoundClip(name string, data []int16) *SoundClip {
	return &SoundClip{name: name, data: data[:len(data)-len(data)%ChannelCount]}
}

func (c *SoundClip) Name() string { return c.name }

// Samples returns the number of interleaved samples (frames * channels).
func (c *SoundClip) Samples() int { return len(c.data) }

func (c *SoundClip) Frames() int { return len(c.data) / ChannelCount }

// PCM returns the clip's samples. The slice must not be modified.
func (c *SoundClip) PCM() []int16 { return c.data }

// Release drops the PCM data. Slots that still reference the clip keep
// their own view of the slice until they finish.
func (c *SoundClip) Release() {
	c.data = nil
}

// Metadata describes a music track for display.
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// UnknownTag is used for metadata fields the decoder could not find.
const UnknownTag = "Unknown"

// MusicTrack is a fully decoded song plus its metadata.
//
// The active flag is owned by the Engine: it is set while the engine is
// advancing through the track and cleared when the track is skipped,
// rewound past, or finishes. It may be read from any goroutine.
type MusicTrack struct {
	meta   Metadata
	data   []int16
	active atomic.Bool
}

func NewMusicTrack(meta Metadata, data []int16) *MusicTrack {
	if meta.Title == "" {
		meta.Title = UnknownTag
	}
	if meta.Artist == "" {
		meta.Artist = UnknownTag
	}
	if meta.Album == "" {
		meta.Album = UnknownTag
	}
	return &MusicTrack{meta: meta, data: data[:len(data)-len(data)%ChannelCount]}
}

func (t *MusicTrack) Metadata() Metadata { return t.meta }

func (t *MusicTrack) Samples() int { return len(t.data) }

func (t *MusicTrack) Frames() int { return len(t.data) / ChannelCount }

// PCM returns the track's samples. The slice must not be modified.
func (t *MusicTrack) PCM() []int16 { return t.data }

// Active reports whether the engine is currently mixing this track.
func (t *MusicTrack) Active() bool { return t.active.Load() }

// Release drops the PCM data and clears the active flag. The track must
// have been removed from the engine's queue first.
func (t *MusicTrack) Release() {
	t.data = nil
	t.active.Store(false)
}
