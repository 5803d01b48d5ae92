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
	"fmt"
	"log/slog"
	"time"

	"github.com/rayhong24/MP3-Embedded-System/internal/observe"
)

const ChannelCount = 2

const (
	DefaultSampleRate    = 44100
	DefaultEffectSlots   = 30
	DefaultQueueCapacity = 30

	// DefaultPeriodFrames is used when the sink does not report a period.
	// 441 frames is 10ms at 44.1kHz.
	DefaultPeriodFrames = 441
)

// EngineOptions represents options for NewEngine.
type EngineOptions struct {
	// SampleRate specifies the number of frames played during one second.
	// Every clip and track handed to the engine must already be at this rate.
	SampleRate int

	// PeriodFrames is the number of frames mixed per cycle. It should match
	// the output device's period so one mix pass feeds one blocking write.
	PeriodFrames int

	// EffectSlots is the number of effects that can play at once.
	EffectSlots int

	// QueueCapacity is the number of slots in the music ring. Because one
	// slot always separates tail from head, at most QueueCapacity-1 tracks
	// can be queued ahead of the current one.
	QueueCapacity int

	// Levels receives every mixed music sample. Nil disables it.
	Levels LevelSink

	// Metrics records drops and rejections. Nil uses observe.DefaultMetrics.
	Metrics *observe.Metrics

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (o *EngineOptions) setDefaults() {
	if o.SampleRate == 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.PeriodFrames == 0 {
		o.PeriodFrames = DefaultPeriodFrames
	}
	if o.EffectSlots == 0 {
		o.EffectSlots = DefaultEffectSlots
	}
	if o.QueueCapacity == 0 {
		o.QueueCapacity = DefaultQueueCapacity
	}
	if o.Levels == nil {
		o.Levels = discardLevels{}
	}
	if o.Metrics == nil {
		o.Metrics = observe.DefaultMetrics()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

func (o *EngineOptions) validate() error {
	switch {
	case o.SampleRate < 0:
		return fmt.Errorf("audio: sample rate must be positive, got %d", o.SampleRate)
	case o.PeriodFrames < 0:
		return fmt.Errorf("audio: period frames must be positive, got %d", o.PeriodFrames)
	case o.EffectSlots < 0:
		return fmt.Errorf("audio: effect slots must be positive, got %d", o.EffectSlots)
	case o.QueueCapacity < 0 || o.QueueCapacity == 1:
		return fmt.Errorf("audio: queue capacity must be at least 2, got %d", o.QueueCapacity)
	}
	return nil
}

// FramesFor converts a duration to a whole number of frames at sampleRate.
func FramesFor(sampleRate int, d time.Duration) int {
	return int(int64(d) * int64(sampleRate) / int64(time.Second))
}

// LevelSink observes mixed music samples for visualization. Observe is
// called with the engine lock held, once per sample, so it must not block.
type LevelSink interface {
	Observe(sample int16)
}

type discardLevels struct{}

func (discardLevels) Observe(int16) {}
