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

import "time"

// nullSink discards audio but blocks for as long as the frames would take
// to play, so the playback loop keeps real-time pacing without a device.
type nullSink struct {
	sampleRate   int
	periodFrames int
}

func NewNullSink(sampleRate, periodFrames int) Sink {
	return &nullSink{sampleRate: sampleRate, periodFrames: periodFrames}
}

func (s *nullSink) Write(buf []int16) (int, error) {
	frames := len(buf) / ChannelCount
	time.Sleep(time.Duration(float64(time.Second) * float64(frames) / float64(s.sampleRate)))
	return frames, nil
}

func (s *nullSink) Recover(error) error { return nil }

func (s *nullSink) PeriodFrames() int { return s.periodFrames }

func (s *nullSink) Drain() error { return nil }

func (s *nullSink) Close() error { return nil }
