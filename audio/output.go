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
	"errors"
	"fmt"
	"log/slog"

	"github.com/rayhong24/MP3-Embedded-System/internal/observe"
)

// ErrDeviceNotFound is returned by sink constructors when no usable audio
// device or driver library is present.
var ErrDeviceNotFound = errors.New("audio: device not found")

// Sink is a blocking PCM device that accepts interleaved stereo frames.
type Sink interface {
	// Write blocks until the device has taken the buffer, or part of it,
	// and returns the number of frames accepted.
	Write(buf []int16) (frames int, err error)

	// Recover tries to bring the device back after a failed Write.
	Recover(cause error) error

	// PeriodFrames is the device period negotiated at open.
	PeriodFrames() int

	// Drain blocks until queued frames have played.
	Drain() error

	Close() error
}

// Output wraps a Sink with the write policy of the playback loop: a short
// write is logged and playback continues, a failed write gets one recovery
// and one retry, and a second failure is returned as fatal.
type Output struct {
	sink    Sink
	logger  *slog.Logger
	metrics *observe.Metrics
}

func NewOutput(sink Sink, logger *slog.Logger, metrics *observe.Metrics) *Output {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Output{sink: sink, logger: logger, metrics: metrics}
}

func (o *Output) PeriodFrames() int { return o.sink.PeriodFrames() }

// Write hands buf to the sink. A non-nil error means the device could not
// be recovered and playback must stop.
func (o *Output) Write(ctx context.Context, buf []int16) error {
	frames := len(buf) / ChannelCount

	n, err := o.sink.Write(buf)
	if err == nil {
		o.checkShort(ctx, n, frames)
		return nil
	}

	o.metrics.RecordWriteError(ctx, "write")
	o.logger.Warn("audio: write failed, recovering", "err", err)

	if rerr := o.sink.Recover(err); rerr != nil {
		o.metrics.RecordRecovery(ctx, false)
		return fmt.Errorf("audio: recovery failed: %w", errors.Join(err, rerr))
	}
	o.metrics.RecordRecovery(ctx, true)

	n, err = o.sink.Write(buf)
	if err != nil {
		o.metrics.RecordWriteError(ctx, "retry")
		return fmt.Errorf("audio: write failed after recovery: %w", err)
	}
	o.checkShort(ctx, n, frames)
	return nil
}

func (o *Output) checkShort(ctx context.Context, n, frames int) {
	if n < frames {
		o.logger.Warn("audio: short write", "written", n, "expected", frames)
		o.metrics.RecordShortWrite(ctx)
	}
}

func (o *Output) Drain() error { return o.sink.Drain() }

func (o *Output) Close() error { return o.sink.Close() }
