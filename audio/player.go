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
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rayhong24/MP3-Embedded-System/internal/observe"
)

// PlayerOptions represents options for NewPlayer.
type PlayerOptions struct {
	// Nice is applied to the playback thread when non-zero. Negative
	// values raise priority and need CAP_SYS_NICE.
	Nice int

	Logger  *slog.Logger
	Metrics *observe.Metrics
}

// Player runs the mixing cycle on a dedicated OS thread: fill one period
// from the Engine, then block in the Output until the device takes it.
// The loop never sleeps on its own; the device write paces it.
type Player struct {
	engine  *Engine
	output  *Output
	nice    int
	logger  *slog.Logger
	metrics *observe.Metrics

	startOnce sync.Once
	stop      atomic.Bool
	done      chan struct{}
	err       atomicError
}

func NewPlayer(engine *Engine, output *Output, options PlayerOptions) *Player {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Metrics == nil {
		options.Metrics = observe.DefaultMetrics()
	}
	return &Player{
		engine:  engine,
		output:  output,
		nice:    options.Nice,
		logger:  options.Logger,
		metrics: options.Metrics,
		done:    make(chan struct{}),
	}
}

// Start launches the playback thread. Calling it again has no effect.
func (p *Player) Start() {
	p.startOnce.Do(func() {
		go p.loop()
	})
}

// Stop asks the loop to exit after the cycle in flight, waits for it and
// returns the fatal error, if any. A started Player cannot be restarted.
func (p *Player) Stop() error {
	p.stop.Store(true)
	p.Start()
	<-p.done
	return p.err.Load()
}

// Done is closed when the playback thread has exited.
func (p *Player) Done() <-chan struct{} { return p.done }

// Err returns the error that ended playback, or nil.
func (p *Player) Err() error { return p.err.Load() }

// Run starts playback and blocks until ctx is cancelled or the output fails.
func (p *Player) Run(ctx context.Context) error {
	p.Start()
	select {
	case <-ctx.Done():
		return p.Stop()
	case <-p.done:
		return p.err.Load()
	}
}

func (p *Player) loop() {
	defer close(p.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if p.nice != 0 {
		if err := setThreadNice(p.nice); err != nil {
			p.logger.Warn("audio: could not set playback thread priority", "nice", p.nice, "err", err)
		}
	}

	ctx := context.Background()
	buf := p.engine.NewBuffer()
	for !p.stop.Load() {
		start := time.Now()
		p.engine.FillBuffer(buf)
		p.metrics.RecordCycle(ctx, time.Since(start).Seconds())

		if err := p.output.Write(ctx, buf); err != nil {
			p.logger.Error("audio: playback stopped", "err", err)
			p.err.TryStore(err)
			return
		}
	}

	if err := p.output.Drain(); err != nil {
		p.logger.Warn("audio: drain failed", "err", err)
	}
}
