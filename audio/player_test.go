package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestPlayer(t *testing.T, e *Engine, sink Sink) *Player {
	t.Helper()
	out, _ := newTestOutput(t, sink)
	return NewPlayer(e, out, PlayerOptions{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: out.metrics,
	})
}

func waitDone(t *testing.T, p *Player) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("playback thread did not exit")
	}
}

func TestPlayerStopDrains(t *testing.T) {
	e := newTestEngine(t, EngineOptions{PeriodFrames: 16})
	written := make(chan struct{}, 1)
	sink := &fakeSink{onWrite: func(n int) {
		if n == 3 {
			written <- struct{}{}
		}
	}}
	p := newTestPlayer(t, e, sink)
	e.QueueTrack(constTrack("song", 1<<20, 4))

	p.Start()
	select {
	case <-written:
	case <-time.After(5 * time.Second):
		t.Fatal("no writes reached the sink")
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	waitDone(t, p)

	sink.m.Lock()
	defer sink.m.Unlock()
	if !sink.drained {
		t.Error("sink was not drained on stop")
	}
	for i, w := range sink.writes[:3] {
		if len(w) != 16*ChannelCount {
			t.Fatalf("write %d has %d samples, want %d", i, len(w), 16*ChannelCount)
		}
		if w[0] != 4 {
			t.Fatalf("write %d starts with %d, want 4", i, w[0])
		}
	}
}

func TestPlayerFatalWriteEndsThread(t *testing.T) {
	e := newTestEngine(t, EngineOptions{PeriodFrames: 16})
	sink := &fakeSink{results: []writeResult{{}, {err: errUnderrun}, {err: errUnderrun}}}
	p := newTestPlayer(t, e, sink)

	p.Start()
	waitDone(t, p)
	if !errors.Is(p.Err(), errUnderrun) {
		t.Fatalf("Err() = %v, want %v", p.Err(), errUnderrun)
	}
	if sink.drained {
		t.Error("sink drained after fatal error")
	}
	if got := sink.writeCount(); got != 3 {
		t.Errorf("writes = %d, want 3", got)
	}
	if err := p.Stop(); !errors.Is(err, errUnderrun) {
		t.Errorf("Stop() = %v, want %v", err, errUnderrun)
	}
}

func TestPlayerRunStopsOnCancel(t *testing.T) {
	e := newTestEngine(t, EngineOptions{PeriodFrames: 16})
	p := newTestPlayer(t, e, NewNullSink(DefaultSampleRate, 16))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPlayerStopBeforeStart(t *testing.T) {
	e := newTestEngine(t, EngineOptions{PeriodFrames: 16})
	sink := &fakeSink{}
	p := newTestPlayer(t, e, sink)
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := sink.writeCount(); got != 0 {
		t.Errorf("writes = %d, want 0", got)
	}
}
