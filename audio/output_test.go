package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/rayhong24/MP3-Embedded-System/internal/observe"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// fakeSink replays scripted results. Each Write pops one entry from
// results; once they run out every write succeeds in full.
type fakeSink struct {
	m          sync.Mutex
	results    []writeResult
	recoverErr error
	writes     [][]int16
	recovers   int
	drained    bool
	closed     bool
	onWrite    func(n int)
}

type writeResult struct {
	short int
	err   error
}

func (s *fakeSink) Write(buf []int16) (int, error) {
	s.m.Lock()
	frames := len(buf) / ChannelCount
	s.writes = append(s.writes, append([]int16(nil), buf...))
	n := len(s.writes)
	var r writeResult
	if len(s.results) > 0 {
		r, s.results = s.results[0], s.results[1:]
	}
	onWrite := s.onWrite
	s.m.Unlock()

	if onWrite != nil {
		onWrite(n)
	}
	if r.err != nil {
		return 0, r.err
	}
	return frames - r.short, nil
}

func (s *fakeSink) Recover(error) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.recovers++
	return s.recoverErr
}

func (s *fakeSink) PeriodFrames() int { return 16 }

func (s *fakeSink) Drain() error {
	s.m.Lock()
	s.drained = true
	s.m.Unlock()
	return nil
}

func (s *fakeSink) Close() error {
	s.m.Lock()
	s.closed = true
	s.m.Unlock()
	return nil
}

func (s *fakeSink) writeCount() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.writes)
}

func newTestOutput(t *testing.T, sink Sink) (*Output, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	met, err := observe.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	if err != nil {
		t.Fatal(err)
	}
	return NewOutput(sink, slog.New(slog.NewTextHandler(io.Discard, nil)), met), reader
}

var errUnderrun = errors.New("underrun")

func TestOutputWrite(t *testing.T) {
	sink := &fakeSink{}
	out, _ := newTestOutput(t, sink)
	if err := out.Write(context.Background(), make([]int16, 32)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if sink.writeCount() != 1 || sink.recovers != 0 {
		t.Errorf("writes = %d, recovers = %d, want 1 and 0", sink.writeCount(), sink.recovers)
	}
}

func TestOutputShortWrite(t *testing.T) {
	sink := &fakeSink{results: []writeResult{{short: 3}}}
	out, reader := newTestOutput(t, sink)
	if err := out.Write(context.Background(), make([]int16, 32)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := counterValue(t, reader, "jukebox.output.short_writes"); got != 1 {
		t.Errorf("short writes = %d, want 1", got)
	}
	if sink.writeCount() != 1 {
		t.Errorf("writes = %d, want 1", sink.writeCount())
	}
}

func TestOutputRecoversOnce(t *testing.T) {
	sink := &fakeSink{results: []writeResult{{err: errUnderrun}}}
	out, reader := newTestOutput(t, sink)
	if err := out.Write(context.Background(), make([]int16, 32)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if sink.recovers != 1 || sink.writeCount() != 2 {
		t.Errorf("recovers = %d, writes = %d, want 1 and 2", sink.recovers, sink.writeCount())
	}
	if got := counterValue(t, reader, "jukebox.output.recoveries"); got != 1 {
		t.Errorf("recoveries = %d, want 1", got)
	}
}

func TestOutputSecondFailureIsFatal(t *testing.T) {
	sink := &fakeSink{results: []writeResult{{err: errUnderrun}, {err: errUnderrun}}}
	out, reader := newTestOutput(t, sink)
	err := out.Write(context.Background(), make([]int16, 32))
	if !errors.Is(err, errUnderrun) {
		t.Fatalf("Write error = %v, want wrapping %v", err, errUnderrun)
	}
	if sink.recovers != 1 {
		t.Errorf("recovers = %d, want 1", sink.recovers)
	}
	if got := counterValue(t, reader, "jukebox.output.write_errors"); got != 2 {
		t.Errorf("write errors = %d, want 2", got)
	}
}

func TestOutputRecoveryFailureIsFatal(t *testing.T) {
	errBroken := errors.New("device gone")
	sink := &fakeSink{results: []writeResult{{err: errUnderrun}}, recoverErr: errBroken}
	out, _ := newTestOutput(t, sink)
	err := out.Write(context.Background(), make([]int16, 32))
	if !errors.Is(err, errBroken) || !errors.Is(err, errUnderrun) {
		t.Fatalf("Write error = %v, want both causes", err)
	}
	if sink.writeCount() != 1 {
		t.Errorf("writes = %d, want no retry after failed recovery", sink.writeCount())
	}
}

func TestNullSinkReportsFullWrites(t *testing.T) {
	sink := NewNullSink(48000, 48)
	n, err := sink.Write(make([]int16, 96))
	if err != nil || n != 48 {
		t.Errorf("Write = %d, %v, want 48, nil", n, err)
	}
	if sink.PeriodFrames() != 48 {
		t.Errorf("PeriodFrames() = %d, want 48", sink.PeriodFrames())
	}
}

func TestOpenSinkNull(t *testing.T) {
	sink, err := OpenSink(SinkOptions{Null: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}
	defer sink.Close()
	if sink.PeriodFrames() != DefaultPeriodFrames {
		t.Errorf("PeriodFrames() = %d, want %d", sink.PeriodFrames(), DefaultPeriodFrames)
	}
}

func TestAtomicErrorKeepsFirst(t *testing.T) {
	var a atomicError
	if a.Load() != nil {
		t.Fatal("zero atomicError is not nil")
	}
	first := errors.New("first")
	a.TryStore(first)
	a.TryStore(errors.New("second"))
	if a.Load() != first {
		t.Errorf("Load() = %v, want %v", a.Load(), first)
	}
}
