package visualizer

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		in   int16
		want int
	}{
		{math.MinInt16, 0},
		{0, 4},
		{-1, 4},
		{math.MaxInt16, 8},
		{math.MaxInt16 - 100, 8},
		{math.MinInt16 + 7282, 1},
		{16000, 6},
	}
	for _, tt := range tests {
		if got := Level(tt.in); got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLevelIsMonotonic(t *testing.T) {
	prev := 0
	for v := int32(math.MinInt16); v <= math.MaxInt16; v += 97 {
		l := Level(int16(v))
		if l < prev || l < 0 || l >= len(Levels) {
			t.Fatalf("Level(%d) = %d after %d", v, l, prev)
		}
		prev = l
	}
}

func TestFrame(t *testing.T) {
	got := Frame(8, 3)
	want := [NumLEDs]uint32{3, 3, 3, 3, 0, 0, 0, 0}
	if got != want {
		t.Errorf("Frame(8, 3) = %v, want %v", got, want)
	}
	if got := Frame(4, 7); got != ([NumLEDs]uint32{}) {
		t.Errorf("Frame(4, 7) = %v, want all off", got)
	}
}

func TestMemStripLayout(t *testing.T) {
	mem := make([]byte, MemLength)
	unmapped := false
	s, err := newMemStrip(mem, func([]byte) error {
		unmapped = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set([NumLEDs]uint32{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < NumLEDs; i++ {
		got := binary.NativeEndian.Uint32(mem[i*ledStride:])
		if want := uint32(NumLEDs - i); got != want {
			t.Errorf("word %d = %d, want %d", i, got, want)
		}
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !unmapped {
		t.Error("Close did not unmap")
	}
	for i := 0; i < NumLEDs; i++ {
		if got := binary.NativeEndian.Uint32(mem[i*ledStride:]); got != 0 {
			t.Errorf("word %d = %d after Close, want 0", i, got)
		}
	}
	if err := s.Set([NumLEDs]uint32{}); err == nil {
		t.Error("Set after Close succeeded")
	}
}

func TestMemStripTooSmall(t *testing.T) {
	if _, err := newMemStrip(make([]byte, 16), nil); err == nil {
		t.Error("newMemStrip accepted a 16 byte region")
	}
}

type recordingStrip struct {
	m      sync.Mutex
	frames [][NumLEDs]uint32
	closed int
}

func (r *recordingStrip) Set(leds [NumLEDs]uint32) error {
	r.m.Lock()
	r.frames = append(r.frames, leds)
	r.m.Unlock()
	return nil
}

func (r *recordingStrip) Close() error {
	r.m.Lock()
	r.closed++
	r.m.Unlock()
	return nil
}

func (r *recordingStrip) snapshot() [][NumLEDs]uint32 {
	r.m.Lock()
	defer r.m.Unlock()
	return append([][NumLEDs]uint32(nil), r.frames...)
}

func TestRunDrawsAndClears(t *testing.T) {
	strip := &recordingStrip{}
	v := New(strip, Options{
		Refresh:     time.Millisecond,
		ColorPeriod: time.Hour,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	v.Observe(math.MaxInt16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for len(strip.snapshot()) < 3 {
		select {
		case <-deadline:
			t.Fatal("strip was never drawn")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if strip.closed != 0 {
		t.Error("Run closed the strip")
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if strip.closed != 1 {
		t.Errorf("strip closed %d times, want 1", strip.closed)
	}

	frames := strip.snapshot()
	if want := Frame(8, Colors[0]); frames[0] != want {
		t.Errorf("first frame = %v, want %v", frames[0], want)
	}
	if last := frames[len(frames)-1]; last != ([NumLEDs]uint32{}) {
		t.Errorf("last frame = %v, want all off", last)
	}
}

func TestRunCyclesColors(t *testing.T) {
	strip := &recordingStrip{}
	v := New(strip, Options{
		Refresh:     time.Millisecond,
		ColorPeriod: 5 * time.Millisecond,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	v.Observe(math.MinInt16)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	v.Run(ctx)

	seen := map[uint32]bool{}
	for _, f := range strip.snapshot() {
		seen[f[NumLEDs-1]] = true
	}
	if len(seen) < 3 {
		t.Errorf("saw colours %v, want the strip to cycle", seen)
	}
}
