package pcm_test

import (
	"math"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/rayhong24/MP3-Embedded-System/loaders/pcm"
)

func TestToInt16(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{1, math.MaxInt16},
		{-1, -math.MaxInt16},
		{2, math.MaxInt16},
		{-2, math.MinInt16},
		{0.5, 16384},
	}
	for _, tt := range tests {
		if got := pcm.ToInt16(tt.in); got != tt.want {
			t.Errorf("ToInt16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBufferRoundTrip(t *testing.T) {
	data := []int16{0, 1, -1, 1000, math.MaxInt16, -math.MaxInt16, 12345, -54}
	got, err := pcm.ReadAll(pcm.NewBuffer(data), 44100, 44100)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("len = %d, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], data[i])
		}
	}
}

func TestBufferSeek(t *testing.T) {
	b := pcm.NewBuffer([]int16{1, 1, 2, 2, 3, 3})
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if err := b.Seek(2); err != nil {
		t.Fatal(err)
	}
	samples := make([][2]float64, 4)
	n, ok := b.Stream(samples)
	if n != 1 || !ok {
		t.Fatalf("Stream = %d, %v, want 1, true", n, ok)
	}
	if _, ok := b.Stream(samples); ok {
		t.Error("Stream after end returned ok")
	}
	if err := b.Seek(4); err == nil {
		t.Error("Seek past end succeeded")
	}
}

func TestReadAllResamples(t *testing.T) {
	const frames = 22050
	data := make([]int16, frames*2)
	got, err := pcm.ReadAll(pcm.NewBuffer(data), beep.SampleRate(22050), 44100)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	gotFrames := len(got) / 2
	if len(got)%2 != 0 {
		t.Fatalf("odd sample count %d", len(got))
	}
	if gotFrames < 2*frames-100 || gotFrames > 2*frames+100 {
		t.Errorf("resampled to %d frames, want about %d", gotFrames, 2*frames)
	}
}

func TestReadAllRejectsBadRate(t *testing.T) {
	if _, err := pcm.ReadAll(pcm.NewBuffer(nil), 44100, 0); err == nil {
		t.Error("ReadAll with rate 0 succeeded")
	}
}
