package pcm

import (
	"fmt"

	"github.com/gopxl/beep/v2"
)

// Buffer streams in-memory interleaved stereo int16 samples as a
// beep.StreamSeeker.
type Buffer struct {
	data []int16
	pos  int // frame
}

var _ beep.StreamSeeker = (*Buffer)(nil)

func NewBuffer(data []int16) *Buffer {
	return &Buffer{data: data[:len(data)-len(data)%2]}
}

func (b *Buffer) Stream(samples [][2]float64) (n int, ok bool) {
	if b.pos >= b.Len() {
		return 0, false
	}
	n = min(b.Len()-b.pos, len(samples))
	for i := 0; i < n; i++ {
		j := (b.pos + i) * 2
		samples[i][0] = ToFloat(b.data[j])
		samples[i][1] = ToFloat(b.data[j+1])
	}
	b.pos += n
	return n, true
}

func (b *Buffer) Err() error { return nil }

// Len is the length in frames.
func (b *Buffer) Len() int { return len(b.data) / 2 }

func (b *Buffer) Position() int { return b.pos }

func (b *Buffer) Seek(p int) error {
	if p < 0 || p > b.Len() {
		return fmt.Errorf("pcm: seek position %d out of range [0, %d]", p, b.Len())
	}
	b.pos = p
	return nil
}
